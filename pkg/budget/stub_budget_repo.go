package budget

import (
	"context"
)

type StubBudgetRepo struct {
	data map[int]Budget
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{data: map[int]Budget{}}
}

func (s *StubBudgetRepo) Get(ctx context.Context, userId int) (Budget, error) {
	budget, ok := s.data[userId]
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	return budget, nil
}

func (s *StubBudgetRepo) Upsert(ctx context.Context, userId int, budget Budget) error {
	budget.UserId = userId
	s.data[userId] = budget
	return nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.data = map[int]Budget{}
}
