package projection

import (
	"context"
	"fmt"

	"github.com/buckr/buckr/pkg/budget"
	"github.com/buckr/buckr/pkg/item"
)

// DashboardView is the full read model behind the dashboard page: the budget,
// the projected queue, the backlog and the aggregate figures.
type DashboardView struct {
	Budget  budget.Budget
	Queue   []ItemProjection
	Backlog []item.Item
	Summary Summary
}

type ItemLister interface {
	ListQueue(ctx context.Context) ([]item.Item, error)
	ListBacklog(ctx context.Context) ([]item.Item, error)
}

type BudgetReader interface {
	Get(ctx context.Context) (budget.Budget, error)
}

type Service interface {
	Dashboard(ctx context.Context) (DashboardView, error)
}

type ServiceImpl struct {
	items   ItemLister
	budgets BudgetReader
}

func NewProjectionService(items ItemLister, budgets BudgetReader) *ServiceImpl {
	return &ServiceImpl{items: items, budgets: budgets}
}

func (s *ServiceImpl) Dashboard(ctx context.Context) (DashboardView, error) {
	currentBudget, err := s.budgets.Get(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("failed to get budget: %w", err)
	}

	queue, err := s.items.ListQueue(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("failed to list queue items: %w", err)
	}
	backlog, err := s.items.ListBacklog(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("failed to list backlog items: %w", err)
	}

	return DashboardView{
		Budget:  currentBudget,
		Queue:   Project(queue, currentBudget.CurrentBalance, currentBudget.Sparing),
		Backlog: backlog,
		Summary: Summarize(queue, backlog, currentBudget.CurrentBalance, currentBudget.Sparing),
	}, nil
}
