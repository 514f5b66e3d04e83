package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/buckr/buckr/internal/event_bus"
	"github.com/buckr/buckr/internal/utils"
	"github.com/buckr/buckr/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")
var ErrInvalidAmount = errors.New("amount is invalid")

type Service interface {
	// Get returns the user's budget, or an unsaved default when none exists yet.
	Get(ctx context.Context) (Budget, error)
	SetCurrentBalance(ctx context.Context, amount decimal.Decimal) (Budget, error)
	SetSparing(ctx context.Context, amount decimal.Decimal) (Budget, error)
	// SpareNow applies one month of saving to the current balance.
	SpareNow(ctx context.Context) (Budget, error)
}

type ServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewBudgetService(repo Repo, clock utils.Clock, eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{repo: repo, clock: clock}
	event_bus.SubscribeTyped[event_bus.ItemObtained](
		eventBus,
		event_bus.ItemObtainedChanged,
		func(e event_bus.EventT[event_bus.ItemObtained]) error {
			log.Debugf("received item obtained event: %v", e.Data)
			if err := service.applyObtained(e.Context(), e.Data); err != nil {
				log.Errorf("failed to adjust balance for item %d: %v", e.Data.ItemId, err)
				return err
			}
			return nil
		},
	)
	return service
}

func (s *ServiceImpl) Get(ctx context.Context) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}

	budget, err := s.repo.Get(ctx, userId)
	if errors.Is(err, ErrBudgetNotFound) {
		log.Debugf("no budget stored for user %d, returning defaults", userId)
		return Default(userId), nil
	}
	if err != nil {
		return Budget{}, err
	}
	return budget, nil
}

func (s *ServiceImpl) SetCurrentBalance(ctx context.Context, amount decimal.Decimal) (Budget, error) {
	if amount.IsNegative() {
		return Budget{}, fmt.Errorf("%w: balance must not be negative", ErrInvalidAmount)
	}
	return s.change(ctx, func(budget Budget) Budget {
		budget.CurrentBalance = amount
		budget.LastIncrement = s.clock.Now()
		return budget
	})
}

func (s *ServiceImpl) SetSparing(ctx context.Context, amount decimal.Decimal) (Budget, error) {
	if !amount.IsPositive() {
		return Budget{}, fmt.Errorf("%w: sparing must be positive", ErrInvalidAmount)
	}
	return s.change(ctx, func(budget Budget) Budget {
		budget.Sparing = amount
		return budget
	})
}

func (s *ServiceImpl) SpareNow(ctx context.Context) (Budget, error) {
	return s.change(ctx, func(budget Budget) Budget {
		budget.CurrentBalance = budget.CurrentBalance.Add(budget.Sparing)
		budget.LastIncrement = s.clock.Now()
		return budget
	})
}

// change loads the stored record (or the lazy default), applies the mutation
// and writes the full record back. Last write wins on concurrent edits.
func (s *ServiceImpl) change(ctx context.Context, mutate func(Budget) Budget) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}

	budget, err := s.repo.Get(ctx, userId)
	if errors.Is(err, ErrBudgetNotFound) {
		log.Debugf("creating budget for user %d on first write", userId)
		budget = Default(userId)
		budget.LastIncrement = s.clock.Now()
	} else if err != nil {
		return Budget{}, err
	}

	budget = mutate(budget)
	if err := s.repo.Upsert(ctx, userId, budget); err != nil {
		return Budget{}, err
	}
	return budget, nil
}

// applyObtained moves an item's price between the queue and the balance when
// its obtained flag flips. A missing budget record is left untouched; there is
// no balance to adjust yet.
func (s *ServiceImpl) applyObtained(ctx context.Context, data event_bus.ItemObtained) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	budget, err := s.repo.Get(ctx, userId)
	if errors.Is(err, ErrBudgetNotFound) {
		log.Debugf("no budget for user %d, skipping balance adjustment", userId)
		return nil
	}
	if err != nil {
		return err
	}

	if data.Obtained {
		budget.CurrentBalance = decimal.Max(decimal.Zero, budget.CurrentBalance.Sub(data.Price))
	} else {
		budget.CurrentBalance = budget.CurrentBalance.Add(data.Price)
	}
	return s.repo.Upsert(ctx, userId, budget)
}
