package budget

import (
	"context"
	"testing"
	"time"

	"github.com/buckr/buckr/internal/event_bus"
	"github.com/buckr/buckr/internal/utils"
	"github.com/buckr/buckr/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Username: "test_user"})

var budgetRepoStub = NewStubBudgetRepo()

var service Service
var bus *event_bus.EventBus
var clock *utils.MockClock

func setup(t *testing.T) func() {
	bus = event_bus.NewEventBus()
	clock = &utils.MockClock{FixedNow: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	service = NewBudgetService(budgetRepoStub, clock, bus)
	return func() {
		t.Log("Teardown after test")
		budgetRepoStub.Cleanup()
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestServiceImpl_Get(t *testing.T) {
	t.Run("should return defaults when nothing is stored", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		budget, err := service.Get(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, budget.UserId)
		assert.Equal(t, "10", budget.Sparing.String())
		assert.Equal(t, "0", budget.CurrentBalance.String())
		assert.True(t, budget.LastIncrement.IsZero())
	})

	t.Run("should not persist the default", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Get(ctx)
		require.NoError(t, err)

		_, err = budgetRepoStub.Get(ctx, 1)
		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})

	t.Run("should return the stored record", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		stored := Budget{Sparing: amount("250"), CurrentBalance: amount("90.50")}
		require.NoError(t, budgetRepoStub.Upsert(ctx, 1, stored))

		budget, err := service.Get(ctx)

		require.NoError(t, err)
		assert.Equal(t, "250", budget.Sparing.String())
		assert.Equal(t, "90.5", budget.CurrentBalance.String())
	})
}

func TestServiceImpl_SetCurrentBalance(t *testing.T) {
	t.Run("should create the budget on first write", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		budget, err := service.SetCurrentBalance(ctx, amount("150"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "150", budget.CurrentBalance.String())
		assert.Equal(t, "10", budget.Sparing.String())
		assert.Equal(t, clock.FixedNow, budget.LastIncrement)

		stored, err := budgetRepoStub.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "150", stored.CurrentBalance.String())
	})

	t.Run("should reject a negative balance", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SetCurrentBalance(ctx, amount("-1"))

		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("should accept zero", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		budget, err := service.SetCurrentBalance(ctx, decimal.Zero)

		require.NoError(t, err)
		assert.Equal(t, "0", budget.CurrentBalance.String())
	})
}

func TestServiceImpl_SetSparing(t *testing.T) {
	t.Run("should store the new rate and keep the balance", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SetCurrentBalance(ctx, amount("40"))
		require.NoError(t, err)

		budget, err := service.SetSparing(ctx, amount("99.50"))

		require.NoError(t, err)
		assert.Equal(t, "99.5", budget.Sparing.String())
		assert.Equal(t, "40", budget.CurrentBalance.String())
	})

	t.Run("should reject zero and negative rates", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SetSparing(ctx, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = service.SetSparing(ctx, amount("-5"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestServiceImpl_SpareNow(t *testing.T) {
	t.Run("should add one month of saving and stamp the time", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SetCurrentBalance(ctx, amount("100"))
		require.NoError(t, err)
		_, err = service.SetSparing(ctx, amount("25"))
		require.NoError(t, err)

		clock.SetNow(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC))

		// when
		budget, err := service.SpareNow(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, "125", budget.CurrentBalance.String())
		assert.Equal(t, clock.FixedNow, budget.LastIncrement)
	})

	t.Run("should create the budget with one saving applied", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		budget, err := service.SpareNow(ctx)

		require.NoError(t, err)
		assert.Equal(t, "10", budget.CurrentBalance.String())
		assert.Equal(t, "10", budget.Sparing.String())
	})
}

func TestServiceImpl_ApplyObtained(t *testing.T) {
	publish := func(t *testing.T, price string, obtained bool) {
		t.Helper()
		err := bus.Publish(event_bus.NewEvent(ctx, event_bus.ItemObtainedChanged, event_bus.ItemObtained{
			ItemId:   1,
			Title:    "Monitor",
			Price:    amount(price),
			Obtained: obtained,
		}))
		require.NoError(t, err)
	}

	t.Run("obtain then undo should restore the balance", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SetCurrentBalance(ctx, amount("500"))
		require.NoError(t, err)

		// when
		publish(t, "300", true)

		// then
		budget, err := service.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "200", budget.CurrentBalance.String())

		// when the purchase is undone
		publish(t, "300", false)

		budget, err = service.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "500", budget.CurrentBalance.String())
	})

	t.Run("should clamp the balance at zero", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SetCurrentBalance(ctx, amount("100"))
		require.NoError(t, err)

		publish(t, "300", true)

		budget, err := service.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "0", budget.CurrentBalance.String())
	})

	t.Run("should skip users without a budget record", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		publish(t, "300", true)

		_, err := budgetRepoStub.Get(ctx, 1)
		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})

	t.Run("should fail the publish when the context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.ItemObtainedChanged, event_bus.ItemObtained{
			ItemId: 1, Title: "Monitor", Price: amount("300"), Obtained: true,
		}))

		assert.Error(t, err)
	})
}
