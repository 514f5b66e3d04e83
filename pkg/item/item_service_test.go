package item

import (
	"context"
	"testing"

	"github.com/buckr/buckr/internal/event_bus"
	"github.com/buckr/buckr/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Username: "test_user"})

var itemRepoStub = NewStubItemRepo()

var service Service
var bus *event_bus.EventBus

func setup(t *testing.T) func() {
	bus = event_bus.NewEventBus()
	service = NewItemService(itemRepoStub, bus)
	return func() {
		t.Log("Teardown after test")
		itemRepoStub.Cleanup()
	}
}

func newItem(title string, price int64) Item {
	return Item{Title: title, Price: decimal.NewFromInt(price)}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should store a backlog item without order", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, newItem("Monitor", 300), false)

		// then
		require.NoError(t, err)
		assert.Nil(t, created.Order)
	})

	t.Run("should number queued items sequentially from 1", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		first, err := service.Create(ctx, newItem("Monitor", 300), true)
		require.NoError(t, err)
		second, err := service.Create(ctx, newItem("Desk", 150), true)
		require.NoError(t, err)

		// then
		require.NotNil(t, first.Order)
		require.NotNil(t, second.Order)
		assert.Equal(t, 1, *first.Order)
		assert.Equal(t, 2, *second.Order)
	})

	t.Run("should reject a missing title", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, newItem("  ", 300), false)

		assert.ErrorIs(t, err, ErrInvalidItem)
	})

	t.Run("should reject a negative price", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, newItem("Monitor", -1), false)

		assert.ErrorIs(t, err, ErrInvalidItem)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(context.Background(), newItem("Monitor", 300), false)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_MoveToQueueAndBack(t *testing.T) {
	t.Run("promote then demote should leave no order behind", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		backlogItem, err := service.Create(ctx, newItem("Monitor", 300), false)
		require.NoError(t, err)
		queued, err := service.Create(ctx, newItem("Desk", 150), true)
		require.NoError(t, err)

		// when
		require.NoError(t, service.MoveToQueue(ctx, backlogItem.ID))
		require.NoError(t, service.MoveToBacklog(ctx, backlogItem.ID))

		// then
		restored, err := itemRepoStub.FindById(ctx, 1, backlogItem.ID)
		require.NoError(t, err)
		assert.Nil(t, restored.Order)

		// the other item's order is untouched
		other, err := itemRepoStub.FindById(ctx, 1, queued.ID)
		require.NoError(t, err)
		require.NotNil(t, other.Order)
		assert.Equal(t, 1, *other.Order)
	})

	t.Run("promote should append after the highest order", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, newItem("Desk", 150), true)
		require.NoError(t, err)
		backlogItem, err := service.Create(ctx, newItem("Monitor", 300), false)
		require.NoError(t, err)

		require.NoError(t, service.MoveToQueue(ctx, backlogItem.ID))

		promoted, err := itemRepoStub.FindById(ctx, 1, backlogItem.ID)
		require.NoError(t, err)
		require.NotNil(t, promoted.Order)
		assert.Equal(t, 2, *promoted.Order)
	})

	t.Run("promote of a queued item should be a no-op", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		queued, err := service.Create(ctx, newItem("Desk", 150), true)
		require.NoError(t, err)

		require.NoError(t, service.MoveToQueue(ctx, queued.ID))

		unchanged, err := itemRepoStub.FindById(ctx, 1, queued.ID)
		require.NoError(t, err)
		require.NotNil(t, unchanged.Order)
		assert.Equal(t, 1, *unchanged.Order)
	})

	t.Run("demote of a missing item should be a no-op", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		assert.NoError(t, service.MoveToBacklog(ctx, 12345))
	})
}

func TestServiceImpl_MoveUpDown(t *testing.T) {
	orderOf := func(t *testing.T, id int) int {
		t.Helper()
		found, err := itemRepoStub.FindById(ctx, 1, id)
		require.NoError(t, err)
		require.NotNil(t, found.Order)
		return *found.Order
	}

	t.Run("moveUp on the first item should be a no-op", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		first, err := service.Create(ctx, newItem("A", 10), true)
		require.NoError(t, err)
		_, err = service.Create(ctx, newItem("B", 20), true)
		require.NoError(t, err)

		require.NoError(t, service.MoveUp(ctx, first.ID))

		assert.Equal(t, 1, orderOf(t, first.ID))
	})

	t.Run("moveUp then moveDown should restore the original order", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		a, err := service.Create(ctx, newItem("A", 10), true)
		require.NoError(t, err)
		b, err := service.Create(ctx, newItem("B", 20), true)
		require.NoError(t, err)
		c, err := service.Create(ctx, newItem("C", 30), true)
		require.NoError(t, err)

		require.NoError(t, service.MoveUp(ctx, b.ID))
		assert.Equal(t, 2, orderOf(t, a.ID))
		assert.Equal(t, 1, orderOf(t, b.ID))

		require.NoError(t, service.MoveDown(ctx, b.ID))
		assert.Equal(t, 1, orderOf(t, a.ID))
		assert.Equal(t, 2, orderOf(t, b.ID))
		assert.Equal(t, 3, orderOf(t, c.ID))
	})

	t.Run("moveDown should swap gap order values without renumbering", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		five := 5
		seven := 7
		a, err := itemRepoStub.Store(ctx, 1, Item{Title: "A", Price: decimal.NewFromInt(10), Order: &five})
		require.NoError(t, err)
		b, err := itemRepoStub.Store(ctx, 1, Item{Title: "B", Price: decimal.NewFromInt(20), Order: &seven})
		require.NoError(t, err)

		require.NoError(t, service.MoveDown(ctx, a))

		assert.Equal(t, 7, orderOf(t, a))
		assert.Equal(t, 5, orderOf(t, b))
	})

	t.Run("moveUp should skip obtained neighbours", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		one, two, three := 1, 2, 3
		a, err := itemRepoStub.Store(ctx, 1, Item{Title: "A", Price: decimal.NewFromInt(10), Order: &one})
		require.NoError(t, err)
		obtained, err := itemRepoStub.Store(ctx, 1, Item{Title: "B", Price: decimal.NewFromInt(20), Order: &two, Obtained: true})
		require.NoError(t, err)
		c, err := itemRepoStub.Store(ctx, 1, Item{Title: "C", Price: decimal.NewFromInt(30), Order: &three})
		require.NoError(t, err)

		require.NoError(t, service.MoveUp(ctx, c))

		// C swapped with A; the obtained item kept its order value
		assert.Equal(t, 3, orderOf(t, a))
		assert.Equal(t, 2, orderOf(t, obtained))
		assert.Equal(t, 1, orderOf(t, c))
	})

	t.Run("move on a backlog item should be a no-op", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		backlogItem, err := service.Create(ctx, newItem("A", 10), false)
		require.NoError(t, err)

		require.NoError(t, service.MoveUp(ctx, backlogItem.ID))
		require.NoError(t, service.MoveDown(ctx, backlogItem.ID))

		found, err := itemRepoStub.FindById(ctx, 1, backlogItem.ID)
		require.NoError(t, err)
		assert.Nil(t, found.Order)
	})

	t.Run("move on a deleted item should be a no-op", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		assert.NoError(t, service.MoveUp(ctx, 9999))
	})
}

func TestServiceImpl_SetObtained(t *testing.T) {
	t.Run("should flip the flag and publish the price change", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, newItem("Monitor", 300), true)
		require.NoError(t, err)

		var received []event_bus.ItemObtained
		event_bus.SubscribeTyped[event_bus.ItemObtained](bus, event_bus.ItemObtainedChanged,
			func(e event_bus.EventT[event_bus.ItemObtained]) error {
				received = append(received, e.Data)
				return nil
			})

		// when
		require.NoError(t, service.SetObtained(ctx, created.ID, true))

		// then
		stored, err := itemRepoStub.FindById(ctx, 1, created.ID)
		require.NoError(t, err)
		assert.True(t, stored.Obtained)
		// order is untouched by the obtained toggle
		require.NotNil(t, stored.Order)
		assert.Equal(t, 1, *stored.Order)

		require.Len(t, received, 1)
		assert.Equal(t, created.ID, received[0].ItemId)
		assert.True(t, received[0].Obtained)
		assert.Equal(t, "300", received[0].Price.String())
	})

	t.Run("should not publish when the flag already matches", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, newItem("Monitor", 300), true)
		require.NoError(t, err)

		published := 0
		event_bus.SubscribeTyped[event_bus.ItemObtained](bus, event_bus.ItemObtainedChanged,
			func(e event_bus.EventT[event_bus.ItemObtained]) error {
				published++
				return nil
			})

		require.NoError(t, service.SetObtained(ctx, created.ID, false))

		assert.Equal(t, 0, published)
	})

	t.Run("should surface a failing balance adjustment", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, newItem("Monitor", 300), true)
		require.NoError(t, err)

		event_bus.SubscribeTyped[event_bus.ItemObtained](bus, event_bus.ItemObtainedChanged,
			func(e event_bus.EventT[event_bus.ItemObtained]) error {
				return assert.AnError
			})

		err = service.SetObtained(ctx, created.ID, true)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "balance adjustment failed")
	})

	t.Run("should report a missing item", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		err := service.SetObtained(ctx, 4242, true)

		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestServiceImpl_ListQueue(t *testing.T) {
	t.Run("should order obtained items after pending ones", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		one, two, three := 1, 2, 3
		_, err := itemRepoStub.Store(ctx, 1, Item{Title: "A", Price: decimal.NewFromInt(10), Order: &one, Obtained: true})
		require.NoError(t, err)
		_, err = itemRepoStub.Store(ctx, 1, Item{Title: "B", Price: decimal.NewFromInt(20), Order: &two})
		require.NoError(t, err)
		_, err = itemRepoStub.Store(ctx, 1, Item{Title: "C", Price: decimal.NewFromInt(30), Order: &three})
		require.NoError(t, err)

		queue, err := service.ListQueue(ctx)

		require.NoError(t, err)
		require.Len(t, queue, 3)
		assert.Equal(t, "B", queue[0].Title)
		assert.Equal(t, "C", queue[1].Title)
		assert.Equal(t, "A", queue[2].Title)
	})
}
