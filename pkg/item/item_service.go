package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/buckr/buckr/internal/event_bus"
	"github.com/buckr/buckr/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrItemNotFound = errors.New("item not found")
var ErrInvalidItem = errors.New("item data is invalid")

// ErrOrderConflict signals that an order swap kept failing after a retry.
// The caller should re-read the queue before trying again.
var ErrOrderConflict = errors.New("conflicting queue reorder")

type Service interface {
	Create(ctx context.Context, item Item, queued bool) (Item, error)
	Update(ctx context.Context, item Item) (Item, error)
	Delete(ctx context.Context, id int) (bool, error)
	// SetObtained flips the obtained flag and notifies the budget so the
	// current balance absorbs (or refunds) the item's price.
	SetObtained(ctx context.Context, id int, obtained bool) error
	MoveUp(ctx context.Context, id int) error
	MoveDown(ctx context.Context, id int) error
	MoveToQueue(ctx context.Context, id int) error
	MoveToBacklog(ctx context.Context, id int) error
	ListQueue(ctx context.Context) ([]Item, error)
	ListBacklog(ctx context.Context) ([]Item, error)
}

type ServiceImpl struct {
	repo     Repo
	eventBus *event_bus.EventBus
}

func NewItemService(repo Repo, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) Create(ctx context.Context, item Item, queued bool) (Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}

	item.Obtained = false
	item.Order = nil
	if queued {
		maxOrder, err := s.repo.FindMaxOrder(ctx, userId)
		if err != nil {
			return Item{}, err
		}
		order := maxOrder + 1
		item.Order = &order
	}

	id, err := s.repo.Store(ctx, userId, item)
	if err != nil {
		return Item{}, err
	}
	item.ID = id

	return item, nil
}

func (s *ServiceImpl) Update(ctx context.Context, item Item) (Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}

	updated, err := s.repo.Update(ctx, userId, item)
	if err != nil {
		return Item{}, err
	}
	if !updated {
		log.Warnf("item not updated, probably because it does not exist (%d) or the user (%d) is not the owner", item.ID, userId)
		return Item{}, ErrItemNotFound
	}
	return s.repo.FindById(ctx, userId, item.ID)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("item not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
		return false, ErrItemNotFound
	}
	return true, nil
}

func (s *ServiceImpl) SetObtained(ctx context.Context, id int, obtained bool) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	current, err := s.repo.FindById(ctx, userId, id)
	if errors.Is(err, ErrItemNotFound) {
		return ErrItemNotFound
	}
	if err != nil {
		return err
	}
	if current.Obtained == obtained {
		log.Debugf("item %d already has obtained=%v, nothing to do", id, obtained)
		return nil
	}

	updated, err := s.repo.SetObtained(ctx, userId, id, obtained)
	if err != nil {
		return err
	}
	if !updated {
		return ErrItemNotFound
	}

	// The obtained flag and the balance adjustment form one logical unit.
	// The bus dispatches synchronously, so a failing subscriber surfaces here.
	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.ItemObtainedChanged, event_bus.ItemObtained{
		ItemId:   current.ID,
		Title:    current.Title,
		Price:    current.Price,
		Obtained: obtained,
	}))
	if err != nil {
		return fmt.Errorf("item %d marked obtained=%v but balance adjustment failed: %w", id, obtained, err)
	}
	return nil
}

func (s *ServiceImpl) MoveUp(ctx context.Context, id int) error {
	return s.move(ctx, id, s.repo.FindPreviousQueued)
}

func (s *ServiceImpl) MoveDown(ctx context.Context, id int) error {
	return s.move(ctx, id, s.repo.FindNextQueued)
}

func (s *ServiceImpl) move(ctx context.Context, id int,
	findNeighbour func(ctx context.Context, userId int, order int) (Item, bool, error)) error {

	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	current, err := s.repo.FindById(ctx, userId, id)
	if errors.Is(err, ErrItemNotFound) {
		log.Debugf("item %d does not exist, ignoring move", id)
		return nil
	}
	if err != nil {
		return err
	}
	if !current.IsQueued() || current.Obtained {
		log.Debugf("item %d is not a pending queue item, ignoring move", id)
		return nil
	}

	neighbour, found, err := findNeighbour(ctx, userId, *current.Order)
	if err != nil {
		return err
	}
	if !found {
		// Already at the edge of the queue.
		return nil
	}

	swapped, err := s.repo.SwapOrder(ctx, userId, current.ID, neighbour.ID)
	if err != nil {
		log.Warnf("order swap of items %d and %d failed, retrying once: %v", current.ID, neighbour.ID, err)
		swapped, err = s.repo.SwapOrder(ctx, userId, current.ID, neighbour.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		}
	}
	if !swapped {
		log.Debugf("items %d and %d changed state during reorder, nothing swapped", current.ID, neighbour.ID)
	}
	return nil
}

func (s *ServiceImpl) MoveToQueue(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	current, err := s.repo.FindById(ctx, userId, id)
	if errors.Is(err, ErrItemNotFound) {
		log.Debugf("item %d does not exist, ignoring promote", id)
		return nil
	}
	if err != nil {
		return err
	}
	if current.IsQueued() {
		log.Debugf("item %d is already queued, ignoring promote", id)
		return nil
	}

	maxOrder, err := s.repo.FindMaxOrder(ctx, userId)
	if err != nil {
		return err
	}
	order := maxOrder + 1
	_, err = s.repo.SetOrder(ctx, userId, id, &order)
	return err
}

func (s *ServiceImpl) MoveToBacklog(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	current, err := s.repo.FindById(ctx, userId, id)
	if errors.Is(err, ErrItemNotFound) {
		log.Debugf("item %d does not exist, ignoring demote", id)
		return nil
	}
	if err != nil {
		return err
	}
	if !current.IsQueued() {
		log.Debugf("item %d is already in the backlog, ignoring demote", id)
		return nil
	}

	// Remaining queue items keep their sort keys; gaps are fine.
	_, err = s.repo.SetOrder(ctx, userId, id, nil)
	return err
}

func (s *ServiceImpl) ListQueue(ctx context.Context) ([]Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.FindQueued(ctx, userId)
}

func (s *ServiceImpl) ListBacklog(ctx context.Context) ([]Item, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.FindBacklog(ctx, userId)
}
