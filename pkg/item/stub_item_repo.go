package item

import (
	"context"
	"sort"
)

type StubItemRepo struct {
	nextId int
	data   map[int]Item
}

func NewStubItemRepo() *StubItemRepo {
	nextId := 2
	data := map[int]Item{}
	return &StubItemRepo{nextId, data}
}

func (s *StubItemRepo) Store(ctx context.Context, userId int, item Item) (int, error) {
	s.nextId++
	item.ID = s.nextId
	s.data[item.ID] = item
	return item.ID, nil
}

func (s *StubItemRepo) FindById(ctx context.Context, userId int, itemId int) (Item, error) {
	item, ok := s.data[itemId]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (s *StubItemRepo) FindQueued(ctx context.Context, userId int) ([]Item, error) {
	var items []Item
	for _, item := range s.data {
		if item.IsQueued() {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Obtained != items[j].Obtained {
			return !items[i].Obtained
		}
		return *items[i].Order < *items[j].Order
	})
	return items, nil
}

func (s *StubItemRepo) FindBacklog(ctx context.Context, userId int) ([]Item, error) {
	var items []Item
	for _, item := range s.data {
		if !item.IsQueued() {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *StubItemRepo) Update(ctx context.Context, userId int, item Item) (bool, error) {
	existing, ok := s.data[item.ID]
	if !ok {
		return false, nil
	}
	existing.Title = item.Title
	existing.Price = item.Price
	existing.Icon = item.Icon
	existing.Url = item.Url
	existing.Description = item.Description
	s.data[item.ID] = existing
	return true, nil
}

func (s *StubItemRepo) Delete(ctx context.Context, userId int, itemId int) (bool, error) {
	if _, ok := s.data[itemId]; !ok {
		return false, nil
	}
	delete(s.data, itemId)
	return true, nil
}

func (s *StubItemRepo) SetObtained(ctx context.Context, userId int, itemId int, obtained bool) (bool, error) {
	item, ok := s.data[itemId]
	if !ok {
		return false, nil
	}
	item.Obtained = obtained
	s.data[itemId] = item
	return true, nil
}

func (s *StubItemRepo) SetOrder(ctx context.Context, userId int, itemId int, order *int) (bool, error) {
	item, ok := s.data[itemId]
	if !ok {
		return false, nil
	}
	if order != nil {
		value := *order
		item.Order = &value
	} else {
		item.Order = nil
	}
	s.data[itemId] = item
	return true, nil
}

func (s *StubItemRepo) SwapOrder(ctx context.Context, userId int, firstId int, secondId int) (bool, error) {
	first, ok := s.data[firstId]
	if !ok || !first.IsQueued() {
		return false, nil
	}
	second, ok := s.data[secondId]
	if !ok || !second.IsQueued() {
		return false, nil
	}
	first.Order, second.Order = second.Order, first.Order
	s.data[firstId] = first
	s.data[secondId] = second
	return true, nil
}

func (s *StubItemRepo) FindMaxOrder(ctx context.Context, userId int) (int, error) {
	maxOrder := 0
	for _, item := range s.data {
		if item.IsQueued() && *item.Order > maxOrder {
			maxOrder = *item.Order
		}
	}
	return maxOrder, nil
}

func (s *StubItemRepo) FindPreviousQueued(ctx context.Context, userId int, order int) (Item, bool, error) {
	var best Item
	found := false
	for _, item := range s.data {
		if !item.IsQueued() || item.Obtained || *item.Order >= order {
			continue
		}
		if !found || *item.Order > *best.Order {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (s *StubItemRepo) FindNextQueued(ctx context.Context, userId int, order int) (Item, bool, error) {
	var best Item
	found := false
	for _, item := range s.data {
		if !item.IsQueued() || item.Obtained || *item.Order <= order {
			continue
		}
		if !found || *item.Order < *best.Order {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (s *StubItemRepo) Cleanup() {
	s.data = map[int]Item{}
}
