package item

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultIcon is the placeholder glyph used when an item has no icon.
const DefaultIcon = "📦"

type Item struct {
	ID          int
	Title       string
	Price       decimal.Decimal
	Icon        string
	Url         string
	Description string
	Obtained    bool
	// Order is the queue sort key. Nil means the item sits in the backlog.
	// Values need not be contiguous; only their relative order matters.
	Order *int
}

// IsQueued reports whether the item is part of the buy queue.
func (i Item) IsQueued() bool {
	return i.Order != nil
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidItem)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	}
	return nil
}
