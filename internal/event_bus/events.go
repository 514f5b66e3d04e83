package event_bus

import "github.com/shopspring/decimal"

// ItemObtainedChanged is published when an item's obtained flag flips.
// The budget package adjusts the current balance in response.
const ItemObtainedChanged EventType = "item.obtained.changed"

type ItemObtained struct {
	ItemId   int
	Title    string
	Price    decimal.Decimal
	Obtained bool
}
