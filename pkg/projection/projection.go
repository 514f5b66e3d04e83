package projection

import (
	"github.com/buckr/buckr/pkg/item"
	"github.com/shopspring/decimal"
)

// ItemProjection is the derived affordability view of one queue item.
// It is recomputed on every read and never persisted.
type ItemProjection struct {
	Item item.Item
	// PriceInMonths is how many months of saving the item costs on its own.
	PriceInMonths decimal.Decimal
	// CumulativePrice sums the prices of this and all preceding pending items.
	// Obtained items do not contribute; their cost already left the balance.
	CumulativePrice decimal.Decimal
	// RemainingCost is the part of CumulativePrice the balance does not cover yet.
	RemainingCost         decimal.Decimal
	RemainingTimeInMonths decimal.Decimal
	// IsAvailable means the balance covers this item and everything queued before it.
	IsAvailable          bool
	IsAvailableNextMonth bool
	// QueuePosition counts pending items only, 1-based. Nil for obtained items.
	QueuePosition *int
	// IsLastPending marks the final pending item, for the terminal marker in the UI.
	IsLastPending bool
}

// Summary aggregates the whole-queue figures shown next to the queue itself.
type Summary struct {
	// AlreadySpent sums the prices of all obtained items, queue and backlog alike.
	AlreadySpent decimal.Decimal
	// MissingAmount is the total pending queue price not covered by the balance.
	MissingAmount decimal.Decimal
	// TimeToFinish is MissingAmount expressed in months of saving.
	TimeToFinish decimal.Decimal
}

// Project derives the affordability metrics for every item of the buy queue.
// The input order is authoritative and must already reflect the queue order.
// The computation is pure; nothing is mutated.
func Project(orderedQueue []item.Item, currentBalance, sparing decimal.Decimal) []ItemProjection {
	lastPending := -1
	for idx, it := range orderedQueue {
		if !it.Obtained {
			lastPending = idx
		}
	}

	projections := make([]ItemProjection, 0, len(orderedQueue))
	cumulative := decimal.Zero
	position := 0
	for idx, it := range orderedQueue {
		projection := ItemProjection{
			Item:          it,
			PriceInMonths: monthsFor(it.Price, sparing),
		}
		if !it.Obtained {
			cumulative = cumulative.Add(it.Price)
			position++
			pos := position
			projection.QueuePosition = &pos
			projection.IsLastPending = idx == lastPending
		}
		projection.CumulativePrice = cumulative
		projection.RemainingCost = decimal.Max(decimal.Zero, cumulative.Sub(currentBalance))
		projection.RemainingTimeInMonths = monthsFor(projection.RemainingCost, sparing)
		projection.IsAvailable = !it.Obtained && cumulative.LessThanOrEqual(currentBalance)
		projection.IsAvailableNextMonth = !it.Obtained && !projection.IsAvailable &&
			cumulative.LessThanOrEqual(currentBalance.Add(sparing))
		projections = append(projections, projection)
	}
	return projections
}

// Summarize computes the whole-plan figures over both item collections.
func Summarize(queue []item.Item, backlog []item.Item, currentBalance, sparing decimal.Decimal) Summary {
	alreadySpent := decimal.Zero
	pendingQueueTotal := decimal.Zero
	for _, it := range queue {
		if it.Obtained {
			alreadySpent = alreadySpent.Add(it.Price)
		} else {
			pendingQueueTotal = pendingQueueTotal.Add(it.Price)
		}
	}
	for _, it := range backlog {
		if it.Obtained {
			alreadySpent = alreadySpent.Add(it.Price)
		}
	}

	missing := decimal.Max(decimal.Zero, pendingQueueTotal.Sub(currentBalance))
	return Summary{
		AlreadySpent:  alreadySpent,
		MissingAmount: missing,
		TimeToFinish:  monthsFor(missing, sparing),
	}
}

// monthsFor converts an amount into months of saving. A non-positive sparing
// never reaches the division; it yields zero months instead.
func monthsFor(amount, sparing decimal.Decimal) decimal.Decimal {
	if !sparing.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(sparing)
}
