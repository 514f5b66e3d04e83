package projection

import (
	"fmt"
	"testing"

	"github.com/buckr/buckr/pkg/item"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// Property checks over randomly generated pending queues.
func TestProject_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 12).Draw(t, "count")
		queue := make([]item.Item, 0, count)
		for i := 0; i < count; i++ {
			price := rapid.Int64Range(0, 10_000).Draw(t, fmt.Sprintf("price%d", i))
			queue = append(queue, queueItem(i+1, price, i+1, false))
		}
		currentBalance := decimal.NewFromInt(rapid.Int64Range(0, 50_000).Draw(t, "balance"))
		sparing := decimal.NewFromInt(rapid.Int64Range(1, 1_000).Draw(t, "sparing"))

		projections := Project(queue, currentBalance, sparing)
		if len(projections) != len(queue) {
			t.Fatalf("expected %d projections, got %d", len(queue), len(projections))
		}

		runningSum := decimal.Zero
		previous := decimal.Zero
		for i, projection := range projections {
			runningSum = runningSum.Add(queue[i].Price)

			// cumulative price equals the running sum of prices
			if !projection.CumulativePrice.Equal(runningSum) {
				t.Fatalf("item %d: cumulative price %s != running sum %s",
					i, projection.CumulativePrice, runningSum)
			}
			// and is non-decreasing along the sequence
			if projection.CumulativePrice.LessThan(previous) {
				t.Fatalf("item %d: cumulative price decreased from %s to %s",
					i, previous, projection.CumulativePrice)
			}
			previous = projection.CumulativePrice

			// remainingCost = max(0, cumulativePrice - currentBalance)
			expectedRemaining := decimal.Max(decimal.Zero, projection.CumulativePrice.Sub(currentBalance))
			if !projection.RemainingCost.Equal(expectedRemaining) {
				t.Fatalf("item %d: remaining cost %s != expected %s",
					i, projection.RemainingCost, expectedRemaining)
			}

			// isAvailable iff nothing remains to be saved
			if projection.IsAvailable != projection.RemainingCost.IsZero() {
				t.Fatalf("item %d: isAvailable=%v but remaining cost is %s",
					i, projection.IsAvailable, projection.RemainingCost)
			}

			// pending items are numbered 1..n in sequence order
			if projection.QueuePosition == nil || *projection.QueuePosition != i+1 {
				t.Fatalf("item %d: unexpected queue position %v", i, projection.QueuePosition)
			}
		}

		// exactly the final item carries the terminal marker
		for i, projection := range projections {
			if projection.IsLastPending != (i == len(projections)-1) {
				t.Fatalf("item %d: unexpected isLastPending=%v", i, projection.IsLastPending)
			}
		}
	})
}
