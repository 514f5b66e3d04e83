package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSparing is the monthly saving amount assumed before the user sets one.
var DefaultSparing = decimal.NewFromInt(10)

// Budget is the singleton-per-user savings record. It is created lazily by the
// first balance-affecting write; reads before that see Default().
type Budget struct {
	UserId         int
	Sparing        decimal.Decimal
	CurrentBalance decimal.Decimal
	LastIncrement  time.Time
}

func Default(userId int) Budget {
	return Budget{
		UserId:         userId,
		Sparing:        DefaultSparing,
		CurrentBalance: decimal.Zero,
	}
}
