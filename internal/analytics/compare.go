package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisplayDuration is how long the presentation layer should keep a
// comparison toast visible. The timer itself belongs to the caller.
const DisplayDuration = 5 * time.Second

// Direction classifies a day-over-day spending delta.
type Direction string

const (
	// DirectionWorse means today's spending exceeds yesterday's.
	DirectionWorse Direction = "worse"
	// DirectionBetter means today's spending is at or below yesterday's.
	DirectionBetter Direction = "better"
)

// Comparison is the day-over-day spending delta shown to the user.
type Comparison struct {
	Direction Direction
	// Percent is the absolute percentage change rounded to one decimal.
	Percent decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Compare computes the day-over-day delta between two totals. A zero total
// on either side means there is no meaningful baseline, so no comparison is
// emitted; division by zero never happens here.
func Compare(todayTotal, yesterdayTotal decimal.Decimal) *Comparison {
	if todayTotal.IsZero() || yesterdayTotal.IsZero() {
		return nil
	}

	if todayTotal.GreaterThan(yesterdayTotal) {
		return &Comparison{
			Direction: DirectionWorse,
			Percent:   percentOf(todayTotal.Sub(yesterdayTotal), yesterdayTotal),
		}
	}
	return &Comparison{
		Direction: DirectionBetter,
		Percent:   percentOf(yesterdayTotal.Sub(todayTotal), yesterdayTotal),
	}
}

func percentOf(delta, baseline decimal.Decimal) decimal.Decimal {
	return delta.Mul(hundred).DivRound(baseline, 1)
}
