// Package analytics computes derived spending statistics from raw expense
// records. Everything here is pure: callers own the records and the clock.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// topCategoryLimit caps the ranking shown on the stats dashboard.
const topCategoryLimit = 3

// CategoryTotal pairs a category label with its summed amount.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Stats is the aggregate view of one user's spending inside a range.
type Stats struct {
	Range core.Range
	Total decimal.Decimal
	// ByCategory preserves first-seen category order.
	ByCategory []CategoryTotal
	// TopCategories is sorted descending by total, ties kept in first-seen
	// order, truncated to the top three.
	TopCategories []CategoryTotal
	// DailyAverage divides Total by the range's fixed day constant,
	// rounded to two decimal places.
	DailyAverage decimal.Decimal
	// Highest is the single largest expense in range, nil when the range
	// holds no expenses. The first occurrence wins on equal amounts.
	Highest *core.Expense
}

// Aggregate filters expenses to the window resolved from rng at now and
// computes totals, category rankings, the daily average and the extremum.
// An empty input yields zeroed stats, never an error. The caller is
// responsible for passing a single user's expenses.
func Aggregate(expenses []core.Expense, rng core.Range, now time.Time) Stats {
	stats := Stats{
		Range:        rng,
		Total:        decimal.Zero,
		DailyAverage: decimal.Zero,
	}

	index := make(map[string]int)
	for i := range expenses {
		e := expenses[i]
		if !rng.Contains(e.Date, now) {
			continue
		}

		stats.Total = stats.Total.Add(e.Amount)

		// Category keys are taken verbatim, case-sensitive.
		if pos, ok := index[e.Category]; ok {
			stats.ByCategory[pos].Total = stats.ByCategory[pos].Total.Add(e.Amount)
		} else {
			index[e.Category] = len(stats.ByCategory)
			stats.ByCategory = append(stats.ByCategory, CategoryTotal{Category: e.Category, Total: e.Amount})
		}

		if stats.Highest == nil || e.Amount.GreaterThan(stats.Highest.Amount) {
			highest := e
			stats.Highest = &highest
		}
	}

	stats.TopCategories = rankCategories(stats.ByCategory)
	stats.DailyAverage = stats.Total.DivRound(decimal.NewFromInt(int64(rng.Days())), 2)

	return stats
}

func rankCategories(byCategory []CategoryTotal) []CategoryTotal {
	ranked := make([]CategoryTotal, len(byCategory))
	copy(ranked, byCategory)

	// Stable sort keeps first-seen order as the tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})

	if len(ranked) > topCategoryLimit {
		ranked = ranked[:topCategoryLimit]
	}
	return ranked
}
