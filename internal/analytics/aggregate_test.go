package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

var statsNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

func expense(amount int64, category string, date time.Time) core.Expense {
	return core.Expense{
		Amount:      decimal.NewFromInt(amount),
		Description: category + " expense",
		Category:    category,
		Date:        date,
	}
}

func TestAggregate_WeekScenario(t *testing.T) {
	today := statsNow
	yesterday := statsNow.AddDate(0, 0, -1)

	expenses := []core.Expense{
		expense(500, "Food & Drinks", today),
		expense(200, "Transport", today),
		expense(300, "Food & Drinks", yesterday),
	}

	stats := Aggregate(expenses, core.RangeWeek, statsNow)

	if !stats.Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Total = %s, want 1000", stats.Total)
	}

	wantByCategory := []CategoryTotal{
		{Category: "Food & Drinks", Total: decimal.NewFromInt(800)},
		{Category: "Transport", Total: decimal.NewFromInt(200)},
	}
	if len(stats.ByCategory) != len(wantByCategory) {
		t.Fatalf("ByCategory has %d entries, want %d", len(stats.ByCategory), len(wantByCategory))
	}
	for i, want := range wantByCategory {
		got := stats.ByCategory[i]
		if got.Category != want.Category || !got.Total.Equal(want.Total) {
			t.Errorf("ByCategory[%d] = %s %s, want %s %s", i, got.Category, got.Total, want.Category, want.Total)
		}
	}

	if len(stats.TopCategories) != 2 {
		t.Fatalf("TopCategories has %d entries, want 2", len(stats.TopCategories))
	}
	if stats.TopCategories[0].Category != "Food & Drinks" || stats.TopCategories[1].Category != "Transport" {
		t.Errorf("TopCategories order = %v", stats.TopCategories)
	}

	if want := decimal.RequireFromString("142.86"); !stats.DailyAverage.Equal(want) {
		t.Errorf("DailyAverage = %s, want %s", stats.DailyAverage, want)
	}

	if stats.Highest == nil {
		t.Fatal("Highest = nil, want the 500 expense")
	}
	if !stats.Highest.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Highest.Amount = %s, want 500", stats.Highest.Amount)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	stats := Aggregate(nil, core.RangeMonth, statsNow)

	if !stats.Total.IsZero() {
		t.Errorf("Total = %s, want 0", stats.Total)
	}
	if !stats.DailyAverage.IsZero() {
		t.Errorf("DailyAverage = %s, want 0", stats.DailyAverage)
	}
	if stats.Highest != nil {
		t.Errorf("Highest = %v, want nil", stats.Highest)
	}
	if len(stats.ByCategory) != 0 || len(stats.TopCategories) != 0 {
		t.Errorf("expected empty category slices, got %v / %v", stats.ByCategory, stats.TopCategories)
	}
}

func TestAggregate_FiltersOutsideRange(t *testing.T) {
	expenses := []core.Expense{
		expense(100, "Bills", statsNow),
		expense(999, "Bills", statsNow.AddDate(0, 0, -10)),
	}

	stats := Aggregate(expenses, core.RangeWeek, statsNow)

	if !stats.Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Total = %s, want 100 (out-of-range expense must be excluded)", stats.Total)
	}
}

func TestAggregate_CategoryTotalsSumToTotal(t *testing.T) {
	expenses := []core.Expense{
		expense(123, "Food & Drinks", statsNow),
		expense(456, "Shopping", statsNow),
		expense(789, "Transport", statsNow.AddDate(0, 0, -2)),
		expense(42, "Shopping", statsNow.AddDate(0, 0, -3)),
	}

	stats := Aggregate(expenses, core.RangeWeek, statsNow)

	sum := decimal.Zero
	for _, ct := range stats.ByCategory {
		sum = sum.Add(ct.Total)
	}
	if !sum.Equal(stats.Total) {
		t.Errorf("sum(ByCategory) = %s, Total = %s", sum, stats.Total)
	}
}

func TestAggregate_TopCategoriesTruncatedAndSorted(t *testing.T) {
	expenses := []core.Expense{
		expense(10, "Food & Drinks", statsNow),
		expense(40, "Shopping", statsNow),
		expense(30, "Transport", statsNow),
		expense(20, "Bills", statsNow),
	}

	stats := Aggregate(expenses, core.RangeToday, statsNow)

	if len(stats.TopCategories) != 3 {
		t.Fatalf("TopCategories has %d entries, want 3", len(stats.TopCategories))
	}
	want := []string{"Shopping", "Transport", "Bills"}
	for i, category := range want {
		if stats.TopCategories[i].Category != category {
			t.Errorf("TopCategories[%d] = %s, want %s", i, stats.TopCategories[i].Category, category)
		}
	}
	// ByCategory keeps insertion order untouched.
	if stats.ByCategory[0].Category != "Food & Drinks" {
		t.Errorf("ByCategory[0] = %s, want Food & Drinks", stats.ByCategory[0].Category)
	}
}

func TestAggregate_TopCategoriesTieBreakIsFirstSeen(t *testing.T) {
	expenses := []core.Expense{
		expense(50, "Entertainment", statsNow),
		expense(50, "Bills", statsNow),
	}

	stats := Aggregate(expenses, core.RangeToday, statsNow)

	if stats.TopCategories[0].Category != "Entertainment" {
		t.Errorf("tie-break should keep first-seen order, got %s first", stats.TopCategories[0].Category)
	}
}

func TestAggregate_HighestTieBreakIsFirstEncountered(t *testing.T) {
	first := expense(500, "Shopping", statsNow)
	first.Description = "first"
	second := expense(500, "Bills", statsNow)
	second.Description = "second"

	stats := Aggregate([]core.Expense{first, second}, core.RangeToday, statsNow)

	if stats.Highest.Description != "first" {
		t.Errorf("Highest = %q, want the first encountered expense", stats.Highest.Description)
	}
}

func TestAggregate_CategoriesAreCaseSensitive(t *testing.T) {
	expenses := []core.Expense{
		expense(10, "food", statsNow),
		expense(20, "Food", statsNow),
	}

	stats := Aggregate(expenses, core.RangeToday, statsNow)

	if len(stats.ByCategory) != 2 {
		t.Errorf("ByCategory has %d entries, want 2 (no normalization)", len(stats.ByCategory))
	}
}
