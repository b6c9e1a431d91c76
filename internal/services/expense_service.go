package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/roast"
	"spendwise/internal/store"
)

// ExportPublisher queues an expense id for asynchronous export. The AMQP
// client satisfies this; a nil publisher disables export entirely.
type ExportPublisher interface {
	PublishExpenseExport(ctx context.Context, id int64) error
}

// ExpenseService owns the expense write path and the derived read views
// (stats, comparison). Stats are cached per user and range; any write for a
// user invalidates all of that user's cached ranges.
type ExpenseService struct {
	store        store.Store
	publisher    ExportPublisher
	roaster      *roast.Generator
	gamification *GamificationService
	statsCache   *cache.LRU[analytics.Stats]
	now          func() time.Time
}

func NewExpenseService(
	st store.Store,
	publisher ExportPublisher,
	roaster *roast.Generator,
	gamification *GamificationService,
	statsCache *cache.LRU[analytics.Stats],
) *ExpenseService {
	if roaster == nil {
		roaster = roast.New(nil)
	}
	return &ExpenseService{
		store:        st,
		publisher:    publisher,
		roaster:      roaster,
		gamification: gamification,
		statsCache:   statsCache,
		now:          time.Now,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *ExpenseService) WithClock(now func() time.Time) *ExpenseService {
	s.now = now
	return s
}

// LogExpense validates, roasts and stores a new expense. The export publish
// and the gamification update run after the store write and never fail the
// request; their errors are logged and the stored expense is returned as-is.
func (s *ExpenseService) LogExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	e.Roast = s.roaster.Pick(e.Amount, e.Category)

	stored, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("store expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense logged",
		"expense_id", stored.ID,
		"user_id", stored.UserID,
		"amount", stored.Amount.String(),
		"category", stored.Category)

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseExport(ctx, stored.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to queue expense export",
				"expense_id", stored.ID,
				"error", err)
		}
	}

	if s.gamification != nil {
		if _, err := s.gamification.RecordExpense(ctx, stored.UserID); err != nil {
			slog.ErrorContext(ctx, "Failed to apply gamification update",
				"user_id", stored.UserID,
				"error", err)
		}
	}

	s.invalidateStats(stored.UserID)

	return stored, nil
}

// ListExpenses returns the user's expenses inside rng, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID string, rng core.Range) ([]core.Expense, error) {
	return s.store.GetExpensesByRange(ctx, userID, rng, s.now())
}

// Stats computes the aggregate view for one user and range, serving from
// the cache when a fresh entry exists.
func (s *ExpenseService) Stats(ctx context.Context, userID string, rng core.Range) (analytics.Stats, error) {
	key := statsCacheKey(userID, rng)
	if s.statsCache != nil {
		if stats, ok := s.statsCache.Get(key); ok {
			return stats, nil
		}
	}

	now := s.now()
	expenses, err := s.store.GetExpensesByRange(ctx, userID, rng, now)
	if err != nil {
		return analytics.Stats{}, fmt.Errorf("load expenses: %w", err)
	}

	stats := analytics.Aggregate(expenses, rng, now)
	if s.statsCache != nil {
		s.statsCache.Set(key, stats)
	}
	return stats, nil
}

// Comparison compares today's total against yesterday's. It returns nil
// when either day has no spending, matching analytics.Compare.
func (s *ExpenseService) Comparison(ctx context.Context, userID string) (*analytics.Comparison, error) {
	today, err := s.Stats(ctx, userID, core.RangeToday)
	if err != nil {
		return nil, err
	}
	yesterday, err := s.Stats(ctx, userID, core.RangeYesterday)
	if err != nil {
		return nil, err
	}
	return analytics.Compare(today.Total, yesterday.Total), nil
}

func (s *ExpenseService) invalidateStats(userID string) {
	if s.statsCache == nil {
		return
	}
	if removed := s.statsCache.DeletePrefix(userID + ":"); removed > 0 {
		slog.Debug("Invalidated cached stats", "user_id", userID, "entries", removed)
	}
}

func statsCacheKey(userID string, rng core.Range) string {
	return userID + ":" + string(rng)
}
