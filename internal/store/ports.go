// Package store defines the record-store contract the engine is built
// against. Implementations live in internal/store/memory and
// internal/storage (SQLite).
package store

import (
	"context"
	"errors"
	"time"

	"spendwise/internal/core"
)

// ErrNotFound is returned when a requested record does not exist. A missing
// profile is not an application error: callers materialize a default.
var ErrNotFound = errors.New("not found")

// ExpenseStore persists expense records for a user.
type ExpenseStore interface {
	// AddExpense stores a record and echoes it back with the assigned id.
	AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)

	// GetExpenses returns all of a user's expenses, newest first.
	GetExpenses(ctx context.Context, userID string) ([]core.Expense, error)

	// GetExpensesByRange returns the user's expenses inside the window
	// resolved from rng at now, newest first.
	GetExpensesByRange(ctx context.Context, userID string, rng core.Range, now time.Time) ([]core.Expense, error)
}

// ProfileStore persists gamification profiles.
type ProfileStore interface {
	// GetProfile returns the user's profile or ErrNotFound.
	GetProfile(ctx context.Context, userID string) (core.UserProfile, error)

	// SaveProfile upserts the profile, achievements included.
	SaveProfile(ctx context.Context, profile core.UserProfile) error
}

// TaskStore persists the daily task set per user.
type TaskStore interface {
	// GetTasks returns the user's task set or ErrNotFound when never seeded.
	GetTasks(ctx context.Context, userID string) ([]core.Task, error)

	// SaveTasks upserts the full task set for a user.
	SaveTasks(ctx context.Context, userID string, tasks []core.Task) error

	// ResetAllTasks clears completion flags for every user. Called by the
	// worker at the daily rollover.
	ResetAllTasks(ctx context.Context) error
}

// Store is the full record-store surface consumed by the services layer.
type Store interface {
	ExpenseStore
	ProfileStore
	TaskStore

	Close() error
}
