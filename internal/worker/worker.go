// Package worker runs the background side of the service: draining queued
// expense exports to the spreadsheet and resetting daily tasks at the
// calendar rollover.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/export"
	"spendwise/internal/store"
)

// ExportStore is the slice of the storage layer the export worker needs.
type ExportStore interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	GetPendingExports(ctx context.Context, limit int) ([]core.Expense, error)
	MarkExported(ctx context.Context, id int64) error
	MarkExportError(ctx context.Context, id int64) error
}

// Worker processes export messages and periodic maintenance.
type Worker struct {
	exports   ExportStore
	writer    export.ExpenseWriter
	tasks     store.TaskStore
	batchSize int
	now       func() time.Time
	lastReset time.Time
}

func New(exports ExportStore, writer export.ExpenseWriter, tasks store.TaskStore, batchSize int) *Worker {
	if batchSize <= 0 {
		batchSize = 50
	}
	w := &Worker{
		exports:   exports,
		writer:    writer,
		tasks:     tasks,
		batchSize: batchSize,
		now:       time.Now,
	}
	w.lastReset = w.now()
	return w
}

// WithClock overrides the worker clock. Used by tests.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	w.lastReset = now()
	return w
}

// HandleExportMessage exports the expense named by one queue message.
// A missing expense is dropped; a write failure is recorded on the row so
// the message is not requeued forever.
func (w *Worker) HandleExportMessage(ctx context.Context, msg *amqp.ExpenseExportMessage) error {
	expense, err := w.exports.GetExpense(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "Expense for export no longer exists", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense %d: %w", msg.ID, err)
	}

	return w.exportOne(ctx, expense)
}

// ProcessPendingExports re-scans the store for rows the queue path missed,
// e.g. publishes lost while the broker was down. Returns how many rows were
// exported.
func (w *Worker) ProcessPendingExports(ctx context.Context) (int, error) {
	pending, err := w.exports.GetPendingExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending exports: %w", err)
	}

	exported := 0
	for _, expense := range pending {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if err := w.exportOne(ctx, expense); err != nil {
			return exported, err
		}
		exported++
	}

	if exported > 0 {
		slog.InfoContext(ctx, "Processed pending exports", "count", exported)
	}
	return exported, nil
}

func (w *Worker) exportOne(ctx context.Context, expense core.Expense) error {
	ref, err := w.writer.Append(ctx, expense)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export expense",
			"id", expense.ID,
			"error", err)
		if markErr := w.exports.MarkExportError(ctx, expense.ID); markErr != nil {
			return fmt.Errorf("mark export error for %d: %w", expense.ID, markErr)
		}
		return nil
	}

	if err := w.exports.MarkExported(ctx, expense.ID); err != nil {
		return fmt.Errorf("mark exported for %d: %w", expense.ID, err)
	}

	slog.InfoContext(ctx, "Expense exported", "id", expense.ID, "ref", ref)
	return nil
}

// RunTaskReset clears daily task completion once per calendar day. It checks
// every interval and fires the first time it observes a new day.
func (w *Worker) RunTaskReset(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.MaybeResetTasks(ctx); err != nil {
				slog.ErrorContext(ctx, "Daily task reset failed", "error", err)
			}
		}
	}
}

// MaybeResetTasks resets all users' tasks if the calendar day has rolled
// over since the last reset. Reports errors from the store only; a no-op
// check is free.
func (w *Worker) MaybeResetTasks(ctx context.Context) error {
	now := w.now()
	if !resetDue(w.lastReset, now) {
		return nil
	}

	if err := w.tasks.ResetAllTasks(ctx); err != nil {
		return fmt.Errorf("reset tasks: %w", err)
	}
	w.lastReset = now

	slog.InfoContext(ctx, "Daily tasks reset", "day", now.Format("2006-01-02"))
	return nil
}

// resetDue reports whether a calendar day boundary lies between the last
// reset and now.
func resetDue(lastReset, now time.Time) bool {
	return !core.SameDay(lastReset, now)
}
