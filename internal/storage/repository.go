package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

// Repository is the SQLite-backed record store. Timestamps are persisted as
// unix nanoseconds and amounts as exact decimal strings.
type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single connection: keeps in-memory databases coherent and sidesteps
	// SQLite writer contention.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount, description, category, date, roast)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Amount.String(), e.Description, e.Category, e.Date.UnixNano(), e.Roast)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"user_id", e.UserID,
		"amount", e.Amount.String(),
		"category", e.Category)

	return e, nil
}

const expenseColumns = `id, user_id, amount, description, category, date, roast`

func (r *Repository) GetExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE user_id = ?
		 ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

func (r *Repository) GetExpensesByRange(ctx context.Context, userID string, rng core.Range, now time.Time) ([]core.Expense, error) {
	start, end := rng.Resolve(now)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC, id DESC`,
		userID, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query expenses by range: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// GetExpense retrieves a single expense by id, regardless of owner. Used by
// the export worker when resolving queued messages.
func (r *Repository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("query expense: %w", err)
	}
	return e, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	var (
		p          core.UserProfile
		lastActive int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, avatar_url, total_points, streak_days, level, next_level_points, last_active
		 FROM user_profiles WHERE id = ?`, userID).
		Scan(&p.ID, &p.Name, &p.Email, &p.AvatarURL, &p.TotalPoints, &p.StreakDays, &p.Level, &p.NextLevelPoints, &lastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserProfile{}, fmt.Errorf("profile %s: %w", userID, store.ErrNotFound)
	}
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("query profile: %w", err)
	}
	if lastActive > 0 {
		p.LastActive = time.Unix(0, lastActive)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, points, unlocked, progress, max_progress
		 FROM achievements WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Points, &a.Unlocked, &a.Progress, &a.MaxProgress); err != nil {
			return core.UserProfile{}, fmt.Errorf("scan achievement: %w", err)
		}
		p.Achievements = append(p.Achievements, a)
	}
	if err := rows.Err(); err != nil {
		return core.UserProfile{}, fmt.Errorf("iterate achievements: %w", err)
	}

	return p, nil
}

func (r *Repository) SaveProfile(ctx context.Context, profile core.UserProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var lastActive int64
	if !profile.LastActive.IsZero() {
		lastActive = profile.LastActive.UnixNano()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_profiles (id, name, email, avatar_url, total_points, streak_days, level, next_level_points, last_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   email = excluded.email,
		   avatar_url = excluded.avatar_url,
		   total_points = excluded.total_points,
		   streak_days = excluded.streak_days,
		   level = excluded.level,
		   next_level_points = excluded.next_level_points,
		   last_active = excluded.last_active`,
		profile.ID, profile.Name, profile.Email, profile.AvatarURL,
		profile.TotalPoints, profile.StreakDays, profile.Level, profile.NextLevelPoints, lastActive)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	for _, a := range profile.Achievements {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO achievements (user_id, id, title, description, points, unlocked, progress, max_progress)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, id) DO UPDATE SET
			   title = excluded.title,
			   description = excluded.description,
			   points = excluded.points,
			   unlocked = excluded.unlocked,
			   progress = excluded.progress,
			   max_progress = excluded.max_progress`,
			profile.ID, a.ID, a.Title, a.Description, a.Points, a.Unlocked, a.Progress, a.MaxProgress)
		if err != nil {
			return fmt.Errorf("upsert achievement %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (r *Repository) GetTasks(ctx context.Context, userID string) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, points, completed FROM tasks WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		var t core.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Points, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("tasks for %s: %w", userID, store.ErrNotFound)
	}
	return tasks, nil
}

func (r *Repository) SaveTasks(ctx context.Context, userID string, tasks []core.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tasks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tasks (user_id, id, title, points, completed)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, id) DO UPDATE SET
			   title = excluded.title,
			   points = excluded.points,
			   completed = excluded.completed`,
			userID, t.ID, t.Title, t.Points, t.Completed)
		if err != nil {
			return fmt.Errorf("upsert task %d: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

func (r *Repository) ResetAllTasks(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET completed = 0 WHERE completed = 1`)
	if err != nil {
		return fmt.Errorf("reset tasks: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "Daily tasks reset", "tasks_cleared", n)
	}
	return nil
}

// GetPendingExports returns expenses not yet pushed to the export target,
// oldest first, skipping records already marked as failing.
func (r *Repository) GetPendingExports(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE exported = 0 AND export_error = 0
		 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending exports: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// MarkExported marks an expense as successfully exported.
func (r *Repository) MarkExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET exported = 1, export_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// MarkExportError flags an expense whose export failed so periodic rescans
// do not retry it in a tight loop.
func (r *Repository) MarkExportError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with export error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e      core.Expense
		amount string
		date   int64
	)
	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.Description, &e.Category, &date, &e.Roast); err != nil {
		return core.Expense{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	e.Amount = parsed
	e.Date = time.Unix(0, date)

	return e, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
