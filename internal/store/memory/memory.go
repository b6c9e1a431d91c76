// Package memory provides an in-process store implementation used as the
// default backend and as the test double for the services layer.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	expenses []core.Expense
	profiles map[string]core.UserProfile
	tasks    map[string][]core.Task
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		nextID:   1,
		profiles: make(map[string]core.UserProfile),
		tasks:    make(map[string][]core.Task),
	}
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	s.nextID++
	s.expenses = append(s.expenses, e)

	return e, nil
}

func (s *Store) GetExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) GetExpensesByRange(_ context.Context, userID string, rng core.Range, now time.Time) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && rng.Contains(e.Date, now) {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return core.UserProfile{}, fmt.Errorf("profile %s: %w", userID, store.ErrNotFound)
	}
	return cloneProfile(profile), nil
}

func (s *Store) SaveProfile(_ context.Context, profile core.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (s *Store) GetTasks(_ context.Context, userID string) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, ok := s.tasks[userID]
	if !ok {
		return nil, fmt.Errorf("tasks for %s: %w", userID, store.ErrNotFound)
	}
	out := make([]core.Task, len(tasks))
	copy(out, tasks)
	return out, nil
}

func (s *Store) SaveTasks(_ context.Context, userID string, tasks []core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]core.Task, len(tasks))
	copy(stored, tasks)
	s.tasks[userID] = stored
	return nil
}

func (s *Store) ResetAllTasks(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, tasks := range s.tasks {
		for i := range tasks {
			tasks[i].Completed = false
		}
		s.tasks[userID] = tasks
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func sortNewestFirst(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
}

func cloneProfile(p core.UserProfile) core.UserProfile {
	achievements := make([]core.Achievement, len(p.Achievements))
	copy(achievements, p.Achievements)
	p.Achievements = achievements
	return p
}
