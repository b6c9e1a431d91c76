package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

type RepositoryTestSuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	repo, err := NewRepository(":memory:")
	require.NoError(s.T(), err, "failed to create test repository")
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *RepositoryTestSuite) newExpense(userID string, amount int64, category string, date time.Time) core.Expense {
	return core.Expense{
		UserID:      userID,
		Amount:      decimal.NewFromInt(amount),
		Description: category + " purchase",
		Category:    category,
		Date:        date,
		Roast:       "ouch",
	}
}

func (s *RepositoryTestSuite) TestAddExpenseAssignsID() {
	e, err := s.repo.AddExpense(s.ctx, s.newExpense("u1", 250, "Food & Drinks", time.Now()))

	require.NoError(s.T(), err)
	assert.Positive(s.T(), e.ID)
	assert.Equal(s.T(), "ouch", e.Roast)
}

func (s *RepositoryTestSuite) TestAddExpenseRejectsInvalid() {
	bad := s.newExpense("u1", 0, "Food & Drinks", time.Now())

	_, err := s.repo.AddExpense(s.ctx, bad)

	assert.ErrorIs(s.T(), err, core.ErrInvalidAmount)
}

func (s *RepositoryTestSuite) TestGetExpensesNewestFirst() {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := s.repo.AddExpense(s.ctx, s.newExpense("u1", 100, "Bills", now.AddDate(0, 0, -2)))
	require.NoError(s.T(), err)
	_, err = s.repo.AddExpense(s.ctx, s.newExpense("u1", 200, "Transport", now))
	require.NoError(s.T(), err)
	_, err = s.repo.AddExpense(s.ctx, s.newExpense("u2", 300, "Shopping", now))
	require.NoError(s.T(), err)

	expenses, err := s.repo.GetExpenses(s.ctx, "u1")
	require.NoError(s.T(), err)

	require.Len(s.T(), expenses, 2)
	assert.Equal(s.T(), "Transport", expenses[0].Category)
	assert.Equal(s.T(), "Bills", expenses[1].Category)
	assert.True(s.T(), expenses[0].Amount.Equal(decimal.NewFromInt(200)))
}

func (s *RepositoryTestSuite) TestGetExpensesByRange() {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := s.repo.AddExpense(s.ctx, s.newExpense("u1", 100, "Bills", now))
	require.NoError(s.T(), err)
	_, err = s.repo.AddExpense(s.ctx, s.newExpense("u1", 200, "Transport", now.AddDate(0, 0, -10)))
	require.NoError(s.T(), err)

	inWeek, err := s.repo.GetExpensesByRange(s.ctx, "u1", core.RangeWeek, now)
	require.NoError(s.T(), err)
	require.Len(s.T(), inWeek, 1)
	assert.Equal(s.T(), "Bills", inWeek[0].Category)

	inMonth, err := s.repo.GetExpensesByRange(s.ctx, "u1", core.RangeMonth, now)
	require.NoError(s.T(), err)
	assert.Len(s.T(), inMonth, 2)
}

func (s *RepositoryTestSuite) TestGetProfileMissing() {
	_, err := s.repo.GetProfile(s.ctx, "ghost")

	assert.ErrorIs(s.T(), err, store.ErrNotFound)
}

func (s *RepositoryTestSuite) TestSaveAndGetProfileRoundTrip() {
	profile := core.NewDefaultProfile("u1", "Sam", "sam@example.com", 1000)
	profile.TotalPoints = 750
	profile.StreakDays = 7
	profile.Level = 5
	profile.LastActive = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	profile.Achievements[1].Progress = 5

	require.NoError(s.T(), s.repo.SaveProfile(s.ctx, profile))

	got, err := s.repo.GetProfile(s.ctx, "u1")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 750, got.TotalPoints)
	assert.Equal(s.T(), 7, got.StreakDays)
	assert.Equal(s.T(), 5, got.Level)
	assert.True(s.T(), got.LastActive.Equal(profile.LastActive))
	require.Len(s.T(), got.Achievements, len(profile.Achievements))
	assert.Equal(s.T(), 5, got.Achievements[1].Progress)
}

func (s *RepositoryTestSuite) TestSaveProfileUpsertsAchievements() {
	profile := core.NewDefaultProfile("u1", "Sam", "sam@example.com", 1000)
	require.NoError(s.T(), s.repo.SaveProfile(s.ctx, profile))

	profile.Achievements[0].Progress = profile.Achievements[0].MaxProgress
	profile.Achievements[0].Unlocked = true
	require.NoError(s.T(), s.repo.SaveProfile(s.ctx, profile))

	got, err := s.repo.GetProfile(s.ctx, "u1")
	require.NoError(s.T(), err)
	assert.True(s.T(), got.Achievements[0].Unlocked)
}

func (s *RepositoryTestSuite) TestTasksRoundTripAndReset() {
	_, err := s.repo.GetTasks(s.ctx, "u1")
	assert.ErrorIs(s.T(), err, store.ErrNotFound)

	tasks := core.DefaultTasks()
	tasks[0].Completed = true
	require.NoError(s.T(), s.repo.SaveTasks(s.ctx, "u1", tasks))

	got, err := s.repo.GetTasks(s.ctx, "u1")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, len(tasks))
	assert.True(s.T(), got[0].Completed)

	require.NoError(s.T(), s.repo.ResetAllTasks(s.ctx))

	got, err = s.repo.GetTasks(s.ctx, "u1")
	require.NoError(s.T(), err)
	for _, task := range got {
		assert.False(s.T(), task.Completed, "task %d still completed after reset", task.ID)
	}
}

func (s *RepositoryTestSuite) TestExportLifecycle() {
	e1, err := s.repo.AddExpense(s.ctx, s.newExpense("u1", 100, "Bills", time.Now()))
	require.NoError(s.T(), err)
	e2, err := s.repo.AddExpense(s.ctx, s.newExpense("u1", 200, "Transport", time.Now()))
	require.NoError(s.T(), err)

	pending, err := s.repo.GetPendingExports(s.ctx, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), pending, 2)
	assert.Equal(s.T(), e1.ID, pending[0].ID, "pending exports should be oldest first")

	require.NoError(s.T(), s.repo.MarkExported(s.ctx, e1.ID))
	require.NoError(s.T(), s.repo.MarkExportError(s.ctx, e2.ID))

	pending, err = s.repo.GetPendingExports(s.ctx, 10)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), pending)
}

func (s *RepositoryTestSuite) TestGetExpenseByID() {
	e, err := s.repo.AddExpense(s.ctx, s.newExpense("u1", 450, "Shopping", time.Now()))
	require.NoError(s.T(), err)

	got, err := s.repo.GetExpense(s.ctx, e.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), got.Amount.Equal(decimal.NewFromInt(450)))

	_, err = s.repo.GetExpense(s.ctx, 9999)
	assert.ErrorIs(s.T(), err, store.ErrNotFound)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
