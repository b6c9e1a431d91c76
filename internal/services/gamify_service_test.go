package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
	"spendwise/internal/gamify"
	"spendwise/internal/store/memory"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGetProfileMaterializesDefaults(t *testing.T) {
	st := memory.New()
	svc := NewGamificationService(st, gamify.DefaultLevelStep).
		WithClock(fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))

	profile, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, 0, profile.TotalPoints)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, gamify.DefaultLevelStep, profile.NextLevelPoints)
	assert.Len(t, profile.Achievements, 4)

	// The materialized profile is persisted, not recreated on every read.
	again, err := st.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestToggleTaskAllCompleteRewardFeedsProfile(t *testing.T) {
	st := memory.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewGamificationService(st, gamify.DefaultLevelStep).WithClock(fixedClock(now))

	ctx := context.Background()
	var last ToggleResult
	for _, id := range []int64{1, 2, 3, 4} {
		var err error
		last, err = svc.ToggleTask(ctx, "u1", id)
		require.NoError(t, err)
	}

	require.NotNil(t, last.Reward)
	assert.Equal(t, 70, last.Reward.Points)
	assert.Equal(t, 70, last.CompletedPoints)
	assert.Equal(t, 70, last.Profile.TotalPoints)
	assert.False(t, last.LeveledUp)
	assert.Equal(t, 1, last.Profile.StreakDays)
	assert.True(t, core.SameDay(last.Profile.LastActive, now))

	// Un-toggling afterwards must not emit a second reward.
	res, err := svc.ToggleTask(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Nil(t, res.Reward)
	assert.Equal(t, 50, res.CompletedPoints)
	assert.Equal(t, 70, res.Profile.TotalPoints)
}

func TestToggleTaskUnknownID(t *testing.T) {
	svc := NewGamificationService(memory.New(), gamify.DefaultLevelStep)

	_, err := svc.ToggleTask(context.Background(), "u1", 99)
	assert.ErrorIs(t, err, gamify.ErrUnknownTask)
}

func TestRecordExpenseAdvancesAchievements(t *testing.T) {
	st := memory.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewGamificationService(st, gamify.DefaultLevelStep).WithClock(fixedClock(now))

	ctx := context.Background()
	for i, category := range core.Categories {
		_, err := st.AddExpense(ctx, core.Expense{
			UserID:      "u1",
			Amount:      decimal.NewFromInt(int64(100 + i)),
			Description: "seed",
			Category:    category,
			Date:        now,
		})
		require.NoError(t, err)
	}

	profile, err := svc.RecordExpense(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, profile.StreakDays)

	var champion, tracker core.Achievement
	for _, a := range profile.Achievements {
		switch a.ID {
		case core.AchievementCategoryChampion:
			champion = a
		case core.AchievementTrackerPro:
			tracker = a
		}
	}

	assert.Equal(t, len(core.Categories), champion.Progress)
	assert.True(t, champion.Unlocked)
	assert.Equal(t, 1, tracker.Progress)
	assert.False(t, tracker.Unlocked)

	// Unlocking Category Champion awards its 300 points exactly once.
	assert.Equal(t, 300, profile.TotalPoints)

	again, err := svc.RecordExpense(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 300, again.TotalPoints)
}

func TestRecordExpenseStreakAcrossDays(t *testing.T) {
	st := memory.New()
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewGamificationService(st, gamify.DefaultLevelStep).WithClock(fixedClock(day1))

	ctx := context.Background()
	_, err := st.AddExpense(ctx, core.Expense{
		UserID: "u1", Amount: decimal.NewFromInt(50),
		Description: "coffee", Category: "Food & Drinks", Date: day1,
	})
	require.NoError(t, err)

	profile, err := svc.RecordExpense(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.StreakDays)

	svc.WithClock(fixedClock(day1.AddDate(0, 0, 1)))
	profile, err = svc.RecordExpense(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.StreakDays)

	// A two-day gap restarts the streak.
	svc.WithClock(fixedClock(day1.AddDate(0, 0, 4)))
	profile, err = svc.RecordExpense(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.StreakDays)
}

func TestGetProfileRefreshesLapsedStreak(t *testing.T) {
	st := memory.New()
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewGamificationService(st, gamify.DefaultLevelStep).WithClock(fixedClock(day1))

	ctx := context.Background()
	_, err := st.AddExpense(ctx, core.Expense{
		UserID: "u1", Amount: decimal.NewFromInt(50),
		Description: "coffee", Category: "Food & Drinks", Date: day1,
	})
	require.NoError(t, err)
	_, err = svc.RecordExpense(ctx, "u1")
	require.NoError(t, err)

	// Reading the profile three days later zeroes the stale streak.
	svc.WithClock(fixedClock(day1.AddDate(0, 0, 3)))
	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, profile.StreakDays)
}

func TestUpdateProfileEditableFields(t *testing.T) {
	st := memory.New()
	svc := NewGamificationService(st, gamify.DefaultLevelStep)

	ctx := context.Background()
	profile, err := svc.UpdateProfile(ctx, "u1", "Priya", "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "Priya", profile.Name)
	assert.Equal(t, "https://example.com/a.png", profile.AvatarURL)

	// Blank fields leave the stored values untouched.
	profile, err = svc.UpdateProfile(ctx, "u1", "  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Priya", profile.Name)
	assert.Equal(t, "https://example.com/a.png", profile.AvatarURL)
}
