package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Categories is the conventional label set offered by the UI. The analytics
// layer accepts any category string verbatim; this list is not enforced.
var Categories = []string{
	"Food & Drinks",
	"Shopping",
	"Entertainment",
	"Transport",
	"Bills",
	"Other",
}

type (
	// Expense is a single logged spending record owned by a user.
	Expense struct {
		ID          int64
		UserID      string
		Amount      decimal.Decimal
		Description string
		Category    string
		Date        time.Time
		Roast       string
	}

	// Task is one entry of the fixed daily task set.
	Task struct {
		ID        int64
		Title     string
		Points    int
		Completed bool
	}

	// Achievement tracks long-running progress toward a goal.
	// Invariant: 0 <= Progress <= MaxProgress and Unlocked iff Progress == MaxProgress.
	Achievement struct {
		ID          int64
		Title       string
		Description string
		Points      int
		Unlocked    bool
		Progress    int
		MaxProgress int
	}

	// UserProfile is the long-lived gamification state for one user.
	UserProfile struct {
		ID              string
		Name            string
		Email           string
		AvatarURL       string
		TotalPoints     int
		StreakDays      int
		Level           int
		NextLevelPoints int
		// LastActive is the most recent calendar day with a qualifying
		// action. It anchors the streak rule across sessions.
		LastActive   time.Time
		Achievements []Achievement
	}
)

// Well-known achievement ids, matching DefaultAchievements.
const (
	AchievementSavingStarter    int64 = 1
	AchievementBudgetMaster     int64 = 2
	AchievementTrackerPro       int64 = 3
	AchievementCategoryChampion int64 = 4
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidDate        = errors.New("invalid date")
)

func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Normalize restores the achievement invariant: progress clamped into
// [0, MaxProgress] and the unlocked flag derived from progress. Externally
// supplied flags are never trusted.
func (a *Achievement) Normalize() {
	if a.Progress < 0 {
		a.Progress = 0
	}
	if a.Progress > a.MaxProgress {
		a.Progress = a.MaxProgress
	}
	a.Unlocked = a.MaxProgress > 0 && a.Progress == a.MaxProgress
}

// DefaultTasks returns the fixed daily task set in display order.
func DefaultTasks() []Task {
	return []Task{
		{ID: 1, Title: "Track all expenses", Points: 10},
		{ID: 2, Title: "Stay under ₹500 today", Points: 20},
		{ID: 3, Title: "No impulse purchases", Points: 15},
		{ID: 4, Title: "Pack lunch from home", Points: 25},
	}
}

// DefaultAchievements returns the seed achievement set for a new profile.
func DefaultAchievements() []Achievement {
	achievements := []Achievement{
		{ID: 1, Title: "Saving Starter", Description: "Save your first ₹1,000", Points: 100, Progress: 0, MaxProgress: 1000},
		{ID: 2, Title: "Budget Master", Description: "Stay under budget for 7 consecutive days", Points: 200, Progress: 0, MaxProgress: 7},
		{ID: 3, Title: "Expense Tracker Pro", Description: "Log expenses for 30 days straight", Points: 500, Progress: 0, MaxProgress: 30},
		{ID: 4, Title: "Category Champion", Description: "Track expenses in all categories", Points: 300, Progress: 0, MaxProgress: len(Categories)},
	}
	for i := range achievements {
		achievements[i].Normalize()
	}
	return achievements
}

// NewDefaultProfile materializes the first-use profile for a user.
func NewDefaultProfile(id, name, email string, levelStep int) UserProfile {
	return UserProfile{
		ID:              id,
		Name:            name,
		Email:           email,
		TotalPoints:     0,
		StreakDays:      0,
		Level:           1,
		NextLevelPoints: levelStep,
		Achievements:    DefaultAchievements(),
	}
}
