package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/gamify"
	"spendwise/internal/store"
)

// GamificationService loads a user's gamification state, applies one
// transition through the engine, and persists the result. State is written
// back only after the transition succeeds, so a failed load never leaves a
// partial mutation behind.
type GamificationService struct {
	store     store.Store
	levelStep int
	now       func() time.Time
}

func NewGamificationService(st store.Store, levelStep int) *GamificationService {
	return &GamificationService{
		store:     st,
		levelStep: levelStep,
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *GamificationService) WithClock(now func() time.Time) *GamificationService {
	s.now = now
	return s
}

// ToggleResult is the outcome of one task-toggle transition.
type ToggleResult struct {
	Tasks           []core.Task
	CompletedPoints int
	Reward          *gamify.Reward
	LeveledUp       bool
	Profile         core.UserProfile
}

// GetProfile returns the user's profile, materializing and persisting the
// default one on first use. The streak is refreshed against today before
// the profile is returned.
func (s *GamificationService) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	engine, err := s.loadEngine(ctx, userID)
	if err != nil {
		return core.UserProfile{}, err
	}

	if err := s.persist(ctx, userID, engine); err != nil {
		return core.UserProfile{}, err
	}
	return *engine.Profile(), nil
}

// UpdateProfile changes the user-editable fields (name, avatar).
func (s *GamificationService) UpdateProfile(ctx context.Context, userID, name, avatarURL string) (core.UserProfile, error) {
	engine, err := s.loadEngine(ctx, userID)
	if err != nil {
		return core.UserProfile{}, err
	}

	profile := engine.Profile()
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		profile.Name = trimmed
	}
	if trimmed := strings.TrimSpace(avatarURL); trimmed != "" {
		profile.AvatarURL = trimmed
	}

	if err := s.persist(ctx, userID, engine); err != nil {
		return core.UserProfile{}, err
	}
	return *profile, nil
}

// GetTasks returns the user's daily task set, seeding the default set on
// first use.
func (s *GamificationService) GetTasks(ctx context.Context, userID string) ([]core.Task, error) {
	engine, err := s.loadEngine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, userID, engine); err != nil {
		return nil, err
	}
	return engine.Tasks(), nil
}

// ToggleTask flips one task and applies the downstream transitions: a
// completion counts as a qualifying streak action, and an all-complete
// reward feeds the profile's persisted point total.
func (s *GamificationService) ToggleTask(ctx context.Context, userID string, taskID int64) (ToggleResult, error) {
	engine, err := s.loadEngine(ctx, userID)
	if err != nil {
		return ToggleResult{}, err
	}

	reward, err := engine.ToggleTask(taskID)
	if err != nil {
		return ToggleResult{}, err
	}

	if taskCompleted(engine.Tasks(), taskID) {
		engine.Touch(s.now())
	}

	leveled := false
	if reward != nil {
		leveled = engine.AwardPoints(reward.Points)
		slog.InfoContext(ctx, "Daily task reward earned",
			"user_id", userID,
			"points", reward.Points,
			"leveled_up", leveled)
	}

	if err := s.persist(ctx, userID, engine); err != nil {
		return ToggleResult{}, err
	}

	return ToggleResult{
		Tasks:           engine.Tasks(),
		CompletedPoints: engine.CompletedPoints(),
		Reward:          reward,
		LeveledUp:       leveled,
		Profile:         *engine.Profile(),
	}, nil
}

// RecordExpense applies the gamification side of an expense-logged event:
// the streak is touched and the long-running achievements advance. Newly
// unlocked achievements award their points.
func (s *GamificationService) RecordExpense(ctx context.Context, userID string) (core.UserProfile, error) {
	engine, err := s.loadEngine(ctx, userID)
	if err != nil {
		return core.UserProfile{}, err
	}

	engine.Touch(s.now())

	expenses, err := s.store.GetExpenses(ctx, userID)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("load expenses for achievements: %w", err)
	}

	updates := map[int64]int{
		core.AchievementCategoryChampion: distinctCategories(expenses),
		core.AchievementTrackerPro:       engine.Profile().StreakDays,
	}
	for id, progress := range updates {
		unlocked, err := engine.SetAchievementProgress(id, progress)
		if err != nil {
			return core.UserProfile{}, err
		}
		if unlocked {
			points := achievementPoints(engine.Profile().Achievements, id)
			engine.AwardPoints(points)
			slog.InfoContext(ctx, "Achievement unlocked",
				"user_id", userID,
				"achievement_id", id,
				"points", points)
		}
	}

	if err := s.persist(ctx, userID, engine); err != nil {
		return core.UserProfile{}, err
	}
	return *engine.Profile(), nil
}

// loadEngine reads profile and tasks, falling back to defaults on first
// use, and wraps them in an engine with the streak refreshed for today.
func (s *GamificationService) loadEngine(ctx context.Context, userID string) (*gamify.Engine, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		profile = core.NewDefaultProfile(userID, defaultName(userID), "", s.levelStep)
	case err != nil:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	tasks, err := s.store.GetTasks(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		tasks = core.DefaultTasks()
	case err != nil:
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	engine := gamify.NewEngine(&profile, tasks, s.levelStep)
	engine.RefreshStreak(s.now())

	return engine, nil
}

func (s *GamificationService) persist(ctx context.Context, userID string, engine *gamify.Engine) error {
	if err := s.store.SaveProfile(ctx, *engine.Profile()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := s.store.SaveTasks(ctx, userID, engine.Tasks()); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func taskCompleted(tasks []core.Task, taskID int64) bool {
	for _, t := range tasks {
		if t.ID == taskID {
			return t.Completed
		}
	}
	return false
}

func distinctCategories(expenses []core.Expense) int {
	seen := make(map[string]struct{})
	for _, e := range expenses {
		seen[e.Category] = struct{}{}
	}
	return len(seen)
}

func achievementPoints(achievements []core.Achievement, id int64) int {
	for _, a := range achievements {
		if a.ID == id {
			return a.Points
		}
	}
	return 0
}

func defaultName(userID string) string {
	if at := strings.IndexByte(userID, '@'); at > 0 {
		return userID[:at]
	}
	return "User"
}
