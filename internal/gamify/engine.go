// Package gamify owns the gamification state machine: points, levels,
// streaks, daily tasks and achievement progress. Transitions mutate the
// caller-owned profile and task set in place; persistence and event
// delivery belong to the services layer.
package gamify

import (
	"errors"
	"fmt"
	"time"

	"spendwise/internal/core"
)

// DefaultLevelStep seeds the level threshold curve: the points needed for
// the next level are levelStep * current level. Monotonic by construction.
const DefaultLevelStep = 1000

var (
	ErrUnknownTask        = errors.New("unknown task")
	ErrUnknownAchievement = errors.New("unknown achievement")
)

// Reward is the one-shot event emitted when the full daily task set
// transitions from not-all-complete to all-complete.
type Reward struct {
	Points  int
	Message string
}

// Engine applies gamification transitions to a single user's state.
// It is not safe for concurrent use; callers serialize access per user.
type Engine struct {
	profile   *core.UserProfile
	tasks     []core.Task
	levelStep int
	// allDone tracks the previous "all tasks complete" level so the
	// reward fires on the rising edge only.
	allDone bool
}

// NewEngine wraps a profile and task set. Achievement flags are normalized
// on construction; seed data is not trusted to satisfy the unlock invariant.
func NewEngine(profile *core.UserProfile, tasks []core.Task, levelStep int) *Engine {
	if levelStep <= 0 {
		levelStep = DefaultLevelStep
	}
	if profile.Level < 1 {
		profile.Level = 1
	}
	if profile.NextLevelPoints <= 0 {
		profile.NextLevelPoints = levelStep * profile.Level
	}
	for i := range profile.Achievements {
		profile.Achievements[i].Normalize()
	}

	return &Engine{
		profile:   profile,
		tasks:     tasks,
		levelStep: levelStep,
		allDone:   allCompleted(tasks),
	}
}

func (e *Engine) Profile() *core.UserProfile {
	return e.profile
}

// Tasks returns a copy of the current task set.
func (e *Engine) Tasks() []core.Task {
	out := make([]core.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// CompletedPoints sums the points of all completed tasks.
func (e *Engine) CompletedPoints() int {
	total := 0
	for _, t := range e.tasks {
		if t.Completed {
			total += t.Points
		}
	}
	return total
}

// ToggleTask flips the completion state of one task. When the flip
// completes the full set, a Reward carrying the completed-task point sum is
// returned; re-toggling an already complete set never re-fires it.
func (e *Engine) ToggleTask(taskID int64) (*Reward, error) {
	found := false
	for i := range e.tasks {
		if e.tasks[i].ID == taskID {
			e.tasks[i].Completed = !e.tasks[i].Completed
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownTask, taskID)
	}

	all := allCompleted(e.tasks)
	var reward *Reward
	if all && !e.allDone {
		points := e.CompletedPoints()
		reward = &Reward{
			Points:  points,
			Message: fmt.Sprintf("🎉 Financial Guru Status Achieved! +%d points!", points),
		}
	}
	e.allDone = all

	return reward, nil
}

// AwardPoints adds delta to the profile total and handles level-ups,
// crossing as many thresholds as the new total passes. Totals never go
// below zero. Reports whether at least one level was gained.
func (e *Engine) AwardPoints(delta int) bool {
	p := e.profile
	p.TotalPoints += delta
	if p.TotalPoints < 0 {
		p.TotalPoints = 0
	}

	leveled := false
	for p.TotalPoints >= p.NextLevelPoints {
		p.Level++
		p.NextLevelPoints = e.levelStep * p.Level
		leveled = true
	}
	return leveled
}

// SetAchievementProgress clamps progress into [0, maxProgress] and derives
// the unlocked flag. Reports whether this call crossed the unlock boundary.
func (e *Engine) SetAchievementProgress(achievementID int64, progress int) (bool, error) {
	for i := range e.profile.Achievements {
		a := &e.profile.Achievements[i]
		if a.ID != achievementID {
			continue
		}
		wasUnlocked := a.Unlocked
		a.Progress = progress
		a.Normalize()
		return a.Unlocked && !wasUnlocked, nil
	}
	return false, fmt.Errorf("%w: id %d", ErrUnknownAchievement, achievementID)
}

// Touch records a qualifying action (expense logged or task completed) for
// the calendar day of now. Consecutive days extend the streak, a repeat on
// the same day is a no-op, and a gap restarts the streak at one.
func (e *Engine) Touch(now time.Time) {
	p := e.profile
	switch {
	case p.LastActive.IsZero():
		p.StreakDays = 1
	case core.SameDay(p.LastActive, now):
		return
	case core.SameDay(p.LastActive, now.AddDate(0, 0, -1)):
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	p.LastActive = now
}

// RefreshStreak zeroes the streak when a full calendar day has passed with
// no qualifying action. Safe to call on every session load.
func (e *Engine) RefreshStreak(now time.Time) {
	p := e.profile
	if p.LastActive.IsZero() {
		p.StreakDays = 0
		return
	}
	if core.SameDay(p.LastActive, now) || core.SameDay(p.LastActive, now.AddDate(0, 0, -1)) {
		return
	}
	p.StreakDays = 0
}

// ResetTasks clears completion on the whole set for a new day and re-arms
// the all-complete reward edge.
func (e *Engine) ResetTasks() {
	for i := range e.tasks {
		e.tasks[i].Completed = false
	}
	e.allDone = false
}

func allCompleted(tasks []core.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}
