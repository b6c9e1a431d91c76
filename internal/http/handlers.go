package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/gamify"
)

// defaultListRange is used when the range query parameter is absent.
const defaultListRange = core.RangeWeek

type expenseResponse struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Roast       string          `json:"roast,omitempty"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
		Roast:       e.Roast,
	}
}

type logExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        *time.Time      `json:"date,omitempty"`
}

func (s *Server) handleLogExpense(w http.ResponseWriter, r *http.Request) {
	var req logExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense := core.Expense{
		UserID:      s.userID(r),
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}

	stored, err := s.expenses.LogExpense(r.Context(), expense)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to log expense", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to log expense")
		return
	}

	respondJSON(w, http.StatusCreated, toExpenseResponse(stored))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	rng, ok := s.rangeParam(w, r)
	if !ok {
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), s.userID(r), rng)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"range":    rng,
		"expenses": out,
	})
}

type categoryTotalResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type statsResponse struct {
	Range          core.Range              `json:"range"`
	Total          decimal.Decimal         `json:"total"`
	ByCategory     []categoryTotalResponse `json:"by_category"`
	TopCategories  []categoryTotalResponse `json:"top_categories"`
	DailyAverage   decimal.Decimal         `json:"daily_average"`
	HighestExpense *expenseResponse        `json:"highest_expense"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	rng, ok := s.rangeParam(w, r)
	if !ok {
		return
	}

	stats, err := s.expenses.Stats(r.Context(), s.userID(r), rng)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute stats", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	resp := statsResponse{
		Range:         stats.Range,
		Total:         stats.Total,
		ByCategory:    toCategoryTotals(stats.ByCategory),
		TopCategories: toCategoryTotals(stats.TopCategories),
		DailyAverage:  stats.DailyAverage,
	}
	if stats.Highest != nil {
		highest := toExpenseResponse(*stats.Highest)
		resp.HighestExpense = &highest
	}

	respondJSON(w, http.StatusOK, resp)
}

func toCategoryTotals(totals []analytics.CategoryTotal) []categoryTotalResponse {
	out := make([]categoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryTotalResponse{Category: t.Category, Total: t.Total})
	}
	return out
}

type comparisonResponse struct {
	Direction analytics.Direction `json:"direction"`
	Percent   decimal.Decimal     `json:"percent"`
	DisplayMS int64               `json:"display_ms"`
}

// handleComparison returns the day-over-day delta, or 204 when either day
// has no spending and there is nothing to show.
func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.expenses.Comparison(r.Context(), s.userID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute comparison", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute comparison")
		return
	}
	if cmp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, comparisonResponse{
		Direction: cmp.Direction,
		Percent:   cmp.Percent,
		DisplayMS: analytics.DisplayDuration.Milliseconds(),
	})
}

type taskResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Points    int    `json:"points"`
	Completed bool   `json:"completed"`
}

func toTaskResponses(tasks []core.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse{ID: t.ID, Title: t.Title, Points: t.Points, Completed: t.Completed})
	}
	return out
}

func (s *Server) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.gamification.GetTasks(r.Context(), s.userID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load tasks", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tasks": toTaskResponses(tasks),
	})
}

type rewardResponse struct {
	Points  int    `json:"points"`
	Message string `json:"message"`
}

type toggleTaskResponse struct {
	Tasks           []taskResponse  `json:"tasks"`
	CompletedPoints int             `json:"completed_points"`
	Reward          *rewardResponse `json:"reward,omitempty"`
	LeveledUp       bool            `json:"leveled_up"`
	Profile         profileResponse `json:"profile"`
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	result, err := s.gamification.ToggleTask(r.Context(), s.userID(r), taskID)
	if err != nil {
		if errors.Is(err, gamify.ErrUnknownTask) {
			respondError(w, http.StatusNotFound, "unknown task")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to toggle task", "error", err, "task_id", taskID)
		respondError(w, http.StatusInternalServerError, "failed to toggle task")
		return
	}

	resp := toggleTaskResponse{
		Tasks:           toTaskResponses(result.Tasks),
		CompletedPoints: result.CompletedPoints,
		LeveledUp:       result.LeveledUp,
		Profile:         toProfileResponse(result.Profile),
	}
	if result.Reward != nil {
		resp.Reward = &rewardResponse{Points: result.Reward.Points, Message: result.Reward.Message}
	}

	respondJSON(w, http.StatusOK, resp)
}

type achievementResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress"`
	MaxProgress int    `json:"max_progress"`
}

type profileResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Email           string                `json:"email,omitempty"`
	AvatarURL       string                `json:"avatar_url,omitempty"`
	TotalPoints     int                   `json:"total_points"`
	StreakDays      int                   `json:"streak_days"`
	Level           int                   `json:"level"`
	NextLevelPoints int                   `json:"next_level_points"`
	Achievements    []achievementResponse `json:"achievements"`
}

func toProfileResponse(p core.UserProfile) profileResponse {
	achievements := make([]achievementResponse, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		achievements = append(achievements, achievementResponse{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Points:      a.Points,
			Unlocked:    a.Unlocked,
			Progress:    a.Progress,
			MaxProgress: a.MaxProgress,
		})
	}
	return profileResponse{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		AvatarURL:       p.AvatarURL,
		TotalPoints:     p.TotalPoints,
		StreakDays:      p.StreakDays,
		Level:           p.Level,
		NextLevelPoints: p.NextLevelPoints,
		Achievements:    achievements,
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.gamification.GetProfile(r.Context(), s.userID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load profile", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.gamification.UpdateProfile(r.Context(), s.userID(r), req.Name, req.AvatarURL)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to update profile", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, toProfileResponse(profile))
}

// rangeParam parses the range query parameter, writing a 400 on an unknown
// selector. The second return is false when the response was already sent.
func (s *Server) rangeParam(w http.ResponseWriter, r *http.Request) (core.Range, bool) {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return defaultListRange, true
	}
	rng, err := core.ParseRange(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return rng, true
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrDescriptionTooLong) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrInvalidDate)
}
