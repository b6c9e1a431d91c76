// Package http exposes the JSON API: expense logging, range stats, the
// day-over-day comparison and the gamification endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
)

// Server wires the service layer to HTTP routes.
type Server struct {
	http.Server

	expenses     *services.ExpenseService
	gamification *services.GamificationService

	defaultUserID string

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, expenses *services.ExpenseService, gamification *services.GamificationService, defaultUserID string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		expenses:      expenses,
		gamification:  gamification,
		defaultUserID: defaultUserID,
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/expenses", s.handleLogExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/comparison", s.handleComparison)

	mux.HandleFunc("GET /api/tasks", s.handleGetTasks)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggleTask)

	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handleUpdateProfile)

	traced := trace.NewMiddleware(clientIP)
	limited := s.limiter.Middleware(clientIP, nil)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           traced.Middleware(limited(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the routed handler without the listener, for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

// Shutdown stops the listener and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// userID resolves the acting user from the X-User-ID header, falling back
// to the configured single-user default.
func (s *Server) userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return s.defaultUserID
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
