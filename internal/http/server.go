// Package http exposes the core operations as a JSON API for the client
// renderer. Caller identity arrives in the X-User-ID header, set by the
// upstream auth layer; everything here is scoped to that user.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"timebudget/internal/core"
)

// LedgerAPI is the budget/expense surface the handlers call.
type LedgerAPI interface {
	Summary(ctx context.Context, userID int64, now time.Time) (core.Summary, error)
	SetBudget(ctx context.Context, userID int64, amount core.Money, now time.Time) error
	RecordExpense(ctx context.Context, userID int64, amount core.Money, description string, date, now time.Time) (int64, error)
	RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Expense, error)
	MonthExpenses(ctx context.Context, userID int64, now time.Time) ([]core.Expense, error)
}

// ScheduleAPI is the activity/scheduling surface the handlers call.
type ScheduleAPI interface {
	AddActivity(ctx context.Context, a core.Activity) (int64, error)
	Activities(ctx context.Context, userID int64) ([]core.Activity, error)
	DeleteActivity(ctx context.Context, id, userID int64) (bool, error)
	Upcoming(ctx context.Context, userID int64, now time.Time) ([]core.UpcomingEntry, error)
	SuggestSlots(durationMinutes int, now time.Time) []core.Slot
}

type Server struct {
	http.Server
	ledger      LedgerAPI
	schedule    ScheduleAPI
	rateLimiter *rateLimiter
	now         func() time.Time
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger LedgerAPI, schedule ScheduleAPI) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		schedule:    schedule,
		rateLimiter: newRateLimiter(),
		now:         time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/budget", s.withMiddleware(s.handleBudgetSummary))
	mux.HandleFunc("POST /api/budget", s.withMiddleware(s.handleSetBudget))
	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleRecordExpense))
	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleRecentExpenses))
	mux.HandleFunc("GET /api/expenses/month", s.withMiddleware(s.handleMonthExpenses))

	mux.HandleFunc("GET /api/activities", s.withMiddleware(s.handleListActivities))
	mux.HandleFunc("POST /api/activities", s.withMiddleware(s.handleAddActivity))
	mux.HandleFunc("DELETE /api/activities/{id}", s.withMiddleware(s.handleDeleteActivity))
	mux.HandleFunc("POST /api/suggest-slot", s.withMiddleware(s.handleSuggestSlots))
	mux.HandleFunc("GET /api/next-activity", s.withMiddleware(s.handleUpcoming))

	return s
}

// Shutdown stops the rate limiter's cleanup goroutine before shutting the
// HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.stop()
	}
	return s.Server.Shutdown(ctx)
}

// withMiddleware adds security headers, per-IP rate limiting on writes and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func isWrite(method string) bool {
	return method == http.MethodPost || method == http.MethodDelete || method == http.MethodPut
}

type requestIDKey struct{}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// requireUser extracts the caller's user id. A missing or malformed header
// means the upstream auth layer did not vouch for anyone.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-User-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusUnauthorized, "missing or invalid user identity")
		return 0, false
	}
	return id, true
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory per-IP rate limiter for write endpoints.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}
