package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"timebudget/internal/core"
)

const defaultExpenseLimit = 5

type summaryResponse struct {
	Month       string  `json:"month"`
	Budget      float64 `json:"budget"`
	Spent       float64 `json:"spent"`
	SpentToday  float64 `json:"spent_today"`
	Remaining   float64 `json:"remaining"`
	DaysLeft    int     `json:"days_left"`
	DailyBudget float64 `json:"daily_budget"`
}

type expenseResponse struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func toSummaryResponse(month string, s core.Summary) summaryResponse {
	return summaryResponse{
		Month:       month,
		Budget:      s.TotalBudget.Float(),
		Spent:       s.TotalExpenses.Float(),
		SpentToday:  s.ExpensesToday.Float(),
		Remaining:   s.Remaining.Float(),
		DaysLeft:    s.DaysLeft,
		DailyBudget: s.DailyBudget.Float(),
	}
}

func toExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:          e.ID,
			Amount:      e.Amount.Float(),
			Description: e.Description,
			Date:        core.DayKey(e.Date),
		})
	}
	return out
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	now := s.now()
	summary, err := s.ledger.Summary(r.Context(), userID, now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute summary",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load budget summary")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(core.MonthKey(now), summary))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	cents, err := core.ParseCents(body.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	now := s.now()
	if err := s.ledger.SetBudget(r.Context(), userID, core.Money{Cents: cents}, now); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to set budget",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}

	summary, err := s.ledger.Summary(r.Context(), userID, now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute summary after budget set",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load budget summary")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(core.MonthKey(now), summary))
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	cents, err := core.ParseCents(body.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	var date time.Time
	if raw := body.Get("date"); raw != "" {
		date, err = time.ParseInLocation("2006-01-02", raw, s.now().Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	id, err := s.ledger.RecordExpense(r.Context(), userID,
		core.Money{Cents: cents}, body.Get("description"), date, s.now())
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "invalid amount")
		case errors.Is(err, core.ErrEmptyDescription):
			writeError(w, http.StatusBadRequest, "description is required")
		default:
			slog.ErrorContext(r.Context(), "Failed to record expense",
				"user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save expense")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleRecentExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := defaultExpenseLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	expenses, err := s.ledger.RecentExpenses(r.Context(), userID, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": toExpenseResponses(expenses)})
}

func (s *Server) handleMonthExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	now := s.now()
	expenses, err := s.ledger.MonthExpenses(r.Context(), userID, now)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list month expenses",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"month":    core.MonthKey(now),
		"expenses": toExpenseResponses(expenses),
	})
}
