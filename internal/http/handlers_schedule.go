package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"timebudget/internal/core"
)

type activityResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Kind            string `json:"kind"`
	Descriptor      string `json:"descriptor"`
	DurationMinutes int    `json:"duration_minutes"`
}

type upcomingResponse struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Time      string `json:"time"`
	Date      string `json:"date"`
	DaysUntil string `json:"days_until"`
}

type slotResponse struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Label string `json:"label"`
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	activities, err := s.schedule.Activities(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list activities",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load activities")
		return
	}

	out := make([]activityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, activityResponse{
			ID:              a.ID,
			Title:           a.Title,
			Kind:            a.Kind,
			Descriptor:      a.Descriptor,
			DurationMinutes: a.DurationMinutes,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": out})
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	duration, err := strconv.Atoi(body.Get("duration_minutes"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid duration")
		return
	}

	a := core.Activity{
		UserID:          userID,
		Title:           body.Get("title"),
		Kind:            body.Get("kind"),
		Descriptor:      body.Get("descriptor"),
		DurationMinutes: duration,
	}

	id, err := s.schedule.AddActivity(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyTitle):
			writeError(w, http.StatusBadRequest, "title is required")
		case errors.Is(err, core.ErrInvalidKind):
			writeError(w, http.StatusBadRequest, "kind must be fixed or recurring")
		case errors.Is(err, core.ErrInvalidDuration):
			writeError(w, http.StatusBadRequest, "duration must be positive")
		default:
			slog.ErrorContext(r.Context(), "Failed to add activity",
				"user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save activity")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	deleted, err := s.schedule.DeleteActivity(r.Context(), id, userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete activity",
			"user_id", userID, "activity_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete activity")
		return
	}
	if !deleted {
		// Someone else's activity and a missing one look the same.
		writeError(w, http.StatusNotFound, "activity not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSuggestSlots(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	duration, err := strconv.Atoi(body.Get("duration_minutes"))
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, "invalid duration")
		return
	}

	slots := s.schedule.SuggestSlots(duration, s.now())
	out := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotResponse{Date: slot.Date, Time: slot.Time, Label: slot.Label})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := s.schedule.Upcoming(r.Context(), userID, s.now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to resolve upcoming activities",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load upcoming activities")
		return
	}

	out := make([]upcomingResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, upcomingResponse{
			Title:     e.Title,
			Timestamp: e.At.Format(time.RFC3339),
			Time:      e.TimeLabel,
			Date:      e.DateLabel,
			DaysUntil: e.DaysUntil,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": out})
}
