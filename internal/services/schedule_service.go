package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timebudget/internal/amqp"
	"timebudget/internal/core"
)

// ActivityStore is the slice of the repository the schedule service needs.
type ActivityStore interface {
	CreateActivity(ctx context.Context, a core.Activity) (int64, error)
	ListActivities(ctx context.Context, userID int64) ([]core.Activity, error)
	DeleteActivity(ctx context.Context, id, userID int64) (bool, error)
}

// ScheduleService owns activities, their upcoming occurrences and slot
// suggestions.
type ScheduleService struct {
	store  ActivityStore
	events EventPublisher
	loc    *time.Location
}

func NewScheduleService(store ActivityStore, events EventPublisher, loc *time.Location) *ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleService{store: store, events: events, loc: loc}
}

// AddActivity validates and stores an activity. A descriptor that does not
// parse is still accepted; it simply never resolves to an occurrence, and
// we log it so the user can be told.
func (s *ScheduleService) AddActivity(ctx context.Context, a core.Activity) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}

	sched, err := core.ParseSchedule(a.Kind, a.Descriptor, s.loc)
	if err != nil {
		slog.WarnContext(ctx, "Storing activity with malformed descriptor",
			"user_id", a.UserID,
			"kind", a.Kind,
			"descriptor", a.Descriptor)
	}
	a.Schedule = sched

	id, err := s.store.CreateActivity(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("create activity: %w", err)
	}

	s.publishEvent(ctx, amqp.NewEvent(amqp.EventActivityAdded, a.UserID, id, ""))
	return id, nil
}

// Activities lists the user's activities.
func (s *ScheduleService) Activities(ctx context.Context, userID int64) ([]core.Activity, error) {
	return s.store.ListActivities(ctx, userID)
}

// DeleteActivity removes the activity if and only if it belongs to userID.
// Deleting someone else's activity (or a missing one) reports false.
func (s *ScheduleService) DeleteActivity(ctx context.Context, id, userID int64) (bool, error) {
	deleted, err := s.store.DeleteActivity(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete activity: %w", err)
	}
	if deleted {
		s.publishEvent(ctx, amqp.NewEvent(amqp.EventActivityDeleted, userID, id, ""))
	}
	return deleted, nil
}

// Upcoming resolves the user's activities to their next occurrences and
// returns the soonest few.
func (s *ScheduleService) Upcoming(ctx context.Context, userID int64, now time.Time) ([]core.UpcomingEntry, error) {
	activities, err := s.store.ListActivities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return core.SelectUpcoming(activities, now), nil
}

// SuggestSlots proposes candidate windows for a new activity.
func (s *ScheduleService) SuggestSlots(durationMinutes int, now time.Time) []core.Slot {
	return core.SuggestSlots(durationMinutes, now)
}

func (s *ScheduleService) publishEvent(ctx context.Context, ev amqp.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event",
			"name", ev.Name,
			"user_id", ev.UserID,
			"error", err)
	}
}
