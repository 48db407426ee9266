// Package worker runs the background side of the system: activity
// reminders and month-report export driven by ledger events.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timebudget/internal/amqp"
	"timebudget/internal/core"
)

// Store is the slice of the repository the worker reads from.
type Store interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListActivities(ctx context.Context, userID int64) ([]core.Activity, error)
}

// SummaryProvider recomputes a user's month summary for report export.
type SummaryProvider interface {
	Summary(ctx context.Context, userID int64, now time.Time) (core.Summary, error)
}

// ReportExporter receives month summaries. Nil disables exporting.
type ReportExporter interface {
	AppendMonthReport(ctx context.Context, userID int64, month string, s core.Summary) error
}

// Reminder is one imminent activity occurrence found by a scan.
type Reminder struct {
	UserID int64
	Title  string
	At     time.Time
}

// ReminderWorker periodically resolves every user's activities and flags
// occurrences starting within the lookahead window. It also consumes
// ledger events and pushes refreshed month reports to the exporter.
type ReminderWorker struct {
	store     Store
	summaries SummaryProvider
	exporter  ReportExporter
	interval  time.Duration
	lookahead time.Duration
}

func NewReminderWorker(store Store, summaries SummaryProvider, exporter ReportExporter, interval, lookahead time.Duration) *ReminderWorker {
	return &ReminderWorker{
		store:     store,
		summaries: summaries,
		exporter:  exporter,
		interval:  interval,
		lookahead: lookahead,
	}
}

// Run scans on every tick until ctx is canceled.
func (w *ReminderWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Reminder worker started",
		"interval", w.interval,
		"lookahead", w.lookahead)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Reminder worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			reminders, err := w.Scan(ctx, time.Now())
			if err != nil {
				slog.ErrorContext(ctx, "Reminder scan failed", "error", err)
				continue
			}
			for _, r := range reminders {
				slog.InfoContext(ctx, "Activity starting soon",
					"user_id", r.UserID,
					"title", r.Title,
					"at", r.At.Format(time.RFC3339))
			}
		}
	}
}

// Scan resolves all users' activities against now and returns the
// occurrences inside the lookahead window.
func (w *ReminderWorker) Scan(ctx context.Context, now time.Time) ([]Reminder, error) {
	userIDs, err := w.store.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}

	var reminders []Reminder
	for _, userID := range userIDs {
		activities, err := w.store.ListActivities(ctx, userID)
		if err != nil {
			// One user's storage trouble should not stop the sweep.
			slog.ErrorContext(ctx, "Failed to list activities",
				"user_id", userID, "error", err)
			continue
		}
		for _, a := range activities {
			at, ok := a.Schedule.NextOccurrence(now)
			if !ok {
				continue
			}
			if at.Sub(now) <= w.lookahead {
				reminders = append(reminders, Reminder{UserID: userID, Title: a.Title, At: at})
			}
		}
	}
	return reminders, nil
}

// HandleEvent reacts to one ledger/schedule event. Ledger writes refresh
// the user's month report; schedule events are only logged.
func (w *ReminderWorker) HandleEvent(ctx context.Context, ev amqp.Event) error {
	slog.InfoContext(ctx, "Processing event",
		"name", ev.Name,
		"user_id", ev.UserID,
		"entity_id", ev.EntityID)

	switch ev.Name {
	case amqp.EventExpenseRecorded, amqp.EventBudgetSet:
		if w.exporter == nil || w.summaries == nil {
			return nil
		}
		now := time.Now()
		summary, err := w.summaries.Summary(ctx, ev.UserID, now)
		if err != nil {
			return fmt.Errorf("compute summary for report: %w", err)
		}
		if err := w.exporter.AppendMonthReport(ctx, ev.UserID, core.MonthKey(now), summary); err != nil {
			return fmt.Errorf("export month report: %w", err)
		}
		return nil

	case amqp.EventActivityAdded, amqp.EventActivityDeleted:
		return nil

	default:
		slog.WarnContext(ctx, "Unknown event, dropping", "name", ev.Name)
		return nil
	}
}
