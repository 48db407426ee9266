// Package services orchestrates the pure core computations with the
// storage layer and the event stream.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timebudget/internal/amqp"
	"timebudget/internal/core"
)

// LedgerStore is the slice of the repository the ledger service needs.
type LedgerStore interface {
	GetBudget(ctx context.Context, userID int64, month string) (core.Money, error)
	UpsertBudget(ctx context.Context, userID int64, month string, amount core.Money) error
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	ListMonthExpenses(ctx context.Context, userID int64, month string) ([]core.Expense, error)
	ListRecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Expense, error)
}

// EventPublisher pushes events onto the stream. Publishing is best-effort:
// a write that reached the store succeeds even when the publish fails.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev amqp.Event) error
}

// LedgerService owns budgets, expenses and the derived month summary.
type LedgerService struct {
	store  LedgerStore
	events EventPublisher
}

func NewLedgerService(store LedgerStore, events EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// Summary computes the derived month summary for the month containing now.
func (s *LedgerService) Summary(ctx context.Context, userID int64, now time.Time) (core.Summary, error) {
	month := core.MonthKey(now)

	budget, err := s.store.GetBudget(ctx, userID, month)
	if err != nil {
		return core.Summary{}, fmt.Errorf("get budget: %w", err)
	}

	expenses, err := s.store.ListMonthExpenses(ctx, userID, month)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list month expenses: %w", err)
	}

	return core.Summarize(budget, expenses, now), nil
}

// SetBudget upserts the budget amount for the month containing now.
func (s *LedgerService) SetBudget(ctx context.Context, userID int64, amount core.Money, now time.Time) error {
	b := core.Budget{UserID: userID, Month: core.MonthKey(now), Amount: amount}
	if err := b.Validate(); err != nil {
		return err
	}

	if err := s.store.UpsertBudget(ctx, userID, b.Month, amount); err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventBudgetSet, userID, 0, b.Month))
	return nil
}

// RecordExpense inserts an expense. A zero date defaults to today.
func (s *LedgerService) RecordExpense(ctx context.Context, userID int64, amount core.Money, description string, date, now time.Time) (int64, error) {
	if date.IsZero() {
		date = now
	}

	e := core.Expense{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Date:        date,
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	s.publish(ctx, amqp.NewEvent(amqp.EventExpenseRecorded, userID, id, core.MonthKey(date)))
	return id, nil
}

// RecentExpenses returns the user's latest expenses, newest first.
func (s *LedgerService) RecentExpenses(ctx context.Context, userID int64, limit int) ([]core.Expense, error) {
	return s.store.ListRecentExpenses(ctx, userID, limit)
}

// MonthExpenses returns the user's expenses for the month containing now.
func (s *LedgerService) MonthExpenses(ctx context.Context, userID int64, now time.Time) ([]core.Expense, error) {
	return s.store.ListMonthExpenses(ctx, userID, core.MonthKey(now))
}

func (s *LedgerService) publish(ctx context.Context, ev amqp.Event) {
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
