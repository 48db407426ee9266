package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"timebudget/internal/amqp"
	"timebudget/internal/core"
)

type fakeStore struct {
	activities map[int64][]core.Activity
	failFor    int64
}

func (f *fakeStore) ListUserIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id := range f.activities {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) ListActivities(_ context.Context, userID int64) ([]core.Activity, error) {
	if userID == f.failFor {
		return nil, errors.New("storage down")
	}
	return f.activities[userID], nil
}

type fakeExporter struct {
	reports int
}

func (f *fakeExporter) AppendMonthReport(_ context.Context, _ int64, _ string, _ core.Summary) error {
	f.reports++
	return nil
}

type fakeSummaries struct{}

func (fakeSummaries) Summary(_ context.Context, _ int64, _ time.Time) (core.Summary, error) {
	return core.Summary{DaysLeft: 10}, nil
}

func fixedAt(at time.Time) core.Schedule {
	return core.Schedule{Kind: core.ScheduleFixed, At: at}
}

func TestReminderWorkerScan(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	store := &fakeStore{activities: map[int64][]core.Activity{
		1: {
			{Title: "soon", Schedule: fixedAt(now.Add(30 * time.Minute))},
			{Title: "later", Schedule: fixedAt(now.Add(3 * time.Hour))},
			{Title: "never", Schedule: core.Schedule{}},
		},
		2: {
			{Title: "weekly soon", Schedule: core.Schedule{
				Kind: core.ScheduleWeekly, Weekday: time.Monday, Hour: 12, Minute: 45}},
		},
	}}

	w := NewReminderWorker(store, nil, nil, time.Minute, time.Hour)
	got, err := w.Scan(context.Background(), now)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (only occurrences within the hour)", len(got))
	}
	titles := map[string]bool{}
	for _, r := range got {
		titles[r.Title] = true
	}
	if !titles["soon"] || !titles["weekly soon"] {
		t.Errorf("reminders = %+v, want 'soon' and 'weekly soon'", got)
	}
}

func TestReminderWorkerScanSkipsFailingUser(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		activities: map[int64][]core.Activity{
			1: {{Title: "soon", Schedule: fixedAt(now.Add(time.Minute))}},
			2: {{Title: "unreachable", Schedule: fixedAt(now.Add(time.Minute))}},
		},
		failFor: 2,
	}

	w := NewReminderWorker(store, nil, nil, time.Minute, time.Hour)
	got, err := w.Scan(context.Background(), now)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "soon" {
		t.Errorf("reminders = %+v, want only user 1's", got)
	}
}

func TestReminderWorkerHandleEvent(t *testing.T) {
	tests := []struct {
		name        string
		event       string
		wantReports int
	}{
		{"expense recorded exports a report", amqp.EventExpenseRecorded, 1},
		{"budget set exports a report", amqp.EventBudgetSet, 1},
		{"activity added is logged only", amqp.EventActivityAdded, 0},
		{"unknown event is dropped", "something.else", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &fakeExporter{}
			w := NewReminderWorker(&fakeStore{}, fakeSummaries{}, exp, time.Minute, time.Hour)

			err := w.HandleEvent(context.Background(), amqp.Event{Name: tt.event, UserID: 1})
			if err != nil {
				t.Fatalf("HandleEvent() error = %v", err)
			}
			if exp.reports != tt.wantReports {
				t.Errorf("reports = %d, want %d", exp.reports, tt.wantReports)
			}
		})
	}
}

func TestReminderWorkerHandleEventNoExporter(t *testing.T) {
	w := NewReminderWorker(&fakeStore{}, nil, nil, time.Minute, time.Hour)
	if err := w.HandleEvent(context.Background(), amqp.Event{Name: amqp.EventExpenseRecorded}); err != nil {
		t.Errorf("HandleEvent() without exporter error = %v, want nil", err)
	}
}
