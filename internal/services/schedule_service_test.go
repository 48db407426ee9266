package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"timebudget/internal/amqp"
	"timebudget/internal/core"
)

type fakeActivityStore struct {
	activities []core.Activity
	nextID     int64
}

func (f *fakeActivityStore) CreateActivity(_ context.Context, a core.Activity) (int64, error) {
	f.nextID++
	a.ID = f.nextID
	f.activities = append(f.activities, a)
	return a.ID, nil
}

func (f *fakeActivityStore) ListActivities(_ context.Context, userID int64) ([]core.Activity, error) {
	var out []core.Activity
	for _, a := range f.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActivityStore) DeleteActivity(_ context.Context, id, userID int64) (bool, error) {
	for i, a := range f.activities {
		if a.ID == id && a.UserID == userID {
			f.activities = append(f.activities[:i], f.activities[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestScheduleServiceAddActivity(t *testing.T) {
	t.Run("valid recurring activity gets a parsed schedule", func(t *testing.T) {
		store := &fakeActivityStore{}
		svc := NewScheduleService(store, nil, time.UTC)

		id, err := svc.AddActivity(context.Background(), core.Activity{
			UserID:          1,
			Title:           "gym",
			Kind:            core.KindRecurring,
			Descriptor:      "Monday 14:00",
			DurationMinutes: 90,
		})
		if err != nil {
			t.Fatalf("AddActivity() error = %v", err)
		}
		if id != 1 {
			t.Errorf("id = %d, want 1", id)
		}
		if store.activities[0].Schedule.Kind != core.ScheduleWeekly {
			t.Errorf("schedule kind = %v, want weekly", store.activities[0].Schedule.Kind)
		}
	})

	t.Run("malformed descriptor is stored but never occurs", func(t *testing.T) {
		store := &fakeActivityStore{}
		svc := NewScheduleService(store, nil, time.UTC)

		_, err := svc.AddActivity(context.Background(), core.Activity{
			UserID:          1,
			Title:           "mystery",
			Kind:            core.KindRecurring,
			Descriptor:      "whenever",
			DurationMinutes: 30,
		})
		if err != nil {
			t.Fatalf("AddActivity() error = %v", err)
		}
		if store.activities[0].Schedule.Kind != core.ScheduleNone {
			t.Errorf("schedule kind = %v, want none", store.activities[0].Schedule.Kind)
		}
	})

	t.Run("non-positive duration rejected", func(t *testing.T) {
		svc := NewScheduleService(&fakeActivityStore{}, nil, time.UTC)
		_, err := svc.AddActivity(context.Background(), core.Activity{
			UserID:          1,
			Title:           "gym",
			Kind:            core.KindRecurring,
			Descriptor:      "Monday 14:00",
			DurationMinutes: 0,
		})
		if !errors.Is(err, core.ErrInvalidDuration) {
			t.Errorf("AddActivity() error = %v, want ErrInvalidDuration", err)
		}
	})
}

func TestScheduleServiceDeleteActivity(t *testing.T) {
	seed := func() (*fakeActivityStore, *fakePublisher, *ScheduleService) {
		store := &fakeActivityStore{
			activities: []core.Activity{
				{ID: 5, UserID: 2, Title: "owned by user 2", Kind: core.KindFixed, DurationMinutes: 30},
			},
			nextID: 5,
		}
		pub := &fakePublisher{}
		return store, pub, NewScheduleService(store, pub, time.UTC)
	}

	t.Run("owner delete removes the row", func(t *testing.T) {
		store, pub, svc := seed()
		deleted, err := svc.DeleteActivity(context.Background(), 5, 2)
		if err != nil {
			t.Fatalf("DeleteActivity() error = %v", err)
		}
		if !deleted || len(store.activities) != 0 {
			t.Errorf("deleted = %v, rows = %d; want true and 0 rows", deleted, len(store.activities))
		}
		if len(pub.events) != 1 || pub.events[0].Name != amqp.EventActivityDeleted {
			t.Errorf("events = %+v, want one %s", pub.events, amqp.EventActivityDeleted)
		}
	})

	t.Run("cross-user delete is a no-op", func(t *testing.T) {
		store, pub, svc := seed()
		deleted, err := svc.DeleteActivity(context.Background(), 5, 3)
		if err != nil {
			t.Fatalf("DeleteActivity() error = %v", err)
		}
		if deleted {
			t.Error("deleted = true, want false for another user's activity")
		}
		if len(store.activities) != 1 {
			t.Errorf("rows = %d, want the row to remain", len(store.activities))
		}
		if len(pub.events) != 0 {
			t.Errorf("events = %+v, want none on a no-op delete", pub.events)
		}
	})
}

func TestScheduleServiceUpcoming(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) // Monday
	store := &fakeActivityStore{
		activities: []core.Activity{
			{ID: 1, UserID: 1, Title: "standup", Kind: core.KindRecurring,
				Schedule: core.Schedule{Kind: core.ScheduleWeekly, Weekday: time.Tuesday, Hour: 9}},
			{ID: 2, UserID: 1, Title: "dentist", Kind: core.KindFixed,
				Schedule: core.Schedule{Kind: core.ScheduleFixed, At: now.Add(2 * time.Hour)}},
			{ID: 3, UserID: 9, Title: "someone else", Kind: core.KindFixed,
				Schedule: core.Schedule{Kind: core.ScheduleFixed, At: now.Add(time.Hour)}},
		},
	}
	svc := NewScheduleService(store, nil, time.UTC)

	got, err := svc.Upcoming(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("Upcoming() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (other users' activities excluded)", len(got))
	}
	if got[0].Title != "dentist" || got[1].Title != "standup" {
		t.Errorf("order = [%s, %s], want [dentist, standup]", got[0].Title, got[1].Title)
	}
}
