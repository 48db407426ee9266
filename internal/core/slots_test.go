package core

import (
	"testing"
	"time"
)

func TestSuggestSlots(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC) // Monday

	got := SuggestSlots(60, now)
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}

	want := []Slot{
		{Date: "2024-06-11", Time: "14:00", Label: "Tuesday, 14:00"},
		{Date: "2024-06-11", Time: "18:00", Label: "Tuesday, 18:00"},
		{Date: "2024-06-12", Time: "14:00", Label: "Wednesday, 14:00"},
		{Date: "2024-06-12", Time: "18:00", Label: "Wednesday, 18:00"},
		{Date: "2024-06-13", Time: "14:00", Label: "Thursday, 14:00"},
		{Date: "2024-06-13", Time: "18:00", Label: "Thursday, 18:00"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSuggestSlotsIgnoresDuration(t *testing.T) {
	// The heuristic is duration-blind: no free-busy search in scope.
	now := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)
	short := SuggestSlots(15, now)
	long := SuggestSlots(480, now)
	if len(short) != len(long) {
		t.Fatalf("lengths differ: %d vs %d", len(short), len(long))
	}
	for i := range short {
		if short[i] != long[i] {
			t.Errorf("slot %d differs by duration: %+v vs %+v", i, short[i], long[i])
		}
	}
}

func TestSuggestSlotsCrossesMonthBoundary(t *testing.T) {
	now := time.Date(2024, 6, 29, 20, 0, 0, 0, time.UTC)
	got := SuggestSlots(30, now)
	if got[0].Date != "2024-06-30" {
		t.Errorf("first slot date = %s, want 2024-06-30", got[0].Date)
	}
	if got[2].Date != "2024-07-01" {
		t.Errorf("third slot date = %s, want 2024-07-01", got[2].Date)
	}
}
