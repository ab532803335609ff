package tasks

import (
	"testing"
	"time"
)

func TestDayKeyUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)

	// 22:30 UTC on the 9th is 01:30 on the 10th in EAT.
	now := time.Date(2026, 3, 9, 22, 30, 0, 0, time.UTC)
	got := DayKey(now, loc)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC key, got %s", got.Location())
	}
}

func TestDayKeySameDayCollapses(t *testing.T) {
	morning := time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC)
	night := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	if !DayKey(morning, nil).Equal(DayKey(night, nil)) {
		t.Fatal("expected instants on the same day to share a key")
	}
	if DayKey(night, nil).Equal(DayKey(night.Add(2*time.Second), nil)) {
		t.Fatal("expected midnight to start a new key")
	}
}
