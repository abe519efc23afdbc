package timeutil

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	t.Parallel()

	value := time.Date(2026, 3, 15, 13, 45, 12, 999, time.Local)
	date := DateOnly(value)
	if date.Hour() != 0 || date.Minute() != 0 || date.Second() != 0 || date.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", date)
	}
	if !SameDay(value, date) {
		t.Fatal("date must stay on the same calendar day")
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	value := time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local)
	if got := FormatDate(value); got != "03/05/2026" {
		t.Fatalf("expected 03/05/2026, got %s", got)
	}
}

func TestMinutesBetween(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local)
	to := from.Add(90 * time.Minute)
	if got := MinutesBetween(from, to); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
	if got := MinutesBetween(to, from); got != -90 {
		t.Fatalf("expected -90, got %d", got)
	}
}
