package dateutil

import (
	"testing"
	"time"
)

func TestParse_DateOnly(t *testing.T) {
	got, err := Parse("2024-01-31")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParse_RFC3339(t *testing.T) {
	got, err := Parse("2024-01-31T14:30:00Z")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got.Hour() != 14 || got.Minute() != 30 {
		t.Errorf("unexpected time: %v", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "31/01/2024", "2024-13-01", "yesterday"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestParseOptional(t *testing.T) {
	got, err := ParseOptional("")
	if err != nil || got != nil {
		t.Errorf("expected nil for empty string, got %v, %v", got, err)
	}
	got, err = ParseOptional("2024-06-15")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got == nil || got.Day() != 15 {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 6, 15, 23, 59, 0, 0, time.FixedZone("X", 3*3600))
	if got := FormatDate(ts); got != "2024-06-15" {
		t.Errorf("expected 2024-06-15, got %q", got)
	}
}
