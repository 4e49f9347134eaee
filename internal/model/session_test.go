package model

import (
	"testing"
	"time"
)

func TestAllowedDeadline(t *testing.T) {
	tests := []struct {
		minutes int
		want    bool
	}{
		{15, true},
		{30, true},
		{45, true},
		{60, true},
		{90, true},
		{120, true},
		{0, false},
		{-15, false},
		{10, false},
		{61, false},
		{150, false},
	}
	for _, tt := range tests {
		if got := AllowedDeadline(tt.minutes); got != tt.want {
			t.Errorf("AllowedDeadline(%d) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}

func TestDeadlineFor(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := DeadlineFor(t0, 60)
	want := t0.Add(60 * time.Minute)
	if !got.Equal(want) {
		t.Fatalf("DeadlineFor = %v, want %v", got, want)
	}
}

func TestDeadlineOptionLabels(t *testing.T) {
	opts := DeadlineOptions()
	if len(opts) != 6 {
		t.Fatalf("expected 6 options, got %d", len(opts))
	}
	wantLabels := map[int]string{
		15:  "in 15 min",
		30:  "in 30 min",
		45:  "in 45 min",
		60:  "in 1 h",
		90:  "in 1 h 30 min",
		120: "in 2 h",
	}
	for _, opt := range opts {
		if want := wantLabels[opt.Minutes]; opt.Label != want {
			t.Errorf("label for %d = %q, want %q", opt.Minutes, opt.Label, want)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	deadline := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	s := Session{Deadline: deadline}
	if s.Expired(deadline.Add(-time.Second)) {
		t.Errorf("session must not be expired before the deadline")
	}
	if s.Expired(deadline) {
		t.Errorf("session must not be expired exactly at the deadline")
	}
	if !s.Expired(deadline.Add(time.Second)) {
		t.Errorf("session must be expired after the deadline")
	}
}
