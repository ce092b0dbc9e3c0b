package faults_test

import (
	"errors"
	"strings"
	"testing"

	"shoebox/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("permission denied")
	err := faults.Wrap(faults.ErrUnreadable, "planner", "resolve date", "/photos/a.jpg", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrUnreadable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"planner", "resolve date", "/photos/a.jpg", "permission denied"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := faults.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, faults.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{faults.Wrap(faults.ErrConfiguration, "config", "load", "bad", nil), 2},
		{faults.Wrap(faults.ErrValidation, "cli", "flags", "bad", nil), 2},
		{faults.Wrap(faults.ErrLocked, "organizer", "lock", "held", nil), 3},
		{faults.Wrap(faults.ErrSourceRoot, "planner", "stat", "missing", nil), 1},
	}
	for _, tt := range tests {
		if got := faults.ExitCode(tt.err); got != tt.want {
			t.Fatalf("ExitCode(%v) = %d want %d", tt.err, got, tt.want)
		}
	}
}
