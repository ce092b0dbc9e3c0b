// Package logging assembles structured slog loggers and formatting helpers used
// across shoebox commands.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so planner and organizer code can
// tag log lines with the run identifier. A no-op logger is provided for tests
// and wiring code that must not fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
