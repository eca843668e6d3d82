// Package logging assembles structured slog loggers used across titlemark.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so check code can tag log lines
// with the run identifier. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging
