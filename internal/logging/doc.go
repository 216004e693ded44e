// Package logging assembles structured slog loggers and formatting helpers used
// across fantamorto.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, stamps every record of a check run with its run_id, and exposes
// context-aware helpers so components tag log lines consistently. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
