// Package logging assembles structured slog loggers and formatting helpers used
// across storyboard packages.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing (including the rotating log file), and exposes context-aware helpers
// so store and pipeline code can tag log lines with project directories, scene
// IDs, and correlation IDs. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging
