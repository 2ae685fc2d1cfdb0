// Package logging assembles the structured slog loggers used across
// pcbwatch. It owns the console and JSON handlers, level and output
// plumbing (stdout plus the on-disk log file), and the attribute helpers
// components use so every log line carries the same shape. A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
