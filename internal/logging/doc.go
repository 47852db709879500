// Package logging wraps log/slog construction so every command builds its
// logger the same way: console or JSON output, optional log files, and a
// small set of attribute helpers shared across the pipeline.
package logging
