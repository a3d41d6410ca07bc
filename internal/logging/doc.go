// Package logging assembles structured slog loggers and the per-run log file
// used across FONarchive.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code automatically tags log lines
// with the stage name, the file being processed, and the run identifier. The
// run log has a timestamped name and is rotated by lumberjack once it reaches
// its size cap. It is created in the configured log directory and relocated
// into the archive once a run succeeds, so a failed run still leaves
// diagnostics behind. Retention only ever prunes files that IsRunLog accepts.
package logging
