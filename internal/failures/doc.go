// Package failures defines the error markers shared by every FONarchive stage.
//
// Errors fall into two broad classes. Setup failures (missing source tree,
// user cancellation, declined low-space continuation) end the run with a
// non-zero exit code. Per-file failures (bad magic bytes, undersized files,
// metadata extraction errors, permission problems on a single entry) are
// logged and the batch continues. Wrap tags an error with one of the markers
// below while keeping stage and operation context in the message, so callers
// classify with errors.Is instead of string matching.
package failures
