// Package preflight provides readiness checks for the filesystem paths that
// FONarchive depends on.
//
// The run command calls RunAll once, after the archive location is known and
// before any file is copied:
//   - The font cache must exist and be readable.
//   - The directory that will hold the archive must be writable.
//   - Free space on that volume is compared against the low-space threshold.
//
// A failed access check ends the run. A failed disk-space check is only a
// warning; the caller asks the user whether to continue.
package preflight
