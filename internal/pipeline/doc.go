// Package pipeline runs one archive pass end to end: preflight checks,
// archive setup, collection, validation, filing, and the manifest.
//
// Setup problems abort the run. Problems with a single file are recorded in
// Stats.Skipped and the run carries on. An empty font cache, or one without a
// single valid font, ends the run early with an error for which
// failures.IsGracefulExit is true.
package pipeline
