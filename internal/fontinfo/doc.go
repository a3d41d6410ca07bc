// Package fontinfo decides which working files are fonts and what they are
// called.
//
// Classification looks only at the first four bytes and the file size; the
// extension is ignored. Metadata comes from an ordered list of Extractor
// implementations: the entitlements descriptor written by the font sync
// client is consulted first, and the font's own SFNT name and OS/2 tables are
// the fallback. The Validator runs both stages over a batch and never stops
// on a single bad file.
package fontinfo
