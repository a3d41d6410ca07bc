// Package organizer files validated fonts into the archive.
//
// Each font lands in a folder named after its base family under a canonical
// name built from family, weight, and style. Name collisions get the first
// free numeric suffix; names handed out earlier in the run are never reused,
// even if the file behind them has since gone away. Once every font is filed
// the working directory is removed.
package organizer
