// Package collector copies the font cache into the run's working directory.
//
// The source tree is only ever read. Every regular file is copied with its
// relative directory structure, in lexical order, with a size and SHA-256
// check and the source modification time preserved. Hidden names are made
// visible according to the platform strategy in package hidden, and a name
// that is already taken in the working directory gets an `_xxxxxxxx` suffix
// drawn from a random UUID before its extension.
package collector
