// Package textutil provides text helpers for turning font metadata into
// archive-safe names.
//
// The primary use cases are:
//   - Folding names read from font name tables to plain ASCII (CleanName)
//   - Sanitizing canonical names and family folders for safe filesystem use
//
// Folding relies on golang.org/x/text so that composed and decomposed
// spellings of the same family land in the same folder.
package textutil
