package testsupport

import (
	"bytes"
	"testing"
)

var junkLine = []byte("not a font\n")

// WriteJunk writes size bytes of plain text to path. The content never starts
// with a font signature, so the validator always rejects it. Tests use it for
// stray files and for plain files that block a directory name. A size <= 0
// writes a single line.
func WriteJunk(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = int64(len(junkLine))
	}
	repeats := int(size)/len(junkLine) + 1
	WriteBytes(t, path, bytes.Repeat(junkLine, repeats)[:size])
}
