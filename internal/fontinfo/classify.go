package fontinfo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"fonarchive/internal/failures"
)

// FileType is the container flavour reported by the leading signature.
type FileType string

const (
	// TrueType fonts start with version 1.0.
	TrueType FileType = "ttf"
	// OpenType fonts with CFF outlines start with "OTTO".
	OpenType FileType = "otf"
)

// DefaultMinBytes is the smallest file accepted as a font.
const DefaultMinBytes = 1024

var (
	magicTrueType = []byte{0x00, 0x01, 0x00, 0x00}
	magicOpenType = []byte("OTTO")
)

// Ext returns the file extension including the dot.
func (t FileType) Ext() string {
	return "." + string(t)
}

// Classify checks size and signature of the file at path. Files smaller than
// minBytes fail with failures.ErrUndersized; unknown signatures fail with
// failures.ErrBadMagic.
func Classify(path string, minBytes int64) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", classifyOpenError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", classifyOpenError(path, err)
	}
	if info.Size() < minBytes {
		return "", failures.Wrap(failures.ErrUndersized, stageName, "classify",
			fmt.Sprintf("%s is %d bytes", path, info.Size()), nil)
	}

	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		return "", failures.Wrap(failures.ErrBadMagic, stageName, "classify", path, err)
	}
	return ClassifyHeader(head)
}

// ClassifyHeader maps a four byte signature to a FileType.
func ClassifyHeader(head []byte) (FileType, error) {
	switch {
	case bytes.HasPrefix(head, magicTrueType):
		return TrueType, nil
	case bytes.HasPrefix(head, magicOpenType):
		return OpenType, nil
	default:
		return "", failures.Wrap(failures.ErrBadMagic, stageName, "classify",
			fmt.Sprintf("signature % x", head), nil)
	}
}

func classifyOpenError(path string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return failures.Wrap(failures.ErrPermission, stageName, "classify", path, err)
	}
	return failures.Wrap(failures.ErrMetadata, stageName, "classify", path, err)
}
