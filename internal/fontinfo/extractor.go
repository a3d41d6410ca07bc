package fontinfo

import (
	"context"

	"fonarchive/internal/collector"
)

// Extractor produces metadata for one classified working file. ok is false
// when the extractor has nothing to say about the file and the next one
// should be asked; a non-nil error means the file's metadata is unusable.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, file collector.WorkingFile, fileType FileType) (rec Record, ok bool, err error)
}
