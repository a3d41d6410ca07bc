package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Setup markers end the run.
	ErrSetup     = errors.New("setup error")
	ErrCancelled = errors.New("cancelled by user")
	ErrNoFiles   = errors.New("no files found")
	ErrNoFonts   = errors.New("no valid fonts found")

	// Per-file markers skip one entry.
	ErrBadMagic   = errors.New("unrecognized font signature")
	ErrUndersized = errors.New("file too small")
	ErrMetadata   = errors.New("metadata extraction failed")
	ErrPermission = errors.New("permission denied")
	ErrCopy       = errors.New("copy failed")
	ErrMove       = errors.New("move failed")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSetup
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsPerFile reports whether err only affects a single file.
func IsPerFile(err error) bool {
	switch {
	case errors.Is(err, ErrBadMagic),
		errors.Is(err, ErrUndersized),
		errors.Is(err, ErrMetadata),
		errors.Is(err, ErrPermission),
		errors.Is(err, ErrCopy),
		errors.Is(err, ErrMove):
		return true
	default:
		return false
	}
}

// IsGracefulExit reports whether err means there was nothing to do. The CLI
// exits with status 0 for these.
func IsGracefulExit(err error) bool {
	return errors.Is(err, ErrNoFiles) || errors.Is(err, ErrNoFonts)
}

// Reason returns a short, stable label for the marker carried by err. It is
// used as the skip reason in logs and the run summary.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUndersized):
		return "undersized"
	case errors.Is(err, ErrBadMagic):
		return "bad_magic"
	case errors.Is(err, ErrMetadata):
		return "metadata_failed"
	case errors.Is(err, ErrPermission):
		return "permission"
	case errors.Is(err, ErrCopy):
		return "copy_failed"
	case errors.Is(err, ErrMove):
		return "move_failed"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	default:
		return "error"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "fonarchive failure"
	}
	return strings.Join(parts, ": ")
}
