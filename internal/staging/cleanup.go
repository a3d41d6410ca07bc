package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fonarchive/internal/logging"
)

// CleanResult contains the outcome of a working directory cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Clear removes every entry inside dir and keeps dir itself. A missing dir is
// not an error. It stops early when ctx is cancelled.
func Clear(ctx context.Context, dir string, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: ctx.Err()})
			return result
		}
		entryPath := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(entryPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: entryPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove working entry", "working_cleanup_failed",
				logging.String("path", entryPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the archive folder"),
				logging.String(logging.FieldImpact, "leftover files remain in the working directory"),
			)
			continue
		}
		result.Removed = append(result.Removed, entryPath)
		if logger != nil {
			logger.Info("removed working entry",
				logging.String("path", entryPath),
				logging.String(logging.FieldEventType, "working_cleanup"),
			)
		}
	}

	return result
}

// Remove clears dir and then deletes it. Entries that could not be removed
// keep dir in place and are reported in the result.
func Remove(ctx context.Context, dir string, logger *slog.Logger) CleanResult {
	result := Clear(ctx, dir, logger)
	if len(result.Errors) > 0 || strings.TrimSpace(dir) == "" {
		return result
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
	}
	return result
}

// DirInfo summarizes the regular files below a directory.
type DirInfo struct {
	Path  string
	Files int
	Size  int64
}

// Empty reports whether no files were found.
func (d DirInfo) Empty() bool {
	return d.Files == 0
}

// Inspect counts the regular files below dir and their total size. A missing
// dir yields an empty summary.
func Inspect(dir string) (DirInfo, error) {
	info := DirInfo{Path: dir}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, err
	}
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		info.Files++
		info.Size += fi.Size()
		return nil
	})
	return info, err
}
