// Package workspace prepares the archive root for a run: it settles what
// happens to an existing archive, creates the working directory, and holds an
// advisory lock so two runs never write into the same archive.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"fonarchive/internal/failures"
	"fonarchive/internal/logging"
	"fonarchive/internal/prompt"
	"fonarchive/internal/staging"
)

const (
	// WorkingDirName is the scratch directory inside the archive root.
	WorkingDirName = "working"
	// LockFileName is the advisory lock held for the duration of a run.
	LockFileName = ".fonarchive.lock"
)

// Asker answers the setup questions. *prompt.Prompter satisfies it.
type Asker interface {
	ExistingArchive(path string) (prompt.ArchiveDecision, error)
	NonEmptyWorking(path string) (prompt.WorkingDecision, error)
}

// Workspace is a prepared archive root.
type Workspace struct {
	Root    string
	Working string

	lock   *flock.Flock
	logger *slog.Logger
}

// Prepare resolves base into the archive root for this run. When base already
// exists the asker decides between overwriting it, using the first free
// base_N sibling, or aborting.
func Prepare(ctx context.Context, base string, asker Asker, logger *slog.Logger) (*Workspace, error) {
	logger = logging.NewComponentLogger(logger, "workspace")
	root := filepath.Clean(base)

	exists, err := dirExists(root)
	if err != nil {
		return nil, failures.Wrap(failures.ErrSetup, "workspace", "stat archive", root, err)
	}
	if exists {
		decision, err := asker.ExistingArchive(root)
		if err != nil {
			return nil, err
		}
		logger.Info("existing archive folder",
			logging.Args(logging.DecisionAttrs("existing_archive", string(decision), root)...)...)
		switch decision {
		case prompt.ArchiveOverwrite:
			if err := ensureUnlocked(root); err != nil {
				return nil, err
			}
			if err := os.RemoveAll(root); err != nil {
				return nil, failures.Wrap(failures.ErrSetup, "workspace", "overwrite archive", root, err)
			}
			logger.Info("overwrote existing archive", logging.String("path", root))
		case prompt.ArchiveUnique:
			root, err = UniqueSibling(root)
			if err != nil {
				return nil, failures.Wrap(failures.ErrSetup, "workspace", "unique archive name", base, err)
			}
		default:
			return nil, failures.Wrap(failures.ErrCancelled, "workspace", "existing archive", "user aborted at existing archive prompt", nil)
		}
	}

	ws := &Workspace{
		Root:    root,
		Working: filepath.Join(root, WorkingDirName),
		logger:  logger,
	}
	if err := os.MkdirAll(ws.Working, 0o755); err != nil {
		return nil, failures.Wrap(failures.ErrSetup, "workspace", "create working dir", ws.Working, err)
	}
	if err := ws.acquire(); err != nil {
		return nil, err
	}
	logger.Info("archive ready", logging.String("root", ws.Root), logging.String("working", ws.Working))

	if err := ws.settleWorking(ctx, asker); err != nil {
		_ = ws.Release()
		return nil, err
	}
	return ws, nil
}

func (w *Workspace) settleWorking(ctx context.Context, asker Asker) error {
	info, err := staging.Inspect(w.Working)
	if err != nil {
		return failures.Wrap(failures.ErrSetup, "workspace", "inspect working dir", w.Working, err)
	}
	if info.Empty() {
		return nil
	}
	decision, err := asker.NonEmptyWorking(w.Working)
	if err != nil {
		return err
	}
	w.logger.Info("working directory not empty",
		logging.Args(append(logging.DecisionAttrs("working_dir", string(decision), "leftover files from an earlier run"),
			logging.Int("files", info.Files), logging.Int64("bytes", info.Size))...)...)
	if decision != prompt.WorkingClear {
		return nil
	}
	result := staging.Clear(ctx, w.Working, w.logger)
	if len(result.Errors) > 0 {
		return failures.Wrap(failures.ErrSetup, "workspace", "clear working dir", w.Working, result.Errors[0].Error)
	}
	w.logger.Info("cleared working directory", logging.String("path", w.Working))
	return nil
}

func (w *Workspace) acquire() error {
	w.lock = flock.New(filepath.Join(w.Root, LockFileName))
	ok, err := w.lock.TryLock()
	if err != nil {
		return failures.Wrap(failures.ErrSetup, "workspace", "acquire lock", w.Root, err)
	}
	if !ok {
		return failures.Wrap(failures.ErrSetup, "workspace", "acquire lock", "archive is in use by another run", nil)
	}
	return nil
}

// Release drops the archive lock and removes the lock file.
func (w *Workspace) Release() error {
	if w == nil || w.lock == nil {
		return nil
	}
	lockPath := w.lock.Path()
	err := w.lock.Unlock()
	w.lock = nil
	if rmErr := os.Remove(lockPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}

// ensureUnlocked fails when another process holds the lock of root.
func ensureUnlocked(root string) error {
	lock := flock.New(filepath.Join(root, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		// No lock file can be created; nothing can be holding it.
		return nil
	}
	if !ok {
		return failures.Wrap(failures.ErrSetup, "workspace", "overwrite archive", "archive is in use by another run", nil)
	}
	return lock.Unlock()
}

// UniqueSibling returns the first of path_1, path_2, ... that does not exist.
func UniqueSibling(path string) (string, error) {
	const maxAttempts = 10000
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := path + "_" + strconv.Itoa(attempt)
		if _, err := os.Lstat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted unique names for %s", path)
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s exists and is not a directory", path)
	}
	return true, nil
}
