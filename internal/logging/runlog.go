package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"fonarchive/internal/fileutil"
)

const (
	// runLogHeader opens every run log; pruning only touches files that carry it.
	runLogHeader = "# fonarchive run log"
	// backupStampLayout is the timestamp lumberjack puts between the log
	// stem and its extension when it rotates a file aside.
	backupStampLayout = "2006-01-02T15-04-05.000"
	runLogExt         = ".txt"
)

// RunLog is the per-run diagnostic log. It starts in the log directory and is
// moved into the archive root once the run succeeds. Size-capped rotation is
// delegated to lumberjack.
type RunLog struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	path   string
	closed bool
}

// OpenRunLog creates dir/<YYYY-MM-DD_HH-MM-SS>.txt, appending _1, _2, ... when
// a log with the same timestamp already exists. The file rotates once it
// reaches maxSizeMB megabytes, keeping at most backups rotated files.
func OpenRunLog(dir string, now time.Time, maxSizeMB, backups int) (*RunLog, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path, err := createRunLog(dir, now)
	if err != nil {
		return nil, err
	}
	return &RunLog{
		path: path,
		writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    max(maxSizeMB, 1),
			MaxBackups: max(backups, 1),
			LocalTime:  true,
		},
	}, nil
}

// createRunLog claims a fresh name and writes the header line, so the file
// exists before lumberjack first opens it for appending.
func createRunLog(dir string, now time.Time) (string, error) {
	const maxAttempts = 10000
	stem := now.Format(RunLogLayout)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := stem
		if attempt > 0 {
			name = stem + "_" + strconv.Itoa(attempt)
		}
		candidate := filepath.Join(dir, name+runLogExt)
		file, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create run log: %w", err)
		}
		_, err = fmt.Fprintf(file, "%s %s\n", runLogHeader, now.Format(time.RFC3339))
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return "", fmt.Errorf("write run log header: %w", err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("exhausted run log names for %s in %s", stem, dir)
}

func uniqueLogPath(dir, stem string) (string, error) {
	const maxAttempts = 10000
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := stem
		if attempt > 0 {
			name = stem + "_" + strconv.Itoa(attempt)
		}
		candidate := filepath.Join(dir, name+runLogExt)
		if _, err := os.Lstat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted run log names for %s in %s", stem, dir)
}

// Write implements io.Writer so the run log can back a slog handler. Writes
// after Close or Relocate fail with fs.ErrClosed instead of reopening the file.
func (l *RunLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, fs.ErrClosed
	}
	return l.writer.Write(p)
}

// Path returns the current location of the active log file.
func (l *RunLog) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// CapReached reports whether the size cap forced at least one rotation, in
// which case the oldest lines of the run may have been discarded.
func (l *RunLog) CapReached() bool {
	return len(l.Backups()) > 0
}

// Backups lists the rotated files of this log, oldest first.
func (l *RunLog) Backups() []string {
	return backupsOf(l.Path())
}

func backupsOf(path string) []string {
	dir := filepath.Dir(path)
	prefix := trimExt(filepath.Base(path)) + "-"
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, runLogExt) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), runLogExt)
		if _, err := time.Parse(backupStampLayout, stamp); err != nil {
			continue
		}
		backups = append(backups, filepath.Join(dir, name))
	}
	sort.Strings(backups)
	return backups
}

// Close closes the underlying file. It is safe to call more than once.
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *RunLog) closeLocked() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.writer.Close()
}

// Relocate closes the log and moves it, with any backups, into destDir. The
// active file keeps its name unless destDir already holds one with that name,
// in which case the next free numeric suffix is used. Backups follow the
// active file's new stem. It returns the new path of the active file.
func (l *RunLog) Relocate(destDir string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.closeLocked(); err != nil {
		return "", fmt.Errorf("close run log: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create log destination: %w", err)
	}
	if sameDir(destDir, filepath.Dir(l.path)) {
		return l.path, nil
	}

	oldPrefix := trimExt(filepath.Base(l.path)) + "-"
	backups := backupsOf(l.path)
	target, err := uniqueLogPath(destDir, trimExt(filepath.Base(l.path)))
	if err != nil {
		return "", err
	}
	if err := fileutil.MoveFile(l.path, target); err != nil && !errors.Is(err, fileutil.ErrSourceRetained) {
		return "", fmt.Errorf("move run log: %w", err)
	}
	l.path = target

	newPrefix := trimExt(filepath.Base(target)) + "-"
	for _, backup := range backups {
		name := newPrefix + strings.TrimPrefix(filepath.Base(backup), oldPrefix)
		err := fileutil.MoveFile(backup, filepath.Join(destDir, name))
		// lumberjack trims surplus backups in the background; one may vanish.
		if err != nil && !errors.Is(err, fileutil.ErrSourceRetained) && !errors.Is(err, fs.ErrNotExist) {
			return target, fmt.Errorf("move run log backup: %w", err)
		}
	}
	return target, nil
}

// IsRunLog reports whether path is a run log written by fonarchive or one of
// its rotated backups. Names must match the run log layout exactly, and an
// active log must start with the run log header.
func IsRunLog(path string) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, runLogExt) {
		return false
	}
	stem := strings.TrimSuffix(name, runLogExt)
	if len(stem) < len(RunLogLayout) {
		return false
	}
	if _, err := time.ParseInLocation(RunLogLayout, stem[:len(RunLogLayout)], time.Local); err != nil {
		return false
	}
	rest := stem[len(RunLogLayout):]
	if strings.HasPrefix(rest, "_") {
		end := strings.IndexByte(rest, '-')
		if end < 0 {
			end = len(rest)
		}
		if _, err := strconv.Atoi(rest[1:end]); err != nil {
			return false
		}
		rest = rest[end:]
	}
	switch {
	case rest == "":
		return hasRunLogHeader(path)
	case strings.HasPrefix(rest, "-"):
		_, err := time.Parse(backupStampLayout, rest[1:])
		return err == nil
	default:
		return false
	}
}

func hasRunLogHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.HasPrefix(line, runLogHeader)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
