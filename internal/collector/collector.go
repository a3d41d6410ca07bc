package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fonarchive/internal/failures"
	"fonarchive/internal/fileutil"
	"fonarchive/internal/hidden"
	"fonarchive/internal/logging"
	"fonarchive/internal/progress"
)

const stageName = "collect"

// WorkingFile is a copy of one source entry owned by the run.
type WorkingFile struct {
	// SourceRel is the slash-separated path below the source root.
	SourceRel string
	// Rel is the slash-separated path below the working directory.
	Rel string
	// Path is the absolute working path.
	Path string
	// ID is the visible file stem, matched against descriptor ids.
	ID string
	// Size in bytes.
	Size int64
}

// Skipped records a source entry that was not copied.
type Skipped struct {
	SourceRel string
	Reason    string
	Err       error
}

// Result is the outcome of Collect.
type Result struct {
	Files    []WorkingFile
	Skipped  []Skipped
	Renamed  int
	Revealed int
}

// Collector copies the source tree.
type Collector struct {
	logger    *slog.Logger
	progress  progress.Factory
	newSuffix func() string
	// visibleName and reveal default to the platform implementation.
	visibleName func(string) string
	reveal      func(string) (bool, error)
}

// Option configures a Collector.
type Option func(*Collector)

// WithProgress draws a bar while copying.
func WithProgress(factory progress.Factory) Option {
	return func(c *Collector) { c.progress = factory }
}

// WithSuffixSource replaces the collision suffix generator.
func WithSuffixSource(fn func() string) Option {
	return func(c *Collector) { c.newSuffix = fn }
}

// New constructs a Collector.
func New(logger *slog.Logger, opts ...Option) *Collector {
	c := &Collector{
		logger:      logging.NewComponentLogger(logger, "collector"),
		newSuffix:   uuidSuffix,
		visibleName: hidden.VisibleName,
		reveal:      hidden.Reveal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func uuidSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

type sourceEntry struct {
	abs string
	rel string
}

// Collect copies every regular file below sourceRoot into workDir. A missing
// or unreadable source root is a setup error; a source without regular files
// returns an error wrapping failures.ErrNoFiles. Per-file failures are
// recorded in Result.Skipped and do not stop the run.
func (c *Collector) Collect(ctx context.Context, sourceRoot, workDir string) (Result, error) {
	ctx = failures.WithStage(ctx, stageName)
	logger := logging.WithContext(ctx, c.logger)
	var result Result

	info, err := os.Stat(sourceRoot)
	if err != nil {
		return result, failures.Wrap(failures.ErrSetup, stageName, "open source", sourceRoot, err)
	}
	if !info.IsDir() {
		return result, failures.Wrap(failures.ErrSetup, stageName, "open source", sourceRoot+" is not a directory", nil)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return result, failures.Wrap(failures.ErrSetup, stageName, "create working dir", workDir, err)
	}

	entries, walkSkipped, err := c.listSource(sourceRoot, logger)
	if err != nil {
		return result, err
	}
	result.Skipped = append(result.Skipped, walkSkipped...)
	if len(entries) == 0 {
		logger.Info("no files found in source", logging.String("source", sourceRoot))
		return result, failures.Wrap(failures.ErrNoFiles, stageName, "list source", sourceRoot, nil)
	}
	logger.Info("collecting files",
		logging.String("source", sourceRoot),
		logging.String("working", workDir),
		logging.Int("files", len(entries)),
		logging.String("hidden_strategy", hidden.Strategy),
	)

	var bar progress.Tracker = progress.Nop{}
	if c.progress != nil {
		bar = c.progress("Copying files", len(entries))
	}
	defer func() { _ = bar.Finish() }()

	claimed := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, failures.Wrap(failures.ErrCancelled, stageName, "copy", "interrupted", err)
		}
		file, renamed, err := c.copyEntry(sourceRoot, workDir, entry, claimed)
		_ = bar.Add(1)
		fileLogger := logging.WithContext(failures.WithFile(ctx, entry.rel), c.logger)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{SourceRel: entry.rel, Reason: failures.Reason(err), Err: err})
			logging.WarnWithContext(fileLogger, "copy failed; file skipped", "copy_skipped",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check read permission on the font cache"),
				logging.String(logging.FieldImpact, "file is not archived"),
			)
			continue
		}
		if renamed {
			result.Renamed++
			fileLogger.Info("copied under new name",
				logging.String("working_name", file.Rel),
				logging.String(logging.FieldEventType, "copy_renamed"),
			)
		} else {
			fileLogger.Debug("copied", logging.String("working_name", file.Rel))
		}
		if revealed, err := c.reveal(file.Path); err != nil {
			logging.WarnWithContext(fileLogger, "could not clear hidden attribute", "reveal_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "archived file may stay hidden in Explorer"),
			)
		} else if revealed {
			result.Revealed++
			fileLogger.Info("cleared hidden attribute", logging.String(logging.FieldEventType, "hidden_cleared"))
		}
		result.Files = append(result.Files, file)
	}

	logger.Info("collection complete",
		logging.Int("copied", len(result.Files)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("renamed", result.Renamed),
	)
	return result, nil
}

// listSource returns regular files in lexical order. Unreadable directories
// below the root are skipped and reported.
func (c *Collector) listSource(sourceRoot string, logger *slog.Logger) ([]sourceEntry, []Skipped, error) {
	var entries []sourceEntry
	var skipped []Skipped
	err := filepath.WalkDir(sourceRoot, func(p string, d fs.DirEntry, walkErr error) error {
		rel, relErr := filepath.Rel(sourceRoot, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if walkErr != nil {
			if rel == "." {
				return walkErr
			}
			wrapped := failures.Wrap(markerFor(walkErr), stageName, "read source", rel, walkErr)
			skipped = append(skipped, Skipped{SourceRel: rel, Reason: failures.Reason(wrapped), Err: wrapped})
			logging.WarnWithContext(logger, "source entry unreadable; skipped", "source_unreadable",
				logging.String(logging.FieldFile, rel),
				logging.Error(walkErr),
				logging.String(logging.FieldImpact, "entry is not archived"),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			logger.Debug("ignoring non-regular entry", logging.String(logging.FieldFile, rel))
			return nil
		}
		entries = append(entries, sourceEntry{abs: p, rel: rel})
		return nil
	})
	if err != nil {
		return nil, nil, failures.Wrap(failures.ErrSetup, stageName, "walk source", sourceRoot, err)
	}
	return entries, skipped, nil
}

func (c *Collector) copyEntry(sourceRoot, workDir string, entry sourceEntry, claimed map[string]struct{}) (WorkingFile, bool, error) {
	segments := strings.Split(entry.rel, "/")
	renamed := false
	for i, segment := range segments {
		visible := c.visibleName(segment)
		if visible != segment {
			renamed = true
		}
		segments[i] = visible
	}
	rel := path.Join(segments...)
	dir, name := path.Split(rel)
	targetDir := filepath.Join(workDir, filepath.FromSlash(dir))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return WorkingFile{}, false, failures.Wrap(markerFor(err), stageName, "create directory", dir, err)
	}

	stem, ext := splitExt(name)
	candidate := name
	const maxAttempts = 16
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidateRel := path.Join(dir, candidate)
		if _, taken := claimed[candidateRel]; !taken {
			target := filepath.Join(targetDir, candidate)
			err := fileutil.CopyFileVerified(entry.abs, target)
			if err == nil {
				claimed[candidateRel] = struct{}{}
				size := int64(0)
				if info, statErr := os.Stat(target); statErr == nil {
					size = info.Size()
				}
				return WorkingFile{
					SourceRel: entry.rel,
					Rel:       candidateRel,
					Path:      target,
					ID:        DescriptorID(path.Base(entry.rel)),
					Size:      size,
				}, renamed || candidate != name, nil
			}
			if !errors.Is(err, fs.ErrExist) {
				return WorkingFile{}, false, failures.Wrap(markerFor(err), stageName, "copy", entry.rel, err)
			}
			claimed[candidateRel] = struct{}{}
		}
		candidate = stem + "_" + c.newSuffix() + ext
	}
	return WorkingFile{}, false, failures.Wrap(failures.ErrCopy, stageName, "copy",
		fmt.Sprintf("no free name for %s after %d attempts", entry.rel, maxAttempts), nil)
}

func markerFor(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return failures.ErrPermission
	}
	return failures.ErrCopy
}

// splitExt splits name at its last dot. Names without a dot, or whose only
// dot is the first character, have no extension.
func splitExt(name string) (string, string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// DescriptorID derives the descriptor id from a source file name: the name
// without a hiding dot and without its extension.
func DescriptorID(name string) string {
	if hidden.IsDotName(name) {
		name = name[1:]
	}
	stem, _ := splitExt(name)
	return stem
}

// Leftovers lists regular files already in workDir that are not among copied,
// in lexical order. They come from an earlier run whose working directory the
// user chose to keep and are processed like fresh copies.
func Leftovers(workDir string, copied []WorkingFile) ([]WorkingFile, error) {
	known := make(map[string]struct{}, len(copied))
	for _, f := range copied {
		known[f.Rel] = struct{}{}
	}
	var out []WorkingFile
	err := filepath.WalkDir(workDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(workDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := known[rel]; ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, WorkingFile{
			Rel:  rel,
			Path: p,
			ID:   DescriptorID(path.Base(rel)),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, failures.Wrap(failures.ErrSetup, stageName, "list working dir", workDir, err)
	}
	return out, nil
}
