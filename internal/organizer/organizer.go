package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fonarchive/internal/failures"
	"fonarchive/internal/fileutil"
	"fonarchive/internal/fontinfo"
	"fonarchive/internal/logging"
	"fonarchive/internal/staging"
	"fonarchive/internal/textutil"
)

const stageName = "organize"

// Organizer moves working files into the archive root.
type Organizer struct {
	root     string
	logger   *slog.Logger
	claimed  map[string]struct{}
	reserved map[string]struct{}
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithReserved keeps family folders from taking any of names, compared
// without regard to case. A family that would take one gets a "_fonts"
// suffix.
func WithReserved(names ...string) Option {
	return func(o *Organizer) {
		for _, name := range names {
			o.reserved[strings.ToLower(name)] = struct{}{}
		}
	}
}

// New returns an Organizer filing into archiveRoot.
func New(archiveRoot string, logger *slog.Logger, opts ...Option) *Organizer {
	o := &Organizer{
		root:     archiveRoot,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		claimed:  make(map[string]struct{}),
		reserved: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CanonicalName builds "{base_family}_{weight}_{style}.{file_type}". Blank
// segments are dropped and a segment equal to the one before it is elided.
func CanonicalName(rec fontinfo.Record) string {
	var segments []string
	for _, raw := range []string{rec.BaseFamily, rec.Weight, rec.Style} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		seg := textutil.SanitizeFileName(raw)
		if n := len(segments); n > 0 && strings.EqualFold(segments[n-1], seg) {
			continue
		}
		segments = append(segments, seg)
	}
	stem := textutil.SanitizeFileName(strings.Join(segments, "_"))
	return stem + rec.FileType.Ext()
}

// FamilyDir returns the sanitized family folder name for rec.
func FamilyDir(rec fontinfo.Record) string {
	family := strings.TrimSpace(rec.BaseFamily)
	if family == "" {
		family = fontinfo.UnknownFamily
	}
	return textutil.SanitizeFileName(family)
}

// File moves workingPath to its canonical place and returns the final path.
func (o *Organizer) File(ctx context.Context, rec fontinfo.Record, workingPath string) (string, error) {
	ctx = failures.WithFile(failures.WithStage(ctx, stageName), rec.CurrentName)
	logger := logging.WithContext(ctx, o.logger)
	if err := ctx.Err(); err != nil {
		return "", failures.Wrap(failures.ErrCancelled, stageName, "file", "interrupted", err)
	}

	family := FamilyDir(rec)
	if _, clash := o.reserved[strings.ToLower(family)]; clash {
		family += "_fonts"
	}
	dir := filepath.Join(o.root, family)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", failures.Wrap(failures.ErrMove, stageName, "create family folder", dir, err)
	}

	name := CanonicalName(rec)
	target, err := o.nextPath(dir, name)
	if err != nil {
		return "", failures.Wrap(failures.ErrMove, stageName, "allocate name", name, err)
	}
	if filepath.Base(target) != name {
		logger.Info("name already taken; using suffix",
			logging.String("wanted", name),
			logging.String("assigned", filepath.Base(target)),
			logging.String(logging.FieldEventType, "name_collision"),
		)
	}

	if err := fileutil.MoveFile(workingPath, target); err != nil {
		if !errors.Is(err, fileutil.ErrSourceRetained) {
			return "", failures.Wrap(failures.ErrMove, stageName, "move", rec.CurrentName, err)
		}
		logging.WarnWithContext(logger, "failed to remove working copy after move; duplicate remains", "working_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the working directory is removed at the end of the run"),
		)
	}
	logger.Info("filed font",
		logging.String("family", filepath.Base(dir)),
		logging.String("name", filepath.Base(target)),
	)
	return target, nil
}

// nextPath returns dir/name or the first dir/stem_N.ext that is neither on
// disk nor handed out earlier.
func (o *Organizer) nextPath(dir, name string) (string, error) {
	const maxAttempts = 10000
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for attempt := 0; attempt <= maxAttempts; attempt++ {
		candidateName := name
		if attempt > 0 {
			candidateName = fmt.Sprintf("%s_%d%s", stem, attempt, ext)
		}
		candidate := filepath.Join(dir, candidateName)
		key := strings.ToLower(candidate)
		if _, taken := o.claimed[key]; taken {
			continue
		}
		if _, err := os.Lstat(candidate); err == nil {
			o.claimed[key] = struct{}{}
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		o.claimed[key] = struct{}{}
		return candidate, nil
	}
	return "", fmt.Errorf("exhausted filename slots for %s in %s", name, dir)
}

// Cleanup removes the working directory and everything left in it.
func (o *Organizer) Cleanup(ctx context.Context, workDir string) staging.CleanResult {
	logger := logging.WithContext(failures.WithStage(ctx, stageName), o.logger)
	result := staging.Remove(ctx, workDir, logger)
	if len(result.Errors) > 0 {
		logging.WarnWithContext(logger, "working directory not fully removed", "working_cleanup_failed",
			logging.String("path", workDir),
			logging.Int("errors", len(result.Errors)),
			logging.String(logging.FieldErrorHint, "delete the working folder by hand"),
		)
	}
	return result
}
