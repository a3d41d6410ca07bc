package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"fonarchive/internal/collector"
	"fonarchive/internal/config"
	"fonarchive/internal/failures"
	"fonarchive/internal/fontinfo"
	"fonarchive/internal/ledger"
	"fonarchive/internal/logging"
	"fonarchive/internal/organizer"
	"fonarchive/internal/preflight"
	"fonarchive/internal/progress"
	"fonarchive/internal/workspace"
)

// Asker answers every question a run may ask. *prompt.Prompter satisfies it.
type Asker interface {
	workspace.Asker
	LowSpace(free string) error
}

// Request names the two ends of a run.
type Request struct {
	SourceDir string
	// ArchiveBase is the requested archive folder; the run may settle on a
	// sibling when the user asks for a unique name.
	ArchiveBase string
}

// Skip is one file that did not make it into the archive.
type Skip struct {
	Stage  string
	Path   string
	Reason string
	Err    error
}

// Stats summarizes a run.
type Stats struct {
	ArchiveRoot  string
	Manifest     string
	Copied       int
	Renamed      int
	Leftovers    int
	Fonts        int
	Organized    int
	UnmatchedIDs int
	Skipped      []Skip
	// Families counts filed fonts per family folder.
	Families map[string]int
	Started  time.Time
	Finished time.Time
}

// FamilyCounts returns Families sorted by folder name.
func (s Stats) FamilyCounts() []FamilyCount {
	out := make([]FamilyCount, 0, len(s.Families))
	for name, n := range s.Families {
		out = append(out, FamilyCount{Family: name, Fonts: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Family < out[j].Family })
	return out
}

// FamilyCount is one row of Stats.FamilyCounts.
type FamilyCount struct {
	Family string
	Fonts  int
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	asker    Asker
	progress progress.Factory
	now      func() time.Time
	suffix   func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress draws progress bars for the long stages.
func WithProgress(factory progress.Factory) Option {
	return func(p *Pipeline) { p.progress = factory }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithCollisionSuffix replaces the collector's random suffix source.
func WithCollisionSuffix(fn func() string) Option {
	return func(p *Pipeline) { p.suffix = fn }
}

// New constructs a Pipeline.
func New(cfg *config.Config, logger *slog.Logger, asker Asker, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		asker:  asker,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one archive pass. The returned Stats are filled in as far as
// the run got, even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, req Request) (Stats, error) {
	stats := Stats{Started: p.now(), Families: make(map[string]int)}
	defer func() { stats.Finished = p.now() }()
	logger := logging.WithContext(ctx, p.logger)

	if err := p.preflight(ctx, req, logger); err != nil {
		return stats, err
	}

	ws, err := workspace.Prepare(ctx, req.ArchiveBase, p.asker, p.logger)
	if err != nil {
		return stats, err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			logger.Warn("failed to release archive lock", logging.Error(err))
		}
	}()
	stats.ArchiveRoot = ws.Root
	org := organizer.New(ws.Root, p.logger, organizer.WithReserved(workspace.WorkingDirName))

	collectorOpts := []collector.Option{collector.WithProgress(p.progress)}
	if p.suffix != nil {
		collectorOpts = append(collectorOpts, collector.WithSuffixSource(p.suffix))
	}
	collected, err := collector.New(p.logger, collectorOpts...).Collect(ctx, req.SourceDir, ws.Working)
	stats.Copied = len(collected.Files)
	stats.Renamed = collected.Renamed
	for _, s := range collected.Skipped {
		stats.Skipped = append(stats.Skipped, Skip{Stage: "collect", Path: s.SourceRel, Reason: s.Reason, Err: s.Err})
	}
	if err != nil {
		if failures.IsGracefulExit(err) {
			p.abandon(ctx, org, ws)
		}
		return stats, err
	}

	files := collected.Files
	leftovers, err := collector.Leftovers(ws.Working, collected.Files)
	if err != nil {
		return stats, err
	}
	if len(leftovers) > 0 {
		logger.Info("processing files kept from an earlier run", logging.Int("files", len(leftovers)))
		stats.Leftovers = len(leftovers)
		files = append(files, leftovers...)
	}

	descriptor := fontinfo.LoadDescriptor(filepath.Join(req.SourceDir, p.cfg.Archive.DescriptorName), p.logger)
	validator := fontinfo.NewValidator(p.logger, p.cfg.Archive.MinFontBytes,
		[]fontinfo.Extractor{descriptor, fontinfo.NewSFNTExtractor(p.cfg.Archive.FamilySuffixes)},
		fontinfo.WithProgress(p.progress),
	)
	parsed, err := validator.Parse(ctx, files)
	stats.Fonts = len(parsed.Records)
	stats.UnmatchedIDs = len(parsed.UnmatchedIDs)
	for _, s := range parsed.Skipped {
		stats.Skipped = append(stats.Skipped, Skip{Stage: "validate", Path: s.File.Rel, Reason: s.Reason, Err: s.Err})
	}
	if err != nil {
		return stats, err
	}
	if len(parsed.Records) == 0 {
		logger.Info("no valid fonts found")
		p.abandon(ctx, org, ws)
		return stats, failures.Wrap(failures.ErrNoFonts, "validate", "parse", req.SourceDir, nil)
	}

	if err := p.file(ctx, org, ws, parsed.Records, &stats); err != nil {
		return stats, err
	}

	org.Cleanup(ctx, ws.Working)
	logger.Info("archive complete",
		logging.String("archive", ws.Root),
		logging.Int("copied", stats.Copied),
		logging.Int("fonts", stats.Fonts),
		logging.Int("organized", stats.Organized),
		logging.Int("skipped", len(stats.Skipped)),
		logging.Int("unmatched_ids", stats.UnmatchedIDs),
	)
	return stats, nil
}

func (p *Pipeline) preflight(ctx context.Context, req Request, logger *slog.Logger) error {
	report := preflight.RunAll(ctx, p.cfg, req.SourceDir, req.ArchiveBase)
	for _, res := range report.Results {
		logger.Debug("preflight check",
			logging.String("check", res.Name),
			logging.Bool("passed", res.Passed),
			logging.String("detail", res.Detail),
		)
	}
	if res, failed := report.Fatal(); failed {
		return failures.Wrap(failures.ErrSetup, "preflight", res.Name, res.Detail, nil)
	}
	if report.LowSpace() {
		free := humanize.IBytes(report.FreeBytes)
		logging.WarnWithContext(logger, "low disk space at archive location", "low_disk_space",
			logging.String("free", free),
			logging.String(logging.FieldImpact, "the run may fail part way"),
		)
		if err := p.asker.LowSpace(free); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) file(ctx context.Context, org *organizer.Organizer, ws *workspace.Workspace, records []fontinfo.Record, stats *Stats) error {
	manifest, err := ledger.Open(ws.Root)
	if err != nil {
		return failures.Wrap(failures.ErrSetup, "organize", "open manifest", ws.Root, err)
	}
	stats.Manifest = manifest.Path()

	var bar progress.Tracker = progress.Nop{}
	if p.progress != nil {
		bar = p.progress("Organizing fonts", len(records))
	}
	defer func() { _ = bar.Finish() }()

	for _, rec := range records {
		final, err := org.File(ctx, rec, filepath.Join(ws.Working, filepath.FromSlash(rec.CurrentName)))
		_ = bar.Add(1)
		if err != nil {
			if errors.Is(err, failures.ErrCancelled) {
				_ = manifest.Close()
				return err
			}
			stats.Skipped = append(stats.Skipped, Skip{Stage: "organize", Path: rec.CurrentName, Reason: failures.Reason(err), Err: err})
			logging.WarnWithContext(logging.WithContext(failures.WithFile(ctx, rec.CurrentName), p.logger),
				"could not file font", "organize_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "font is left out of the archive and manifest"),
			)
			continue
		}
		if err := manifest.Append(ledger.RowFromRecord(rec)); err != nil {
			_ = manifest.Close()
			return failures.Wrap(failures.ErrSetup, "organize", "write manifest", manifest.Path(), err)
		}
		stats.Organized++
		stats.Families[filepath.Base(filepath.Dir(final))]++
	}
	if err := manifest.Close(); err != nil {
		return failures.Wrap(failures.ErrSetup, "organize", "close manifest", manifest.Path(), err)
	}
	return nil
}

// abandon tidies up after a run that found nothing to archive: the working
// directory goes, and so does the archive root if nothing else is in it.
func (p *Pipeline) abandon(ctx context.Context, org *organizer.Organizer, ws *workspace.Workspace) {
	org.Cleanup(ctx, ws.Working)
	entries, err := os.ReadDir(ws.Root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.Name() != workspace.LockFileName {
			return
		}
	}
	if err := ws.Release(); err != nil {
		p.logger.Debug("release before removing empty archive", logging.Error(err))
	}
	if err := os.RemoveAll(ws.Root); err != nil {
		p.logger.Debug("could not remove empty archive", logging.String("path", ws.Root), logging.Error(err))
	}
}

// String renders a one-line summary for logs.
func (s Stats) String() string {
	return fmt.Sprintf("copied=%d fonts=%d organized=%d skipped=%d", s.Copied, s.Fonts, s.Organized, len(s.Skipped))
}
