package fontinfo

import (
	"context"
	"errors"
	"log/slog"

	"fonarchive/internal/collector"
	"fonarchive/internal/failures"
	"fonarchive/internal/logging"
	"fonarchive/internal/progress"
)

// Result is the outcome of one validation pass.
type Result struct {
	Records []Record
	Skipped []Skipped
	// UnmatchedIDs are descriptor ids no working file claimed.
	UnmatchedIDs []string
}

type unmatchedReporter interface {
	Unmatched() []string
}

// Validator classifies working files and extracts their metadata.
type Validator struct {
	logger     *slog.Logger
	minBytes   int64
	extractors []Extractor
	progress   progress.Factory
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithProgress draws a bar while validating.
func WithProgress(factory progress.Factory) ValidatorOption {
	return func(v *Validator) { v.progress = factory }
}

// NewValidator asks extractors in order; the first to answer wins.
func NewValidator(logger *slog.Logger, minBytes int64, extractors []Extractor, opts ...ValidatorOption) *Validator {
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	v := &Validator{
		logger:     logging.NewComponentLogger(logger, "validator"),
		minBytes:   minBytes,
		extractors: extractors,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Parse validates files in order. Per-file problems land in Result.Skipped;
// only cancellation returns an error.
func (v *Validator) Parse(ctx context.Context, files []collector.WorkingFile) (Result, error) {
	ctx = failures.WithStage(ctx, stageName)
	logger := logging.WithContext(ctx, v.logger)
	var result Result

	var bar progress.Tracker = progress.Nop{}
	if v.progress != nil {
		bar = v.progress("Validating fonts", len(files))
	}
	defer func() { _ = bar.Finish() }()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, failures.Wrap(failures.ErrCancelled, stageName, "parse", "interrupted", err)
		}
		fileCtx := failures.WithFile(ctx, file.Rel)
		rec, err := v.parseOne(fileCtx, file)
		_ = bar.Add(1)
		fileLogger := logging.WithContext(fileCtx, v.logger)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{File: file, Reason: failures.Reason(err), Err: err})
			v.logSkip(fileLogger, err)
			continue
		}
		fileLogger.Info("font accepted",
			logging.String("file_type", string(rec.FileType)),
			logging.String("font_name", rec.FontName),
			logging.String("weight", rec.Weight),
			logging.String("style", rec.Style),
			logging.String("metadata_source", rec.Source),
		)
		result.Records = append(result.Records, rec)
	}

	for _, ex := range v.extractors {
		reporter, ok := ex.(unmatchedReporter)
		if !ok {
			continue
		}
		for _, id := range reporter.Unmatched() {
			logger.Info("descriptor id not found in working files",
				logging.String("xml_id", id),
				logging.String(logging.FieldEventType, "descriptor_id_unmatched"),
			)
			result.UnmatchedIDs = append(result.UnmatchedIDs, id)
		}
	}

	logger.Info("validation complete",
		logging.Int("fonts", len(result.Records)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("unmatched_ids", len(result.UnmatchedIDs)),
	)
	return result, nil
}

func (v *Validator) parseOne(ctx context.Context, file collector.WorkingFile) (Record, error) {
	fileType, err := Classify(file.Path, v.minBytes)
	if err != nil {
		return Record{}, err
	}
	for _, ex := range v.extractors {
		rec, ok, err := ex.Extract(ctx, file, fileType)
		if err != nil {
			return Record{}, err
		}
		if ok {
			return rec, nil
		}
	}
	return Record{}, failures.Wrap(failures.ErrMetadata, stageName, "extract", "no extractor recognised "+file.Rel, nil)
}

// logSkip keeps non-font noise at debug; files that looked like fonts but
// failed later are warnings.
func (v *Validator) logSkip(logger *slog.Logger, err error) {
	reason := failures.Reason(err)
	switch {
	case errors.Is(err, failures.ErrBadMagic), errors.Is(err, failures.ErrUndersized):
		logger.Info("not a font; ignored",
			logging.String("reason", reason),
			logging.Error(err),
			logging.String(logging.FieldEventType, "non_font_ignored"),
		)
	default:
		logging.WarnWithContext(logger, "font metadata unreadable; file skipped", "metadata_failed",
			logging.String("reason", reason),
			logging.Error(err),
			logging.String(logging.FieldImpact, "font is not archived"),
		)
	}
}
