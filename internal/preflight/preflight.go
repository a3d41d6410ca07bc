package preflight

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"fonarchive/internal/config"
)

// Check names reported in Result.Name.
const (
	NameSource    = "Font cache"
	NameOutput    = "Archive location"
	NameDiskSpace = "Disk space"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Warning marks a failure the user may choose to ignore.
	Warning bool
}

// Report bundles the results of RunAll.
type Report struct {
	Results   []Result
	FreeBytes uint64
}

// Fatal returns the first failed check that is not a warning.
func (r Report) Fatal() (Result, bool) {
	for _, res := range r.Results {
		if !res.Passed && !res.Warning {
			return res, true
		}
	}
	return Result{}, false
}

// LowSpace reports whether the disk-space check failed.
func (r Report) LowSpace() bool {
	for _, res := range r.Results {
		if res.Name == NameDiskSpace && !res.Passed {
			return true
		}
	}
	return false
}

// RunAll executes the checks for a run that reads sourceDir and writes the
// archive at archiveRoot. The archive root may not exist yet; its nearest
// existing ancestor is checked instead.
func RunAll(ctx context.Context, cfg *config.Config, sourceDir, archiveRoot string) Report {
	var report Report
	if cfg == nil {
		return report
	}

	report.Results = append(report.Results, CheckSourceAccess(NameSource, sourceDir))
	if err := ctx.Err(); err != nil {
		return report
	}

	parent := NearestExisting(archiveRoot)
	report.Results = append(report.Results, CheckDirectoryAccess(NameOutput, parent))

	space, free := CheckDiskSpace(NameDiskSpace, parent, cfg.Archive.LowSpaceBytes)
	report.Results = append(report.Results, space)
	report.FreeBytes = free
	return report
}

// NearestExisting walks up from path until it finds an existing directory.
func NearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		info, err := os.Stat(current)
		if err == nil && info.IsDir() {
			return current
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
