// Package progress renders per-stage progress bars on the terminal.
package progress

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker receives per-file progress from a pipeline stage.
type Tracker interface {
	Add(n int) error
	ChangeMax(n int)
	Finish() error
}

// Factory creates a tracker for one stage. total may be refined later with
// ChangeMax.
type Factory func(description string, total int) Tracker

// NewFactory returns a Factory drawing bars on w. When enabled is false the
// trackers discard updates.
func NewFactory(w io.Writer, enabled bool) Factory {
	if !enabled || w == nil {
		return func(string, int) Tracker { return Nop{} }
	}
	return func(description string, total int) Tracker {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
}

// Nop discards progress.
type Nop struct{}

func (Nop) Add(int) error { return nil }

func (Nop) ChangeMax(int) {}

func (Nop) Finish() error { return nil }
