package logging

import "time"

const (
	logTimestampLayout = "2006-01-02 15:04:05"
	// RunLogLayout names run log files, e.g. 2026-10-19_14-03-59.txt.
	RunLogLayout = "2006-01-02_15-04-05"
)

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}
