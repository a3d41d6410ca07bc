package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"fonarchive/internal/pipeline"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderSummary(stats pipeline.Stats, logPath string, colorize bool) string {
	var b strings.Builder
	b.WriteString(colorText("== FONarchive summary ==", ansiBlue, colorize))
	b.WriteString("\n")

	rows := [][]string{
		{"Archive", stats.ArchiveRoot},
		{"Manifest", stats.Manifest},
		{"Run log", logPath},
		{"Files copied", strconv.Itoa(stats.Copied)},
		{"Renamed on copy", strconv.Itoa(stats.Renamed)},
		{"Valid fonts", strconv.Itoa(stats.Fonts)},
		{"Organized", strconv.Itoa(stats.Organized)},
		{"Skipped", strconv.Itoa(len(stats.Skipped))},
		{"Unmatched descriptor ids", strconv.Itoa(stats.UnmatchedIDs)},
	}
	if !stats.Started.IsZero() && !stats.Finished.IsZero() {
		rows = append(rows, []string{"Took", stats.Finished.Sub(stats.Started).Round(time.Millisecond).String()})
	}
	b.WriteString(renderTable([]string{"Item", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
	b.WriteString("\n")

	if families := stats.FamilyCounts(); len(families) > 0 {
		familyRows := make([][]string, 0, len(families))
		for _, f := range families {
			familyRows = append(familyRows, []string{f.Family, strconv.Itoa(f.Fonts)})
		}
		b.WriteString(renderTable([]string{"Family", "Fonts"}, familyRows, []columnAlignment{alignLeft, alignRight}))
		b.WriteString("\n")
	}

	if len(stats.Skipped) > 0 {
		counts := map[string]int{}
		var order []string
		for _, s := range stats.Skipped {
			key := s.Stage + "/" + s.Reason
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
		skipRows := make([][]string, 0, len(order))
		for _, key := range order {
			stage, reason, _ := strings.Cut(key, "/")
			skipRows = append(skipRows, []string{stage, reason, strconv.Itoa(counts[key])})
		}
		skipTable := renderTable([]string{"Stage", "Reason", "Files"}, skipRows, []columnAlignment{alignLeft, alignLeft, alignRight})
		b.WriteString(colorText(skipTable, ansiYellow, colorize))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// capWarning is printed when the run log rotated at least once.
func capWarning(maxSizeMB int) string {
	return fmt.Sprintf("Warning: Log file exceeded %s cap.", humanize.IBytes(uint64(maxSizeMB)<<20))
}

func colorText(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
