// Package ledger writes the archive manifest, metadata.csv. Every field is
// quoted, the header is written once per file, and each row is flushed as
// soon as it is appended.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fonarchive/internal/fontinfo"
	"fonarchive/internal/textutil"
)

// FileName is the manifest name inside the archive root.
const FileName = "metadata.csv"

// Columns is the fixed manifest header.
var Columns = []string{
	"current_name", "file_type", "font_name", "weight", "style",
	"is_variable", "base_family", "xml_id",
}

// Row is one manifest line.
type Row struct {
	CurrentName string
	FileType    string
	FontName    string
	Weight      string
	Style       string
	IsVariable  bool
	BaseFamily  string
	XMLID       string
}

// RowFromRecord maps a validated font to its manifest row.
func RowFromRecord(rec fontinfo.Record) Row {
	return Row{
		CurrentName: rec.CurrentName,
		FileType:    string(rec.FileType),
		FontName:    rec.FontName,
		Weight:      rec.Weight,
		Style:       rec.Style,
		IsVariable:  rec.IsVariable,
		BaseFamily:  rec.BaseFamily,
		XMLID:       rec.XMLID,
	}
}

func (r Row) fields() []string {
	variable := textutil.Choose(r.IsVariable, "True", "False")
	return []string{r.CurrentName, r.FileType, r.FontName, r.Weight, r.Style, variable, r.BaseFamily, r.XMLID}
}

// Ledger appends rows to metadata.csv.
type Ledger struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *bufio.Writer
	rows int
}

// Open creates or appends to archiveRoot/metadata.csv. The header is written
// only when the file is new or empty.
func Open(archiveRoot string) (*Ledger, error) {
	path := filepath.Join(archiveRoot, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat manifest: %w", err)
	}
	l := &Ledger{path: path, file: f, w: bufio.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.writeLine(Columns); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write manifest header: %w", err)
		}
	}
	return l, nil
}

// Path returns the manifest location.
func (l *Ledger) Path() string { return l.path }

// Rows reports how many rows were appended through this Ledger.
func (l *Ledger) Rows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

// Append writes row and flushes it to disk.
func (l *Ledger) Append(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("append to closed manifest %s", l.path)
	}
	if err := l.writeLine(row.fields()); err != nil {
		return fmt.Errorf("append manifest row: %w", err)
	}
	l.rows++
	return nil
}

// Close flushes and closes the manifest. It is safe to call more than once.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	flushErr := l.w.Flush()
	closeErr := l.file.Close()
	l.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func (l *Ledger) writeLine(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := l.w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := l.w.WriteString(quote(field)); err != nil {
			return err
		}
	}
	if _, err := l.w.WriteString("\r\n"); err != nil {
		return err
	}
	return l.w.Flush()
}

// quote wraps field in double quotes, doubling any embedded quote.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
