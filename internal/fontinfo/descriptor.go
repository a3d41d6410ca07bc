package fontinfo

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"fonarchive/internal/collector"
	"fonarchive/internal/logging"
	"fonarchive/internal/textutil"
)

// DescriptorEntry is one <font> element of the entitlements file.
type DescriptorEntry struct {
	ID            string
	FamilyName    string
	FullName      string
	VariationName string
	IsVariable    bool
}

// Descriptor maps descriptor ids to entries and remembers which ids were
// claimed by a working file. The zero value is an empty descriptor.
type Descriptor struct {
	entries map[string]DescriptorEntry
	matched map[string]struct{}
}

// LoadDescriptor reads the entitlements file at path. A missing or unreadable
// file yields an empty descriptor; the problem is logged, never returned.
func LoadDescriptor(path string, logger *slog.Logger) *Descriptor {
	logger = logging.NewComponentLogger(logger, "descriptor")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("no entitlements descriptor; using font tables only", logging.String("path", path))
		} else {
			logging.WarnWithContext(logger, "entitlements descriptor unreadable", "descriptor_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "names come from font tables only"),
			)
		}
		return &Descriptor{}
	}
	defer f.Close()

	d, err := ParseDescriptor(f, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "failed to parse entitlements descriptor", "descriptor_parse_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "names come from font tables only"),
		)
		return &Descriptor{}
	}
	logger.Info("loaded entitlements descriptor", logging.String("path", path), logging.Int("fonts", d.Len()))
	return d
}

// ParseDescriptor reads every <font> element at any depth. Entries missing an
// id, familyName, or fullName are logged and dropped. A syntax error anywhere
// in the document discards the whole descriptor.
func ParseDescriptor(r io.Reader, logger *slog.Logger) (*Descriptor, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Descriptor{entries: make(map[string]DescriptorEntry)}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode descriptor: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "font" {
			continue
		}
		entry, hasID := entryFromAttrs(start.Attr)
		if !hasID || entry.FamilyName == "" || entry.FullName == "" {
			logger.Error("malformed font entry in descriptor",
				logging.String("id", entry.ID),
				logging.String("family", entry.FamilyName),
				logging.String("full_name", entry.FullName),
				logging.String(logging.FieldEventType, "descriptor_entry_malformed"),
			)
			continue
		}
		if _, dup := d.entries[entry.ID]; dup {
			logger.Debug("duplicate descriptor id; later entry wins", logging.String("id", entry.ID))
		}
		d.entries[entry.ID] = entry
	}
	return d, nil
}

func entryFromAttrs(attrs []xml.Attr) (DescriptorEntry, bool) {
	var entry DescriptorEntry
	hasID := false
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "id":
			entry.ID = attr.Value
			hasID = true
		case "familyName":
			entry.FamilyName = attr.Value
		case "fullName":
			entry.FullName = attr.Value
		case "variationName":
			entry.VariationName = attr.Value
		case "isVariable":
			entry.IsVariable = strings.EqualFold(strings.TrimSpace(attr.Value), "true")
		}
	}
	if entry.VariationName == "" {
		entry.VariationName = "Regular"
	}
	return entry, hasID
}

// Len reports the number of usable entries.
func (d *Descriptor) Len() int {
	return len(d.entries)
}

// Lookup returns the entry for id.
func (d *Descriptor) Lookup(id string) (DescriptorEntry, bool) {
	entry, ok := d.entries[id]
	return entry, ok
}

// Unmatched lists, sorted, the descriptor ids no working file claimed.
func (d *Descriptor) Unmatched() []string {
	var ids []string
	for id := range d.entries {
		if _, ok := d.matched[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Name implements Extractor.
func (d *Descriptor) Name() string { return "descriptor" }

// Extract implements Extractor by matching file.ID against the descriptor.
func (d *Descriptor) Extract(_ context.Context, file collector.WorkingFile, fileType FileType) (Record, bool, error) {
	entry, ok := d.Lookup(file.ID)
	if !ok {
		return Record{}, false, nil
	}
	if d.matched == nil {
		d.matched = make(map[string]struct{})
	}
	d.matched[entry.ID] = struct{}{}

	family := textutil.CleanName(entry.FamilyName)
	if family == "" {
		// nothing printable left; the font tables get a turn
		return Record{}, false, nil
	}
	weight, style := splitVariation(textutil.CleanName(entry.VariationName))
	if entry.IsVariable {
		style = StyleVariable
	}
	return Record{
		CurrentName: file.Rel,
		FileType:    fileType,
		FontName:    family,
		Weight:      weight,
		Style:       style,
		IsVariable:  entry.IsVariable,
		BaseFamily:  family,
		XMLID:       entry.ID,
		Source:      d.Name(),
	}, true, nil
}

// splitVariation separates the slope word from a variation name such as
// "Bold Italic". Either half defaults to "Regular".
func splitVariation(variation string) (weight, style string) {
	var rest []string
	for _, word := range strings.Fields(variation) {
		switch {
		case strings.EqualFold(word, "Italic"):
			style = "Italic"
		case strings.EqualFold(word, "Oblique"):
			style = "Oblique"
		default:
			rest = append(rest, word)
		}
	}
	weight = strings.Join(rest, " ")
	if weight == "" {
		weight = "Regular"
	}
	if style == "" {
		style = "Regular"
	}
	return weight, style
}
