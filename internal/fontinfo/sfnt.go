package fontinfo

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/language"
	"seehuhn.de/go/sfnt/header"
	"seehuhn.de/go/sfnt/name"
	"seehuhn.de/go/sfnt/os2"

	"fonarchive/internal/collector"
	"fonarchive/internal/failures"
	"fonarchive/internal/textutil"
)

// SFNTExtractor reads names from the font's own tables. Only the table
// directory and the name and OS/2 tables are decoded, so fonts with outline
// formats the parser cannot load (CFF2 variable fonts) are still described.
type SFNTExtractor struct {
	families *FamilyReducer
}

// NewSFNTExtractor derives base families with the given suffix words.
func NewSFNTExtractor(suffixes []string) *SFNTExtractor {
	return &SFNTExtractor{families: NewFamilyReducer(suffixes)}
}

// Name implements Extractor.
func (e *SFNTExtractor) Name() string { return "sfnt" }

// Extract implements Extractor. It always answers; a font that cannot be
// parsed is reported as a failures.ErrMetadata error.
func (e *SFNTExtractor) Extract(_ context.Context, file collector.WorkingFile, fileType FileType) (Record, bool, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return Record{}, true, classifyOpenError(file.Rel, err)
	}
	defer f.Close()

	rec, err := e.read(f)
	if err != nil {
		return Record{}, true, failures.Wrap(failures.ErrMetadata, stageName, "read font tables", file.Rel, err)
	}
	rec.CurrentName = file.Rel
	rec.FileType = fileType
	return rec, true, nil
}

func (e *SFNTExtractor) read(r io.ReaderAt) (Record, error) {
	hdr, err := header.Read(r)
	if err != nil {
		return Record{}, fmt.Errorf("sfnt header: %w", err)
	}
	names, err := readNames(r, hdr)
	if err != nil {
		return Record{}, err
	}
	metrics, err := readOS2(r, hdr)
	if err != nil {
		return Record{}, err
	}

	legacy := textutil.CleanName(names.Family)
	typographic := textutil.CleanName(names.TypographicFamily)
	family := textutil.FirstNonEmpty(legacy, typographic)
	if family == "" {
		return Record{}, fmt.Errorf("font has no family name")
	}
	subfamily := textutil.FirstNonEmpty(
		textutil.CleanName(names.TypographicSubfamily),
		textutil.CleanName(names.Subfamily),
	)
	weight, style := subfamilyParts(subfamily, metrics)

	_, variable := hdr.Toc["fvar"]
	if variable {
		style = StyleVariable
	}
	return Record{
		FontName:   family,
		Weight:     weight,
		Style:      style,
		IsVariable: variable,
		BaseFamily: e.families.BaseFamily(textutil.FirstNonEmpty(typographic, family)),
		Source:     e.Name(),
	}, nil
}

// readNames picks the name records best matching American English,
// preferring the Windows platform.
func readNames(r io.ReaderAt, hdr *header.Info) (*name.Table, error) {
	data, err := hdr.ReadTableBytes(r, "name")
	if err != nil {
		if header.IsMissing(err) {
			return nil, fmt.Errorf("font has no name table")
		}
		return nil, err
	}
	info, err := name.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("name table: %w", err)
	}
	win, winConf := info.Windows.Choose(language.AmericanEnglish)
	mac, macConf := info.Mac.Choose(language.AmericanEnglish)
	table := win
	if table == nil || winConf < language.High && macConf > winConf {
		table = mac
	}
	if table == nil {
		return nil, fmt.Errorf("name table has no usable records")
	}
	return table, nil
}

// readOS2 returns nil without error when the font has no OS/2 table.
func readOS2(r io.ReaderAt, hdr *header.Info) (*os2.Info, error) {
	section, err := hdr.TableReader(r, "OS/2")
	if err != nil {
		if header.IsMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	info, err := os2.Read(section)
	if err != nil {
		return nil, fmt.Errorf("OS/2 table: %w", err)
	}
	return info, nil
}

// subfamilyParts splits the subfamily name into weight and slope. The OS/2
// flags and weight class only fill in what the name leaves as Regular.
func subfamilyParts(subfamily string, metrics *os2.Info) (weight, style string) {
	weight, style = splitVariation(subfamily)
	if metrics == nil {
		return weight, style
	}
	if style == "Regular" {
		switch {
		case metrics.IsOblique:
			style = "Oblique"
		case metrics.IsItalic:
			style = "Italic"
		}
	}
	if weight == "Regular" {
		switch {
		case metrics.IsBold:
			weight = "Bold"
		case metrics.WeightClass != 0 && metrics.WeightClass != os2.WeightNormal:
			if simple := textutil.CleanName(metrics.WeightClass.SimpleString()); simple != "" {
				weight = simple
			}
		}
	}
	return weight, style
}
