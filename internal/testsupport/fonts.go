package testsupport

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"seehuhn.de/go/sfnt/header"
	"seehuhn.de/go/sfnt/name"
	"seehuhn.de/go/sfnt/os2"
)

// Magic numbers recognised by the validator.
var (
	MagicTrueType = []byte{0x00, 0x01, 0x00, 0x00}
	MagicOpenType = []byte("OTTO")
)

// WriteFont writes magic followed by filler up to size bytes. The result only
// passes the signature check; it is not a parseable font.
func WriteFont(t testing.TB, path string, magic []byte, size int64) {
	t.Helper()

	if size < int64(len(magic)) {
		size = int64(len(magic))
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	copy(data, magic)
	WriteBytes(t, path, data)
}

// TableFont describes a font file holding only a table directory, a name
// table, an optional OS/2 table and placeholder tables. Outlines are never
// written, so only readers that stay out of glyph data can describe it.
type TableFont struct {
	ScalerType  uint32 // header.ScalerTypeTrueType or header.ScalerTypeCFF
	Family      string
	Subfamily   string
	Typographic string // name ID 16, omitted when empty
	OS2         *os2.Info
	Placeholder []string // e.g. "CFF2", "fvar"
}

// WriteTableFont encodes font to path and returns the file size.
func WriteTableFont(t testing.TB, path string, font TableFont) int64 {
	t.Helper()

	names := &name.Table{
		Family:            font.Family,
		Subfamily:         font.Subfamily,
		TypographicFamily: font.Typographic,
	}
	tables := map[string][]byte{
		"name": (&name.Info{Windows: name.Tables{"en-US": names}}).Encode(1),
	}
	if font.OS2 != nil {
		tables["OS/2"] = font.OS2.Encode()
	}
	for _, tag := range font.Placeholder {
		tables[tag] = []byte{0, 1, 0, 0}
	}
	scaler := font.ScalerType
	if scaler == 0 {
		scaler = header.ScalerTypeTrueType
	}

	var buf bytes.Buffer
	if _, err := header.Write(&buf, scaler, tables); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	WriteBytes(t, path, buf.Bytes())
	return int64(buf.Len())
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// DescriptorFont is one <font> entry in a test entitlements file.
type DescriptorFont struct {
	ID            string
	FamilyName    string
	FullName      string
	VariationName string
	IsVariable    bool
}

type descriptorFontXML struct {
	XMLName       xml.Name `xml:"font"`
	ID            string   `xml:"id,attr"`
	FamilyName    string   `xml:"familyName,attr,omitempty"`
	FullName      string   `xml:"fullName,attr,omitempty"`
	VariationName string   `xml:"variationName,attr,omitempty"`
	IsVariable    string   `xml:"isVariable,attr,omitempty"`
}

type descriptorXML struct {
	XMLName xml.Name            `xml:"typekitSyncState"`
	Fonts   []descriptorFontXML `xml:"fonts>font"`
}

// WriteDescriptor writes an entitlements file listing fonts under dir and
// returns its path.
func WriteDescriptor(t testing.TB, dir string, fonts ...DescriptorFont) string {
	t.Helper()

	doc := descriptorXML{}
	for _, f := range fonts {
		entry := descriptorFontXML{
			ID:            f.ID,
			FamilyName:    f.FamilyName,
			FullName:      f.FullName,
			VariationName: f.VariationName,
		}
		if f.IsVariable {
			entry.IsVariable = strconv.FormatBool(true)
		}
		doc.Fonts = append(doc.Fonts, entry)
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal descriptor: %v", err)
	}
	path := filepath.Join(dir, "entitlements.xml")
	WriteBytes(t, path, append([]byte(xml.Header), data...))
	return path
}
