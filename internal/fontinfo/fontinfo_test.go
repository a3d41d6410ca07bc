package fontinfo

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/sfnt/header"
	"seehuhn.de/go/sfnt/os2"

	"fonarchive/internal/collector"
	"fonarchive/internal/config"
	"fonarchive/internal/failures"
	"fonarchive/internal/logging"
	"fonarchive/internal/testsupport"
)

func workingFile(t *testing.T, dir, rel string) collector.WorkingFile {
	t.Helper()
	return collector.WorkingFile{
		Rel:  rel,
		Path: filepath.Join(dir, filepath.FromSlash(rel)),
		ID:   collector.DescriptorID(filepath.Base(rel)),
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFont(t, filepath.Join(dir, "a.otf"), testsupport.MagicTrueType, 2048)
	testsupport.WriteFont(t, filepath.Join(dir, "b"), testsupport.MagicOpenType, 1024)
	testsupport.WriteFont(t, filepath.Join(dir, "small.ttf"), testsupport.MagicTrueType, 1023)
	testsupport.WriteFont(t, filepath.Join(dir, "wOFF"), []byte("wOFF"), 4096)

	cases := []struct {
		name    string
		want    FileType
		wantErr error
	}{
		{name: "a.otf", want: TrueType},
		{name: "b", want: OpenType},
		{name: "small.ttf", wantErr: failures.ErrUndersized},
		{name: "wOFF", wantErr: failures.ErrBadMagic},
		{name: "missing", wantErr: failures.ErrMetadata},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(filepath.Join(dir, tc.name), DefaultMinBytes)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.True(t, failures.IsPerFile(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseDescriptor(t *testing.T) {
	doc := `<?xml version="1.0"?>
<typekitSyncState>
  <fonts>
    <font id="200567" familyName="Arial" fullName="Arial Bold Italic" variationName="Bold Italic"/>
    <group><font id="300" familyName="Roboto Flex" fullName="Roboto Flex" isVariable="TRUE"/></group>
    <font id="400" familyName="" fullName="Broken"/>
    <font familyName="NoID" fullName="NoID Regular"/>
  </fonts>
</typekitSyncState>`
	d, err := ParseDescriptor(strings.NewReader(doc), logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())

	got, ok := d.Lookup("300")
	require.True(t, ok)
	want := DescriptorEntry{ID: "300", FamilyName: "Roboto Flex", FullName: "Roboto Flex", VariationName: "Regular", IsVariable: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	_, ok = d.Lookup("400")
	require.False(t, ok)
}

func TestParseDescriptorSyntaxError(t *testing.T) {
	_, err := ParseDescriptor(strings.NewReader("<fonts><font id="), logging.NewNop())
	require.Error(t, err)
}

func TestLoadDescriptorMissingIsEmpty(t *testing.T) {
	d := LoadDescriptor(filepath.Join(t.TempDir(), "entitlements.xml"), logging.NewNop())
	require.Equal(t, 0, d.Len())
	_, ok, err := d.Extract(context.Background(), collector.WorkingFile{ID: "1"}, TrueType)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDescriptorExtract(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteDescriptor(t, dir,
		testsupport.DescriptorFont{ID: "200567", FamilyName: "Arial", FullName: "Arial Bold Italic", VariationName: "Bold Italic"},
		testsupport.DescriptorFont{ID: "777", FamilyName: "Recursive", FullName: "Recursive", IsVariable: true},
		testsupport.DescriptorFont{ID: "999", FamilyName: "Unused", FullName: "Unused Regular"},
	)
	d := LoadDescriptor(path, logging.NewNop())

	rec, ok, err := d.Extract(context.Background(), workingFile(t, dir, "200567"), TrueType)
	require.NoError(t, err)
	require.True(t, ok)
	want := Record{
		CurrentName: "200567",
		FileType:    TrueType,
		FontName:    "Arial",
		Weight:      "Bold",
		Style:       "Italic",
		BaseFamily:  "Arial",
		XMLID:       "200567",
		Source:      "descriptor",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	rec, ok, err = d.Extract(context.Background(), workingFile(t, dir, "sub/777.otf"), OpenType)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, rec.IsVariable)
	require.Equal(t, StyleVariable, rec.Style)
	require.Equal(t, "Regular", rec.Weight)

	require.Equal(t, []string{"999"}, d.Unmatched())
}

func TestDescriptorExtractCleansNames(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteDescriptor(t, dir,
		testsupport.DescriptorFont{ID: "300", FamilyName: "Caf\u00e9  Sans", VariationName: "Bold\tItalic"},
		testsupport.DescriptorFont{ID: "301", FamilyName: "\u4e2d\u6587"},
	)
	d := LoadDescriptor(path, logging.NewNop())

	rec, ok, err := d.Extract(context.Background(), workingFile(t, dir, "300"), OpenType)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Cafe Sans", rec.FontName)
	require.Equal(t, "Cafe Sans", rec.BaseFamily)
	require.Equal(t, "Bold", rec.Weight)
	require.Equal(t, "Italic", rec.Style)

	_, ok, err = d.Extract(context.Background(), workingFile(t, dir, "301"), OpenType)
	require.NoError(t, err)
	require.False(t, ok, "a family with no ASCII left should defer to the font tables")
}

func TestSplitVariation(t *testing.T) {
	cases := map[string][2]string{
		"Regular":          {"Regular", "Regular"},
		"Bold Italic":      {"Bold", "Italic"},
		"Italic":           {"Regular", "Italic"},
		"Semibold Oblique": {"Semibold", "Oblique"},
		"Extra Light":      {"Extra Light", "Regular"},
		"":                 {"Regular", "Regular"},
	}
	for in, want := range cases {
		weight, style := splitVariation(in)
		if weight != want[0] || style != want[1] {
			t.Errorf("splitVariation(%q) = %q, %q; want %q, %q", in, weight, style, want[0], want[1])
		}
	}
}

func TestBaseFamily(t *testing.T) {
	r := NewFamilyReducer(config.Default().Archive.FamilySuffixes)
	cases := map[string]string{
		"Minion Pro":            "Minion",
		"Source Sans Bold":      "Source Sans",
		"Acumin  Variable Wide": "Acumin",
		"bold italic":           "Unknown",
		"Boldface":              "Boldface",
		"Go":                    "Go",
		"":                      "Unknown",
	}
	for in, want := range cases {
		if got := r.BaseFamily(in); got != want {
			t.Errorf("BaseFamily(%q) = %q, want %q", in, got, want)
		}
	}
	if got := NewFamilyReducer(nil).BaseFamily(" Go  Mono "); got != "Go Mono" {
		t.Errorf("reducer without suffixes should only collapse whitespace, got %q", got)
	}
}

func TestSFNTExtract(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteBytes(t, filepath.Join(dir, "regular"), goregular.TTF)
	testsupport.WriteBytes(t, filepath.Join(dir, "bi.ttf"), gobolditalic.TTF)
	ex := NewSFNTExtractor(config.Default().Archive.FamilySuffixes)

	rec, ok, err := ex.Extract(context.Background(), workingFile(t, dir, "regular"), TrueType)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Go", rec.FontName)
	require.Equal(t, "Regular", rec.Weight)
	require.Equal(t, "Regular", rec.Style)
	require.False(t, rec.IsVariable)
	require.Equal(t, "Go", rec.BaseFamily)
	require.Empty(t, rec.XMLID)

	rec, _, err = ex.Extract(context.Background(), workingFile(t, dir, "bi.ttf"), TrueType)
	require.NoError(t, err)
	require.Equal(t, "Bold", rec.Weight)
	require.Equal(t, "Italic", rec.Style)
}

func TestSFNTExtractCFF2VariableFont(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteTableFont(t, filepath.Join(dir, "var.otf"), testsupport.TableFont{
		ScalerType:  header.ScalerTypeCFF,
		Family:      "Recursive Sans",
		Subfamily:   "Regular",
		Typographic: "Recursive Sans Variable",
		OS2:         &os2.Info{WeightClass: os2.WeightNormal, IsRegular: true},
		Placeholder: []string{"CFF2", "fvar"},
	})

	rec, ok, err := NewSFNTExtractor(config.Default().Archive.FamilySuffixes).
		Extract(context.Background(), workingFile(t, dir, "var.otf"), OpenType)
	require.NoError(t, err)
	require.True(t, ok)
	want := Record{
		CurrentName: "var.otf",
		FileType:    OpenType,
		FontName:    "Recursive Sans",
		Weight:      "Regular",
		Style:       StyleVariable,
		IsVariable:  true,
		BaseFamily:  "Recursive Sans",
		Source:      "sfnt",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestSFNTExtractWeightFallsBackToOS2(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		file      string
		subfamily string
		metrics   *os2.Info
		weight    string
		style     string
	}{
		{"named.ttf", "Bold Italic", &os2.Info{WeightClass: os2.WeightSemiBold, IsBold: true, IsItalic: true}, "Bold", "Italic"},
		{"flags.ttf", "Regular", &os2.Info{WeightClass: os2.WeightBold, IsBold: true, IsItalic: true}, "Bold", "Italic"},
		{"class.ttf", "Regular", &os2.Info{WeightClass: os2.WeightLight}, "Light", "Regular"},
		{"bare.ttf", "Medium", nil, "Medium", "Regular"},
	}
	ex := NewSFNTExtractor(nil)
	for _, tc := range cases {
		testsupport.WriteTableFont(t, filepath.Join(dir, tc.file), testsupport.TableFont{
			Family:    "Acme",
			Subfamily: tc.subfamily,
			OS2:       tc.metrics,
		})
		rec, _, err := ex.Extract(context.Background(), workingFile(t, dir, tc.file), TrueType)
		require.NoError(t, err, tc.file)
		require.Equal(t, tc.weight, rec.Weight, tc.file)
		require.Equal(t, tc.style, rec.Style, tc.file)
	}
}

func TestSFNTExtractRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFont(t, filepath.Join(dir, "fake.ttf"), testsupport.MagicTrueType, 4096)

	_, ok, err := NewSFNTExtractor(nil).Extract(context.Background(), workingFile(t, dir, "fake.ttf"), TrueType)
	require.True(t, ok)
	require.ErrorIs(t, err, failures.ErrMetadata)
}

func TestValidatorParse(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFont(t, filepath.Join(dir, "200567"), testsupport.MagicTrueType, 2048)
	testsupport.WriteBytes(t, filepath.Join(dir, "a", "go.ttf"), goregular.TTF)
	testsupport.WriteFont(t, filepath.Join(dir, "fake.otf"), testsupport.MagicOpenType, 2048)
	testsupport.WriteJunk(t, filepath.Join(dir, "notes.txt"), 4096)
	testsupport.WriteFont(t, filepath.Join(dir, "tiny.ttf"), testsupport.MagicTrueType, 10)
	descriptorPath := testsupport.WriteDescriptor(t, t.TempDir(),
		testsupport.DescriptorFont{ID: "200567", FamilyName: "Arial", FullName: "Arial Bold Italic", VariationName: "Bold Italic"},
		testsupport.DescriptorFont{ID: "424242", FamilyName: "Ghost", FullName: "Ghost Regular"},
	)

	files := []collector.WorkingFile{
		workingFile(t, dir, "200567"),
		workingFile(t, dir, "a/go.ttf"),
		workingFile(t, dir, "fake.otf"),
		workingFile(t, dir, "notes.txt"),
		workingFile(t, dir, "tiny.ttf"),
	}
	v := NewValidator(logging.NewNop(), DefaultMinBytes, []Extractor{
		LoadDescriptor(descriptorPath, logging.NewNop()),
		NewSFNTExtractor(config.Default().Archive.FamilySuffixes),
	})

	result, err := v.Parse(context.Background(), files)
	require.NoError(t, err)

	got := make([]string, 0, len(result.Records))
	for _, rec := range result.Records {
		got = append(got, rec.CurrentName+"="+rec.Source)
	}
	require.Equal(t, []string{"200567=descriptor", "a/go.ttf=sfnt"}, got)

	reasons := map[string]string{}
	for _, s := range result.Skipped {
		reasons[s.File.Rel] = s.Reason
	}
	want := map[string]string{
		"fake.otf":  "metadata_failed",
		"notes.txt": "bad_magic",
		"tiny.ttf":  "undersized",
	}
	if diff := cmp.Diff(want, reasons, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("skip reasons mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"424242"}, result.UnmatchedIDs)
}

func TestValidatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := NewValidator(logging.NewNop(), 0, nil)
	_, err := v.Parse(ctx, []collector.WorkingFile{{Rel: "x"}})
	if !errors.Is(err, failures.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}
