package organizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fonarchive/internal/failures"
	"fonarchive/internal/fontinfo"
	"fonarchive/internal/logging"
	"fonarchive/internal/testsupport"
)

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		rec  fontinfo.Record
		want string
	}{
		{fontinfo.Record{BaseFamily: "Arial", Weight: "Bold", Style: "Italic", FileType: fontinfo.TrueType}, "Arial_Bold_Italic.ttf"},
		{fontinfo.Record{BaseFamily: "Arial", Weight: "Bold", Style: "Bold", FileType: fontinfo.TrueType}, "Arial_Bold.ttf"},
		{fontinfo.Record{BaseFamily: "Go", Weight: "Regular", Style: "Regular", FileType: fontinfo.TrueType}, "Go_Regular.ttf"},
		{fontinfo.Record{BaseFamily: "Source Sans", Weight: "Semi Bold", Style: "", FileType: fontinfo.OpenType}, "Source_Sans_Semi_Bold.otf"},
		{fontinfo.Record{BaseFamily: "Recursive", Weight: "Regular", Style: fontinfo.StyleVariable, FileType: fontinfo.OpenType}, "Recursive_Regular_VARIABLE.otf"},
		{fontinfo.Record{BaseFamily: "A/B:C", Weight: "Light?", FileType: fontinfo.OpenType}, "A_B_C_Light.otf"},
		{fontinfo.Record{FileType: fontinfo.OpenType}, "unnamed.otf"},
	}
	for _, tc := range cases {
		if got := CanonicalName(tc.rec); got != tc.want {
			t.Errorf("CanonicalName(%+v) = %q, want %q", tc.rec, got, tc.want)
		}
	}
}

func TestFileMovesIntoFamilyFolder(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "FONarchive")
	working := filepath.Join(root, "working", "200567")
	testsupport.WriteFont(t, working, testsupport.MagicTrueType, 2048)

	o := New(root, logging.NewNop())
	rec := fontinfo.Record{CurrentName: "200567", BaseFamily: "Arial", Weight: "Bold", Style: "Italic", FileType: fontinfo.TrueType}
	got, err := o.File(context.Background(), rec, working)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	want := filepath.Join(root, "Arial", "Arial_Bold_Italic.ttf")
	if got != want {
		t.Fatalf("final path = %q, want %q", got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected filed font: %v", err)
	}
	if _, err := os.Stat(working); !os.IsNotExist(err) {
		t.Fatalf("working copy should be gone, stat err=%v", err)
	}
}

func TestFileAllocatesSuffixes(t *testing.T) {
	root := t.TempDir()
	o := New(root, logging.NewNop())
	rec := fontinfo.Record{BaseFamily: "Arial", Weight: "Bold", Style: "Italic", FileType: fontinfo.TrueType}

	var got []string
	for i, name := range []string{"a", "b", "c"} {
		src := filepath.Join(root, "working", name)
		testsupport.WriteFont(t, src, testsupport.MagicTrueType, int64(2048+i))
		rec.CurrentName = name
		final, err := o.File(context.Background(), rec, src)
		if err != nil {
			t.Fatalf("File(%s): %v", name, err)
		}
		got = append(got, filepath.Base(final))
	}
	want := []string{"Arial_Bold_Italic.ttf", "Arial_Bold_Italic_1.ttf", "Arial_Bold_Italic_2.ttf"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
	info, err := os.Stat(filepath.Join(root, "Arial", "Arial_Bold_Italic_1.ttf"))
	if err != nil || info.Size() != 2049 {
		t.Fatalf("second font should keep its own bytes: %v %v", info, err)
	}
}

func TestFileNeverReusesAName(t *testing.T) {
	root := t.TempDir()
	o := New(root, logging.NewNop())
	rec := fontinfo.Record{BaseFamily: "Go", Weight: "Bold", FileType: fontinfo.TrueType}

	first := filepath.Join(root, "working", "a")
	testsupport.WriteFont(t, first, testsupport.MagicTrueType, 2048)
	final, err := o.File(context.Background(), rec, first)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(final); err != nil {
		t.Fatal(err)
	}

	second := filepath.Join(root, "working", "b")
	testsupport.WriteFont(t, second, testsupport.MagicTrueType, 2048)
	final, err = o.File(context.Background(), rec, second)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(final) != "Go_Bold_1.ttf" {
		t.Fatalf("expected suffix after a freed name, got %s", filepath.Base(final))
	}
}

func TestFileSkipsExistingArchiveFiles(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteJunk(t, filepath.Join(root, "Go", "Go_Regular.ttf"), 10)
	src := filepath.Join(root, "working", "x")
	testsupport.WriteFont(t, src, testsupport.MagicTrueType, 2048)

	final, err := New(root, logging.NewNop()).File(context.Background(),
		fontinfo.Record{BaseFamily: "Go", Weight: "Regular", Style: "Regular", FileType: fontinfo.TrueType}, src)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(final) != "Go_Regular_1.ttf" {
		t.Fatalf("got %s", filepath.Base(final))
	}
}

func TestFileMissingSource(t *testing.T) {
	root := t.TempDir()
	_, err := New(root, logging.NewNop()).File(context.Background(),
		fontinfo.Record{BaseFamily: "Go", FileType: fontinfo.TrueType}, filepath.Join(root, "nope"))
	if !errors.Is(err, failures.ErrMove) {
		t.Fatalf("expected ErrMove, got %v", err)
	}
	if !failures.IsPerFile(err) {
		t.Fatal("move failure should only skip the file")
	}
}

func TestCleanupRemovesWorkingDir(t *testing.T) {
	root := t.TempDir()
	work := filepath.Join(root, "working")
	testsupport.WriteJunk(t, filepath.Join(work, "leftover.txt"), 10)
	testsupport.WriteJunk(t, filepath.Join(work, "nested", "bad.ttf"), 10)

	result := New(root, logging.NewNop()).Cleanup(context.Background(), work)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if _, err := os.Stat(work); !os.IsNotExist(err) {
		t.Fatalf("working dir should be removed, stat err=%v", err)
	}
}

func TestFileAvoidsReservedFolders(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "working", "x")
	testsupport.WriteFont(t, src, testsupport.MagicTrueType, 2048)

	o := New(root, logging.NewNop(), WithReserved("working"))
	final, err := o.File(context.Background(),
		fontinfo.Record{BaseFamily: "Working", Weight: "Bold", FileType: fontinfo.TrueType}, src)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "Working_fonts", "Working_Bold.ttf")
	if final != want {
		t.Fatalf("final path = %q, want %q", final, want)
	}
}
