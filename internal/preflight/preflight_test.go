package preflight

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"fonarchive/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSourceAccess_ReadOnlyDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckSourceAccess("source", dir); !result.Passed {
		t.Fatalf("read-only source should pass: %s", result.Detail)
	}
	if result := CheckDirectoryAccess("output", dir); result.Passed {
		t.Fatal("read-only directory should fail the write check")
	}
}

func TestCheckSourceAccess_EmptyPath(t *testing.T) {
	result := CheckSourceAccess("source", "")
	if result.Passed || result.Detail != "path not set" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckAccess(t *testing.T) {
	dir := t.TempDir()
	if err := checkAccess(dir, true); err != nil {
		t.Fatalf("checkAccess: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch file left behind: %v", entries)
	}
	if err := checkAccess(filepath.Join(dir, "missing"), false); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("free space not supported on this platform")
	}

	ok, free := CheckDiskSpace(NameDiskSpace, dir, 1)
	if !ok.Passed || free == 0 {
		t.Fatalf("expected pass with free bytes, got %+v free=%d", ok, free)
	}

	low, _ := CheckDiskSpace(NameDiskSpace, dir, math.MaxInt64)
	if low.Passed || !low.Warning {
		t.Fatalf("expected warning for huge threshold, got %+v", low)
	}
	if !strings.Contains(low.Detail, "below") {
		t.Fatalf("unexpected detail %q", low.Detail)
	}
}

func TestNearestExisting(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "FONarchive")
	if got := NearestExisting(deep); got != root {
		t.Fatalf("NearestExisting = %q, want %q", got, root)
	}
}

func TestRunAll(t *testing.T) {
	cfg := config.Default()
	cfg.Archive.LowSpaceBytes = 0
	source := t.TempDir()
	archive := filepath.Join(t.TempDir(), "FONarchive")

	report := RunAll(context.Background(), &cfg, source, archive)
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
	if res, failed := report.Fatal(); failed {
		t.Fatalf("unexpected fatal result %+v", res)
	}
	if report.LowSpace() {
		t.Fatal("zero threshold should never report low space")
	}

	missing := RunAll(context.Background(), &cfg, filepath.Join(source, "nope"), archive)
	res, failed := missing.Fatal()
	if !failed || res.Name != NameSource {
		t.Fatalf("expected source failure, got %+v", res)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if report := RunAll(context.Background(), nil, "", ""); len(report.Results) != 0 {
		t.Fatalf("expected no results, got %v", report.Results)
	}
}
