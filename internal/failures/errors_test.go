package failures_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fonarchive/internal/failures"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failures.Wrap(failures.ErrMetadata, "parse", "sfnt", "read name table", base)
	if !errors.Is(err, failures.ErrMetadata) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"parse", "sfnt", "read name table", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := failures.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failures.ErrSetup) {
		t.Fatalf("expected setup marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "fonarchive failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClassification(t *testing.T) {
	cases := []struct {
		err      error
		perFile  bool
		graceful bool
		reason   string
	}{
		{failures.Wrap(failures.ErrUndersized, "validate", "", "", nil), true, false, "undersized"},
		{failures.Wrap(failures.ErrBadMagic, "validate", "", "", nil), true, false, "bad_magic"},
		{failures.Wrap(failures.ErrPermission, "collect", "", "", nil), true, false, "permission"},
		{failures.Wrap(failures.ErrCopy, "collect", "", "", errors.New("io")), true, false, "copy_failed"},
		{failures.Wrap(failures.ErrMetadata, "validate", "", "", nil), true, false, "metadata_failed"},
		{failures.Wrap(failures.ErrMove, "organize", "", "", nil), true, false, "move_failed"},
		{failures.Wrap(failures.ErrNoFiles, "collect", "", "", nil), false, true, "error"},
		{failures.Wrap(failures.ErrCancelled, "setup", "", "", nil), false, false, "cancelled"},
	}
	for _, tc := range cases {
		if got := failures.IsPerFile(tc.err); got != tc.perFile {
			t.Errorf("IsPerFile(%v) = %v, want %v", tc.err, got, tc.perFile)
		}
		if got := failures.IsGracefulExit(tc.err); got != tc.graceful {
			t.Errorf("IsGracefulExit(%v) = %v, want %v", tc.err, got, tc.graceful)
		}
		if got := failures.Reason(tc.err); got != tc.reason {
			t.Errorf("Reason(%v) = %q, want %q", tc.err, got, tc.reason)
		}
	}
}

func TestContextValues(t *testing.T) {
	ctx := failures.WithStage(context.Background(), "organize")
	ctx = failures.WithFile(ctx, "r/200567")
	ctx = failures.WithRunID(ctx, "abc")
	if stage, ok := failures.StageFromContext(ctx); !ok || stage != "organize" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if file, ok := failures.FileFromContext(ctx); !ok || file != "r/200567" {
		t.Fatalf("file = %q, %v", file, ok)
	}
	if id, ok := failures.RunIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("run id = %q, %v", id, ok)
	}
	if got := failures.WithStage(ctx, ""); got != ctx {
		t.Fatal("expected empty stage to return original context")
	}
}
