package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-studio/internal/shared/storage/object"
)

func TestPutAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.Put(ctx, "exports/u/r1/v1.html", "text/html", strings.NewReader("<h1>Ann</h1>"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != 12 {
		t.Fatalf("size = %d", n)
	}
	if _, err := store.Put(ctx, "exports/u/r1/v1.html", "text/html", strings.NewReader("<h1>Bo</h1>")); err != nil {
		t.Fatalf("put again: %v", err)
	}

	rc, err := store.Open(ctx, "exports/u/r1/v1.html")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "<h1>Bo</h1>" {
		t.Fatalf("body = %q", body)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Put(context.Background(), "../escape", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal rejected")
	}
	if _, err := store.Open(context.Background(), "../escape"); err == nil {
		t.Fatalf("expected traversal rejected")
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "exports/u/r1/v9.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	if _, err := store.Put(context.Background(), "imports/u/cv.txt", "text/plain", strings.NewReader("Ann")); err != nil {
		t.Fatalf("put: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "imports", "u"))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "cv.txt" {
		t.Fatalf("unexpected entries %v", entries)
	}
}
