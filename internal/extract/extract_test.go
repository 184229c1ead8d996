package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"resume-studio/internal/shared/storage/object/local"
)

func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + bodyXML + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromDocxUnderZipMime(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Ann Lee</w:t></w:r></w:p><w:p/><w:p/><w:p><w:r><w:t>Engineer</w:t><w:tab/><w:t>Acme</w:t></w:r></w:p>`)
	text, err := Text(context.Background(), data, "application/zip", "cv.zip")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Ann Lee\n\nEngineer\tAcme" {
		t.Fatalf("text = %q", text)
	}
}

func TestTextRejectsPlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("notes.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()

	_, err := Text(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextPlainAndEmpty(t *testing.T) {
	text, err := Text(context.Background(), []byte("Ann\r\n\r\n\r\nGo, SQL  \n"), "", "cv.txt")
	if err != nil || text != "Ann\n\nGo, SQL" {
		t.Fatalf("text=%q err=%v", text, err)
	}
	if _, err := Text(context.Background(), []byte("  \n "), "text/plain", ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	if got := Detect([]byte("%PDF-1.7\n"), "application/octet-stream", "upload"); got != MimePDF {
		t.Fatalf("sniffed pdf = %s", got)
	}
	if got := Detect(nil, "", "resume.DOCX"); got != MimeDOCX {
		t.Fatalf("docx by extension = %s", got)
	}
	if got := Detect(nil, "text/plain; charset=utf-8", "x.bin"); got != MimePlain {
		t.Fatalf("declared text = %s", got)
	}
}

func TestFromStoreWritesSidecar(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()
	if _, err := store.Put(ctx, "imports/u/cv.txt", "text/plain", strings.NewReader("Ann Lee")); err != nil {
		t.Fatalf("put: %v", err)
	}
	text, err := FromStore(ctx, store, "imports/u/cv.txt", "text/plain", "cv.txt")
	if err != nil || text != "Ann Lee" {
		t.Fatalf("text=%q err=%v", text, err)
	}
	rc, err := store.Open(ctx, "imports/u/cv.txt.txt")
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	_ = rc.Close()
}
