package object

import (
	"strings"
	"testing"
)

func TestImportKeyIsUniqueAndNamespaced(t *testing.T) {
	k1, err := ImportKey("u1", "My CV.pdf")
	if err != nil {
		t.Fatalf("import key: %v", err)
	}
	k2, _ := ImportKey("u1", "My CV.pdf")
	if k1 == k2 {
		t.Fatalf("expected unique keys, got %s twice", k1)
	}
	if !strings.HasPrefix(k1, "imports/") || !strings.HasSuffix(k1, "_My CV.pdf") {
		t.Fatalf("unexpected key %s", k1)
	}
	if _, err := ImportKey("u1", "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejected")
	}
}

func TestExportKeyIsStablePerVersion(t *testing.T) {
	a := ExportKey("u1", "r1", 3, ".PDF")
	if a != ExportKey("u1", "r1", 3, "pdf") {
		t.Fatalf("expected stable key")
	}
	if !strings.HasSuffix(a, "/r1/v3.pdf") {
		t.Fatalf("unexpected key %s", a)
	}
}

func TestCleanKey(t *testing.T) {
	cases := map[string]bool{
		"exports/a/b.pdf": true,
		"/exports/a.pdf":  true,
		"../secret":       false,
		"":                false,
		"a/../../b":       false,
	}
	for key, ok := range cases {
		_, err := CleanKey(key)
		if (err == nil) != ok {
			t.Fatalf("CleanKey(%q) err=%v, want ok=%v", key, err, ok)
		}
	}
}

func TestOwnerSegmentIsStableHex(t *testing.T) {
	got := ownerSegment("ann@example.com")
	if got != ownerSegment(" ann@example.com ") {
		t.Fatalf("expected trimmed ids to hash alike")
	}
	if len(got) != 24 || strings.Contains(got, "@") {
		t.Fatalf("unexpected segment %q", got)
	}
}

func TestSafeFileName(t *testing.T) {
	got, err := safeFileName("cv/2024\\final\x07.docx")
	if err != nil {
		t.Fatalf("safe name: %v", err)
	}
	if got != "cv_2024_final.docx" {
		t.Fatalf("got %q", got)
	}

	long, err := safeFileName(strings.Repeat("a", 200) + ".pdf")
	if err != nil {
		t.Fatalf("long name: %v", err)
	}
	if len([]rune(long)) != maxNameRunes || !strings.HasSuffix(long, ".pdf") {
		t.Fatalf("unexpected truncation %q (%d)", long, len([]rune(long)))
	}

	for _, bad := range []string{"", "   ", "\x01\x02"} {
		if _, err := safeFileName(bad); err == nil {
			t.Fatalf("expected %q rejected", bad)
		}
	}
}
