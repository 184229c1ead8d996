package object

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"
)

// maxNameRunes bounds the stored part of an uploaded file name.
const maxNameRunes = 96

var errBadFileName = errors.New("invalid file name")

// ErrNotFound is returned by Open when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// Store saves and retrieves binary artifacts: imported uploads and exported resumes.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImportKey returns a unique key for an uploaded file under the user's namespace.
func ImportKey(userID, fileName string) (string, error) {
	name, err := safeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("import key: %w", err)
	}
	return path.Join("imports", ownerSegment(userID), randomID()+"_"+name), nil
}

// ExportKey returns the key of an exported resume at a given version.
// The same version always maps to the same key so re-exports overwrite.
func ExportKey(userID, resumeID string, version int, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return path.Join("exports", ownerSegment(userID), resumeID, fmt.Sprintf("v%d.%s", version, ext))
}

// CleanKey rejects absolute keys and traversal.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.TrimLeft(strings.TrimSpace(key), "/"))
	if clean == "." || clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key")
	}
	return clean, nil
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// ownerSegment keeps raw user ids (often emails for Google accounts) out of object keys.
func ownerSegment(userID string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(userID)))
	return hex.EncodeToString(sum[:12])
}

// safeFileName flattens separators and control characters and truncates long names,
// keeping the extension so content sniffing on import still sees it.
func safeFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", errBadFileName
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	out := []rune(strings.TrimSpace(b.String()))
	if len(out) == 0 {
		return "", errBadFileName
	}
	if len(out) > maxNameRunes {
		ext := []rune(path.Ext(string(out)))
		if len(ext) >= maxNameRunes {
			ext = nil
		}
		out = append(out[:maxNameRunes-len(ext)], ext...)
	}
	return string(out), nil
}
