// Package extract turns uploaded resume files into plain text for parsing.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"resume-studio/internal/shared/storage/object"
)

const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"

	// MaxUploadBytes bounds the files accepted for import.
	MaxUploadBytes = 10 << 20
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrEmptyText   = errors.New("no text found in file")
	ErrTooLarge    = errors.New("file too large")
)

// FromStore reads key from store, extracts its text and writes a "<key>.txt" copy next to it.
func FromStore(ctx context.Context, store object.Store, key, contentType, fileName string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", key, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	text, err := Text(ctx, raw, contentType, fileName)
	if err != nil {
		return "", err
	}
	if _, err := store.Put(ctx, key+".txt", "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("store extracted text: %w", err)
	}
	return text, nil
}

// Text extracts plain text from a PDF, DOCX or text payload.
func Text(ctx context.Context, data []byte, contentType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	var (
		text string
		err  error
	)
	switch kind := Detect(data, contentType, fileName); kind {
	case MimePDF:
		text, err = pdfText(data)
	case MimeDOCX:
		text, err = docxText(data)
	case MimePlain:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text file is not UTF-8", ErrUnsupported)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", fileName, err)
	}
	text = collapseBlankLines(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// Detect resolves the effective type from the declared content type, the file extension and the bytes.
func Detect(data []byte, contentType, fileName string) string {
	declared := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch declared {
	case MimePDF, MimeDOCX, MimePlain:
		return declared
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt", ".md":
		return MimePlain
	}

	sniffed := strings.Split(http.DetectContentType(data), ";")[0]
	switch sniffed {
	case MimePDF, MimePlain:
		return sniffed
	case "application/zip":
		if zipHas(data, "word/document.xml") {
			return MimeDOCX
		}
	}
	if declared != "" {
		return declared
	}
	return sniffed
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordXMLText(rc)
	}
	return "", errors.New("word/document.xml not found")
}

// wordXMLText keeps run text and turns paragraph, break and tab elements into whitespace.
func wordXMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				b.WriteByte('\t')
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}

func zipHas(data []byte, name string) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return true
		}
	}
	return false
}

func collapseBlankLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
