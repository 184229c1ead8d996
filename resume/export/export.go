package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resume-studio/resume/model"
	"resume-studio/resume/render"
)

// Format is an export artifact type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatText Format = "txt"
)

// ErrUnsupportedFormat is returned for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps a query value to a Format, defaulting to PDF.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pdf":
		return FormatPDF, nil
	case "html":
		return FormatHTML, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
	}
}

// Artifact is a rendered export.
type Artifact struct {
	Format      Format
	ContentType string
	FileName    string
	Body        []byte
}

// PrintFunc turns an HTML page into PDF bytes.
type PrintFunc func(ctx context.Context, html string) ([]byte, error)

// Exporter renders documents in export mode and converts them to files.
type Exporter struct {
	Print PrintFunc
}

// New returns an Exporter that prints through headless Chrome.
func New(chromePath string, timeout time.Duration) *Exporter {
	p := &chromePrinter{execPath: strings.TrimSpace(chromePath), timeout: timeout}
	return &Exporter{Print: p.print}
}

// Export renders doc in the requested format. Placeholders never appear in exports.
func (e *Exporter) Export(ctx context.Context, doc model.ResumeDocument, format Format) (Artifact, error) {
	fd := render.Render(doc, render.ModeExport)
	base := fileBase(doc)
	switch format {
	case FormatText:
		return Artifact{
			Format:      FormatText,
			ContentType: "text/plain; charset=utf-8",
			FileName:    base + ".txt",
			Body:        []byte(render.PlainText(fd)),
		}, nil
	case FormatHTML, FormatPDF:
	default:
		return Artifact{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	html, err := render.HTML(fd)
	if err != nil {
		return Artifact{}, err
	}
	if format == FormatHTML {
		return Artifact{
			Format:      FormatHTML,
			ContentType: "text/html; charset=utf-8",
			FileName:    base + ".html",
			Body:        []byte(html),
		}, nil
	}
	if e == nil || e.Print == nil {
		return Artifact{}, errors.New("pdf printer not configured")
	}
	pdf, err := e.Print(ctx, html)
	if err != nil {
		return Artifact{}, fmt.Errorf("print pdf: %w", err)
	}
	return Artifact{
		Format:      FormatPDF,
		ContentType: "application/pdf",
		FileName:    base + ".pdf",
		Body:        pdf,
	}, nil
}

func fileBase(doc model.ResumeDocument) string {
	name := strings.TrimSpace(doc.Title)
	if name == "" {
		name = strings.TrimSpace(doc.PersonalInfo.FullName)
	}
	if name == "" {
		return "resume"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == '.' || r == '"':
			b.WriteRune('_')
		case r == ' ':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type chromePrinter struct {
	execPath string
	timeout  time.Duration
}

func (p *chromePrinter) print(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p.execPath != "" {
		opts = append(opts, chromedp.ExecPath(p.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := p.timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "resume-export-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, err
	}

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 in inches.
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
