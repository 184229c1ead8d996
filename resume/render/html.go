package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(template.New("resume").Funcs(template.FuncMap{
	"join": strings.Join,
	"dict": dict,
}).ParseFS(templateFS, "templates/resume.html.tmpl"))

type htmlView struct {
	Title string
	CSS   template.CSS
	Doc   FormattedDocument
}

// HTML renders a formatted document as a standalone HTML page.
func HTML(fd FormattedDocument) (string, error) {
	title := fd.Header.Name.Value
	if fd.Header.Name.Placeholder || title == "" {
		title = "Resume"
	}
	var buf bytes.Buffer
	err := htmlTemplate.ExecuteTemplate(&buf, "resume", htmlView{
		Title: title,
		CSS:   stylesheet(fd.Layout),
		Doc:   fd,
	})
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// stylesheet is assembled from trusted descriptor values only.
func stylesheet(l Layout) template.CSS {
	t := l.Type
	var b strings.Builder
	fmt.Fprintf(&b, "@page{size:A4;margin:14mm}")
	fmt.Fprintf(&b, "body{font-family:%s;font-size:%dpt;color:%s;margin:0;line-height:1.4}", t.FontFamily, t.BaseSizePt, t.TextColor)
	fmt.Fprintf(&b, ".name{font-size:%dpt;margin:0 0 4pt 0;color:%s}", t.NameSizePt, t.AccentColor)
	fmt.Fprintf(&b, ".contacts{color:%s;margin:0}", t.MutedColor)
	fmt.Fprintf(&b, ".centered{text-align:center}")
	fmt.Fprintf(&b, ".section-heading{font-size:%dpt;color:%s;margin:12pt 0 4pt 0}", t.HeadingPt, t.AccentColor)
	fmt.Fprintf(&b, ".section-body,.item-body{white-space:pre-wrap}")
	fmt.Fprintf(&b, ".item{margin-bottom:6pt}.item-head{display:flex;gap:8pt;align-items:baseline}")
	fmt.Fprintf(&b, ".item-title{font-weight:bold}.item-dates{margin-left:auto;color:%s}", t.MutedColor)
	fmt.Fprintf(&b, ".placeholder{color:%s;font-style:italic;opacity:.6}", t.MutedColor)
	switch l.Arrangement {
	case ArrangeSidebar:
		fmt.Fprintf(&b, ".columns{display:grid;grid-template-columns:2fr 1fr;gap:16pt}aside{border-left:1px solid %s;padding-left:12pt}", t.AccentColor)
	case ArrangeLabelGrid:
		fmt.Fprintf(&b, ".item{display:grid;grid-template-columns:28mm 1fr;gap:6pt}.item-label{color:%s}", t.MutedColor)
	case ArrangeTimeline:
		fmt.Fprintf(&b, ".item{position:relative;padding-left:14pt;border-left:2px solid %s}", t.AccentColor)
		fmt.Fprintf(&b, ".timeline-dot{position:absolute;left:-5pt;top:3pt;width:8pt;height:8pt;border-radius:50%%;background:%s}", t.AccentColor)
	default:
		fmt.Fprintf(&b, ".section-heading{border-bottom:1px solid %s;padding-bottom:2pt}", t.AccentColor)
	}
	return template.CSS(b.String())
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict expects key/value pairs")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}
