package templates

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"resume-studio/resume/model"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Template is a catalog entry shown in the template picker.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PreviewURL  string    `json:"previewUrl"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Renderable reports whether the renderer has a layout for this id. Other ids render as modern.
func (t Template) Renderable() bool {
	return model.TemplateID(t.ID).Valid()
}

var (
	ErrNotFound     = errors.New("template not found")
	ErrConflict     = errors.New("template already exists")
	ErrInvalidInput = errors.New("invalid input")
)

var builtinDescriptions = map[model.TemplateID][2]string{
	model.TemplateModern:   {"Modern", "Single column with accent headings"},
	model.TemplateClassic:  {"Classic", "Centered serif header, education first"},
	model.TemplateMinimal:  {"Minimal", "Plain single column"},
	model.TemplateElegant:  {"Elegant", "Sidebar with education and skills"},
	model.TemplateCompact:  {"Compact", "Dates in a left label column"},
	model.TemplateTimeline: {"Timeline", "Entries on a vertical timeline"},
}

// Builtins returns the six renderable templates in display order.
func Builtins() []Template {
	out := make([]Template, 0, len(model.TemplateIDs))
	for _, id := range model.TemplateIDs {
		d := builtinDescriptions[id]
		out = append(out, Template{ID: string(id), Name: d[0], Description: d[1], Status: StatusActive})
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}
