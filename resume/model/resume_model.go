package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TemplateID selects the layout used to render a resume.
type TemplateID string

const (
	TemplateModern   TemplateID = "modern"
	TemplateClassic  TemplateID = "classic"
	TemplateMinimal  TemplateID = "minimal"
	TemplateElegant  TemplateID = "elegant"
	TemplateCompact  TemplateID = "compact"
	TemplateTimeline TemplateID = "timeline"

	DefaultTemplate = TemplateModern
)

// TemplateIDs lists every supported template in display order.
var TemplateIDs = []TemplateID{
	TemplateModern,
	TemplateClassic,
	TemplateMinimal,
	TemplateElegant,
	TemplateCompact,
	TemplateTimeline,
}

// Valid reports whether id names a known template.
func (id TemplateID) Valid() bool {
	for _, known := range TemplateIDs {
		if id == known {
			return true
		}
	}
	return false
}

// Resolve returns id, or the default template when id is unknown.
func (id TemplateID) Resolve() TemplateID {
	normalized := TemplateID(strings.ToLower(strings.TrimSpace(string(id))))
	if normalized.Valid() {
		return normalized
	}
	return DefaultTemplate
}

// Status is the publication state tracked by the persistence API.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// NormalizeStatus maps unknown values to draft.
func NormalizeStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPublished:
		return StatusPublished
	default:
		return StatusDraft
	}
}

// ResumeDocument is the canonical structured resume.
type ResumeDocument struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	TemplateID   TemplateID   `json:"templateId"`
	LastModified time.Time    `json:"lastModified"`
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Education    []Education  `json:"education"`
	Experience   []Experience `json:"experience"`
	Projects     []Project    `json:"projects"`
	Skills       string       `json:"skills"`

	Status  Status `json:"status,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Version int64  `json:"version,omitempty"`
}

// PersonalInfo holds contact details and the profile summary.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
	Summary  string `json:"summary"`
}

// Education is a single education entry.
type Education struct {
	ID          string `json:"id"`
	School      string `json:"school"`
	Degree      string `json:"degree"`
	Major       string `json:"major"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Experience is a single work history entry.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Project is a single project entry.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// New returns an empty document with a fresh id and the default template.
func New(title string) ResumeDocument {
	return ResumeDocument{
		ID:           uuid.NewString(),
		Title:        title,
		TemplateID:   DefaultTemplate,
		LastModified: time.Now().UTC(),
		Education:    []Education{},
		Experience:   []Experience{},
		Projects:     []Project{},
		Status:       StatusDraft,
	}
}

// NewEntryID generates an id for a sequence entry.
func NewEntryID() string {
	return uuid.NewString()
}

// Clone returns a deep copy so callers can derive new snapshots without aliasing slices.
func (d ResumeDocument) Clone() ResumeDocument {
	out := d
	out.Education = append([]Education(nil), d.Education...)
	out.Experience = append([]Experience(nil), d.Experience...)
	out.Projects = append([]Project(nil), d.Projects...)
	if out.Education == nil {
		out.Education = []Education{}
	}
	if out.Experience == nil {
		out.Experience = []Experience{}
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	return out
}

// EnsureEntryIDs returns a copy where every entry missing an id has been assigned one.
func (d ResumeDocument) EnsureEntryIDs() ResumeDocument {
	out := d.Clone()
	for i := range out.Education {
		if strings.TrimSpace(out.Education[i].ID) == "" {
			out.Education[i].ID = NewEntryID()
		}
	}
	for i := range out.Experience {
		if strings.TrimSpace(out.Experience[i].ID) == "" {
			out.Experience[i].ID = NewEntryID()
		}
	}
	for i := range out.Projects {
		if strings.TrimSpace(out.Projects[i].ID) == "" {
			out.Projects[i].ID = NewEntryID()
		}
	}
	return out
}

// Normalize fixes up fields the persistence layer relies on.
func (d ResumeDocument) Normalize() ResumeDocument {
	out := d.EnsureEntryIDs()
	out.TemplateID = out.TemplateID.Resolve()
	out.Status = NormalizeStatus(string(out.Status))
	return out
}
