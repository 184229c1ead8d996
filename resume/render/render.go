package render

import (
	"strconv"
	"strings"

	"resume-studio/resume/model"
)

// Mode controls how empty scalar fields are rendered.
type Mode int

const (
	// ModePreview shows placeholders for empty fields while editing.
	ModePreview Mode = iota
	// ModeExport leaves empty fields empty.
	ModeExport
)

const (
	placeholderName     = "Your Name"
	placeholderPosition = "Position"
	placeholderCompany  = "Company"
	placeholderSchool   = "School"
	placeholderDegree   = "Degree"
	placeholderProject  = "Project Name"
)

// Text is a rendered scalar; Placeholder marks editing affordances.
type Text struct {
	Value       string
	Placeholder bool
}

// Empty reports whether there is nothing to show.
func (t Text) Empty() bool { return t.Value == "" }

// FormattedDocument is the layout-resolved form of a resume.
type FormattedDocument struct {
	TemplateID model.TemplateID
	Layout     Layout
	Mode       Mode
	Header     Header
	Sections   []Section
}

// Header holds the name and contact line.
type Header struct {
	Name     Text
	Contacts []string
}

// Section is one visible block. Body is set for summary and skills; Items for sequences.
type Section struct {
	Kind    SectionKind
	Heading string
	Aside   bool
	Body    string
	Items   []Item
}

// Item is one rendered entry from a sequence.
type Item struct {
	Key      string
	Title    Text
	Subtitle Text
	Dates    string
	Body     string
	Link     string
}

// Render maps a document onto its template layout. It does not modify doc.
func Render(doc model.ResumeDocument, mode Mode) FormattedDocument {
	layout := LayoutFor(doc.TemplateID)
	out := FormattedDocument{
		TemplateID: layout.ID,
		Layout:     layout,
		Mode:       mode,
		Header: Header{
			Name:     scalar(doc.PersonalInfo.FullName, placeholderName, mode),
			Contacts: contacts(doc.PersonalInfo),
		},
	}
	for _, kind := range layout.Order {
		section, ok := buildSection(kind, doc, layout, mode)
		if !ok {
			continue
		}
		out.Sections = append(out.Sections, section)
	}
	return out
}

// HasSection reports whether the formatted document contains kind.
func (fd FormattedDocument) HasSection(kind SectionKind) bool {
	for _, s := range fd.Sections {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// MainSections returns the sections placed in the main column.
func (fd FormattedDocument) MainSections() []Section {
	var out []Section
	for _, s := range fd.Sections {
		if !s.Aside {
			out = append(out, s)
		}
	}
	return out
}

// AsideSections returns the sections placed in the sidebar.
func (fd FormattedDocument) AsideSections() []Section {
	var out []Section
	for _, s := range fd.Sections {
		if s.Aside {
			out = append(out, s)
		}
	}
	return out
}

func buildSection(kind SectionKind, doc model.ResumeDocument, layout Layout, mode Mode) (Section, bool) {
	section := Section{
		Kind:    kind,
		Heading: heading(kind, layout),
		Aside:   layout.Arrangement == ArrangeSidebar && layout.Aside[kind],
	}
	switch kind {
	case SectionSummary:
		if strings.TrimSpace(doc.PersonalInfo.Summary) == "" {
			return Section{}, false
		}
		section.Body = doc.PersonalInfo.Summary
	case SectionSkills:
		if strings.TrimSpace(doc.Skills) == "" {
			return Section{}, false
		}
		section.Body = doc.Skills
	case SectionExperience:
		if len(doc.Experience) == 0 {
			return Section{}, false
		}
		for i, e := range doc.Experience {
			role := scalar(e.Position, placeholderPosition, mode)
			org := scalar(e.Company, placeholderCompany, mode)
			title, sub := order(role, org, layout.OrgFirst)
			section.Items = append(section.Items, Item{
				Key:      entryKey(e.ID, kind, i),
				Title:    title,
				Subtitle: sub,
				Dates:    DateRange(e.StartDate, e.EndDate),
				Body:     e.Description,
			})
		}
	case SectionEducation:
		if len(doc.Education) == 0 {
			return Section{}, false
		}
		for i, e := range doc.Education {
			degree := scalar(joinNonEmpty(", ", e.Degree, e.Major), placeholderDegree, mode)
			school := scalar(e.School, placeholderSchool, mode)
			title, sub := order(degree, school, layout.OrgFirst)
			section.Items = append(section.Items, Item{
				Key:      entryKey(e.ID, kind, i),
				Title:    title,
				Subtitle: sub,
				Dates:    DateRange(e.StartDate, e.EndDate),
				Body:     e.Description,
			})
		}
	case SectionProjects:
		if len(doc.Projects) == 0 {
			return Section{}, false
		}
		for i, p := range doc.Projects {
			section.Items = append(section.Items, Item{
				Key:      entryKey(p.ID, kind, i),
				Title:    scalar(p.Name, placeholderProject, mode),
				Subtitle: Text{Value: p.Role},
				Dates:    DateRange(p.StartDate, p.EndDate),
				Body:     p.Description,
				Link:     p.Link,
			})
		}
	default:
		return Section{}, false
	}
	return section, true
}

// DateRange joins opaque date strings verbatim.
func DateRange(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

func heading(kind SectionKind, layout Layout) string {
	h := sectionHeadings[kind]
	if layout.UppercaseHeadings {
		return strings.ToUpper(h)
	}
	return h
}

func scalar(value, placeholder string, mode Mode) Text {
	if strings.TrimSpace(value) != "" {
		return Text{Value: value}
	}
	if mode == ModePreview {
		return Text{Value: placeholder, Placeholder: true}
	}
	return Text{}
}

func order(role, org Text, orgFirst bool) (Text, Text) {
	if orgFirst {
		return org, role
	}
	return role, org
}

// entryKey uses the stored id or derives a stable one from the position.
func entryKey(id string, kind SectionKind, index int) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return string(kind) + "-" + strconv.Itoa(index)
}

func contacts(info model.PersonalInfo) []string {
	var out []string
	for _, v := range []string{info.Email, info.Phone, info.LinkedIn, info.Website} {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
