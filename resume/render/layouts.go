package render

import "resume-studio/resume/model"

// SectionKind identifies a renderable resume section.
type SectionKind string

const (
	SectionSummary    SectionKind = "summary"
	SectionExperience SectionKind = "experience"
	SectionProjects   SectionKind = "projects"
	SectionEducation  SectionKind = "education"
	SectionSkills     SectionKind = "skills"
)

var sectionHeadings = map[SectionKind]string{
	SectionSummary:    "Summary",
	SectionExperience: "Experience",
	SectionProjects:   "Projects",
	SectionEducation:  "Education",
	SectionSkills:     "Skills",
}

// Arrangement is the visual structure a layout places sections into.
type Arrangement string

const (
	ArrangeSingleColumn Arrangement = "single-column"
	ArrangeSidebar      Arrangement = "sidebar"
	ArrangeLabelGrid    Arrangement = "label-grid"
	ArrangeTimeline     Arrangement = "timeline"
)

// Typography captures font and color choices for a layout.
type Typography struct {
	FontFamily  string
	BaseSizePt  int
	NameSizePt  int
	HeadingPt   int
	TextColor   string
	AccentColor string
	MutedColor  string
}

// Layout describes how one template arranges the shared document shape.
// Templates differ only by their descriptor; the renderer is generic.
type Layout struct {
	ID                model.TemplateID
	Name              string
	Arrangement       Arrangement
	Order             []SectionKind
	Aside             map[SectionKind]bool
	UppercaseHeadings bool
	CenterHeader      bool
	// OrgFirst puts the company or school before the role or degree.
	OrgFirst         bool
	ContactSeparator string
	Type             Typography
}

// Layouts is keyed by template id and covers every model.TemplateIDs entry.
var Layouts = map[model.TemplateID]Layout{
	model.TemplateModern: {
		ID:                model.TemplateModern,
		Name:              "Modern",
		Arrangement:       ArrangeSingleColumn,
		Order:             []SectionKind{SectionSummary, SectionExperience, SectionProjects, SectionEducation, SectionSkills},
		UppercaseHeadings: true,
		ContactSeparator:  " | ",
		Type: Typography{
			FontFamily:  "'Helvetica Neue', Arial, sans-serif",
			BaseSizePt:  10,
			NameSizePt:  24,
			HeadingPt:   12,
			TextColor:   "#1F2937",
			AccentColor: "#2563EB",
			MutedColor:  "#6B7280",
		},
	},
	model.TemplateClassic: {
		ID:               model.TemplateClassic,
		Name:             "Classic",
		Arrangement:      ArrangeSingleColumn,
		Order:            []SectionKind{SectionSummary, SectionEducation, SectionExperience, SectionProjects, SectionSkills},
		CenterHeader:     true,
		OrgFirst:         true,
		ContactSeparator: " · ",
		Type: Typography{
			FontFamily:  "Georgia, 'Times New Roman', serif",
			BaseSizePt:  11,
			NameSizePt:  22,
			HeadingPt:   13,
			TextColor:   "#111111",
			AccentColor: "#111111",
			MutedColor:  "#4B5563",
		},
	},
	model.TemplateMinimal: {
		ID:               model.TemplateMinimal,
		Name:             "Minimal",
		Arrangement:      ArrangeSingleColumn,
		Order:            []SectionKind{SectionSummary, SectionExperience, SectionEducation, SectionProjects, SectionSkills},
		ContactSeparator: "  ",
		Type: Typography{
			FontFamily:  "Inter, Arial, sans-serif",
			BaseSizePt:  10,
			NameSizePt:  20,
			HeadingPt:   11,
			TextColor:   "#222222",
			AccentColor: "#222222",
			MutedColor:  "#888888",
		},
	},
	model.TemplateElegant: {
		ID:          model.TemplateElegant,
		Name:        "Elegant",
		Arrangement: ArrangeSidebar,
		Order:       []SectionKind{SectionSummary, SectionExperience, SectionProjects, SectionEducation, SectionSkills},
		Aside: map[SectionKind]bool{
			SectionEducation: true,
			SectionSkills:    true,
		},
		CenterHeader:     true,
		ContactSeparator: " · ",
		Type: Typography{
			FontFamily:  "Garamond, Georgia, serif",
			BaseSizePt:  11,
			NameSizePt:  26,
			HeadingPt:   13,
			TextColor:   "#2D2A26",
			AccentColor: "#8B6F47",
			MutedColor:  "#7A7368",
		},
	},
	model.TemplateCompact: {
		ID:                model.TemplateCompact,
		Name:              "Compact",
		Arrangement:       ArrangeLabelGrid,
		Order:             []SectionKind{SectionSummary, SectionSkills, SectionExperience, SectionProjects, SectionEducation},
		UppercaseHeadings: true,
		OrgFirst:          true,
		ContactSeparator:  " | ",
		Type: Typography{
			FontFamily:  "Arial, sans-serif",
			BaseSizePt:  9,
			NameSizePt:  18,
			HeadingPt:   10,
			TextColor:   "#111827",
			AccentColor: "#0F766E",
			MutedColor:  "#6B7280",
		},
	},
	model.TemplateTimeline: {
		ID:               model.TemplateTimeline,
		Name:             "Timeline",
		Arrangement:      ArrangeTimeline,
		Order:            []SectionKind{SectionSummary, SectionExperience, SectionEducation, SectionProjects, SectionSkills},
		ContactSeparator: " | ",
		Type: Typography{
			FontFamily:  "'Segoe UI', Roboto, sans-serif",
			BaseSizePt:  10,
			NameSizePt:  24,
			HeadingPt:   12,
			TextColor:   "#1E293B",
			AccentColor: "#7C3AED",
			MutedColor:  "#64748B",
		},
	},
}

// LayoutFor returns the descriptor for id, falling back to the default template.
func LayoutFor(id model.TemplateID) Layout {
	return Layouts[id.Resolve()]
}
