package jobmatch

import (
	"strings"

	"resume-studio/resume/model"
)

// FlattenResume turns a resume into the plain-text block sent for scoring.
func FlattenResume(doc model.ResumeDocument) string {
	var lines []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	add(doc.PersonalInfo.FullName)
	add(doc.PersonalInfo.Summary)
	add(doc.Skills)
	for _, e := range doc.Experience {
		add(e.Position + " at " + e.Company + ": " + e.Description)
	}
	for _, e := range doc.Education {
		add(e.Degree + " at " + e.School)
	}
	for _, p := range doc.Projects {
		add(p.Name + ": " + p.Description)
	}
	return strings.Join(lines, "\n")
}
