package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"resume-studio/resume/model"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrOutOfRange   = errors.New("index out of range")
)

// Field paths look like "title", "personalInfo.summary" or "experience.0.description".
type fieldPath struct {
	section string
	index   int
	field   string
}

func parsePath(path string) (fieldPath, error) {
	parts := strings.Split(strings.TrimSpace(path), ".")
	switch len(parts) {
	case 1:
		return fieldPath{field: parts[0], index: -1}, nil
	case 2:
		if parts[0] != "personalInfo" {
			return fieldPath{}, fmt.Errorf("%w: %s", ErrUnknownField, path)
		}
		return fieldPath{section: parts[0], field: parts[1], index: -1}, nil
	case 3:
		idx, err := strconv.Atoi(parts[1])
		if err != nil {
			return fieldPath{}, fmt.Errorf("%w: %s", ErrUnknownField, path)
		}
		return fieldPath{section: parts[0], index: idx, field: parts[2]}, nil
	default:
		return fieldPath{}, fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
}

// getField reads the string value at path.
func getField(doc model.ResumeDocument, path string) (string, error) {
	var out string
	_, err := visitField(doc.Clone(), path, func(v *string) { out = *v })
	return out, err
}

// setField returns a copy of doc with path replaced by value.
func setField(doc model.ResumeDocument, path, value string) (model.ResumeDocument, error) {
	return visitField(doc.Clone(), path, func(v *string) { *v = value })
}

// visitField expects a cloned doc; fn may write through the pointer.
func visitField(doc model.ResumeDocument, path string, fn func(*string)) (model.ResumeDocument, error) {
	p, err := parsePath(path)
	if err != nil {
		return doc, err
	}
	var target *string
	switch p.section {
	case "":
		switch p.field {
		case "title":
			target = &doc.Title
		case "skills":
			target = &doc.Skills
		case "templateId":
			raw := string(doc.TemplateID)
			fn(&raw)
			doc.TemplateID = model.TemplateID(raw)
			return doc, nil
		}
	case "personalInfo":
		target = personalField(&doc.PersonalInfo, p.field)
	case "education":
		if p.index < 0 || p.index >= len(doc.Education) {
			return doc, fmt.Errorf("%w: %s", ErrOutOfRange, path)
		}
		target = educationField(&doc.Education[p.index], p.field)
	case "experience":
		if p.index < 0 || p.index >= len(doc.Experience) {
			return doc, fmt.Errorf("%w: %s", ErrOutOfRange, path)
		}
		target = experienceField(&doc.Experience[p.index], p.field)
	case "projects":
		if p.index < 0 || p.index >= len(doc.Projects) {
			return doc, fmt.Errorf("%w: %s", ErrOutOfRange, path)
		}
		target = projectField(&doc.Projects[p.index], p.field)
	}
	if target == nil {
		return doc, fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	fn(target)
	return doc, nil
}

func personalField(p *model.PersonalInfo, field string) *string {
	switch field {
	case "fullName":
		return &p.FullName
	case "email":
		return &p.Email
	case "phone":
		return &p.Phone
	case "linkedin":
		return &p.LinkedIn
	case "website":
		return &p.Website
	case "summary":
		return &p.Summary
	}
	return nil
}

func educationField(e *model.Education, field string) *string {
	switch field {
	case "school":
		return &e.School
	case "degree":
		return &e.Degree
	case "major":
		return &e.Major
	case "startDate":
		return &e.StartDate
	case "endDate":
		return &e.EndDate
	case "description":
		return &e.Description
	}
	return nil
}

func experienceField(e *model.Experience, field string) *string {
	switch field {
	case "company":
		return &e.Company
	case "position":
		return &e.Position
	case "startDate":
		return &e.StartDate
	case "endDate":
		return &e.EndDate
	case "description":
		return &e.Description
	}
	return nil
}

func projectField(p *model.Project, field string) *string {
	switch field {
	case "name":
		return &p.Name
	case "role":
		return &p.Role
	case "startDate":
		return &p.StartDate
	case "endDate":
		return &p.EndDate
	case "description":
		return &p.Description
	case "link":
		return &p.Link
	}
	return nil
}
