package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchema string

var schemaLoader = gojsonschema.NewStringLoader(resumeSchema)

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "resume validation failed: " + strings.Join(e.Fields, "; ")
}

// Validate checks the document against the embedded resume schema.
// Unknown template ids are accepted; they render with the default layout.
func Validate(doc ResumeDocument) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate resume: %w", err)
	}
	if res.Valid() {
		return nil
	}
	fields := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		fields = append(fields, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return &ValidationError{Fields: fields}
}
