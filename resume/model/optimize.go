package model

import "strings"

// OptimizeKind selects the prompt used to rewrite a piece of resume text.
type OptimizeKind string

const (
	OptimizeSummary OptimizeKind = "summary"
	OptimizeBullet  OptimizeKind = "bullet"
	OptimizeSkills  OptimizeKind = "skills"
)

// ParseOptimizeKind returns the kind for raw, or false when unknown.
func ParseOptimizeKind(raw string) (OptimizeKind, bool) {
	switch k := OptimizeKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case OptimizeSummary, OptimizeBullet, OptimizeSkills:
		return k, true
	default:
		return "", false
	}
}
