package matching

import (
	"errors"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// MatchResult is the canonical scoring output.
type MatchResult struct {
	Score               int      `json:"score"`
	Analysis            string   `json:"analysis"`
	MissingKeywords     []string `json:"missingKeywords"`
	Suggestions         []string `json:"suggestions"`
	SkillMatch          *int     `json:"skillMatch,omitempty"`
	ExperienceRelevance *int     `json:"experienceRelevance,omitempty"`
	CultureFit          *int     `json:"cultureFit,omitempty"`
}

// ErrInvalidPayload is returned when a scoring response is not a JSON object.
var ErrInvalidPayload = errors.New("invalid match payload")

// fieldAliases lists accepted spellings per canonical field, in priority order.
var fieldAliases = map[string][]string{
	"score":               {"score", "overallScore", "overall_score", "matchScore", "match_score"},
	"analysis":            {"analysis", "summary", "overallAnalysis", "overall_analysis"},
	"missingKeywords":     {"missingKeywords", "missing_keywords"},
	"suggestions":         {"suggestions", "improvementSuggestions", "improvement_suggestions"},
	"skillMatch":          {"skillMatch", "skill_match"},
	"experienceRelevance": {"experienceRelevance", "experience_relevance"},
	"cultureFit":          {"cultureFit", "culture_fit"},
}

// Normalize maps a raw scoring payload in either camelCase or snake_case onto MatchResult.
// A top-level "data" object is unwrapped first.
func Normalize(raw []byte) (MatchResult, error) {
	if !gjson.ValidBytes(raw) {
		return MatchResult{}, ErrInvalidPayload
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return MatchResult{}, ErrInvalidPayload
	}
	if data := root.Get("data"); data.IsObject() {
		root = data
	}

	out := MatchResult{
		MissingKeywords: []string{},
		Suggestions:     []string{},
	}
	if v, ok := lookup(root, "score"); ok {
		out.Score = clampScore(v.Float())
	}
	if v, ok := lookup(root, "analysis"); ok {
		out.Analysis = strings.TrimSpace(v.String())
	}
	if v, ok := lookup(root, "missingKeywords"); ok {
		out.MissingKeywords = stringList(v)
	}
	if v, ok := lookup(root, "suggestions"); ok {
		out.Suggestions = stringList(v)
	}
	out.SkillMatch = optionalScore(root, "skillMatch")
	out.ExperienceRelevance = optionalScore(root, "experienceRelevance")
	out.CultureFit = optionalScore(root, "cultureFit")
	return out, nil
}

func lookup(root gjson.Result, field string) (gjson.Result, bool) {
	for _, alias := range fieldAliases[field] {
		if v := root.Get(alias); v.Exists() && v.Type != gjson.Null {
			return v, true
		}
	}
	return gjson.Result{}, false
}

func optionalScore(root gjson.Result, field string) *int {
	v, ok := lookup(root, field)
	if !ok {
		return nil
	}
	score := clampScore(v.Float())
	return &score
}

// stringList accepts an array of strings or a single delimited string.
func stringList(v gjson.Result) []string {
	out := []string{}
	if v.IsArray() {
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	for _, part := range strings.FieldsFunc(v.String(), func(r rune) bool { return r == ',' || r == '\n' }) {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
