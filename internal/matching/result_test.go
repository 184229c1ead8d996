package matching

import (
	"reflect"
	"testing"
)

func TestNormalizeCamelAndSnakeAgree(t *testing.T) {
	camel, err := Normalize([]byte(`{"overallScore":58,"skillMatch":40,"missingKeywords":["React"]}`))
	if err != nil {
		t.Fatalf("camel: %v", err)
	}
	snake, err := Normalize([]byte(`{"overall_score":58,"skill_match":40,"missing_keywords":["React"]}`))
	if err != nil {
		t.Fatalf("snake: %v", err)
	}
	if camel.Score != 58 {
		t.Fatalf("score = %d", camel.Score)
	}
	if camel.SkillMatch == nil || *camel.SkillMatch != 40 {
		t.Fatalf("skillMatch = %v", camel.SkillMatch)
	}
	if !reflect.DeepEqual(camel.MissingKeywords, []string{"React"}) {
		t.Fatalf("missingKeywords = %v", camel.MissingKeywords)
	}
	if !reflect.DeepEqual(camel, snake) {
		t.Fatalf("camel %+v != snake %+v", camel, snake)
	}
}

func TestNormalizeAliasPriorityAndEnvelope(t *testing.T) {
	res, err := Normalize([]byte(`{"data":{"score":"77.6","overall_score":10,"summary":"Good fit","improvement_suggestions":"Add Go\nAdd SQL","culture_fit":130}}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.Score != 78 {
		t.Fatalf("expected score alias to win and round, got %d", res.Score)
	}
	if res.Analysis != "Good fit" {
		t.Fatalf("analysis = %q", res.Analysis)
	}
	if !reflect.DeepEqual(res.Suggestions, []string{"Add Go", "Add SQL"}) {
		t.Fatalf("suggestions = %v", res.Suggestions)
	}
	if res.CultureFit == nil || *res.CultureFit != 100 {
		t.Fatalf("cultureFit = %v", res.CultureFit)
	}
	if res.ExperienceRelevance != nil {
		t.Fatalf("expected absent experienceRelevance")
	}
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	for _, raw := range []string{``, `[1,2]`, `not json`} {
		if _, err := Normalize([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestNormalizeDefaultsToEmptyLists(t *testing.T) {
	res, err := Normalize([]byte(`{"score":null}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.Score != 0 || res.MissingKeywords == nil || res.Suggestions == nil {
		t.Fatalf("unexpected result %+v", res)
	}
}
