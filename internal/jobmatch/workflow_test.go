package jobmatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"resume-studio/internal/jobs"
	"resume-studio/internal/matching"
	"resume-studio/resume/model"
)

type stubResumes struct {
	docs []model.ResumeDocument
	err  error
}

func (s stubResumes) ListResumes(ctx context.Context, page, pageSize int) ([]model.ResumeDocument, error) {
	return s.docs, s.err
}

type recordingScorer struct {
	mu         sync.Mutex
	resumeText string
	jd         string
	res        matching.MatchResult
	err        error
	gate       chan struct{}
}

func (s *recordingScorer) Score(ctx context.Context, resumeText, jd string) (matching.MatchResult, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeText = resumeText
	s.jd = jd
	return s.res, s.err
}

func staticSearch(results []jobs.Posting, err error, calls *int) SearchFunc {
	return func(ctx context.Context, query string) ([]jobs.Posting, error) {
		if calls != nil {
			*calls++
		}
		return results, err
	}
}

func sampleResume() model.ResumeDocument {
	return model.ResumeDocument{
		ID:           "r1",
		PersonalInfo: model.PersonalInfo{FullName: "Ann Lee", Summary: "Backend engineer"},
		Skills:       "Go, SQL",
		Experience:   []model.Experience{{Company: "Acme", Position: "Engineer", Description: "Built X"}},
		Education:    []model.Education{{School: "MIT", Degree: "BSc"}},
		Projects:     []model.Project{{Name: "Studio", Description: "Resume builder"}},
	}
}

func TestConfirmRequiresNonEmptyDescription(t *testing.T) {
	w := New(Options{Resumes: stubResumes{}})
	w.Start(context.Background())
	w.Wait()

	if w.Confirm(context.Background()) {
		t.Fatalf("confirm with empty description advanced")
	}
	w.SetJobDescription("   ")
	if w.Confirm(context.Background()) {
		t.Fatalf("confirm with blank description advanced")
	}
	if got := w.Snapshot().Step; got != StepFindJob {
		t.Fatalf("step = %s", got)
	}

	w.SetJobDescription("Go developer wanted")
	if !w.Confirm(context.Background()) {
		t.Fatalf("confirm with description did not advance")
	}
	w.Wait()
	if got := w.Snapshot().Step; got != StepSelectResume {
		t.Fatalf("step = %s", got)
	}
}

func TestPrefetchFallsBackToAISearch(t *testing.T) {
	var primaryCalls, aiCalls int
	w := New(Options{
		Primary:  staticSearch(nil, errors.New("db down"), &primaryCalls),
		Fallback: staticSearch([]jobs.Posting{{Title: "Go Dev", Description: "Write Go"}}, nil, &aiCalls),
	})
	w.Start(context.Background())
	w.Wait()

	s := w.Snapshot()
	if primaryCalls != 1 || aiCalls != 1 {
		t.Fatalf("calls primary=%d ai=%d", primaryCalls, aiCalls)
	}
	if s.IsSearching {
		t.Fatalf("loading flag not cleared")
	}
	if len(s.SearchResults) != 1 || s.SearchSource != "ai" {
		t.Fatalf("unexpected results %+v source=%q", s.SearchResults, s.SearchSource)
	}
}

func TestPrefetchFallsBackOnZeroResults(t *testing.T) {
	var aiCalls int
	w := New(Options{
		Primary:  staticSearch([]jobs.Posting{}, nil, nil),
		Fallback: staticSearch([]jobs.Posting{{Title: "AI Dev"}}, nil, &aiCalls),
	})
	w.Start(context.Background())
	w.Wait()
	if aiCalls != 1 || w.Snapshot().SearchSource != "ai" {
		t.Fatalf("expected fallback on zero results")
	}
}

func TestPrefetchBothFailLeavesEmptyList(t *testing.T) {
	w := New(Options{
		Primary:  staticSearch(nil, errors.New("down"), nil),
		Fallback: staticSearch(nil, errors.New("quota"), nil),
	})
	w.Start(context.Background())
	w.Wait()
	s := w.Snapshot()
	if s.IsSearching || len(s.SearchResults) != 0 || s.Error != "" {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestSelectJobPrefillsWithoutAdvancing(t *testing.T) {
	w := New(Options{Primary: staticSearch([]jobs.Posting{{Title: "Go Dev", Description: "Write Go"}}, nil, nil)})
	w.Start(context.Background())
	w.Wait()

	if !w.SelectJob(0) {
		t.Fatalf("select failed")
	}
	s := w.Snapshot()
	if s.Step != StepFindJob || s.JobDescriptionText != "Write Go" || s.SelectedJob == nil {
		t.Fatalf("unexpected session %+v", s)
	}
	w.SetJobDescription("Write Go and SQL")
	if got := w.Snapshot().JobDescriptionText; got != "Write Go and SQL" {
		t.Fatalf("description not editable: %q", got)
	}
}

func TestAnalyzeFlowAndReset(t *testing.T) {
	scorer := &recordingScorer{res: matching.MatchResult{Score: 81, Analysis: "Strong"}, gate: make(chan struct{})}
	var primaryCalls int
	w := New(Options{
		Primary: staticSearch([]jobs.Posting{{Title: "Go Dev", Description: "Write Go"}}, nil, &primaryCalls),
		Resumes: stubResumes{docs: []model.ResumeDocument{sampleResume()}},
		Scorer:  scorer,
	})
	ctx := context.Background()
	w.Start(ctx)
	w.Wait()
	w.SelectJob(0)
	w.Confirm(ctx)
	w.Wait()

	if w.CanAnalyze() {
		t.Fatalf("analyze enabled without resume")
	}
	if w.Analyze(ctx) {
		t.Fatalf("analyze advanced without resume")
	}
	if !w.SelectResume("r1") || !w.CanAnalyze() {
		t.Fatalf("select resume failed")
	}
	if !w.Analyze(ctx) {
		t.Fatalf("analyze did not advance")
	}
	s := w.Snapshot()
	if s.Step != StepResult || !s.IsComputing || s.MatchResult != nil {
		t.Fatalf("expected computing RESULT, got %+v", s)
	}
	close(scorer.gate)
	w.Wait()

	s = w.Snapshot()
	if s.IsComputing || s.MatchResult == nil || s.MatchResult.Score != 81 {
		t.Fatalf("unexpected result state %+v", s)
	}
	if scorer.jd != "Write Go" {
		t.Fatalf("scorer got jd %q", scorer.jd)
	}
	if !strings.Contains(scorer.resumeText, "Engineer at Acme: Built X") {
		t.Fatalf("scorer got resume text %q", scorer.resumeText)
	}

	if !w.Reset(ctx) {
		t.Fatalf("reset failed")
	}
	w.Wait()
	s = w.Snapshot()
	if s.Step != StepFindJob || s.MatchResult != nil || s.SelectedResumeID != "" || s.JobDescriptionText != "" {
		t.Fatalf("session not discarded: %+v", s)
	}
	if primaryCalls != 2 {
		t.Fatalf("expected prefetch re-run, got %d calls", primaryCalls)
	}
}

func TestScoreFailureStaysInResult(t *testing.T) {
	w := New(Options{
		Resumes: stubResumes{docs: []model.ResumeDocument{sampleResume()}},
		Scorer:  &recordingScorer{err: errors.New("502 bad gateway")},
	})
	ctx := context.Background()
	w.Start(ctx)
	w.SetJobDescription("Rust engineer")
	w.Confirm(ctx)
	w.Wait()
	w.SelectResume("r1")
	w.Analyze(ctx)
	w.Wait()

	s := w.Snapshot()
	if s.Step != StepResult || s.IsComputing || s.MatchResult != nil {
		t.Fatalf("unexpected state %+v", s)
	}
	if !strings.Contains(s.Error, "502") {
		t.Fatalf("expected error surfaced, got %q", s.Error)
	}
}

func TestBackReturnsToFindJob(t *testing.T) {
	w := New(Options{Resumes: stubResumes{}})
	ctx := context.Background()
	w.Start(ctx)
	w.SetJobDescription("SRE")
	w.Confirm(ctx)
	w.Wait()
	if !w.Back() {
		t.Fatalf("back failed")
	}
	s := w.Snapshot()
	if s.Step != StepFindJob || s.JobDescriptionText != "SRE" {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestOlderSearchDoesNotOverwriteNewer(t *testing.T) {
	oldGate := make(chan struct{})
	oldStarted := make(chan struct{})
	w := New(Options{Primary: SearchFunc(func(ctx context.Context, query string) ([]jobs.Posting, error) {
		if query == "old" {
			close(oldStarted)
			<-oldGate
		}
		return []jobs.Posting{{Title: query}}, nil
	})})
	ctx := context.Background()
	w.Start(ctx)
	w.Wait()

	w.Search(ctx, "old")
	<-oldStarted
	w.Search(ctx, "new")

	close(oldGate)
	w.Wait()

	s := w.Snapshot()
	if len(s.SearchResults) != 1 || s.SearchResults[0].Title != "new" {
		t.Fatalf("stale search applied: %+v", s.SearchResults)
	}
	if s.IsSearching {
		t.Fatalf("loading flag not cleared")
	}
}

func TestSearchingStaysSetWhileNewestRuns(t *testing.T) {
	w := New(Options{Primary: SearchFunc(func(ctx context.Context, query string) ([]jobs.Posting, error) {
		return []jobs.Posting{{Title: query}}, nil
	})})
	ctx := context.Background()
	w.Start(ctx)
	w.Wait()

	w.mu.Lock()
	w.searchSeq += 2
	newest := w.searchSeq
	w.session.IsSearching = true
	w.mu.Unlock()

	w.search(ctx, newest-1, "old")
	s := w.Snapshot()
	if !s.IsSearching || len(s.SearchResults) != 1 || s.SearchResults[0].Title != "" {
		t.Fatalf("older search touched the session: %+v", s)
	}

	w.search(ctx, newest, "new")
	s = w.Snapshot()
	if s.IsSearching || len(s.SearchResults) != 1 || s.SearchResults[0].Title != "new" {
		t.Fatalf("newest search not applied: %+v", s)
	}
}

func TestCloseIgnoresLateScore(t *testing.T) {
	scorer := &recordingScorer{res: matching.MatchResult{Score: 50}, gate: make(chan struct{})}
	w := New(Options{
		Resumes: stubResumes{docs: []model.ResumeDocument{sampleResume()}},
		Scorer:  scorer,
	})
	ctx := context.Background()
	w.Start(ctx)
	w.SetJobDescription("Go")
	w.Confirm(ctx)
	w.Wait()
	w.SelectResume("r1")
	w.Analyze(ctx)

	w.Close()
	close(scorer.gate)
	w.Wait()

	s := w.Snapshot()
	if s.MatchResult != nil || s.Step != StepFindJob {
		t.Fatalf("late response applied after close: %+v", s)
	}
}

func TestFlattenResume(t *testing.T) {
	got := FlattenResume(sampleResume())
	want := strings.Join([]string{
		"Ann Lee",
		"Backend engineer",
		"Go, SQL",
		"Engineer at Acme: Built X",
		"BSc at MIT",
		"Studio: Resume builder",
	}, "\n")
	if got != want {
		t.Fatalf("flatten =\n%s\nwant\n%s", got, want)
	}
}
