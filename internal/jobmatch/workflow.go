package jobmatch

import (
	"context"
	"errors"
	"strings"
	"sync"

	"resume-studio/internal/jobs"
	"resume-studio/internal/matching"
	"resume-studio/internal/shared/telemetry"
	"resume-studio/resume/model"
)

// Step is a workflow state.
type Step string

const (
	StepFindJob      Step = "FIND_JOB"
	StepSelectResume Step = "SELECT_RESUME"
	StepResult       Step = "RESULT"
)

const defaultResumePageSize = 50

// JobSearcher finds job postings for a query.
type JobSearcher interface {
	Search(ctx context.Context, query string) ([]jobs.Posting, error)
}

// SearchFunc adapts a function to JobSearcher.
type SearchFunc func(ctx context.Context, query string) ([]jobs.Posting, error)

// Search implements JobSearcher.
func (f SearchFunc) Search(ctx context.Context, query string) ([]jobs.Posting, error) {
	return f(ctx, query)
}

// ResumeLister lists the user's resumes.
type ResumeLister interface {
	ListResumes(ctx context.Context, page, pageSize int) ([]model.ResumeDocument, error)
}

// Scorer scores a resume against a job description.
type Scorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (matching.MatchResult, error)
}

// Session is the ephemeral state of one pass through the workflow.
type Session struct {
	Step               Step                   `json:"step"`
	SelectedJob        *jobs.Posting          `json:"selectedJob,omitempty"`
	JobDescriptionText string                 `json:"jobDescriptionText"`
	SelectedResumeID   string                 `json:"selectedResumeId,omitempty"`
	MatchResult        *matching.MatchResult  `json:"matchResult,omitempty"`
	SearchResults      []jobs.Posting         `json:"searchResults"`
	SearchSource       string                 `json:"searchSource,omitempty"`
	Resumes            []model.ResumeDocument `json:"resumes"`
	IsSearching        bool                   `json:"isSearching"`
	IsLoadingResumes   bool                   `json:"isLoadingResumes"`
	IsComputing        bool                   `json:"isComputing"`
	Error              string                 `json:"error,omitempty"`
}

// Options configures a Workflow.
type Options struct {
	Primary  JobSearcher
	Fallback JobSearcher
	Resumes  ResumeLister
	Scorer   Scorer
	// Query seeds the initial prefetch.
	Query          string
	ResumePageSize int
}

// Workflow drives FIND_JOB -> SELECT_RESUME -> RESULT.
// Async results are applied only if the session they were started for is still current.
type Workflow struct {
	mu      sync.Mutex
	session Session
	gen     uint64
	// searchSeq identifies the newest search; older results are dropped.
	searchSeq uint64
	closed    bool
	wg        sync.WaitGroup
	opts      Options
}

// New returns a workflow. Call Start to enter FIND_JOB.
func New(opts Options) *Workflow {
	if opts.ResumePageSize <= 0 {
		opts.ResumePageSize = defaultResumePageSize
	}
	return &Workflow{opts: opts, session: freshSession()}
}

func freshSession() Session {
	return Session{Step: StepFindJob, SearchResults: []jobs.Posting{}, Resumes: []model.ResumeDocument{}}
}

// Start begins a fresh session and prefetches jobs without blocking.
func (w *Workflow) Start(ctx context.Context) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.gen++
	w.session = freshSession()
	w.session.IsSearching = true
	w.searchSeq++
	seq := w.searchSeq
	query := w.opts.Query
	w.mu.Unlock()

	w.goAsync(func() { w.search(ctx, seq, query) })
}

// Search re-runs the job search with a user query.
func (w *Workflow) Search(ctx context.Context, query string) {
	w.mu.Lock()
	if w.closed || w.session.Step != StepFindJob {
		w.mu.Unlock()
		return
	}
	w.session.IsSearching = true
	w.searchSeq++
	seq := w.searchSeq
	w.mu.Unlock()

	w.goAsync(func() { w.search(ctx, seq, query) })
}

// SelectJob pre-fills the description from a search result. It does not advance.
func (w *Workflow) SelectJob(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.Step != StepFindJob || index < 0 || index >= len(w.session.SearchResults) {
		return false
	}
	job := w.session.SearchResults[index]
	w.session.SelectedJob = &job
	w.session.JobDescriptionText = job.Description
	return true
}

// SetJobDescription edits the description text.
func (w *Workflow) SetJobDescription(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.Step == StepFindJob {
		w.session.JobDescriptionText = text
	}
}

// CanConfirm reports whether Confirm would advance.
func (w *Workflow) CanConfirm() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Step == StepFindJob && strings.TrimSpace(w.session.JobDescriptionText) != ""
}

// Confirm advances to SELECT_RESUME when the description is not blank, and loads resumes.
func (w *Workflow) Confirm(ctx context.Context) bool {
	w.mu.Lock()
	if w.closed || w.session.Step != StepFindJob || strings.TrimSpace(w.session.JobDescriptionText) == "" {
		w.mu.Unlock()
		return false
	}
	w.session.Step = StepSelectResume
	w.session.Error = ""
	w.session.IsLoadingResumes = true
	gen := w.gen
	w.mu.Unlock()

	w.goAsync(func() { w.loadResumes(ctx, gen) })
	return true
}

// Back returns from SELECT_RESUME to FIND_JOB keeping the description.
func (w *Workflow) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.Step != StepSelectResume {
		return false
	}
	w.session.Step = StepFindJob
	w.session.SelectedResumeID = ""
	return true
}

// SelectResume records the chosen resume.
func (w *Workflow) SelectResume(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.Step != StepSelectResume || strings.TrimSpace(id) == "" {
		return false
	}
	w.session.SelectedResumeID = id
	return true
}

// CanAnalyze reports whether Analyze would advance.
func (w *Workflow) CanAnalyze() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Step == StepSelectResume && w.session.SelectedResumeID != ""
}

// Analyze enters RESULT and starts scoring. On failure the session stays in RESULT with Error set.
func (w *Workflow) Analyze(ctx context.Context) bool {
	w.mu.Lock()
	if w.closed || w.session.Step != StepSelectResume || w.session.SelectedResumeID == "" {
		w.mu.Unlock()
		return false
	}
	doc, found := findResume(w.session.Resumes, w.session.SelectedResumeID)
	w.session.Step = StepResult
	w.session.MatchResult = nil
	w.session.Error = ""
	w.session.IsComputing = true
	gen := w.gen
	jd := w.session.JobDescriptionText
	w.mu.Unlock()

	w.goAsync(func() {
		if !found {
			w.finishScore(gen, nil, errors.New("selected resume is no longer available"))
			return
		}
		w.score(ctx, gen, FlattenResume(doc), jd)
	})
	return true
}

// Reset discards the session from RESULT and starts over with a new prefetch.
func (w *Workflow) Reset(ctx context.Context) bool {
	w.mu.Lock()
	step := w.session.Step
	w.mu.Unlock()
	if step != StepResult {
		return false
	}
	w.Start(ctx)
	return true
}

// Close discards the session; responses that arrive later are ignored.
func (w *Workflow) Close() {
	w.mu.Lock()
	w.closed = true
	w.gen++
	w.searchSeq++
	w.session = freshSession()
	w.mu.Unlock()
}

// Snapshot returns a copy of the current session.
func (w *Workflow) Snapshot() Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.session
	s.SearchResults = append([]jobs.Posting(nil), w.session.SearchResults...)
	s.Resumes = append([]model.ResumeDocument(nil), w.session.Resumes...)
	if w.session.SelectedJob != nil {
		job := *w.session.SelectedJob
		s.SelectedJob = &job
	}
	if w.session.MatchResult != nil {
		res := *w.session.MatchResult
		s.MatchResult = &res
	}
	return s
}

// Wait blocks until background calls started so far have returned.
func (w *Workflow) Wait() {
	w.wg.Wait()
}

func (w *Workflow) goAsync(fn func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		fn()
	}()
}

func (w *Workflow) search(ctx context.Context, seq uint64, query string) {
	results, source := w.runSearch(ctx, query)

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.searchSeq {
		return
	}
	w.session.IsSearching = false
	w.session.SearchResults = results
	w.session.SearchSource = source
}

// runSearch tries the primary searcher, then the AI fallback on error or zero results.
func (w *Workflow) runSearch(ctx context.Context, query string) ([]jobs.Posting, string) {
	if w.opts.Primary != nil {
		results, err := w.opts.Primary.Search(ctx, query)
		if err == nil && len(results) > 0 {
			return results, "primary"
		}
		if err != nil {
			telemetry.Warn("jobmatch.search.primary_failed", map[string]any{"query": query, "error": err.Error()})
		}
	}
	if w.opts.Fallback != nil {
		results, err := w.opts.Fallback.Search(ctx, query)
		if err == nil && len(results) > 0 {
			return results, "ai"
		}
		if err != nil {
			telemetry.Warn("jobmatch.search.fallback_failed", map[string]any{"query": query, "error": err.Error()})
		}
	}
	return []jobs.Posting{}, ""
}

func (w *Workflow) loadResumes(ctx context.Context, gen uint64) {
	var (
		docs []model.ResumeDocument
		err  error
	)
	if w.opts.Resumes != nil {
		docs, err = w.opts.Resumes.ListResumes(ctx, 1, w.opts.ResumePageSize)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	w.session.IsLoadingResumes = false
	if err != nil {
		w.session.Error = "failed to load resumes: " + err.Error()
		return
	}
	if docs == nil {
		docs = []model.ResumeDocument{}
	}
	w.session.Resumes = docs
}

func (w *Workflow) score(ctx context.Context, gen uint64, resumeText, jd string) {
	if w.opts.Scorer == nil {
		w.finishScore(gen, nil, errors.New("scorer not configured"))
		return
	}
	res, err := w.opts.Scorer.Score(ctx, resumeText, jd)
	if err != nil {
		w.finishScore(gen, nil, err)
		return
	}
	w.finishScore(gen, &res, nil)
}

func (w *Workflow) finishScore(gen uint64, res *matching.MatchResult, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	w.session.IsComputing = false
	if err != nil {
		w.session.Error = "match analysis failed: " + err.Error()
		telemetry.Error("jobmatch.score_failed", map[string]any{"resume_id": w.session.SelectedResumeID, "error": err.Error()})
		return
	}
	w.session.MatchResult = res
}

func findResume(docs []model.ResumeDocument, id string) (model.ResumeDocument, bool) {
	for _, d := range docs {
		if d.ID == id {
			return d, true
		}
	}
	return model.ResumeDocument{}, false
}
