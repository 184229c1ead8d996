package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"resume-studio/internal/shared/schedule"
	"resume-studio/internal/shared/telemetry"
	"resume-studio/resume/model"
)

// DefaultSaveDelay is the debounce window for remote saves.
const DefaultSaveDelay = 800 * time.Millisecond

var (
	ErrOptimizeInFlight  = errors.New("optimize already running for field")
	ErrNothingToOptimize = errors.New("field is empty")
	// ErrOptimizeConflict means the field was edited while the optimizer ran; the edit wins.
	ErrOptimizeConflict = errors.New("field changed during optimize")
	ErrClosed           = errors.New("editor closed")
)

// Store is the resume persistence collaborator.
type Store interface {
	Create(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error)
	Update(ctx context.Context, doc model.ResumeDocument, status model.Status) (model.ResumeDocument, error)
}

// Optimizer rewrites a piece of text with the AI collaborator.
type Optimizer interface {
	Optimize(ctx context.Context, text string, kind model.OptimizeKind, language string) (string, error)
}

// Options configures a Controller.
type Options struct {
	Store     Store
	Optimizer Optimizer
	Scheduler schedule.Scheduler
	SaveDelay time.Duration
	// SaveTimeout bounds each remote save started by the timer.
	SaveTimeout time.Duration
	Language    string
	// Persisted is true when the document already exists remotely.
	Persisted bool
	Now       func() time.Time
}

// Controller owns one editing session over a ResumeDocument.
type Controller struct {
	mu          sync.Mutex
	doc         model.ResumeDocument
	persisted   bool
	creating    bool
	afterCreate *model.ResumeDocument
	optimizing  map[string]struct{}
	lastErr     error
	closed      bool

	// saveSeq numbers outgoing saves; acceptedSeq is the newest response applied.
	saveSeq     uint64
	acceptedSeq uint64
	saving      sync.WaitGroup

	store       Store
	optimizer   Optimizer
	saver       *schedule.Debouncer[model.ResumeDocument]
	saveTimeout time.Duration
	language    string
	now         func() time.Time
}

// New starts an editing session for doc.
func New(doc model.ResumeDocument, opts Options) *Controller {
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = DefaultSaveDelay
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 15 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.Language) == "" {
		opts.Language = "en"
	}
	c := &Controller{
		doc:         doc.EnsureEntryIDs(),
		persisted:   opts.Persisted,
		optimizing:  make(map[string]struct{}),
		store:       opts.Store,
		optimizer:   opts.Optimizer,
		saveTimeout: opts.SaveTimeout,
		language:    opts.Language,
		now:         opts.Now,
	}
	c.saver = schedule.NewDebouncer(opts.Scheduler, opts.SaveDelay, c.save)
	return c
}

// Document returns the current snapshot.
func (c *Controller) Document() model.ResumeDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

// LastError returns the most recent transient error, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError dismisses the transient error.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// UpdateField replaces one field and returns the new snapshot.
func (c *Controller) UpdateField(path, value string) (model.ResumeDocument, error) {
	return c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return setField(doc, path, value)
	})
}

// SetTemplate switches the layout. Unknown ids are stored and rendered as the default.
func (c *Controller) SetTemplate(id model.TemplateID) (model.ResumeDocument, error) {
	return c.UpdateField("templateId", string(id))
}

func (c *Controller) AddEducation() (model.ResumeDocument, error) {
	return c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		doc.Education = append(doc.Education, model.Education{ID: model.NewEntryID()})
		return doc, nil
	})
}

func (c *Controller) RemoveEducation(index int) (model.ResumeDocument, error) {
	return c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		if index < 0 || index >= len(doc.Education) {
			return doc, fmt.Errorf("%w: education %d", ErrOutOfRange, index)
		}
		doc.Education = append(doc.Education[:index:index], doc.Education[index+1:]...)
		return doc, nil
	})
}

func (c *Controller) UpdateEducation(index int, field, value string) (model.ResumeDocument, error) {
	return c.UpdateField(fmt.Sprintf("education.%d.%s", index, field), value)
}

func (c *Controller) AddExperience() (model.ResumeDocument, error) {
	return c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		doc.Experience = append(doc.Experience, model.Experience{ID: model.NewEntryID()})
		return doc, nil
	})
}

func (c *Controller) RemoveExperience(index int) (model.ResumeDocument, error) {
	return c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		if index < 0 || index >= len(doc.Experience) {
			return doc, fmt.Errorf("%w: experience %d", ErrOutOfRange, index)
		}
		doc.Experience = append(doc.Experience[:index:index], doc.Experience[index+1:]...)
		return doc, nil
	})
}

func (c *Controller) UpdateExperience(index int, field, value string) (model.ResumeDocument, error) {
	return c.UpdateField(fmt.Sprintf("experience.%d.%s", index, field), value)
}

func (c *Controller) AddProject() (model.ResumeDocument, error) {
	return c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		doc.Projects = append(doc.Projects, model.Project{ID: model.NewEntryID()})
		return doc, nil
	})
}

func (c *Controller) RemoveProject(index int) (model.ResumeDocument, error) {
	return c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		if index < 0 || index >= len(doc.Projects) {
			return doc, fmt.Errorf("%w: projects %d", ErrOutOfRange, index)
		}
		doc.Projects = append(doc.Projects[:index:index], doc.Projects[index+1:]...)
		return doc, nil
	})
}

func (c *Controller) UpdateProject(index int, field, value string) (model.ResumeDocument, error) {
	return c.UpdateField(fmt.Sprintf("projects.%d.%s", index, field), value)
}

// IsOptimizing reports whether an optimize call is running for fieldID.
func (c *Controller) IsOptimizing(fieldID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.optimizing[fieldID]
	return ok
}

// Optimize rewrites the text at fieldID through the optimizer and applies the result.
// At most one call per field runs at a time; other fields are independent.
// On failure the field keeps its text and the error is recorded.
func (c *Controller) Optimize(ctx context.Context, fieldID string, kind model.OptimizeKind) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	if _, busy := c.optimizing[fieldID]; busy {
		c.mu.Unlock()
		return "", ErrOptimizeInFlight
	}
	text, err := getField(c.doc, fieldID)
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return "", ErrNothingToOptimize
	}
	if c.optimizer == nil {
		c.mu.Unlock()
		return "", errors.New("optimizer not configured")
	}
	c.optimizing[fieldID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.optimizing, fieldID)
		c.mu.Unlock()
	}()

	out, err := c.optimizer.Optimize(ctx, text, kind, c.language)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errors.New("optimizer returned empty text")
	}
	if err != nil {
		err = fmt.Errorf("optimize %s: %w", fieldID, err)
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		telemetry.Error("editor.optimize_failed", map[string]any{
			"field": fieldID,
			"kind":  string(kind),
			"error": err.Error(),
		})
		return "", err
	}

	// Fails with ErrOutOfRange if the entry was removed meanwhile, or ErrClosed.
	_, err = c.mutate(func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		current, err := getField(doc, fieldID)
		if err != nil {
			return doc, err
		}
		if current != text {
			return doc, fmt.Errorf("%w: %s", ErrOptimizeConflict, fieldID)
		}
		return setField(doc, fieldID, out)
	})
	if errors.Is(err, ErrOptimizeConflict) {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		telemetry.Warn("editor.optimize_conflict", map[string]any{"field": fieldID, "kind": string(kind)})
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// Flush sends any pending snapshot now and waits for in-flight saves.
func (c *Controller) Flush() {
	c.saver.Flush()
	c.saving.Wait()
}

// Close stops the save timer; responses arriving afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.saver.Stop()
}

func (c *Controller) mutate(fn func(model.ResumeDocument) (model.ResumeDocument, error)) (model.ResumeDocument, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return model.ResumeDocument{}, ErrClosed
	}
	next, err := fn(c.doc.Clone())
	if err != nil {
		c.mu.Unlock()
		return c.doc.Clone(), err
	}
	next.LastModified = c.now().UTC()
	c.doc = next
	snapshot := next.Clone()
	c.mu.Unlock()

	c.saver.Push(snapshot)
	return snapshot, nil
}

// save runs when the debounce timer fires with the latest snapshot.
func (c *Controller) save(snapshot model.ResumeDocument) {
	c.mu.Lock()
	if c.closed || c.store == nil {
		c.mu.Unlock()
		return
	}
	if c.creating {
		// Re-sent with the server id once the create returns.
		c.afterCreate = &snapshot
		c.mu.Unlock()
		return
	}
	snapshot.ID = c.doc.ID
	create := !c.persisted
	if create {
		c.creating = true
	}
	c.saveSeq++
	seq := c.saveSeq
	c.saving.Add(1)
	c.mu.Unlock()
	defer c.saving.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()

	var (
		saved model.ResumeDocument
		err   error
	)
	if create {
		saved, err = c.store.Create(ctx, snapshot)
	} else {
		saved, err = c.store.Update(ctx, snapshot, model.NormalizeStatus(string(snapshot.Status)))
	}

	c.mu.Lock()
	var resend *model.ResumeDocument
	if create {
		c.creating = false
		resend = c.afterCreate
		c.afterCreate = nil
	}
	if err != nil {
		// Local state stays as edited; the next mutation retries implicitly.
		c.lastErr = fmt.Errorf("save resume: %w", err)
		c.mu.Unlock()
		telemetry.Error("editor.save_failed", map[string]any{
			"resume_id": snapshot.ID,
			"create":    create,
			"error":     err.Error(),
		})
		if resend != nil {
			c.save(*resend)
		}
		return
	}
	if c.closed {
		c.mu.Unlock()
		return
	}
	if seq > c.acceptedSeq {
		c.acceptedSeq = seq
		if create {
			c.persisted = true
			if saved.ID != "" && saved.ID != c.doc.ID {
				telemetry.Info("editor.id_reassigned", map[string]any{
					"client_id": c.doc.ID,
					"server_id": saved.ID,
				})
				c.doc.ID = saved.ID
			}
		}
		if saved.Version > c.doc.Version {
			c.doc.Version = saved.Version
		}
		if saved.UserID != "" {
			c.doc.UserID = saved.UserID
		}
	} else {
		telemetry.Info("editor.stale_save_ignored", map[string]any{
			"resume_id": snapshot.ID,
			"seq":       seq,
			"accepted":  c.acceptedSeq,
		})
	}
	c.mu.Unlock()

	if resend != nil {
		c.save(*resend)
	}
}
