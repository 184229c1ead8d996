package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"resume-studio/internal/admin"
	"resume-studio/internal/crawler"
	"resume-studio/internal/jobs"
	"resume-studio/internal/shared/schedule"
	"resume-studio/internal/shared/telemetry"
	"resume-studio/internal/templates"
	"resume-studio/internal/users"
)

// Tab is one admin dashboard.
type Tab string

const (
	TabOverview  Tab = "overview"
	TabJobs      Tab = "jobs"
	TabUsers     Tab = "users"
	TabTemplates Tab = "templates"
)

// PollDelay is how long RunTaskNow waits before fetching jobs again.
// The crawl is not guaranteed to have finished by then.
const PollDelay = 2 * time.Second

const pollTimeout = 30 * time.Second

var (
	ErrCancelled  = errors.New("cancelled by user")
	ErrUnknownTab = errors.New("unknown tab")
	ErrClosed     = errors.New("console closed")
)

// AdminAPI is the remote admin surface.
type AdminAPI interface {
	Stats(ctx context.Context) (admin.Stats, error)

	ListUsers(ctx context.Context) ([]users.User, error)
	CreateUser(ctx context.Context, in users.NewUser) (users.User, error)
	SetUserRole(ctx context.Context, id string, role users.Role) (users.User, error)
	SetUserStatus(ctx context.Context, id string, status users.Status) (users.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListJobs(ctx context.Context) ([]jobs.Posting, error)
	DeleteJob(ctx context.Context, id string) error

	ListCrawlerTasks(ctx context.Context) ([]crawler.Task, error)
	CreateCrawlerTask(ctx context.Context, in crawler.NewTask) (crawler.Task, error)
	SetCrawlerTaskStatus(ctx context.Context, id string, status crawler.Status) (crawler.Task, error)
	DeleteCrawlerTask(ctx context.Context, id string) error
	RunCrawlerTask(ctx context.Context, id string) error

	ListTemplates(ctx context.Context) ([]templates.Template, error)
	CreateTemplate(ctx context.Context, in templates.NewTemplate) (templates.Template, error)
	SetTemplateStatus(ctx context.Context, id string, status templates.Status) (templates.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// Confirmer asks the operator before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// State is a snapshot of what the dashboards show.
type State struct {
	Tab       Tab                  `json:"tab"`
	Stats     admin.Stats          `json:"stats"`
	Users     []users.User         `json:"users"`
	Jobs      []jobs.Posting       `json:"jobs"`
	Tasks     []crawler.Task       `json:"tasks"`
	Templates []templates.Template `json:"templates"`
	Loading   bool                 `json:"loading"`
	Mutating  bool                 `json:"mutating"`
	Error     string               `json:"error,omitempty"`
}

type Options struct {
	API       AdminAPI
	Confirm   Confirmer
	Scheduler schedule.Scheduler
	PollDelay time.Duration
}

// Console drives the admin dashboards. Lists change only after the remote call succeeded.
type Console struct {
	mu       sync.Mutex
	state    State
	loading  int
	mutating int
	gen      uint64
	closed   bool
	polls    []schedule.Timer
	pollWG   sync.WaitGroup

	api       AdminAPI
	confirm   Confirmer
	sched     schedule.Scheduler
	pollDelay time.Duration
}

func New(opts Options) *Console {
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.System{}
	}
	if opts.PollDelay <= 0 {
		opts.PollDelay = PollDelay
	}
	if opts.Confirm == nil {
		opts.Confirm = ConfirmFunc(func(context.Context, string) bool { return false })
	}
	return &Console{
		state:     State{Tab: TabOverview},
		api:       opts.API,
		confirm:   opts.Confirm,
		sched:     opts.Scheduler,
		pollDelay: opts.PollDelay,
	}
}

// Snapshot returns a copy of the current state.
func (c *Console) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Users = append([]users.User(nil), c.state.Users...)
	s.Jobs = append([]jobs.Posting(nil), c.state.Jobs...)
	s.Tasks = append([]crawler.Task(nil), c.state.Tasks...)
	s.Templates = append([]templates.Template(nil), c.state.Templates...)
	return s
}

// Close stops pending polls. Responses that arrive afterwards are dropped.
func (c *Console) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	polls := c.polls
	c.polls = nil
	c.mu.Unlock()
	for _, t := range polls {
		if t.Stop() {
			c.pollWG.Done()
		}
	}
}

// WaitPolls blocks until scheduled re-polls have run or been stopped.
func (c *Console) WaitPolls() {
	c.pollWG.Wait()
}

// Activate switches to tab and fetches its collections.
func (c *Console) Activate(ctx context.Context, tab Tab) error {
	switch tab {
	case TabOverview, TabJobs, TabUsers, TabTemplates:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	gen, err := c.begin(&c.loading, func(s *State) { s.Tab = tab })
	if err != nil {
		return err
	}
	defer c.end(&c.loading)

	switch tab {
	case TabOverview:
		stats, err := c.api.Stats(ctx)
		return c.apply(gen, "load stats", err, func(s *State) { s.Stats = stats })
	case TabUsers:
		list, err := c.api.ListUsers(ctx)
		return c.apply(gen, "load users", err, func(s *State) { s.Users = list })
	case TabTemplates:
		list, err := c.api.ListTemplates(ctx)
		return c.apply(gen, "load templates", err, func(s *State) { s.Templates = list })
	default:
		var (
			postings []jobs.Posting
			tasks    []crawler.Task
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			postings, err = c.api.ListJobs(gctx)
			return err
		})
		g.Go(func() (err error) {
			tasks, err = c.api.ListCrawlerTasks(gctx)
			return err
		})
		err := g.Wait()
		return c.apply(gen, "load jobs", err, func(s *State) {
			s.Jobs = postings
			s.Tasks = tasks
		})
	}
}

func (c *Console) SetUserRole(ctx context.Context, id string, role users.Role) error {
	return mutate(c, ctx, "update user role", func() (users.User, error) {
		return c.api.SetUserRole(ctx, id, role)
	}, func(s *State, u users.User) {
		s.Users = replaceByID(s.Users, u, func(x users.User) string { return x.ID })
	})
}

func (c *Console) SetUserStatus(ctx context.Context, id string, status users.Status) error {
	return mutate(c, ctx, "update user status", func() (users.User, error) {
		return c.api.SetUserStatus(ctx, id, status)
	}, func(s *State, u users.User) {
		s.Users = replaceByID(s.Users, u, func(x users.User) string { return x.ID })
	})
}

func (c *Console) CreateUser(ctx context.Context, in users.NewUser) error {
	return mutate(c, ctx, "create user", func() (users.User, error) {
		return c.api.CreateUser(ctx, in)
	}, func(s *State, u users.User) { s.Users = append(s.Users, u) })
}

func (c *Console) DeleteUser(ctx context.Context, id string) error {
	c.mu.Lock()
	label := id
	for _, u := range c.state.Users {
		if u.ID == id && u.Email != "" {
			label = u.Email
		}
	}
	c.mu.Unlock()
	return c.destroy(ctx, fmt.Sprintf("Delete user %q?", label), "delete user", func() error {
		return c.api.DeleteUser(ctx, id)
	}, func(s *State) { s.Users = removeByID(s.Users, id, func(x users.User) string { return x.ID }) })
}

func (c *Console) DeleteJob(ctx context.Context, id string) error {
	c.mu.Lock()
	label := id
	for _, p := range c.state.Jobs {
		if p.ID == id {
			label = jobLabel(p)
		}
	}
	c.mu.Unlock()
	return c.destroy(ctx, fmt.Sprintf("Delete job %q?", label), "delete job", func() error {
		return c.api.DeleteJob(ctx, id)
	}, func(s *State) { s.Jobs = removeByID(s.Jobs, id, func(x jobs.Posting) string { return x.ID }) })
}

func (c *Console) CreateTask(ctx context.Context, in crawler.NewTask) error {
	return mutate(c, ctx, "create crawler task", func() (crawler.Task, error) {
		return c.api.CreateCrawlerTask(ctx, in)
	}, func(s *State, t crawler.Task) { s.Tasks = append([]crawler.Task{t}, s.Tasks...) })
}

func (c *Console) SetTaskStatus(ctx context.Context, id string, status crawler.Status) error {
	return mutate(c, ctx, "update crawler task", func() (crawler.Task, error) {
		return c.api.SetCrawlerTaskStatus(ctx, id, status)
	}, func(s *State, t crawler.Task) {
		s.Tasks = replaceByID(s.Tasks, t, func(x crawler.Task) string { return x.ID })
	})
}

func (c *Console) DeleteTask(ctx context.Context, id string) error {
	c.mu.Lock()
	label := id
	for _, t := range c.state.Tasks {
		if t.ID == id {
			label = t.Query
		}
	}
	c.mu.Unlock()
	return c.destroy(ctx, fmt.Sprintf("Delete crawler task %q?", label), "delete crawler task", func() error {
		return c.api.DeleteCrawlerTask(ctx, id)
	}, func(s *State) { s.Tasks = removeByID(s.Tasks, id, func(x crawler.Task) string { return x.ID }) })
}

// RunTaskNow triggers a crawl and fetches the job list again after the poll delay.
func (c *Console) RunTaskNow(ctx context.Context, id string) error {
	gen, err := c.begin(&c.mutating, nil)
	if err != nil {
		return err
	}
	defer c.end(&c.mutating)

	err = c.api.RunCrawlerTask(ctx, id)
	if err := c.apply(gen, "run crawler task", err, nil); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return nil
	}
	c.pollWG.Add(1)
	c.polls = append(c.polls, c.sched.AfterFunc(c.pollDelay, func() {
		defer c.pollWG.Done()
		c.repollJobs(gen)
	}))
	return nil
}

func (c *Console) repollJobs(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()
	postings, err := c.api.ListJobs(ctx)
	if err != nil {
		telemetry.Warn("console.repoll_failed", map[string]any{"error": err})
	}
	_ = c.apply(gen, "refresh jobs", err, func(s *State) { s.Jobs = postings })
}

func (c *Console) CreateTemplate(ctx context.Context, in templates.NewTemplate) error {
	return mutate(c, ctx, "create template", func() (templates.Template, error) {
		return c.api.CreateTemplate(ctx, in)
	}, func(s *State, t templates.Template) { s.Templates = append(s.Templates, t) })
}

func (c *Console) SetTemplateStatus(ctx context.Context, id string, status templates.Status) error {
	return mutate(c, ctx, "update template", func() (templates.Template, error) {
		return c.api.SetTemplateStatus(ctx, id, status)
	}, func(s *State, t templates.Template) {
		s.Templates = replaceByID(s.Templates, t, func(x templates.Template) string { return x.ID })
	})
}

func (c *Console) DeleteTemplate(ctx context.Context, id string) error {
	c.mu.Lock()
	label := id
	for _, t := range c.state.Templates {
		if t.ID == id && t.Name != "" {
			label = t.Name
		}
	}
	c.mu.Unlock()
	return c.destroy(ctx, fmt.Sprintf("Delete template %q?", label), "delete template", func() error {
		return c.api.DeleteTemplate(ctx, id)
	}, func(s *State) {
		s.Templates = removeByID(s.Templates, id, func(x templates.Template) string { return x.ID })
	})
}

// destroy asks first and only then calls the API.
func (c *Console) destroy(ctx context.Context, prompt, action string, call func() error, update func(*State)) error {
	if !c.confirm.Confirm(ctx, prompt) {
		return ErrCancelled
	}
	gen, err := c.begin(&c.mutating, nil)
	if err != nil {
		return err
	}
	defer c.end(&c.mutating)
	return c.apply(gen, action, call(), update)
}

func mutate[T any](c *Console, ctx context.Context, action string, call func() (T, error), update func(*State, T)) error {
	gen, err := c.begin(&c.mutating, nil)
	if err != nil {
		return err
	}
	defer c.end(&c.mutating)
	out, err := call()
	return c.apply(gen, action, err, func(s *State) { update(s, out) })
}

// begin raises a loading counter and returns the generation the call belongs to.
func (c *Console) begin(counter *int, prep func(*State)) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	*counter++
	c.syncFlags()
	c.state.Error = ""
	if prep != nil {
		prep(&c.state)
	}
	return c.gen, nil
}

func (c *Console) end(counter *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if *counter > 0 {
		*counter--
	}
	c.syncFlags()
}

func (c *Console) syncFlags() {
	c.state.Loading = c.loading > 0
	c.state.Mutating = c.mutating > 0
}

// apply records err or runs update, unless the console was closed since gen.
func (c *Console) apply(gen uint64, action string, err error, update func(*State)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return err
	}
	if err != nil {
		c.state.Error = fmt.Sprintf("%s: %v", action, err)
		return err
	}
	if update != nil {
		update(&c.state)
	}
	return nil
}

func jobLabel(p jobs.Posting) string {
	title := strings.TrimSpace(p.Title)
	if company := strings.TrimSpace(p.Company); company != "" {
		return title + " at " + company
	}
	return title
}

func replaceByID[T any](list []T, item T, id func(T) string) []T {
	out := make([]T, len(list))
	copy(out, list)
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

func removeByID[T any](list []T, target string, id func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if id(item) != target {
			out = append(out, item)
		}
	}
	return out
}
