package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/account"
	"resume-studio/internal/admin"
	"resume-studio/internal/ai"
	googleauth "resume-studio/internal/auth"
	"resume-studio/internal/crawler"
	"resume-studio/internal/jobs"
	"resume-studio/internal/llm"
	"resume-studio/internal/llm/gemini"
	"resume-studio/internal/llm/openai"
	"resume-studio/internal/matching"
	"resume-studio/internal/queue"
	"resume-studio/internal/resumes"
	"resume-studio/internal/shared/auth"
	"resume-studio/internal/shared/config"
	"resume-studio/internal/shared/server"
	"resume-studio/internal/shared/server/middleware"
	"resume-studio/internal/shared/storage/db"
	"resume-studio/internal/shared/storage/object"
	localstore "resume-studio/internal/shared/storage/object/local"
	s3store "resume-studio/internal/shared/storage/object/s3"
	"resume-studio/internal/shared/telemetry"
	"resume-studio/internal/templates"
	"resume-studio/internal/users"
	"resume-studio/resume/export"
)

const (
	localQueueSize = 64
	exportTimeout  = 45 * time.Second
)

// App holds shared dependencies for the api and crawler processes.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.Store
	LLM      llm.Client
	Queue    queue.Client
	Consumer queue.Consumer
	Tokens   *auth.Issuer

	UsersService     *users.Service
	AccountService   *account.Service
	ResumesService   *resumes.Service
	AIService        *ai.Service
	JobsService      *jobs.Service
	CrawlerService   *crawler.Service
	TemplatesService *templates.Service
	MatchingService  *matching.Service
	StatsService     *admin.StatsService

	closers []io.Closer
}

// Option adjusts how Build wires a process.
type Option func(*buildOptions)

type buildOptions struct {
	dbProfile db.Profile
}

// ForProcess sizes the database pool for the given process kind.
func ForProcess(p db.Profile) Option {
	return func(o *buildOptions) { o.dbProfile = p }
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	bo := buildOptions{dbProfile: db.ProfileAPI}
	for _, opt := range opts {
		opt(&bo)
	}

	app := &App{Config: cfg}

	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.Env)
	if err != nil {
		return nil, err
	}
	app.Tokens = tokens

	if app.DB, err = buildDB(ctx, cfg, bo.dbProfile); err != nil {
		return nil, err
	}
	if app.DB != nil {
		app.closers = append(app.closers, app.DB)
	}
	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, err
	}
	if app.LLM, err = buildLLM(ctx, cfg); err != nil {
		return nil, err
	}
	if err := app.buildQueue(ctx); err != nil {
		return nil, err
	}

	app.buildServices()
	app.Router = app.buildRouter()
	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InProcessWorker reports whether crawl messages are consumed inside the api process.
func (a *App) InProcessWorker() bool {
	_, ok := a.Consumer.(*queue.Local)
	return ok
}

func buildDB(ctx context.Context, cfg config.Config, profile db.Profile) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(profile).Override(os.Getenv))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Config{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, nil
	}
}

func (a *App) buildQueue(ctx context.Context) error {
	switch a.Config.QueueBackend {
	case "amqp":
		q, err := queue.NewAMQPClient(a.Config.AMQPURL, a.Config.AMQPQueue)
		if err != nil {
			return err
		}
		a.Queue, a.Consumer = q, q
		a.closers = append(a.closers, q)
	case "sqs":
		if strings.TrimSpace(a.Config.SQSQueueURL) == "" {
			return fmt.Errorf("QUEUE_BACKEND=sqs requires SQS_QUEUE_URL")
		}
		q, err := queue.NewSQSClient(ctx, a.Config.SQSQueueURL, a.Config.AWSRegion)
		if err != nil {
			return err
		}
		a.Queue, a.Consumer = q, q
	default:
		q := queue.NewLocal(localQueueSize)
		a.Queue, a.Consumer = q, q
	}
	return nil
}

func (a *App) buildServices() {
	var (
		userRepo     users.Repo
		resumeRepo   resumes.Repo
		jobRepo      jobs.Repo
		taskRepo     crawler.Repo
		templateRepo templates.Repo
		reportRepo   matching.Repo
	)
	if a.DB != nil {
		userRepo = &users.PGRepo{DB: a.DB}
		resumeRepo = &resumes.PGRepo{DB: a.DB}
		jobRepo = &jobs.PGRepo{DB: a.DB}
		taskRepo = &crawler.PGRepo{DB: a.DB}
		templateRepo = &templates.PGRepo{DB: a.DB}
		reportRepo = &matching.PGRepo{DB: a.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		taskRepo = crawler.NewMemoryRepo()
		templateRepo = templates.NewMemoryRepo()
		reportRepo = matching.NewMemoryRepo()
	}

	a.AIService = ai.NewService(a.LLM)
	a.UsersService = users.NewService(userRepo, a.Config.AdminEmails)
	a.AccountService = account.NewService(a.UsersService, a.Tokens)
	a.JobsService = jobs.NewService(jobRepo)
	a.CrawlerService = crawler.NewService(taskRepo, a.Queue, a.AIService, a.JobsService)
	a.TemplatesService = templates.NewService(templateRepo)
	a.MatchingService = matching.NewService(reportRepo, a.AIService)
	a.ResumesService = resumes.NewService(resumeRepo, a.Store, export.New(a.Config.ChromePath, exportTimeout), a.AIService)
	a.StatsService = &admin.StatsService{
		Users:        a.UsersService,
		Resumes:      a.ResumesService,
		JobPostings:  a.JobsService,
		CrawlerTasks: a.CrawlerService,
		MatchReports: a.MatchingService,
	}
}

func (a *App) buildRouter() *gin.Engine {
	googleAuth := googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:     a.Config.GoogleClientID,
		ClientSecret: a.Config.GoogleClientSecret,
		RedirectURL:  a.Config.GoogleRedirectURL,
		UIRedirect:   a.Config.UIRedirectURL,
	}, a.AccountService)
	aiHandler := ai.NewHandler(a.AIService)
	jobsHandler := jobs.NewHandler(a.JobsService)
	templatesHandler := templates.NewHandler(a.TemplatesService)

	return server.NewRouter(server.RouterDeps{
		Config:   a.Config,
		Verifier: a.Tokens,
		Limiter:  middleware.NewRateLimiter(nil),
		Routes: []server.RouteRegistrar{
			account.NewHandler(a.AccountService),
			googleAuth,
			resumes.NewHandler(a.ResumesService, ai.WriteError),
			aiHandler,
			jobsHandler,
			matching.NewHandler(a.MatchingService, ai.WriteError),
			templatesHandler,
		},
		AdminRoutes: []server.AdminRegistrar{
			admin.NewHandler(a.StatsService),
			users.NewHandler(a.UsersService),
			jobsHandler,
			crawler.NewHandler(a.CrawlerService),
			templatesHandler,
		},
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
