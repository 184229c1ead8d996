package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"resume-studio/internal/shared/server/respond"
	"resume-studio/internal/shared/telemetry"
)

// Counter reports the size of one collection.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Stats is the overview tab payload.
type Stats struct {
	Users        int `json:"users"`
	Resumes      int `json:"resumes"`
	JobPostings  int `json:"jobPostings"`
	CrawlerTasks int `json:"crawlerTasks"`
	MatchReports int `json:"matchReports"`
}

type StatsService struct {
	Users        Counter
	Resumes      Counter
	JobPostings  Counter
	CrawlerTasks Counter
	MatchReports Counter
}

// Collect counts every collection concurrently.
func (s *StatsService) Collect(ctx context.Context) (Stats, error) {
	var out Stats
	g, gctx := errgroup.WithContext(ctx)
	count := func(c Counter, dst *int) {
		if c == nil {
			return
		}
		g.Go(func() error {
			n, err := c.Count(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(s.Users, &out.Users)
	count(s.Resumes, &out.Resumes)
	count(s.JobPostings, &out.JobPostings)
	count(s.CrawlerTasks, &out.CrawlerTasks)
	count(s.MatchReports, &out.MatchReports)
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return out, nil
}

type Handler struct {
	Stats *StatsService
}

func NewHandler(stats *StatsService) *Handler {
	return &Handler{Stats: stats}
}

// RegisterAdminRoutes expects rg to be guarded by RequireRole("admin").
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.stats)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Stats.Collect(c.Request.Context())
	if err != nil {
		telemetry.Error("admin.stats_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to collect stats", nil)
		return
	}
	respond.OK(c, stats)
}
