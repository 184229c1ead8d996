package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter is a monotonically increasing metric.
type Counter struct {
	name string
	help string
	v    atomic.Uint64
}

// Inc adds one.
func (c *Counter) Inc() { c.v.Add(1) }

// Add adds n; negative values are ignored.
func (c *Counter) Add(n int) {
	if n > 0 {
		c.v.Add(uint64(n))
	}
}

// Value returns the current count.
func (c *Counter) Value() uint64 { return c.v.Load() }

var (
	OptimizeRequests = &Counter{name: "optimize_requests_total", help: "Text optimization requests"}
	OptimizeFailures = &Counter{name: "optimize_failed_total", help: "Text optimization requests that failed"}
	MatchRequests    = &Counter{name: "match_requests_total", help: "Resume match scoring requests"}
	MatchFailures    = &Counter{name: "match_failed_total", help: "Resume match scoring requests that failed"}
	ResumeSaves      = &Counter{name: "resume_saves_total", help: "Resume create and update writes"}
	ResumeExports    = &Counter{name: "resume_exports_total", help: "Resume exports rendered"}
	CrawlRuns        = &Counter{name: "crawl_runs_total", help: "Crawler task runs"}
	CrawlFailures    = &Counter{name: "crawl_failed_total", help: "Crawler task runs that failed"}
	PostingsStored   = &Counter{name: "job_postings_stored_total", help: "New job postings stored by the crawler"}
	HandlerPanics    = &Counter{name: "http_panics_total", help: "Requests that panicked and were recovered"}

	counters = []*Counter{
		OptimizeRequests, OptimizeFailures,
		MatchRequests, MatchFailures,
		ResumeSaves, ResumeExports,
		CrawlRuns, CrawlFailures, PostingsStored,
		HandlerPanics,
	}
)

var (
	LLMDuration = newHistogram("llm_duration_ms", "Language model call duration in milliseconds",
		[]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	ExportDuration = newHistogram("resume_export_duration_ms", "Resume export rendering duration in milliseconds",
		[]float64{10, 50, 250, 1000, 2500, 5000, 15000, 45000})

	histograms = []*Histogram{LLMDuration, ExportDuration}
)

// ObserveSince records the milliseconds elapsed since start.
func (h *Histogram) ObserveSince(start time.Time) {
	h.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	for _, c := range counters {
		writeCounter(&buf, c.name, c.help, c.Value())
	}
	for _, h := range histograms {
		writeHistogram(&buf, h.name, h.help, h.Snapshot())
	}
	return buf.String()
}

// Histogram counts observations into cumulative buckets.
type Histogram struct {
	name    string
	help    string
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(name, help string, buckets []float64) *Histogram {
	return &Histogram{
		name:    name,
		help:    help,
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records one value; negatives count as zero.
func (h *Histogram) Observe(value float64) {
	if value < 0 {
		value = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *Histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
