package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"resume-studio/internal/shared/server/respond"
)

// Tier groups routes by how expensive they are to serve.
type Tier string

const (
	TierDefault Tier = "default"
	// TierAI routes call the language model.
	TierAI Tier = "ai"
	// TierExport routes start a headless browser.
	TierExport Tier = "export"
	// TierCredentials routes accept passwords and are keyed by client IP.
	TierCredentials Tier = "credentials"
)

var routeTiers = map[string]Tier{
	"POST /api/v1/ai/optimize":       TierAI,
	"POST /api/v1/jobs/search/ai":    TierAI,
	"POST /api/v1/match":             TierAI,
	"POST /api/v1/resumes/import":    TierAI,
	"GET /api/v1/resumes/:id/export": TierExport,
	"POST /api/v1/auth/login":        TierCredentials,
	"POST /api/v1/auth/register":     TierCredentials,
}

// TierOf classifies the matched route.
func TierOf(c *gin.Context) Tier {
	if t, ok := routeTiers[c.Request.Method+" "+c.FullPath()]; ok {
		return t
	}
	return TierDefault
}

// Policy allows PerMinute requests on average with bursts up to Burst.
type Policy struct {
	PerMinute int
	Burst     int
}

func (p Policy) ratePerSecond() float64 { return float64(p.PerMinute) / 60 }

// DefaultPolicies derives every tier from the general per-minute budget.
func DefaultPolicies(perMinute int) map[Tier]Policy {
	if perMinute <= 0 {
		perMinute = 120
	}
	atLeast := func(n int) int { return max(n, 1) }
	ai := atLeast(perMinute / 6)
	export := atLeast(perMinute / 12)
	return map[Tier]Policy{
		TierDefault:     {PerMinute: perMinute, Burst: atLeast(perMinute / 4)},
		TierAI:          {PerMinute: ai, Burst: ai},
		TierExport:      {PerMinute: export, Burst: atLeast(export / 2)},
		TierCredentials: {PerMinute: 10, Burst: 5},
	}
}

// RateLimiter holds one token bucket per principal and tier. Buckets idle longer than idleTTL are dropped.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	now       func() time.Time
	idleTTL   time.Duration
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*bucket), now: now, idleTTL: 15 * time.Minute}
}

// Take spends one token for key. It reports the whole tokens left, or the wait before the next one.
func (l *RateLimiter) Take(key string, p Policy) (ok bool, remaining int, wait time.Duration) {
	if p.PerMinute <= 0 || p.Burst <= 0 {
		return true, 0, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	b, found := l.buckets[key]
	if !found {
		b = &bucket{tokens: float64(p.Burst), seen: now}
		l.buckets[key] = b
	}
	if dt := now.Sub(b.seen).Seconds(); dt > 0 {
		b.tokens = math.Min(float64(p.Burst), b.tokens+dt*p.ratePerSecond())
	}
	b.seen = now
	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	secs := (1 - b.tokens) / p.ratePerSecond()
	return false, 0, time.Duration(math.Ceil(secs*1000)) * time.Millisecond
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit throttles each signed-in user (or client IP) per tier. Credential routes always key by IP.
func RateLimit(limiter *RateLimiter, policies map[Tier]Policy) gin.HandlerFunc {
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		tier := TierOf(c)
		policy, ok := policies[tier]
		if !ok {
			c.Next()
			return
		}
		principal := UserIDFromContext(c)
		if principal == "" || tier == TierCredentials {
			principal = "ip:" + c.ClientIP()
		}
		allowed, remaining, wait := limiter.Take(principal+"|"+string(tier), policy)
		if allowed {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(max(int(math.Ceil(wait.Seconds())), 1)))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"tier":         tier,
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}
