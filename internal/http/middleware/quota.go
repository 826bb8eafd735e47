// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements per-endpoint quotas: a sliding window of request
// timestamps per (identity, endpoint class). Each request is charged to
// exactly one class, chosen by a classifier; the router maps generation to
// "script_generation", video rendering to "video_creation" and everything
// else under /api to "api_call".
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// QuotaOptions configures a Quota.
type QuotaOptions struct {
	// Window is the sliding window length. Values <= 0 default to one hour.
	Window time.Duration
	// Limits maps an endpoint class to the requests allowed per window.
	// Classes that are absent or mapped to 0 are not limited.
	Limits map[string]int
	// Key identifies the caller. Defaults to KeyByUserOrIP.
	Key keyFunc
	// Now is the clock; tests override it.
	Now func() time.Time
}

// Quota is a sliding-window limiter keyed by caller and endpoint class.
// Safe for concurrent use.
type Quota struct {
	window time.Duration
	limits map[string]int
	keyFn  keyFunc
	now    func() time.Time

	mu     sync.Mutex
	hits   map[string][]time.Time
	sweepN uint64
}

// NewQuota builds a Quota from opts.
func NewQuota(opts QuotaOptions) *Quota {
	q := &Quota{
		window: opts.Window,
		limits: make(map[string]int, len(opts.Limits)),
		keyFn:  opts.Key,
		now:    opts.Now,
		hits:   make(map[string][]time.Time),
	}
	if q.window <= 0 {
		q.window = time.Hour
	}
	for k, v := range opts.Limits {
		q.limits[k] = v
	}
	if q.keyFn == nil {
		q.keyFn = KeyByUserOrIP()
	}
	if q.now == nil {
		q.now = time.Now
	}
	return q
}

// Limit returns the allowance of class, 0 meaning unlimited.
func (q *Quota) Limit(class string) int { return q.limits[class] }

// Allow charges one request of class to identity. It reports whether the
// request fits, how many remain in the window, and, when refused, how long
// until the oldest hit leaves the window.
func (q *Quota) Allow(identity, class string) (ok bool, remaining int, retryAfter time.Duration) {
	limit := q.limits[class]
	if limit <= 0 {
		return true, -1, 0
	}
	now := q.now()
	cutoff := now.Add(-q.window)
	key := identity + "|" + class

	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepN++
	if q.sweepN >= 1000 {
		for k, ts := range q.hits {
			if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
				delete(q.hits, k)
			}
		}
		q.sweepN = 0
	}

	ts := q.hits[key]
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	ts = ts[i:]

	if len(ts) >= limit {
		q.hits[key] = ts
		return false, 0, ts[0].Add(q.window).Sub(now)
	}
	ts = append(ts, now)
	q.hits[key] = ts
	return true, limit - len(ts), 0
}

// Handler charges each request to the class returned by classify. An empty
// class skips the quota. Limited responses carry X-RateLimit-Limit and
// X-RateLimit-Remaining; refusals get 429 with Retry-After in whole seconds.
func (q *Quota) Handler(classify func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		class := classify(c)
		if class == "" || IsRateBypass(c) {
			c.Next()
			return
		}

		ok, remaining, wait := q.Allow(q.keyFn(c), class)
		if limit := q.Limit(class); limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		if ok {
			c.Next()
			return
		}

		rateLimited.WithLabelValues(class).Inc()
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"detail":     "rate limit exceeded for " + class,
		})
	}
}
