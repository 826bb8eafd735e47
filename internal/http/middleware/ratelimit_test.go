package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"
)

func limitedEngine(rl *RateLimiter, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Header(requestIDHeader, "rid-rl"); c.Next() })
	r.Use(UserIdentity())
	r.Use(pre...)
	r.Use(rl.Handler())
	r.GET("/api/scripts", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"scripts": []string{}}) })
	return r
}

func hit(r http.Handler, user, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
	req.RemoteAddr = ip + ":40000"
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.9:12345"

	key := KeyByUserOrIP()
	if got := key(c); got != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(UserIDKey, "creator-42")
	if got := key(c); got != "user:creator-42" {
		t.Fatalf("user key = %q", got)
	}
}

func TestRateLimiter_BucketsPerCaller(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, KeyByUserOrIP())
	r := limitedEngine(rl)
	base := testutil.ToFloat64(rateLimited.WithLabelValues("burst"))

	if w := hit(r, "alice", "198.51.100.1"); w.Code != http.StatusOK {
		t.Fatalf("alice first = %d", w.Code)
	}
	// Same user from another address shares the bucket.
	w := hit(r, "alice", "198.51.100.2")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second = %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["code"] != "too_many_requests" || body["detail"] != "rate limit exceeded" || body["request_id"] != "rid-rl" {
		t.Fatalf("body = %v", body)
	}

	if w := hit(r, "bob", "198.51.100.1"); w.Code != http.StatusOK {
		t.Fatalf("bob = %d", w.Code)
	}
	// Anonymous callers are keyed by IP, separate from users on that IP.
	if w := hit(r, "", "198.51.100.1"); w.Code != http.StatusOK {
		t.Fatalf("anonymous = %d", w.Code)
	}
	if w := hit(r, "", "198.51.100.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("anonymous again = %d", w.Code)
	}

	if got := testutil.ToFloat64(rateLimited.WithLabelValues("burst")); got != base+2 {
		t.Fatalf("burst rejections = %v, want %v", got, base+2)
	}
}

func TestRateLimiter_ReplayBypass(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, KeyByUserOrIP())
	replay := func(c *gin.Context) {
		if c.GetHeader(HeaderIdempotencyKey) != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
	r := limitedEngine(rl, replay)

	hit(r, "carol", "192.0.2.1")
	req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
	req.RemoteAddr = "192.0.2.1:40000"
	req.Header.Set(HeaderUserID, "carol")
	req.Header.Set(HeaderIdempotencyKey, "k-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("replay should bypass the bucket, got %d", w.Code)
	}
}

func TestIsRateBypass_NonBool(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if IsRateBypass(c) {
		t.Fatal("unset should be false")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatal("non-bool should read as false")
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByUserOrIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1", rl.burst)
	}
	first := rl.getVisitor("user:dave")
	if rl.getVisitor("user:dave") != first {
		t.Fatal("bucket not reused")
	}

	rl.mu.Lock()
	rl.visitors["user:gone"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: time.Now().Add(-time.Hour)}
	rl.cleanupN = 4999
	rl.mu.Unlock()

	rl.getVisitor("user:erin")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["user:gone"]; ok {
		t.Fatal("idle bucket survived sweep")
	}
	if _, ok := rl.visitors["user:dave"]; !ok {
		t.Fatal("fresh bucket evicted")
	}
}
