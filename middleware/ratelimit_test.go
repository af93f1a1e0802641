package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(t *testing.T, max int, per time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(max, per)
	rl.now = clock.now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiterWithinLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 5, time.Minute)
	for i := 0; i < 5; i++ {
		if ok, _ := rl.allow("1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiterOverLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, time.Minute)
	rl.allow("1.2.3.4")
	rl.allow("1.2.3.4")

	ok, wait := rl.allow("1.2.3.4")
	if ok {
		t.Fatal("should be rate limited")
	}
	if wait <= 0 || wait > 30*time.Second {
		t.Fatalf("expected wait within one refill period, got %s", wait)
	}
}

func TestRateLimiterTokenRefill(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)
	rl.allow("1.2.3.4")
	if ok, _ := rl.allow("1.2.3.4"); ok {
		t.Fatal("should be rate limited immediately")
	}
	clock.advance(61 * time.Second)
	if ok, _ := rl.allow("1.2.3.4"); !ok {
		t.Fatal("token should have refilled")
	}
}

func TestRateLimiterDifferentIPs(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	rl.allow("1.1.1.1")
	if ok, _ := rl.allow("2.2.2.2"); !ok {
		t.Fatal("different IP should have its own bucket")
	}
}

func TestRateLimiterEvictsStaleClients(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)
	rl.allow("1.1.1.1")
	clock.advance(staleAfter + time.Second)
	rl.allow("2.2.2.2")

	rl.evictStale()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["1.1.1.1"]; ok {
		t.Error("stale client should have been evicted")
	}
	if _, ok := rl.clients["2.2.2.2"]; !ok {
		t.Error("recent client should be kept")
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()
}

func TestRateLimiterMiddleware429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(t, 1, time.Minute)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w2.Header().Get("Retry-After"))
	}
}
