package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIPRateLimitMiddleware_LimitsPerSourceIP(t *testing.T) {
	r := gin.New()
	r.Use(IPRateLimitMiddleware(NewIPRateLimiter(rate.Limit(0.001), 1)))
	r.POST("/api/log", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/log", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("203.0.113.1"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := send("203.0.113.1"); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", code)
	}
	// Другой источник имеет свой лимит
	if code := send("203.0.113.2"); code != http.StatusOK {
		t.Fatalf("other source: expected 200, got %d", code)
	}
	if code := send(""); code != http.StatusOK {
		t.Fatalf("peer address: expected 200, got %d", code)
	}
}

func TestIPRateLimiter_ReusesLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)

	if limiter.GetLimiter("a") != limiter.GetLimiter("a") {
		t.Error("expected the same limiter for the same ip")
	}
	if limiter.GetLimiter("a") == limiter.GetLimiter("b") {
		t.Error("expected distinct limiters for different ips")
	}
}

func TestIPRateLimiter_EvictsIdleSources(t *testing.T) {
	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	now := start
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = start

	for i := 0; i < 100; i++ {
		limiter.GetLimiter(fmt.Sprintf("10.0.0.%d", i))
	}
	if len(limiter.ips) != 100 {
		t.Fatalf("expected 100 tracked sources, got %d", len(limiter.ips))
	}

	// Активный адрес переживает чистку, простаивающие удаляются
	now = start.Add(LimiterIdleTTL / 2)
	active := limiter.GetLimiter("10.0.0.1")

	now = start.Add(LimiterIdleTTL)
	if limiter.GetLimiter("10.0.0.1") != active {
		t.Error("expected active source to keep its limiter")
	}
	if len(limiter.ips) != 1 {
		t.Errorf("expected only the active source after sweep, got %d", len(limiter.ips))
	}

	now = start.Add(3 * LimiterIdleTTL)
	limiter.GetLimiter("10.0.0.2")
	if _, ok := limiter.ips["10.0.0.1"]; ok {
		t.Error("expected idle source to be evicted")
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || w.Body.String() != generated {
		t.Errorf("expected generated id in header and context, got header %q body %q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("expected incoming id to be kept, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error":"Internal error"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}
