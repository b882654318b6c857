package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("trace_id"))
	})
	return r
}

func get(r *gin.Engine, ip string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := newEngine(rl.Limit(zap.NewNop()))

	for i := 0; i < 2; i++ {
		if w := get(r, "10.0.0.1", nil); w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	if w := get(r, "10.0.0.1", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 once the burst is spent, got %d", w.Code)
	}
	if w := get(r, "10.0.0.2", nil); w.Code != http.StatusOK {
		t.Errorf("Another client must have its own bucket, got %d", w.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	now = now.Add(5 * time.Minute)
	rl.getLimiter("10.0.0.2")
	now = now.Add(6 * time.Minute)
	rl.Cleanup()

	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("Expected the idle visitor to be dropped")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("Expected the recent visitor to be kept")
	}
}

func TestTraceID(t *testing.T) {
	r := newEngine(TraceIDMiddleware())

	w := get(r, "10.0.0.1", nil)
	if w.Header().Get(TraceIDHeader) == "" || w.Body.String() != w.Header().Get(TraceIDHeader) {
		t.Errorf("Expected a generated trace id, got header %q body %q", w.Header().Get(TraceIDHeader), w.Body.String())
	}

	w = get(r, "10.0.0.1", map[string]string{TraceIDHeader: "upstream-123"})
	if w.Header().Get(TraceIDHeader) != "upstream-123" {
		t.Errorf("Expected the upstream trace id, got %q", w.Header().Get(TraceIDHeader))
	}
}

func TestCORSAllowsClientOrigin(t *testing.T) {
	r := newEngine(CORSMiddleware("https://tripdaddy.app/", true))

	w := get(r, "10.0.0.1", map[string]string{"Origin": "https://tripdaddy.app"})
	if w.Header().Get("Access-Control-Allow-Origin") != "https://tripdaddy.app" {
		t.Errorf("Expected the client origin to be allowed, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	w = get(r, "10.0.0.1", map[string]string{"Origin": "http://localhost:5173"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected dev origins to be rejected in production, got %d", w.Code)
	}
}
