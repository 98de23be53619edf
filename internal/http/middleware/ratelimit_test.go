package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")

	if got := KeyByClient()(c); got != "ip:203.0.113.9" {
		t.Fatalf("expected ip key, got %q", got)
	}
	c.Set(ctxKeySubject, "site-a")
	if got := KeyByClient()(c); got != "sub:site-a" {
		t.Fatalf("expected subject key, got %q", got)
	}
}

func TestNewRateLimiter_BurstCoercionAndReuse(t *testing.T) {
	rl := NewRateLimiter(2, 0, KeyByClient())
	if rl.burst != 1 {
		t.Fatalf("burst coercion failed, got %d", rl.burst)
	}
	lim := rl.getVisitor("k1")
	if rl.getVisitor("k1") != lim {
		t.Fatalf("expected limiter reuse")
	}
}

func TestRateLimiter_IdleBucketsEvicted(t *testing.T) {
	rl := NewRateLimiter(1, 1, KeyByClient())
	rl.ttl = time.Nanosecond
	rl.visitors["old"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: time.Now().Add(-time.Hour)}
	rl.cleanupN = 4999

	_ = rl.getVisitor("new")

	if _, ok := rl.visitors["old"]; ok {
		t.Fatalf("idle bucket must be evicted")
	}
	if _, ok := rl.visitors["new"]; !ok {
		t.Fatalf("new bucket must exist")
	}
}

func TestIsRateBypass(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if IsRateBypass(c) {
		t.Fatalf("default must be false")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatalf("non-bool must read as false")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("expected bypass")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 1, KeyByClient())

	r := gin.New()
	r.Use(RequestID(), rl.Handler())
	r.POST("/leads", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/leads", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(method string, hdr map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/leads", nil)
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(http.MethodPost, nil); w.Code != http.StatusOK {
		t.Fatalf("first request must pass, got %d", w.Code)
	}

	w := do(http.MethodPost, map[string]string{requestIDHeader: "rid-429"})
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 429 with Retry-After, got %d %v", w.Code, w.Header())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["code"] != "rate_limited" || body["request_id"] != "rid-429" || body["error"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}

	if w := do(http.MethodOptions, nil); w.Code != http.StatusNoContent {
		t.Fatalf("preflight must not be limited, got %d", w.Code)
	}

	rb := gin.New()
	rb.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() }, rl.Handler())
	rb.POST("/leads", func(c *gin.Context) { c.Status(http.StatusOK) })
	wb := httptest.NewRecorder()
	rb.ServeHTTP(wb, httptest.NewRequest(http.MethodPost, "/leads", nil))
	if wb.Code != http.StatusOK {
		t.Fatalf("replay must bypass limiter, got %d", wb.Code)
	}
}
