package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/pmstandards/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func request(method, remoteAddr, host string) *http.Request {
	req := httptest.NewRequest(method, "/api/bookmarks", nil)
	req.RemoteAddr = remoteAddr
	if host != "" {
		req.Host = host
	}
	return req
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:        2,
		RefillPerMin: 60,
		Now:          func() time.Time { return now },
	})(okHandler)

	serve := func(addr string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request(http.MethodPost, addr, ""))
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := serve("10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := serve("10.0.0.1:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	if rec := serve("10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, buckets should be per IP", rec.Code)
	}

	now = now.Add(time.Second)
	if rec := serve("10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Errorf("status after refill = %d, want 200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 0})(okHandler)
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request(http.MethodPost, "10.0.0.1:1234", ""))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, limiter should be off", i, rec.Code)
		}
	}
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{
		Burst:         1,
		RefillPerMin:  1,
		IdleTTL:       time.Minute,
		SweepInterval: time.Minute,
		Now:           func() time.Time { return now },
	})

	l.allow("a", now)
	l.allow("b", now)
	l.allow("c", now.Add(2*time.Minute))

	if n := len(l.buckets); n != 1 {
		t.Errorf("buckets after sweep = %d, want 1", n)
	}
}

func TestLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 3, RefillPerMin: 30})

	tests := []struct {
		at            time.Duration
		wantOK        bool
		wantRemaining int
		wantRetry     int
	}{
		{at: 0, wantOK: true, wantRemaining: 2},
		{at: 0, wantOK: true, wantRemaining: 1},
		{at: 0, wantOK: true, wantRemaining: 0},
		{at: 0, wantOK: false, wantRetry: 2},
		{at: time.Second, wantOK: false, wantRetry: 1},
		{at: 2 * time.Second, wantOK: true, wantRemaining: 0},
		{at: time.Hour, wantOK: true, wantRemaining: 2},
	}
	for i, tt := range tests {
		ok, remaining, retry := l.allow("10.0.0.1", now.Add(tt.at))
		if ok != tt.wantOK || remaining != tt.wantRemaining || retry != tt.wantRetry {
			t.Errorf("call %d at +%v = (%v, %d, %d), want (%v, %d, %d)",
				i, tt.at, ok, remaining, retry, tt.wantOK, tt.wantRemaining, tt.wantRetry)
		}
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantOrigin string
		wantCode   int
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "http://ui.local", method: http.MethodGet, wantOrigin: "*", wantCode: http.StatusOK},
		{name: "listed origin", origins: []string{"http://ui.local"}, origin: "http://ui.local", method: http.MethodGet, wantOrigin: "http://ui.local", wantCode: http.StatusOK},
		{name: "unlisted origin", origins: []string{"http://ui.local"}, origin: "http://evil.local", method: http.MethodGet, wantOrigin: "", wantCode: http.StatusOK},
		{name: "preflight", origins: []string{"*"}, origin: "http://ui.local", method: http.MethodOptions, wantOrigin: "*", wantCode: http.StatusNoContent},
		{name: "disabled", origins: nil, origin: "http://ui.local", method: http.MethodGet, wantOrigin: "", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/topics", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			CORS(tt.origins)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8", "192.168.1.5"}, false, logger.NewNop())(okHandler)

	tests := []struct {
		addr string
		want int
	}{
		{addr: "10.1.2.3:5555", want: http.StatusOK},
		{addr: "192.168.1.5:5555", want: http.StatusOK},
		{addr: "192.168.1.6:5555", want: http.StatusForbidden},
		{addr: "[::1]:5555", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request(http.MethodGet, tt.addr, ""))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.addr, rec.Code, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"api.example.com", "*.internal.lan"}, logger.NewNop())(okHandler)

	tests := []struct {
		host string
		want int
	}{
		{host: "api.example.com", want: http.StatusOK},
		{host: "API.example.com:8443", want: http.StatusOK},
		{host: "admin.internal.lan", want: http.StatusOK},
		{host: "internal.lan", want: http.StatusForbidden},
		{host: "example.com", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request(http.MethodGet, "10.0.0.1:1", tt.host))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.host, rec.Code, tt.want)
		}
	}
}

func TestStatusWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}

	_, _ = sw.Write([]byte("hello"))
	if sw.status != http.StatusOK || sw.bytes != 5 {
		t.Errorf("status/bytes = %d/%d, want 200/5", sw.status, sw.bytes)
	}
}
