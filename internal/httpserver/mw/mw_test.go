package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/tagsearch/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"search.example.com", "search.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil.com", "example.com", false},
	}

	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"*.example.com"}, logger.Nop())(ok)

	req := httptest.NewRequest(http.MethodGet, "http://search.example.com/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("allowed host got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "http://other.org/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("rejected host got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantStatus int
		wantAllow  string
	}{
		{name: "disabled", origins: nil, origin: "https://a.test", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: ""},
		{name: "listed origin", origins: []string{"https://a.test"}, origin: "https://a.test", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: "https://a.test"},
		{name: "unlisted origin", origins: []string{"https://a.test"}, origin: "https://b.test", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: ""},
		{name: "wildcard", origins: []string{"*"}, origin: "https://b.test", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: "*"},
		{name: "preflight", origins: []string{"*"}, origin: "https://b.test", method: http.MethodOptions, wantStatus: http.StatusNoContent, wantAllow: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/searches", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			rec := httptest.NewRecorder()
			CORS(tt.origins)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 1, Burst: 2})(ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPut, "/searches/x", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status = %d, want %d", i, codes[i], want[i])
		}
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPut, "/searches/x", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 0})(ok)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d limited with RPS=0", i)
		}
	}
}
