package shield

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hazyhaar/ideaswipe/kit"

	_ "modernc.org/sqlite"
)

func setupShieldDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	if err := Init(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func TestDefaultStack_Headers(t *testing.T) {
	// WHAT: Responses carry security headers and an 8-char trace id.
	// WHY: Every API response must be traceable in the JSON logs.
	stack, _ := DefaultStack(setupShieldDB(t))
	r := chi.NewRouter()
	for _, mw := range stack {
		r.Use(mw)
	}
	var traceInCtx string
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		traceInCtx = kit.GetTraceID(r.Context())
		w.WriteHeader(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s: got %q, want %q", header, got, want)
		}
	}
	traceID := w.Header().Get("X-Trace-ID")
	if len(traceID) != 8 {
		t.Errorf("X-Trace-ID: got %q, want 8 hex chars", traceID)
	}
	if traceInCtx != traceID {
		t.Errorf("context trace id %q != header %q", traceInCtx, traceID)
	}
}

func TestHeadToGet(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HeadToGet)
	r.Get("/healthz", okHandler().ServeHTTP)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("HEAD", "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("HEAD: got %d", w.Code)
	}
}

func TestMaxBody(t *testing.T) {
	h := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("small")))
	if w.Code != http.StatusOK {
		t.Fatalf("small body: got %d", w.Code)
	}
}

func TestRateLimiter_RoutePattern(t *testing.T) {
	// WHAT: Limits apply per route pattern, across different idea ids.
	// WHY: Swipe paths embed the idea id; keying on the raw path would never trip.
	db := setupShieldDB(t)
	db.Exec(`INSERT OR REPLACE INTO rate_limits (endpoint, max_requests, window_seconds, enabled)
		VALUES ('POST /api/ideas/{id}/swipe', 2, 60, 1)`)

	rl := NewRateLimiter(db)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(rl.Middleware)
		r.Post("/api/ideas/{id}/swipe", okHandler().ServeHTTP)
		r.Get("/api/feed", okHandler().ServeHTTP)
	})

	codes := make([]int, 0, 3)
	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/ideas/"+id+"/swipe", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes: got %v, want [200 200 429]", codes)
	}

	// Unlisted endpoints are never limited.
	for range 5 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/feed", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Fatalf("feed: got %d", w.Code)
		}
	}

	// Another client has its own bucket.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/ideas/a/swipe", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("second client: got %d", w.Code)
	}
}

func TestExtractIP_IgnoresForwardedFor(t *testing.T) {
	// WHAT: Without a trusted proxy the client cannot choose its own key.
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := ExtractIP(req); got != "192.0.2.1" {
		t.Errorf("ExtractIP: got %q", got)
	}
	if got := ClientIP(nil)(req); got != "192.0.2.1" {
		t.Errorf("ClientIP(nil): got %q", got)
	}
}

func TestClientIP_TrustedProxy(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.7"})
	if err != nil {
		t.Fatal(err)
	}
	key := ClientIP(trusted)

	cases := []struct {
		name, remote, xff, want string
	}{
		{"untrusted peer", "198.51.100.4:1", "203.0.113.9", "198.51.100.4"},
		{"trusted peer", "10.1.2.3:1", "203.0.113.9", "203.0.113.9"},
		{"spoofed left hop", "10.1.2.3:1", "1.1.1.1, 203.0.113.9", "203.0.113.9"},
		{"proxy chain", "192.0.2.7:1", "203.0.113.9, 10.0.0.5", "203.0.113.9"},
		{"no header", "10.1.2.3:1", "", "10.1.2.3"},
		{"only proxies", "10.1.2.3:1", "10.0.0.9", "10.1.2.3"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tc.remote
		if tc.xff != "" {
			req.Header.Set("X-Forwarded-For", tc.xff)
		}
		if got := key(req); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}

	if _, err := ParseTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Error("expected parse error")
	}
}
