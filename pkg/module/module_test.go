package module_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garunski/applymonitor/pkg/module"
)

func mustModule(t *testing.T, prefix string, h http.Handler) *module.Module {
	t.Helper()
	m, err := module.New(prefix, h)
	if err != nil {
		t.Fatalf("New(%q): %v", prefix, err)
	}
	return m
}

func TestNewPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		valid  bool
	}{
		{"/api", true},
		{"/v2", true},
		{"", false},
		{"api", false},
		{"/", false},
		{"/api/v1", false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			m, err := module.New(tt.prefix, http.NewServeMux())
			if tt.valid {
				if err != nil || m.Prefix() != tt.prefix {
					t.Errorf("got (%v, %v)", m, err)
				}
				return
			}
			if !errors.Is(err, module.ErrInvalidPrefix) {
				t.Errorf("error = %v, want ErrInvalidPrefix", err)
			}
		})
	}
}

func TestModuleStripsPrefix(t *testing.T) {
	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	})

	m := mustModule(t, "/api", mux)

	tests := []struct {
		path string
		want string
	}{
		{"/api/scans", "/scans"},
		{"/api/scan/123", "/scan/123"},
		{"/api", "/"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		m.ServeHTTP(httptest.NewRecorder(), req)
		if seen != tt.want {
			t.Errorf("%s: inner path %q, want %q", tt.path, seen, tt.want)
		}
		if req.URL.Path != tt.path {
			t.Errorf("original request mutated: %q", req.URL.Path)
		}
	}
}

func TestModuleMiddleware(t *testing.T) {
	m := mustModule(t, "/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("X-Stage")))
	}))

	calls := 0
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			r.Header.Set("X-Stage", "wrapped")
			next.ServeHTTP(w, r)
		})
	})

	for range 2 {
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
		if rec.Body.String() != "wrapped" {
			t.Errorf("body: %q", rec.Body.String())
		}
	}
	if calls != 2 {
		t.Errorf("middleware calls: %d", calls)
	}
}

func TestRouterDispatch(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /scans", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "api")
	})

	router := module.NewRouter()
	router.Mount(mustModule(t, "/api", api))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "native")
	})

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"module route", "/api/scans", http.StatusOK, "api"},
		{"trailing slash", "/api/scans/", http.StatusOK, "api"},
		{"native route", "/healthz", http.StatusOK, "native"},
		{"unknown module path", "/api/nope", http.StatusNotFound, ""},
		{"unknown prefix", "/other", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}
