package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/middleware"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	for _, name := range []string{"first", "second"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order: got %v", order)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantStatus int
		wantCreds  bool
		preflight  bool
	}{
		{
			name:       "disabled",
			cfg:        middleware.CORSConfig{Enabled: false, Origins: []string{"http://a.test"}},
			method:     http.MethodGet,
			origin:     "http://a.test",
			wantStatus: http.StatusOK,
		},
		{
			name:       "allowed origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://a.test"}, AllowCredentials: true, MaxAge: 60},
			method:     http.MethodGet,
			origin:     "http://a.test",
			wantOrigin: "http://a.test",
			wantStatus: http.StatusOK,
			wantCreds:  true,
		},
		{
			name:       "other origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://a.test"}},
			method:     http.MethodGet,
			origin:     "http://b.test",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"*"}},
			method:     http.MethodGet,
			origin:     "http://b.test",
			wantOrigin: "http://b.test",
			wantStatus: http.StatusOK,
		},
		{
			name:       "preflight",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://a.test"}},
			method:     http.MethodOptions,
			origin:     "http://a.test",
			wantOrigin: "http://a.test",
			wantStatus: http.StatusNoContent,
			preflight:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err != nil {
				t.Fatalf("finalize: %v", err)
			}
			handler := middleware.CORS(&tt.cfg)(http.HandlerFunc(ok))

			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCreds {
				t.Errorf("allow-credentials: got %v", got)
			}
		})
	}
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("TEST_CORS_MAX_AGE", "120")

	cfg := middleware.CORSConfig{}
	err := cfg.Finalize(&middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
		MaxAge:  "TEST_CORS_MAX_AGE",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled not loaded from env")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.test" {
		t.Errorf("origins: %v", cfg.Origins)
	}
	if cfg.MaxAge != 120 {
		t.Errorf("max age: %d", cfg.MaxAge)
	}
	if len(cfg.AllowedMethods) == 0 || len(cfg.AllowedHeaders) == 0 {
		t.Error("defaults not applied")
	}

	bad := middleware.CORSConfig{Origins: []string{"*"}, AllowCredentials: true}
	if err := bad.Finalize(nil); err == nil {
		t.Error("wildcard with credentials accepted")
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{Enabled: true, Origins: []string{"http://a.test"}, MaxAge: 60}
	base.Merge(&middleware.CORSConfig{Enabled: false, MaxAge: 0})

	if base.Enabled {
		t.Error("overlay should switch CORS off")
	}
	if base.MaxAge != 60 || len(base.Origins) != 1 {
		t.Errorf("unset overlay fields overwrote base: %+v", base)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	inner := identity.Require(staticAuth("acct-7"), logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "short")
	}))
	handler := middleware.Logger(logger)(inner)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/scan?x=1", nil))

	line := buf.String()
	for _, want := range []string{"msg=request", "method=GET", "uri=\"/scan?x=1\"", "status=418", "bytes=5", "account=acct-7"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestLoggerImplicitStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.Logger(slog.New(slog.NewTextHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "{}")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !strings.Contains(buf.String(), "status=200") || strings.Contains(buf.String(), "account=") {
		t.Errorf("log line: %s", buf.String())
	}
}

func TestMaxBytes(t *testing.T) {
	handler := middleware.MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		body string
		want int
	}{
		{"abcd", http.StatusOK},
		{"abcde", http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
		if rec.Code != tt.want {
			t.Errorf("body %q: status %d, want %d", tt.body, rec.Code, tt.want)
		}
	}
}

type staticAuth string

func (a staticAuth) Authenticate(*http.Request) (string, error) {
	return string(a), nil
}
