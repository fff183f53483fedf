package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garunski/applymonitor/internal/backend"
)

func newBackend(t *testing.T, cfg backend.Config, handler http.HandlerFunc) backend.Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.URL = srv.URL
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return backend.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerateRequest(t *testing.T) {
	gen := newBackend(t, backend.Config{Token: "secret", Model: "small"}, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}

		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens int    `json:"max_tokens"`
			Model     string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" || body.Messages[0].Content != "hello" {
			t.Errorf("messages = %+v", body.Messages)
		}
		if body.MaxTokens != 1024 || body.Model != "small" {
			t.Errorf("max_tokens = %d model = %q", body.MaxTokens, body.Model)
		}

		w.Write([]byte(`{"response":"hi there"}`))
	})

	text, err := gen.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "hi there" {
		t.Errorf("text = %q", text)
	}
}

func TestGenerateWithoutToken(t *testing.T) {
	gen := newBackend(t, backend.Config{}, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("no authorization header expected")
		}
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "model") {
			t.Errorf("model should be omitted: %s", raw)
		}
		w.Write([]byte(`"plain"`))
	})

	text, err := gen.Generate(context.Background(), "hello")
	if err != nil || text != "plain" {
		t.Errorf("Generate = %q, %v", text, err)
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		gen := newBackend(t, backend.Config{}, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend should not be called")
		})
		if _, err := gen.Generate(context.Background(), "  "); !errors.Is(err, backend.ErrEmptyPrompt) {
			t.Errorf("err = %v, want ErrEmptyPrompt", err)
		}
	})

	t.Run("upstream status", func(t *testing.T) {
		gen := newBackend(t, backend.Config{}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("overloaded"))
		})

		_, err := gen.Generate(context.Background(), "hello")
		var upstream *backend.UpstreamError
		if !errors.As(err, &upstream) {
			t.Fatalf("err = %v, want UpstreamError", err)
		}
		if upstream.Status != http.StatusServiceUnavailable || upstream.Body != "overloaded" {
			t.Errorf("upstream = %+v", upstream)
		}
	})

	t.Run("unrecognized shape", func(t *testing.T) {
		gen := newBackend(t, backend.Config{}, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		})
		if _, err := gen.Generate(context.Background(), "hello"); !errors.Is(err, backend.ErrInvalidResponse) {
			t.Errorf("err = %v, want ErrInvalidResponse", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		gen := newBackend(t, backend.Config{Timeout: "50ms"}, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		})
		if _, err := gen.Generate(context.Background(), "hello"); err == nil {
			t.Error("expected timeout error")
		}
	})
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"bare string", `"text"`, "text", false},
		{"response field", `{"response":"a","result":"b"}`, "a", false},
		{"result string", `{"result":"b"}`, "b", false},
		{"nested result", `{"result":{"response":"c"}}`, "c", false},
		{"empty response string", `{"response":""}`, "", false},
		{"null", `null`, "", true},
		{"null result", `{"result":null}`, "", true},
		{"result without response", `{"result":{"text":"x"}}`, "", true},
		{"number", `42`, "", true},
		{"not json", `hello`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := backend.ResponseText([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, backend.ErrInvalidResponse) {
					t.Errorf("err = %v, want ErrInvalidResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResponseText: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResponseText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("requires url", func(t *testing.T) {
		var cfg backend.Config
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error for missing url")
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_BACKEND_URL", "http://ai.local/run")
		t.Setenv("TEST_BACKEND_MAX_TOKENS", "512")

		var cfg backend.Config
		err := cfg.Finalize(&backend.Env{URL: "TEST_BACKEND_URL", MaxTokens: "TEST_BACKEND_MAX_TOKENS"})
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.URL != "http://ai.local/run" || cfg.MaxTokens != 512 || cfg.TimeoutDuration() != time.Minute {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("merge", func(t *testing.T) {
		cfg := backend.Config{URL: "http://a", MaxTokens: 1024}
		cfg.Merge(&backend.Config{Model: "m"})
		if cfg.URL != "http://a" || cfg.Model != "m" {
			t.Errorf("cfg = %+v", cfg)
		}
	})
}
