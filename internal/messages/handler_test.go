package messages_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/lifecycle"
	"github.com/garunski/applymonitor/pkg/pagination"
	"github.com/garunski/applymonitor/pkg/routes"
	"github.com/garunski/applymonitor/pkg/storage"
)

type mockSystem struct {
	rows     map[string]messages.Message
	lastPage pagination.PageRequest
	lastFilt messages.Filters
}

func (m *mockSystem) Handler() *messages.Handler { return nil }

func (m *mockSystem) Insert(context.Context, messages.InsertCommand) (bool, error) {
	return false, nil
}

func (m *mockSystem) Find(_ context.Context, accountID, externalID string) (*messages.Message, error) {
	msg, ok := m.rows[externalID]
	if !ok || msg.AccountID != accountID {
		return nil, messages.ErrNotFound
	}
	return &msg, nil
}

func (m *mockSystem) List(
	_ context.Context,
	accountID string,
	page pagination.PageRequest,
	filters messages.Filters,
) (*pagination.PageResult[messages.Message], error) {
	m.lastPage = page
	m.lastFilt = filters
	var out []messages.Message
	for _, msg := range m.rows {
		if msg.AccountID == accountID {
			out = append(out, msg)
		}
	}
	result := pagination.NewPageResult(out, len(out), page.Page, page.PageSize)
	return &result, nil
}

type memArchive struct {
	blobs map[string]string
}

func (a *memArchive) Start(*lifecycle.Coordinator) error { return nil }

func (a *memArchive) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	a.blobs[key] = string(data)
	return nil
}

func (a *memArchive) Download(_ context.Context, key string) (*storage.Blob, error) {
	data, ok := a.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(strings.NewReader(data)),
		ContentType:   "application/json",
		ContentLength: int64(len(data)),
	}, nil
}

func setupMux(sys messages.System, archive storage.System, account string) *http.ServeMux {
	h := messages.NewHandler(sys, archive, slog.Default(), pageCfg)
	inner := http.NewServeMux()
	routes.Register(inner, h.Routes())

	outer := http.NewServeMux()
	outer.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if account != "" {
			r = r.WithContext(identity.WithAccount(r.Context(), account))
		}
		inner.ServeHTTP(w, r)
	}))
	return outer
}

func newMock() *mockSystem {
	return &mockSystem{rows: map[string]messages.Message{
		"m1": {AccountID: "acct", ExternalID: "m1", Subject: strPtr("Interview")},
		"m2": {AccountID: "other", ExternalID: "m2"},
	}}
}

func TestHandlerList(t *testing.T) {
	sys := newMock()
	mux := setupMux(sys, nil, "acct")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails?processed=false&needs_review=true&search=acme", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var page pagination.PageResult[messages.Message]
	json.NewDecoder(rec.Body).Decode(&page)
	if page.Total != 1 || page.Data[0].ExternalID != "m1" {
		t.Errorf("page: %+v", page)
	}
	if sys.lastFilt.Processed == nil || *sys.lastFilt.Processed {
		t.Errorf("processed filter: %v", sys.lastFilt.Processed)
	}
	if sys.lastFilt.NeedsReview == nil || !*sys.lastFilt.NeedsReview {
		t.Errorf("needs_review filter: %v", sys.lastFilt.NeedsReview)
	}
	if sys.lastPage.Search == nil || *sys.lastPage.Search != "acme" {
		t.Errorf("search: %v", sys.lastPage.Search)
	}
}

func TestHandlerFind(t *testing.T) {
	mux := setupMux(newMock(), nil, "acct")

	tests := []struct {
		name string
		path string
		want int
	}{
		{"own message", "/emails/m1", http.StatusOK},
		{"other account", "/emails/m2", http.StatusNotFound},
		{"missing", "/emails/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerRequiresAccount(t *testing.T) {
	mux := setupMux(newMock(), nil, "")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestHandlerRaw(t *testing.T) {
	t.Run("archive disabled", func(t *testing.T) {
		mux := setupMux(newMock(), nil, "acct")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/m1/raw", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rec.Code)
		}
	})

	archive := &memArchive{blobs: map[string]string{"acct/m1.json": `{"id":"m1"}`}}
	mux := setupMux(newMock(), archive, "acct")

	t.Run("archived payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/m1/raw", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}
		if rec.Body.String() != `{"id":"m1"}` {
			t.Errorf("body: got %q", rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
	})

	t.Run("blob missing", func(t *testing.T) {
		delete(archive.blobs, "acct/m1.json")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/m1/raw", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rec.Code)
		}
	})
}
