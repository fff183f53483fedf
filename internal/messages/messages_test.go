package messages_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/internal/testdb"
	"github.com/garunski/applymonitor/pkg/pagination"
	"github.com/garunski/applymonitor/pkg/storage"
)

var pageCfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func strPtr(s string) *string { return &s }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", messages.ErrNotFound, http.StatusNotFound},
		{"archive disabled", messages.ErrArchiveDisabled, http.StatusNotFound},
		{"blob missing", storage.ErrNotFound, http.StatusNotFound},
		{"missing id", messages.ErrMissingID, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messages.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArchiveKey(t *testing.T) {
	key, err := messages.ArchiveKey("acct", "m1")
	if err != nil {
		t.Fatalf("ArchiveKey: %v", err)
	}
	if key != "acct/m1.json" {
		t.Errorf("key: got %q", key)
	}

	if _, err := messages.ArchiveKey("acct", "../escape"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("traversal: got %v, want ErrInvalidKey", err)
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	sys := messages.New(db, nil, slog.Default(), pageCfg)
	ctx := context.Background()
	account := testdb.Account()

	cmd := messages.InsertCommand{
		AccountID:  account,
		ExternalID: "m1",
		ThreadID:   strPtr("t1"),
		Subject:    strPtr("Interview"),
		Sender:     strPtr("Jane <jane@acme.io>"),
	}

	inserted, err := sys.Insert(ctx, cmd)
	if err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if !inserted {
		t.Error("first Insert should write a row")
	}

	cmd.Subject = strPtr("Changed subject")
	inserted, err = sys.Insert(ctx, cmd)
	if err != nil {
		t.Fatalf("second Insert: %v", err)
	}
	if inserted {
		t.Error("second Insert should be a duplicate")
	}

	msg, err := sys.Find(ctx, account, "m1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if msg.Subject == nil || *msg.Subject != "Interview" {
		t.Errorf("stored row should be unchanged, subject %v", msg.Subject)
	}
	if msg.SentAt != nil {
		t.Errorf("sent_at should be NULL, got %v", msg.SentAt)
	}

	if _, err := sys.Find(ctx, testdb.Account(), "m1"); !errors.Is(err, messages.ErrNotFound) {
		t.Errorf("Find from another account: got %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	db := testdb.Open(t)
	sys := messages.New(db, nil, slog.Default(), pageCfg)
	ctx := context.Background()
	account := testdb.Account()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := sys.Insert(ctx, messages.InsertCommand{
			AccountID:  account,
			ExternalID: id,
			Subject:    strPtr("Offer " + id),
		}); err != nil {
			t.Fatalf("Insert %s: %v", id, err)
		}
	}

	if _, err := db.ExecContext(ctx,
		"UPDATE messages SET processed = true, needs_review = true WHERE account_id = $1 AND external_id = 'b'",
		account,
	); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	all, err := sys.List(ctx, account, pagination.PageRequest{}, messages.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all.Total != 3 {
		t.Errorf("total: got %d, want 3", all.Total)
	}

	processed := true
	only, err := sys.List(ctx, account, pagination.PageRequest{}, messages.Filters{Processed: &processed})
	if err != nil {
		t.Fatalf("List processed: %v", err)
	}
	if only.Total != 1 || only.Data[0].ExternalID != "b" || !only.Data[0].NeedsReview {
		t.Errorf("processed filter: %+v", only.Data)
	}

	search := "offer c"
	found, err := sys.List(ctx, account, pagination.PageRequest{Search: &search}, messages.Filters{})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if found.Total != 1 || found.Data[0].ExternalID != "c" {
		t.Errorf("search: %+v", found.Data)
	}
}
