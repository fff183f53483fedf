package scans_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/internal/scans"
	"github.com/garunski/applymonitor/internal/testdb"
	"github.com/garunski/applymonitor/pkg/pagination"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg scans.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.PageSize != 100 || cfg.FetchConcurrency != 4 || cfg.Archive {
			t.Errorf("defaults: %+v", cfg)
		}
		if cfg.DefaultWindowDuration() != 7*24*time.Hour {
			t.Errorf("default window: got %s", cfg.DefaultWindowDuration())
		}
		if cfg.MaxWindowDuration() != 90*24*time.Hour {
			t.Errorf("max window: got %s", cfg.MaxWindowDuration())
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_INGEST_PAGE_SIZE", "250")
		t.Setenv("TEST_INGEST_ARCHIVE", "true")

		var cfg scans.Config
		err := cfg.Finalize(&scans.Env{PageSize: "TEST_INGEST_PAGE_SIZE", Archive: "TEST_INGEST_ARCHIVE"})
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.PageSize != 250 || !cfg.Archive {
			t.Errorf("env: %+v", cfg)
		}
	})

	invalid := []struct {
		name string
		cfg  scans.Config
	}{
		{"page size over limit", scans.Config{PageSize: 501}},
		{"bad duration", scans.Config{DefaultWindow: "week"}},
		{"default beyond max", scans.Config{DefaultWindow: "2400h"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := scans.Config{PageSize: 100, DefaultWindow: "168h"}
	base.Merge(&scans.Config{PageSize: 50, Archive: true})

	if base.PageSize != 50 || base.DefaultWindow != "168h" || !base.Archive {
		t.Errorf("merge: %+v", base)
	}
}

func TestRecordsLifecycle(t *testing.T) {
	db := testdb.Open(t)
	records := scans.NewRecords(db, slog.New(slog.NewTextHandler(os.Stderr, nil)), pageCfg)
	ctx := context.Background()
	account := testdb.Account()
	start, end := window(7)

	created, err := records.Create(ctx, account, *start, *end)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != scans.StatusPending || created.CompletedAt != nil {
		t.Errorf("created: %+v", created)
	}

	listErr := "gmail api error: status 500"
	done, err := records.Complete(ctx, created.ID, scans.CompleteCommand{
		MessagesFound: 5,
		StoredCount:   3,
		ListError:     &listErr,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != scans.StatusCompleted || done.CompletedAt == nil || done.StoredCount != 3 {
		t.Errorf("completed: %+v", done)
	}

	if _, err := records.Complete(ctx, created.ID, scans.CompleteCommand{}); !errors.Is(err, scans.ErrNotPending) {
		t.Errorf("second Complete: got %v, want ErrNotPending", err)
	}

	found, err := records.Find(ctx, account, created.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.MessagesFound != 5 || found.ListError == nil {
		t.Errorf("found: %+v", found)
	}

	if _, err := records.Find(ctx, testdb.Account(), created.ID); !errors.Is(err, scans.ErrNotFound) {
		t.Errorf("Find other account: got %v, want ErrNotFound", err)
	}
	if _, err := records.Find(ctx, account, uuid.New()); !errors.Is(err, scans.ErrNotFound) {
		t.Errorf("Find missing: got %v, want ErrNotFound", err)
	}

	second, err := records.Create(ctx, account, *start, *end)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	page, err := records.List(ctx, account, pagination.PageRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || page.Data[0].ID != second.ID {
		t.Errorf("list should be newest first: %+v", page.Data)
	}
}
