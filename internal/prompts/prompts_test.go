package prompts_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/garunski/applymonitor/internal/prompts"
	"github.com/garunski/applymonitor/internal/testdb"
	"github.com/garunski/applymonitor/pkg/pagination"
	"github.com/garunski/applymonitor/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", prompts.ErrNotFound, http.StatusNotFound},
		{"no active prompt", fmt.Errorf("%w: classify", prompts.ErrNoActivePrompt), http.StatusNotFound},
		{"duplicate", prompts.ErrDuplicate, http.StatusConflict},
		{"invalid stage", prompts.ErrInvalidStage, http.StatusBadRequest},
		{"invalid prompt", prompts.ErrInvalidPrompt, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", prompts.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := prompts.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStages(t *testing.T) {
	want := []prompts.Stage{prompts.StageClassify, prompts.StageExtract, prompts.StageSummarize}
	stages := prompts.Stages()

	if len(stages) != len(want) {
		t.Fatalf("len(Stages()) = %d, want %d", len(stages), len(want))
	}
	for i, s := range stages {
		if s != want[i] {
			t.Errorf("Stages()[%d] = %q, want %q", i, s, want[i])
		}
	}
}

func TestStageUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    prompts.Stage
		wantErr error
	}{
		{`"classify"`, prompts.StageClassify, nil},
		{`"extract"`, prompts.StageExtract, nil},
		{`"summarize"`, prompts.StageSummarize, nil},
		{`""`, "", nil},
		{`"enhance"`, "", prompts.ErrInvalidStage},
		{`"banana"`, "", prompts.ErrInvalidStage},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var s prompts.Stage
			err := json.Unmarshal([]byte(tt.input), &s)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Unmarshal(%s) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if s != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, s, tt.want)
			}
		})
	}

	t.Run("non-string returns error", func(t *testing.T) {
		var s prompts.Stage
		if err := json.Unmarshal([]byte(`42`), &s); err == nil {
			t.Error("Unmarshal(42) should return error")
		}
	})
}

func TestParseStage(t *testing.T) {
	for _, stage := range prompts.Stages() {
		got, err := prompts.ParseStage(string(stage))
		if err != nil || got != stage {
			t.Errorf("ParseStage(%q) = %q, %v", stage, got, err)
		}
	}

	for _, bad := range []string{"", "init", "Classify"} {
		if _, err := prompts.ParseStage(bad); !errors.Is(err, prompts.ErrInvalidStage) {
			t.Errorf("ParseStage(%q) error = %v, want ErrInvalidStage", bad, err)
		}
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"stage":  {"extract"},
			"name":   {"detailed"},
			"active": {"true"},
		}

		f := prompts.FiltersFromQuery(values)

		if f.Stage == nil || *f.Stage != prompts.StageExtract {
			t.Errorf("Stage = %v, want extract", f.Stage)
		}
		if f.Name == nil || *f.Name != "detailed" {
			t.Errorf("Name = %v, want detailed", f.Name)
		}
		if f.Active == nil || !*f.Active {
			t.Errorf("Active = %v, want true", f.Active)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := prompts.FiltersFromQuery(url.Values{})
		if f.Stage != nil || f.Name != nil || f.Active != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})

	t.Run("invalid active ignored", func(t *testing.T) {
		f := prompts.FiltersFromQuery(url.Values{"active": {"not-a-bool"}})
		if f.Active != nil {
			t.Errorf("Active = %v, want nil for invalid input", f.Active)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "prompts", "p").
		Project("stage", "Stage").
		Project("name", "Name").
		Project("active", "Active")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		prompts.Filters{}.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT p.stage, p.name, p.active FROM public.prompts p"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("name contains filter", func(t *testing.T) {
		b := query.NewBuilder(projection)
		prompts.Filters{Name: ptr("detailed")}.Apply(b)
		_, args := b.Build()

		if len(args) != 1 || args[0] != "%detailed%" {
			t.Errorf("args = %v, want [%%detailed%%]", args)
		}
	})

	t.Run("multiple filters combine with AND", func(t *testing.T) {
		b := query.NewBuilder(projection)
		stage := prompts.StageSummarize
		prompts.Filters{
			Stage:  &stage,
			Name:   ptr("verbose"),
			Active: ptr(false),
		}.Apply(b)
		_, args := b.Build()

		if len(args) != 3 {
			t.Errorf("args length = %d, want 3", len(args))
		}
	})
}

func TestActivationExclusive(t *testing.T) {
	db := testdb.Open(t)
	sys := prompts.New(
		db,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
	ctx := context.Background()
	suffix := testdb.Account()

	create := func(stage prompts.Stage, name string) *prompts.Prompt {
		t.Helper()
		p, err := sys.Create(ctx, prompts.CreateCommand{
			Stage: stage,
			Name:  name + "-" + suffix,
			Body:  "Classify {{subject}} from {{from_email}}",
		})
		if err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
		if p.Active {
			t.Errorf("Create(%s) should insert inactive", name)
		}
		return p
	}

	a := create(prompts.StageClassify, "a")
	b := create(prompts.StageClassify, "b")
	other := create(prompts.StageSummarize, "c")

	again, err := sys.Create(ctx, prompts.CreateCommand{
		Stage: prompts.StageClassify,
		Name:  "a-" + suffix,
		Body:  "Classify {{subject}} (v2)",
	})
	if err != nil {
		t.Fatalf("Create second version: %v", err)
	}
	if again.ID == a.ID {
		t.Errorf("second version reused id %s", a.ID)
	}

	if _, err := sys.Activate(ctx, a.ID, prompts.StageClassify); err != nil {
		t.Fatalf("Activate(a): %v", err)
	}
	if _, err := sys.Activate(ctx, other.ID, ""); err != nil {
		t.Fatalf("Activate(other): %v", err)
	}

	activated, err := sys.Activate(ctx, b.ID, prompts.StageClassify)
	if err != nil {
		t.Fatalf("Activate(b): %v", err)
	}
	if !activated.Active || !activated.UpdatedAt.After(b.UpdatedAt) {
		t.Errorf("activated: %+v", activated)
	}

	active, err := sys.Active(ctx, prompts.StageClassify)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active.ID != b.ID {
		t.Errorf("active classify = %s, want %s", active.ID, b.ID)
	}

	stage := prompts.StageClassify
	page, err := sys.List(ctx, pagination.PageRequest{}, prompts.Filters{Stage: &stage, Active: ptr(true)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("active classify prompts = %d, want 1", page.Total)
	}

	if summarize, err := sys.Active(ctx, prompts.StageSummarize); err != nil || summarize.ID != other.ID {
		t.Errorf("summarize active should be untouched: %v %v", summarize, err)
	}

	if _, err := sys.Activate(ctx, other.ID, prompts.StageClassify); !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("cross-stage Activate: got %v, want ErrNotFound", err)
	}
}
