package enrichment_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/internal/enrichment"
	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/internal/prompts"
	"github.com/garunski/applymonitor/internal/results"
)

type fakeMessages struct {
	rows map[string]messages.Message
}

func (f *fakeMessages) Find(_ context.Context, accountID, externalID string) (*messages.Message, error) {
	msg, ok := f.rows[externalID]
	if !ok || msg.AccountID != accountID {
		return nil, messages.ErrNotFound
	}
	return &msg, nil
}

type fakePrompts struct {
	bodies map[prompts.Stage]string
}

func (f *fakePrompts) Active(_ context.Context, stage prompts.Stage) (*prompts.Prompt, error) {
	body, ok := f.bodies[stage]
	if !ok {
		return nil, fmt.Errorf("%w: %s", prompts.ErrNoActivePrompt, stage)
	}
	return &prompts.Prompt{ID: uuid.New(), Stage: stage, Body: body, Active: true}, nil
}

type fakeGenerator struct {
	fn      func(prompt string) (string, error)
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.fn(prompt)
}

type memResults struct {
	created []results.CreateCommand
}

func (m *memResults) Create(_ context.Context, cmd results.CreateCommand) (*results.Result, error) {
	m.created = append(m.created, cmd)
	return &results.Result{
		ID:                uuid.New(),
		AccountID:         cmd.AccountID,
		MessageExternalID: cmd.MessageExternalID,
		Category:          cmd.Category,
		Confidence:        cmd.Confidence,
		Company:           cmd.Company,
		JobTitle:          cmd.JobTitle,
		Summary:           cmd.Summary,
		ExtractedData:     cmd.ExtractedData,
		CreatedAt:         time.Now(),
	}, nil
}

func strPtr(s string) *string { return &s }

func defaultPrompts() *fakePrompts {
	return &fakePrompts{bodies: map[prompts.Stage]string{
		prompts.StageClassify:  "classify: {{from_email}} | {{subject}} | {{body}}",
		prompts.StageExtract:   "extract: {{category}} | {{subject}}",
		prompts.StageSummarize: "summarize: {{category}} | {{body}}",
	}}
}

func defaultMessages() *fakeMessages {
	return &fakeMessages{rows: map[string]messages.Message{
		"m1": {AccountID: "acct", ExternalID: "m1", Sender: strPtr("jobs@acme.io"), Subject: strPtr("Interview at Acme"), Snippet: strPtr("Let's talk")},
		"m2": {AccountID: "acct", ExternalID: "m2", Subject: strPtr("broken")},
		"m3": {AccountID: "acct", ExternalID: "m3", Subject: strPtr("Offer")},
	}}
}

// replies answers each stage with a well-formed object. The classify reply
// uses the given confidence.
func replies(confidence string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		switch {
		case strings.HasPrefix(prompt, "classify:"):
			return `{"category":"interview","confidence":` + confidence + `}`, nil
		case strings.HasPrefix(prompt, "extract:"):
			return `{"company":"Acme","job_title":"Engineer","remote":true}`, nil
		case strings.HasPrefix(prompt, "summarize:"):
			return `{"summary":"Interview invite from Acme"}`, nil
		}
		return "", errors.New("unexpected prompt")
	}
}

func newPipeline(gen *fakeGenerator, store *memResults) enrichment.System {
	return enrichment.New(defaultMessages(), defaultPrompts(), gen, store, slog.Default())
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		body string
		vars map[string]string
		want string
	}{
		{"all keys", "{{a}}-{{b}}", map[string]string{"a": "1", "b": "2"}, "1-2"},
		{"repeated", "{{a}}{{a}}", map[string]string{"a": "x"}, "xx"},
		{"unknown left", "{{a}} {{z}}", map[string]string{"a": "1"}, "1 {{z}}"},
		{"no vars", "plain {{a}}", nil, "plain {{a}}"},
		{"empty value", "[{{a}}]", map[string]string{"a": ""}, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := enrichment.RenderTemplate(tt.body, tt.vars); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	gen := &fakeGenerator{fn: replies("0.92")}
	store := &memResults{}
	sys := newPipeline(gen, store)

	res, err := sys.Process(context.Background(), "acct", "m1")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if res.Category == nil || *res.Category != "interview" {
		t.Errorf("category: %v", res.Category)
	}
	if res.Company == nil || *res.Company != "Acme" {
		t.Errorf("company: %v", res.Company)
	}
	if res.JobTitle == nil || *res.JobTitle != "Engineer" {
		t.Errorf("job_title: %v", res.JobTitle)
	}
	if res.Summary == nil || *res.Summary != "Interview invite from Acme" {
		t.Errorf("summary: %v", res.Summary)
	}

	var extracted map[string]any
	if err := json.Unmarshal(res.ExtractedData, &extracted); err != nil {
		t.Fatalf("extracted_data: %v", err)
	}
	if extracted["remote"] != true || extracted["company"] != "Acme" {
		t.Errorf("extracted_data: %v", extracted)
	}

	if len(store.created) != 1 || store.created[0].NeedsReview {
		t.Errorf("created: %+v", store.created)
	}

	if len(gen.prompts) != 3 {
		t.Fatalf("prompts sent: %d", len(gen.prompts))
	}
	if gen.prompts[0] != "classify: jobs@acme.io | Interview at Acme | Let's talk" {
		t.Errorf("classify prompt: %q", gen.prompts[0])
	}
	if gen.prompts[1] != "extract: interview | Interview at Acme" {
		t.Errorf("extract prompt: %q", gen.prompts[1])
	}
}

func TestProcessReviewThreshold(t *testing.T) {
	tests := []struct {
		confidence string
		review     bool
	}{
		{"0.69", true},
		{"0.70", false},
		{"0.1", true},
		{"1", false},
	}

	for _, tt := range tests {
		t.Run(tt.confidence, func(t *testing.T) {
			store := &memResults{}
			sys := newPipeline(&fakeGenerator{fn: replies(tt.confidence)}, store)

			if _, err := sys.Process(context.Background(), "acct", "m1"); err != nil {
				t.Fatalf("process: %v", err)
			}
			if got := store.created[0].NeedsReview; got != tt.review {
				t.Errorf("needs_review = %v, want %v", got, tt.review)
			}
		})
	}
}

func TestProcessRecoversWrappedJSON(t *testing.T) {
	base := replies("0.8")
	gen := &fakeGenerator{fn: func(prompt string) (string, error) {
		out, err := base(prompt)
		return "Sure, here you go:\n```json\n" + out + "\n```\nLet me know!", err
	}}
	store := &memResults{}

	if _, err := newPipeline(gen, store).Process(context.Background(), "acct", "m1"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(store.created) != 1 {
		t.Errorf("created: %d", len(store.created))
	}
}

func TestProcessStageFailures(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) (string, error)
		want    error
		rawText string
	}{
		{
			name: "classify not json",
			fn: func(string) (string, error) {
				return "I cannot help with that", nil
			},
			want:    enrichment.ErrClassifyFailed,
			rawText: "I cannot help with that",
		},
		{
			name: "classify missing confidence",
			fn: func(string) (string, error) {
				return `{"category":"offer"}`, nil
			},
			want:    enrichment.ErrClassifyFailed,
			rawText: `{"category":"offer"}`,
		},
		{
			name: "classify confidence above range",
			fn: func(p string) (string, error) {
				return replies("1.5")(p)
			},
			want:    enrichment.ErrClassifyFailed,
			rawText: `"confidence":1.5`,
		},
		{
			name: "classify confidence below range",
			fn: func(p string) (string, error) {
				return replies("-0.1")(p)
			},
			want:    enrichment.ErrClassifyFailed,
			rawText: `"confidence":-0.1`,
		},
		{
			name: "extract backend error",
			fn: func(p string) (string, error) {
				if strings.HasPrefix(p, "extract:") {
					return "", errors.New("upstream down")
				}
				return replies("0.9")(p)
			},
			want: enrichment.ErrExtractFailed,
		},
		{
			name: "summarize malformed",
			fn: func(p string) (string, error) {
				if strings.HasPrefix(p, "summarize:") {
					return `{"summary": }`, nil
				}
				return replies("0.9")(p)
			},
			want:    enrichment.ErrSummarizeFailed,
			rawText: `{"summary": }`,
		},
		{
			name: "summarize missing summary",
			fn: func(p string) (string, error) {
				if strings.HasPrefix(p, "summarize:") {
					return `Here you go: {"note":"no summary field"}`, nil
				}
				return replies("0.9")(p)
			},
			want:    enrichment.ErrSummarizeFailed,
			rawText: `{"note":"no summary field"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memResults{}
			_, err := newPipeline(&fakeGenerator{fn: tt.fn}, store).Process(context.Background(), "acct", "m1")

			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if tt.rawText != "" && !strings.Contains(err.Error(), tt.rawText) {
				t.Errorf("error %q does not carry raw text %q", err, tt.rawText)
			}
			if len(store.created) != 0 {
				t.Errorf("result written on failure")
			}
			if enrichment.MapHTTPStatus(err) != 500 {
				t.Errorf("status: %d", enrichment.MapHTTPStatus(err))
			}
		})
	}
}

func TestProcessMissingPrompt(t *testing.T) {
	source := defaultPrompts()
	delete(source.bodies, prompts.StageSummarize)
	store := &memResults{}

	sys := enrichment.New(defaultMessages(), source, &fakeGenerator{fn: replies("0.9")}, store, slog.Default())
	_, err := sys.Process(context.Background(), "acct", "m1")

	if !errors.Is(err, enrichment.ErrSummarizeFailed) || !errors.Is(err, prompts.ErrNoActivePrompt) {
		t.Fatalf("error = %v", err)
	}
	if enrichment.MapHTTPStatus(err) != 404 {
		t.Errorf("status: %d", enrichment.MapHTTPStatus(err))
	}
	if len(store.created) != 0 {
		t.Errorf("result written on failure")
	}
}

func TestProcessUnknownMessage(t *testing.T) {
	gen := &fakeGenerator{fn: replies("0.9")}
	sys := newPipeline(gen, &memResults{})

	for _, id := range []string{"missing", "m1"} {
		account := "acct"
		if id == "m1" {
			account = "other"
		}
		_, err := sys.Process(context.Background(), account, id)
		if !errors.Is(err, messages.ErrNotFound) {
			t.Errorf("%s: error = %v", id, err)
		}
	}
	if len(gen.prompts) != 0 {
		t.Errorf("backend called for unknown message")
	}
}

func TestProcessBatch(t *testing.T) {
	base := replies("0.9")
	gen := &fakeGenerator{fn: func(p string) (string, error) {
		if strings.HasPrefix(p, "classify:") && strings.Contains(p, "broken") {
			return "garbled reply for m2", nil
		}
		return base(p)
	}}
	store := &memResults{}

	outcomes := newPipeline(gen, store).ProcessBatch(context.Background(), "acct", []string{"m1", "m2", "m3"})

	if len(outcomes) != 3 {
		t.Fatalf("outcomes: %d", len(outcomes))
	}

	want := []enrichment.OutcomeStatus{enrichment.StatusSuccess, enrichment.StatusError, enrichment.StatusSuccess}
	for i, o := range outcomes {
		if o.Status != want[i] {
			t.Errorf("outcome %d (%s): status %s, want %s", i, o.ExternalID, o.Status, want[i])
		}
	}

	if outcomes[1].ExternalID != "m2" || !strings.Contains(outcomes[1].Error, "garbled reply for m2") {
		t.Errorf("m2 outcome: %+v", outcomes[1])
	}
	if outcomes[0].Error != "" {
		t.Errorf("success carries error: %q", outcomes[0].Error)
	}
	if len(store.created) != 2 {
		t.Errorf("created: %d", len(store.created))
	}
}

func TestProcessBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{fn: replies("0.9")}
	outcomes := newPipeline(gen, &memResults{}).ProcessBatch(ctx, "acct", []string{"m1", "m3"})

	for _, o := range outcomes {
		if o.Status != enrichment.StatusError || !strings.Contains(o.Error, context.Canceled.Error()) {
			t.Errorf("outcome: %+v", o)
		}
	}
	if len(gen.prompts) != 0 {
		t.Errorf("backend called after cancellation")
	}
}
