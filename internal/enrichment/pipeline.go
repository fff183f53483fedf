// Package enrichment runs the classify, extract and summarize stages over a
// stored message and records the merged result. A run is all-or-nothing:
// the first failing stage aborts it before anything is written.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/garunski/applymonitor/internal/backend"
	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/internal/prompts"
	"github.com/garunski/applymonitor/internal/results"
	"github.com/garunski/applymonitor/pkg/formatting"
)

// ReviewThreshold is the classification confidence below which a message
// is flagged for human review.
const ReviewThreshold = 0.7

// Classification is the decoded output of the classify stage.
type Classification struct {
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
}

// Extraction is the decoded output of the extract stage.
type Extraction struct {
	Company        *string `json:"company,omitempty"`
	JobTitle       *string `json:"job_title,omitempty"`
	RecruiterName  *string `json:"recruiter_name,omitempty"`
	RecruiterEmail *string `json:"recruiter_email,omitempty"`
	InterviewDate  *string `json:"interview_date,omitempty"`
	Location       *string `json:"location,omitempty"`
	Remote         *bool   `json:"remote,omitempty"`
}

type summaryOutput struct {
	Summary *string `json:"summary"`
}

// MessageReader loads a stored message.
type MessageReader interface {
	Find(ctx context.Context, accountID, externalID string) (*messages.Message, error)
}

// PromptSource yields the active prompt of a stage.
type PromptSource interface {
	Active(ctx context.Context, stage prompts.Stage) (*prompts.Prompt, error)
}

// ResultWriter persists a finished run.
type ResultWriter interface {
	Create(ctx context.Context, cmd results.CreateCommand) (*results.Result, error)
}

// System defines the enrichment contract.
type System interface {
	Handler() *Handler

	Process(ctx context.Context, accountID, externalID string) (*results.Result, error)

	// ProcessBatch processes ids in order and always returns one outcome
	// per id.
	ProcessBatch(ctx context.Context, accountID string, ids []string) []Outcome
}

type pipeline struct {
	messages MessageReader
	prompts  PromptSource
	backend  backend.Generator
	results  ResultWriter
	logger   *slog.Logger
}

// New creates the enrichment pipeline.
func New(
	msgs MessageReader,
	source PromptSource,
	gen backend.Generator,
	store ResultWriter,
	logger *slog.Logger,
) System {
	return &pipeline{
		messages: msgs,
		prompts:  source,
		backend:  gen,
		results:  store,
		logger:   logger.With("system", "enrichment"),
	}
}

func (p *pipeline) Handler() *Handler {
	return NewHandler(p, p.logger)
}

func (p *pipeline) Process(ctx context.Context, accountID, externalID string) (*results.Result, error) {
	msg, err := p.messages.Find(ctx, accountID, externalID)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{
		"from_email": deref(msg.Sender),
		"subject":    deref(msg.Subject),
		"body":       deref(msg.Snippet),
	}

	cls, raw, err := runStage[Classification](ctx, p, prompts.StageClassify, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}
	if cls.Category == "" || cls.Confidence == nil {
		return nil, fmt.Errorf("%w: category and confidence are required: %s", ErrClassifyFailed, raw)
	}
	if *cls.Confidence < 0 || *cls.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence must be within [0, 1]: %s", ErrClassifyFailed, raw)
	}

	needsReview := *cls.Confidence < ReviewThreshold
	vars["category"] = cls.Category

	ext, _, err := runStage[Extraction](ctx, p, prompts.StageExtract, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	sum, raw, err := runStage[summaryOutput](ctx, p, prompts.StageSummarize, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSummarizeFailed, err)
	}
	if sum.Summary == nil {
		return nil, fmt.Errorf("%w: summary is required: %s", ErrSummarizeFailed, raw)
	}

	extracted, err := json.Marshal(ext)
	if err != nil {
		return nil, fmt.Errorf("encode extraction: %w", err)
	}

	res, err := p.results.Create(ctx, results.CreateCommand{
		AccountID:         accountID,
		MessageExternalID: externalID,
		Category:          &cls.Category,
		Confidence:        cls.Confidence,
		Company:           ext.Company,
		JobTitle:          ext.JobTitle,
		Summary:           sum.Summary,
		ExtractedData:     extracted,
		NeedsReview:       needsReview,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info(
		"message enriched",
		"external_id", externalID,
		"category", cls.Category,
		"confidence", *cls.Confidence,
		"needs_review", needsReview,
	)
	return res, nil
}

func (p *pipeline) ProcessBatch(ctx context.Context, accountID string, ids []string) []Outcome {
	outcomes := make([]Outcome, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, failure(id, err))
			continue
		}

		if _, err := p.Process(ctx, accountID, id); err != nil {
			p.logger.Warn("batch item failed", "external_id", id, "error", err)
			outcomes = append(outcomes, failure(id, err))
			continue
		}

		outcomes = append(outcomes, Outcome{ExternalID: id, Status: StatusSuccess})
	}

	return outcomes
}

// runStage renders the active prompt of stage, calls the backend and
// decodes the JSON object recovered from its reply. The raw reply is
// returned for diagnostics.
func runStage[T any](
	ctx context.Context,
	p *pipeline,
	stage prompts.Stage,
	vars map[string]string,
) (T, string, error) {
	var zero T

	prompt, err := p.prompts.Active(ctx, stage)
	if err != nil {
		return zero, "", err
	}

	text, err := p.backend.Generate(ctx, RenderTemplate(prompt.Body, vars))
	if err != nil {
		return zero, "", err
	}

	out, err := formatting.Parse[T](text)
	if err != nil {
		return zero, text, err
	}
	return out, text, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
