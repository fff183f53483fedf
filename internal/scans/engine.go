package scans

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/garunski/applymonitor/internal/mailbox"
	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/pkg/pagination"
)

type engine struct {
	cfg        Config
	records    Records
	tokens     TokenProvider
	mailbox    Mailbox
	messages   MessageWriter
	archive    Archive
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the ingestion engine. archive may be nil.
func New(
	cfg Config,
	records Records,
	tokens TokenProvider,
	mail Mailbox,
	writer MessageWriter,
	archive Archive,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	cfg.loadDefaults()
	return &engine{
		cfg:        cfg,
		records:    records,
		tokens:     tokens,
		mailbox:    mail,
		messages:   writer,
		archive:    archive,
		logger:     logger.With("system", "scans"),
		pagination: pagination,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger, e.pagination)
}

func (e *engine) Find(ctx context.Context, accountID string, id uuid.UUID) (*Scan, error) {
	return e.records.Find(ctx, accountID, id)
}

func (e *engine) List(
	ctx context.Context,
	accountID string,
	page pagination.PageRequest,
) (*pagination.PageResult[Scan], error) {
	return e.records.List(ctx, accountID, page)
}

func (e *engine) Run(ctx context.Context, accountID string, start, end *time.Time) (*Summary, error) {
	from, to, err := e.window(start, end)
	if err != nil {
		return nil, err
	}

	token, err := e.tokens.AccessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}

	scan, err := e.records.Create(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With("scan_id", scan.ID, "account_id", accountID)
	logger.Info("scan started", "window_start", from, "window_end", to)

	summary := &Summary{
		ScanID:   scan.ID,
		Outcomes: make([]Outcome, 0),
	}

	q := mailbox.BuildQuery(from, to)
	pageToken := ""

	for {
		if err := ctx.Err(); err != nil {
			summary.ListError = errText(err)
			break
		}

		page, err := e.mailbox.ListPage(ctx, token, q, e.cfg.PageSize, pageToken)
		if err != nil {
			logger.Error("list page failed", "error", err)
			summary.ListError = errText(err)
			break
		}

		for _, o := range e.fetchPage(ctx, logger, accountID, scan.ID, token, page.IDs) {
			switch o.Status {
			case OutcomeStored:
				summary.MessagesFound++
				summary.StoredCount++
			case OutcomeDuplicate, OutcomeFailed:
				summary.MessagesFound++
			}
			summary.Outcomes = append(summary.Outcomes, o)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	_, err = e.records.Complete(context.WithoutCancel(ctx), scan.ID, CompleteCommand{
		MessagesFound: summary.MessagesFound,
		StoredCount:   summary.StoredCount,
		ListError:     summary.ListError,
	})
	if err != nil {
		return nil, err
	}

	logger.Info(
		"scan finished",
		"messages_found", summary.MessagesFound,
		"stored_count", summary.StoredCount,
	)
	return summary, nil
}

func (e *engine) window(start, end *time.Time) (time.Time, time.Time, error) {
	to := time.Now()
	if end != nil {
		to = *end
	}
	from := to.Add(-e.cfg.DefaultWindowDuration())
	if start != nil {
		from = *start
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}
	if to.Sub(from) > e.cfg.MaxWindowDuration() {
		return time.Time{}, time.Time{}, ErrWindowTooLarge
	}
	return from, to, nil
}

func (e *engine) fetchPage(
	ctx context.Context,
	logger *slog.Logger,
	accountID string,
	scanID uuid.UUID,
	token string,
	refs []mailbox.Ref,
) []Outcome {
	outcomes := make([]Outcome, len(refs))

	var g errgroup.Group
	g.SetLimit(e.cfg.FetchConcurrency)

	for i, ref := range refs {
		g.Go(func() error {
			outcomes[i] = e.ingest(ctx, logger, accountID, scanID, token, ref)
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func (e *engine) ingest(
	ctx context.Context,
	logger *slog.Logger,
	accountID string,
	scanID uuid.UUID,
	token string,
	ref mailbox.Ref,
) Outcome {
	out := Outcome{ExternalID: ref.ID}

	if err := ctx.Err(); err != nil {
		out.Status = OutcomeSkipped
		out.Error = err.Error()
		return out
	}

	meta, err := e.mailbox.FetchMessage(ctx, token, ref.ID)
	if err != nil {
		logger.Warn("fetch message failed", "external_id", ref.ID, "error", err)
		out.Status = OutcomeSkipped
		out.Error = err.Error()
		return out
	}

	threadID := meta.ThreadID
	if threadID == "" {
		threadID = ref.ThreadID
	}

	inserted, err := e.messages.Insert(ctx, messages.InsertCommand{
		AccountID:  accountID,
		ExternalID: ref.ID,
		ScanID:     &scanID,
		ThreadID:   optional(threadID),
		Subject:    meta.Subject,
		Sender:     meta.Sender,
		Recipient:  meta.Recipient,
		Snippet:    meta.Snippet,
		SentAt:     meta.SentAt,
	})
	if err != nil {
		logger.Error("store message failed", "external_id", ref.ID, "error", err)
		out.Status = OutcomeFailed
		out.Error = err.Error()
		return out
	}

	if !inserted {
		out.Status = OutcomeDuplicate
		return out
	}

	out.Status = OutcomeStored
	e.archiveRaw(ctx, logger, accountID, ref.ID, meta.Raw)
	return out
}

func (e *engine) archiveRaw(
	ctx context.Context,
	logger *slog.Logger,
	accountID, externalID string,
	raw []byte,
) {
	if e.archive == nil || len(raw) == 0 {
		return
	}

	key, err := messages.ArchiveKey(accountID, externalID)
	if err != nil {
		logger.Warn("archive key rejected", "external_id", externalID, "error", err)
		return
	}

	if err := e.archive.Upload(ctx, key, bytes.NewReader(raw), "application/json"); err != nil {
		logger.Warn("archive upload failed", "external_id", externalID, "error", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func errText(err error) *string {
	s := err.Error()
	return &s
}
