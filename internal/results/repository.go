package results

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a result repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "results"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Result, error) {
	insertQ := `
		INSERT INTO ai_results(
			account_id, message_external_id, category, confidence,
			company, job_title, summary, extracted_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + returning

	var data any
	if len(cmd.ExtractedData) > 0 {
		data = string(cmd.ExtractedData)
	}

	args := []any{
		cmd.AccountID, cmd.MessageExternalID, cmd.Category, cmd.Confidence,
		cmd.Company, cmd.JobTitle, cmd.Summary, data,
	}

	res, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Result, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			`UPDATE messages SET processed = true, needs_review = $1
			 WHERE account_id = $2 AND external_id = $3`,
			cmd.NeedsReview, cmd.AccountID, cmd.MessageExternalID,
		); err != nil {
			return Result{}, repository.MapError(err, ErrMessageNotFound, err)
		}

		res, err := repository.QueryOne(ctx, tx, insertQ, args, scanResult)
		if err != nil {
			return Result{}, fmt.Errorf("insert ai result: %w", err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"ai result stored",
		"id", res.ID,
		"external_id", res.MessageExternalID,
		"needs_review", cmd.NeedsReview,
	)
	return &res, nil
}

func (r *repo) Latest(ctx context.Context, accountID, externalID string) (*Result, error) {
	q, args := r.byMessage(accountID, externalID).BuildPage(1, 1)

	res, err := repository.QueryOne(ctx, r.db, q, args, scanResult)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &res, nil
}

func (r *repo) History(ctx context.Context, accountID, externalID string) ([]Result, error) {
	q, args := r.byMessage(accountID, externalID).Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanResult)
	if err != nil {
		return nil, fmt.Errorf("query ai results: %w", err)
	}
	if items == nil {
		items = []Result{}
	}
	return items, nil
}

func (r *repo) byMessage(accountID, externalID string) *query.Builder {
	return query.NewBuilder(projection, newestFirst).
		WhereEquals("AccountID", accountID).
		WhereEquals("MessageExternalID", externalID)
}
