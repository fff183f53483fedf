package scans

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/pkg/pagination"
	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
)

// Records persists scan rows.
type Records interface {
	Create(ctx context.Context, accountID string, start, end time.Time) (*Scan, error)

	// Complete moves a pending scan to completed. A scan that is not
	// pending returns ErrNotPending.
	Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Scan, error)

	Find(ctx context.Context, accountID string, id uuid.UUID) (*Scan, error)
	List(ctx context.Context, accountID string, page pagination.PageRequest) (*pagination.PageResult[Scan], error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewRecords creates a Postgres-backed Records.
func NewRecords(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Records {
	return &repo{
		db:         db,
		logger:     logger.With("system", "scan-records"),
		pagination: pagination,
	}
}

func (r *repo) Create(ctx context.Context, accountID string, start, end time.Time) (*Scan, error) {
	q := `
		INSERT INTO scans(account_id, window_start, window_end, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + returning

	s, err := repository.QueryOne(ctx, r.db, q, []any{accountID, start, end}, scanScan)
	if err != nil {
		return nil, fmt.Errorf("create scan: %w", err)
	}

	r.logger.Info("scan created", "id", s.ID, "account_id", accountID)
	return &s, nil
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Scan, error) {
	q := `
		UPDATE scans
		SET status = 'completed', messages_found = $2, stored_count = $3,
			list_error = $4, completed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + returning

	args := []any{id, cmd.MessagesFound, cmd.StoredCount, cmd.ListError}

	s, err := repository.QueryOne(ctx, r.db, q, args, scanScan)
	if err != nil {
		return nil, repository.MapError(err, ErrNotPending, err)
	}

	r.logger.Info(
		"scan completed",
		"id", s.ID,
		"messages_found", s.MessagesFound,
		"stored_count", s.StoredCount,
	)
	return &s, nil
}

func (r *repo) Find(ctx context.Context, accountID string, id uuid.UUID) (*Scan, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("AccountID", accountID).
		BuildSingleOrNull()

	s, err := repository.QueryOne(ctx, r.db, q, args, scanScan)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &s, nil
}

func (r *repo) List(
	ctx context.Context,
	accountID string,
	page pagination.PageRequest,
) (*pagination.PageResult[Scan], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("AccountID", accountID)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count scans: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanScan)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}
