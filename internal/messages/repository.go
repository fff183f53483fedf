package messages

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/garunski/applymonitor/pkg/pagination"
	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
	"github.com/garunski/applymonitor/pkg/storage"
)

type repo struct {
	db         *sql.DB
	archive    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a message repository implementing the System interface.
// archive may be nil when raw payload archival is disabled.
func New(
	db *sql.DB,
	archive storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		archive:    archive,
		logger:     logger.With("system", "messages"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.archive, r.logger, r.pagination)
}

func (r *repo) Insert(ctx context.Context, cmd InsertCommand) (bool, error) {
	if cmd.AccountID == "" || cmd.ExternalID == "" {
		return false, ErrMissingID
	}

	q := `
		INSERT INTO messages(account_id, external_id, scan_id, thread_id, subject, sender, recipient, snippet, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id, external_id) DO NOTHING`

	result, err := r.db.ExecContext(
		ctx, q,
		cmd.AccountID, cmd.ExternalID, cmd.ScanID, cmd.ThreadID,
		cmd.Subject, cmd.Sender, cmd.Recipient, cmd.Snippet, cmd.SentAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert message %s: %w", cmd.ExternalID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert message %s: %w", cmd.ExternalID, err)
	}

	return n == 1, nil
}

func (r *repo) Find(ctx context.Context, accountID, externalID string) (*Message, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("AccountID", accountID).
		WhereEquals("ExternalID", externalID).
		BuildSingleOrNull()

	m, err := repository.QueryOne(ctx, r.db, q, args, scanMessage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &m, nil
}

func (r *repo) List(
	ctx context.Context,
	accountID string,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Message], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("AccountID", accountID).
		WhereSearch(page.Search, "Subject", "Sender")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}
