package credentials

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a credential repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "credentials"),
	}
}

func (r *repo) Find(ctx context.Context, accountID string) (*Credential, error) {
	q, args := query.NewBuilder(projection).BuildSingle("AccountID", accountID)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCredential)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &c, nil
}

func (r *repo) Save(ctx context.Context, cmd SaveCommand) (*Credential, error) {
	if cmd.AccessToken == "" {
		return nil, ErrMissingToken
	}

	q := `
		INSERT INTO credentials(account_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), credentials.refresh_token),
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING ` + returning

	args := []any{cmd.AccountID, cmd.AccessToken, cmd.RefreshToken, cmd.ExpiresAt}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Credential, error) {
		return repository.QueryOne(ctx, tx, q, args, scanCredential)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	if c.RefreshToken == "" {
		r.logger.Warn("credential saved without refresh token", "account_id", c.AccountID)
	}

	r.logger.Info("credential saved", "account_id", c.AccountID, "expires_at", c.ExpiresAt)
	return &c, nil
}

func (r *repo) Refresh(ctx context.Context, accountID string, cmd RefreshCommand) (*Credential, error) {
	q := `
		UPDATE credentials SET
			access_token = $1,
			refresh_token = COALESCE(NULLIF($2, ''), refresh_token),
			expires_at = $3,
			updated_at = NOW()
		WHERE account_id = $4
		RETURNING ` + returning

	args := []any{cmd.AccessToken, cmd.RefreshToken, cmd.ExpiresAt, accountID}

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCredential)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("credential refreshed", "account_id", accountID, "expires_at", c.ExpiresAt)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, accountID string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM credentials WHERE account_id = $1",
		accountID,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("credential deleted", "account_id", accountID)
	return nil
}
