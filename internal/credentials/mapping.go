package credentials

import (
	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "credentials", "c").
	Project("account_id", "AccountID").
	Project("access_token", "AccessToken").
	Project("refresh_token", "RefreshToken").
	Project("expires_at", "ExpiresAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const returning = "account_id, access_token, refresh_token, expires_at, created_at, updated_at"

func scanCredential(s repository.Scanner) (Credential, error) {
	var c Credential
	err := s.Scan(
		&c.AccountID,
		&c.AccessToken,
		&c.RefreshToken,
		&c.ExpiresAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
