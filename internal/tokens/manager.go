package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/garunski/applymonitor/internal/credentials"
	"github.com/garunski/applymonitor/pkg/identity"
)

// defaultLifetime applies when the provider omits expires_in.
const defaultLifetime = time.Hour

type manager struct {
	store           credentials.System
	signer          *identity.Signer
	oauth           *oauth2.Config
	stateTTL        time.Duration
	successRedirect string
	now             func() time.Time
	logger          *slog.Logger
}

// New creates a token lifecycle System backed by the credential store.
func New(
	cfg Config,
	store credentials.System,
	signer *identity.Signer,
	logger *slog.Logger,
) System {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &manager{
		store:           store,
		signer:          signer,
		oauth:           cfg.OAuth,
		stateTTL:        cfg.StateTTL,
		successRedirect: cfg.SuccessRedirect,
		now:             now,
		logger:          logger.With("system", "tokens"),
	}
}

func (m *manager) Handler() *Handler {
	return NewHandler(m, m.logger, m.successRedirect)
}

func (m *manager) AccessToken(ctx context.Context, accountID string) (string, error) {
	cred, err := m.store.Find(ctx, accountID)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return "", ErrNotConnected
		}
		return "", fmt.Errorf("load credential: %w", err)
	}

	now := m.now()
	if now.Before(cred.ExpiresAt) {
		return cred.AccessToken, nil
	}

	if cred.RefreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token stored", ErrRefreshFailed)
	}

	return m.refresh(ctx, cred, now)
}

func (m *manager) refresh(ctx context.Context, cred *credentials.Credential, now time.Time) (string, error) {
	m.logger.Info("refreshing access token", "account_id", cred.AccountID, "expired_at", cred.ExpiresAt)

	src := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		m.logger.Warn("token refresh failed", "account_id", cred.AccountID, "error", err)
		return "", providerError(ErrRefreshFailed, err)
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultLifetime)
	}

	var rotated string
	if tok.RefreshToken != cred.RefreshToken {
		rotated = tok.RefreshToken
	}

	_, err = m.store.Refresh(ctx, cred.AccountID, credentials.RefreshCommand{
		AccessToken:  tok.AccessToken,
		RefreshToken: rotated,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	return tok.AccessToken, nil
}

func (m *manager) AuthURL(accountID string) (string, error) {
	state, err := m.signer.Issue(accountID, identity.AudienceOAuthState, m.stateTTL)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}

	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (m *manager) Connect(ctx context.Context, state, code string) (string, error) {
	accountID, err := m.signer.Verify(state, identity.AudienceOAuthState)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if code == "" {
		return "", ErrMissingCode
	}

	tok, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		m.logger.Warn("code exchange failed", "account_id", accountID, "error", err)
		return "", providerError(ErrExchangeFailed, err)
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = m.now().Add(defaultLifetime)
	}

	_, err = m.store.Save(ctx, credentials.SaveCommand{
		AccountID:    accountID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("store credential: %w", err)
	}

	m.logger.Info("mailbox connected", "account_id", accountID)
	return accountID, nil
}

func (m *manager) Status(ctx context.Context, accountID string) (*Status, error) {
	cred, err := m.store.Find(ctx, accountID)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return &Status{Connected: false}, nil
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	expiresAt := cred.ExpiresAt
	return &Status{
		Connected: cred.ExpiresAt.After(m.now()) || cred.RefreshToken != "",
		ExpiresAt: &expiresAt,
	}, nil
}

func (m *manager) Disconnect(ctx context.Context, accountID string) error {
	err := m.store.Delete(ctx, accountID)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return fmt.Errorf("delete credential: %w", err)
	}

	m.logger.Info("mailbox disconnected", "account_id", accountID)
	return nil
}

// providerError wraps an oauth2 failure in sentinel, embedding the
// provider's status and body when the token endpoint answered.
func providerError(sentinel, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return fmt.Errorf("%w: provider status %d: %s", sentinel, status, re.Body)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
