// Package identity resolves the calling account for inbound requests.
// Sessions are HS256 JWTs whose subject is the account id, read from a
// session cookie or an Authorization bearer header.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/garunski/applymonitor/pkg/handlers"
)

// ErrUnauthorized indicates the request carries no valid session.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator returns the account id for a request or ErrUnauthorized.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

type (
	contextKey  struct{}
	observerKey struct{}
)

// WithAccount returns a copy of ctx carrying the authenticated account id.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, contextKey{}, accountID)
}

// Account returns the account id stored by Require, if any.
func Account(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Observe returns a copy of ctx carrying into. Require writes the
// authenticated account id to it, letting outer middleware such as request
// logging see who was served.
func Observe(ctx context.Context, into *string) context.Context {
	return context.WithValue(ctx, observerKey{}, into)
}

// RequestAccount returns the account id stored on the request context by
// Require, or ErrUnauthorized.
func RequestAccount(r *http.Request) (string, error) {
	id, ok := Account(r.Context())
	if !ok {
		return "", ErrUnauthorized
	}
	return id, nil
}

// Require returns middleware that rejects unauthenticated requests with 401
// and stores the account id on the request context for downstream handlers.
func Require(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, err := auth.Authenticate(r)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			if slot, ok := r.Context().Value(observerKey{}).(*string); ok && slot != nil {
				*slot = accountID
			}
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), accountID)))
		})
	}
}

// Session authenticates requests using tokens issued by a Signer.
type Session struct {
	signer     *Signer
	cookieName string
}

// NewSession creates a session Authenticator that checks cookieName before
// falling back to the Authorization header.
func NewSession(signer *Signer, cookieName string) *Session {
	return &Session{signer: signer, cookieName: cookieName}
}

func (s *Session) Authenticate(r *http.Request) (string, error) {
	token := s.token(r)
	if token == "" {
		return "", ErrUnauthorized
	}
	return s.signer.Verify(token, AudienceSession)
}

func (s *Session) token(r *http.Request) string {
	if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}
