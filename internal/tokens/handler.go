package tokens

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/garunski/applymonitor/pkg/handlers"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/routes"
)

// Handler provides HTTP endpoints for mailbox connection management.
type Handler struct {
	sys             System
	logger          *slog.Logger
	successRedirect string
}

// NewHandler creates a Handler that redirects to successRedirect after a completed callback.
func NewHandler(sys System, logger *slog.Logger, successRedirect string) *Handler {
	return &Handler{
		sys:             sys,
		logger:          logger.With("handler", "gmail"),
		successRedirect: successRedirect,
	}
}

// Routes returns the session-protected connection endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/gmail",
		Tags:   []string{"Gmail"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/status", Handler: h.Status, OpenAPI: spec.Status},
			{Method: "GET", Pattern: "/auth", Handler: h.Auth, OpenAPI: spec.Auth},
			{Method: "POST", Pattern: "/disconnect", Handler: h.Disconnect, OpenAPI: spec.Disconnect},
		},
	}
}

// PublicRoutes returns the provider callback, which is authenticated by its state token.
func (h *Handler) PublicRoutes() routes.Group {
	return routes.Group{
		Prefix: "/gmail",
		Tags:   []string{"Gmail"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/callback", Handler: h.Callback, OpenAPI: spec.Callback},
		},
	}
}

// Status reports the connection state of the calling account.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	status, err := h.sys.Status(r.Context(), accountID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, status)
}

// Auth redirects to the provider consent page, or returns the URL as JSON with ?format=json.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	url, err := h.sys.AuthURL(accountID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// Callback completes the authorization code flow.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if reason := q.Get("error"); reason != "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %s", ErrAuthorizationDenied, reason))
		return
	}

	if _, err := h.sys.Connect(r.Context(), q.Get("state"), q.Get("code")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	http.Redirect(w, r, h.successRedirect, http.StatusFound)
}

// Disconnect removes the calling account's stored credential.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	if err := h.sys.Disconnect(r.Context(), accountID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"disconnected": true})
}
