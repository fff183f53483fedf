package results

import (
	"log/slog"
	"net/http"

	"github.com/garunski/applymonitor/pkg/handlers"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/routes"
)

// Handler provides HTTP endpoints for reading enrichment results.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "results"),
	}
}

// Routes returns the route group definition for result endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/results",
		Tags:   []string{"Results"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{message_id}", Handler: h.Latest, OpenAPI: spec.Latest},
			{Method: "GET", Pattern: "/{message_id}/history", Handler: h.History, OpenAPI: spec.History},
		},
	}
}

// Latest returns the current result for a message.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	res, err := h.sys.Latest(r.Context(), accountID, r.PathValue("message_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, res)
}

// History returns all results for a message, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	items, err := h.sys.History(r.Context(), accountID, r.PathValue("message_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}
