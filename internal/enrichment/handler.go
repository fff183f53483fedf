package enrichment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/garunski/applymonitor/pkg/handlers"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/routes"
)

// Handler provides HTTP endpoints for running the enrichment pipeline.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "enrichment"),
	}
}

// Routes returns the route group definition for enrichment endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/process",
		Tags:   []string{"Processing"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/batch", Handler: h.ProcessBatch, OpenAPI: spec.Batch},
			{Method: "POST", Pattern: "/{message_id}", Handler: h.Process, OpenAPI: spec.Process},
		},
	}
}

// Process enriches a single message.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	accountID, err := h.authorize(r, req.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	res, err := h.sys.Process(r.Context(), accountID, r.PathValue("message_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ProcessResponse{
		Message: "Processing completed",
		Result:  res,
	})
}

// ProcessBatch enriches each listed message in order. Per-item failures
// are reported in the response and do not fail the request.
func (h *Handler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	accountID, err := h.authorize(r, req.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if len(req.MessageIDs) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoMessageIDs)
		return
	}

	outcomes := h.sys.ProcessBatch(r.Context(), accountID, req.MessageIDs)
	handlers.RespondJSON(w, http.StatusOK, BatchResponse{Results: outcomes})
}

func (h *Handler) authorize(r *http.Request, userID string) (string, error) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrMissingUserID
	}
	if userID != accountID {
		return "", ErrUserMismatch
	}
	return accountID, nil
}
