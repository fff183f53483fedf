package scans

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/pkg/handlers"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/pagination"
	"github.com/garunski/applymonitor/pkg/routes"
)

// Handler provides HTTP endpoints for running and reading scans.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "scans"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for scan endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Tags:   []string{"Scans"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/scan", Handler: h.Run, OpenAPI: spec.Run},
			{Method: "GET", Pattern: "/scan/{id}", Handler: h.Find, OpenAPI: spec.Find},
			{Method: "GET", Pattern: "/scans", Handler: h.List, OpenAPI: spec.List},
		},
	}
}

// Run starts a scan for the calling account and waits for it to complete.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	start, end, err := req.Window()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	summary, err := h.sys.Run(r.Context(), accountID, start, end)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}

// Find returns one of the calling account's scans.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	scan, err := h.sys.Find(r.Context(), accountID, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, scan)
}

// List returns the calling account's scans, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	page, err := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), accountID, page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
