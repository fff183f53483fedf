package messages

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/garunski/applymonitor/pkg/handlers"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/pagination"
	"github.com/garunski/applymonitor/pkg/routes"
	"github.com/garunski/applymonitor/pkg/storage"
)

// Handler provides HTTP endpoints for reading ingested messages.
type Handler struct {
	sys        System
	archive    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler. archive may be nil.
func NewHandler(
	sys System,
	archive storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		archive:    archive,
		logger:     logger.With("handler", "messages"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for message endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/emails",
		Tags:   []string{"Emails"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.Find},
			{Method: "GET", Pattern: "/{id}/raw", Handler: h.Raw, OpenAPI: spec.Raw},
		},
	}
}

// List returns the calling account's messages, newest first.
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
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), accountID, page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single message by its provider id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	msg, err := h.sys.Find(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, msg)
}

// Raw streams the archived provider payload of a message.
func (h *Handler) Raw(w http.ResponseWriter, r *http.Request) {
	accountID, err := identity.RequestAccount(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, err)
		return
	}

	if h.archive == nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrArchiveDisabled)
		return
	}

	msg, err := h.sys.Find(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	key, err := ArchiveKey(msg.AccountID, msg.ExternalID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	blob, err := h.archive.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	io.Copy(w, blob.Body)
}
