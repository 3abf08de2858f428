package documents

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/pkg/handlers"
	"github.com/finchlaw/redress/pkg/pagination"
	"github.com/finchlaw/redress/pkg/routes"
)

var errInvalidID = errors.New("invalid document id")

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "documents"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// List returns a paginated, firm-scoped list of documents with optional
// query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), firmID, page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single document by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	doc, err := h.sys.Find(r.Context(), id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}
