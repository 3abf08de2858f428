package templates

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/pkg/handlers"
	"github.com/finchlaw/redress/pkg/pagination"
	"github.com/finchlaw/redress/pkg/routes"
)

var errInvalidID = errors.New("invalid template id")

// Handler provides HTTP endpoints for template operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "templates"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for template endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/templates",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/variables", Handler: h.Variables},
		},
	}
}

// List returns a paginated, firm-scoped list of templates.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), firmID, page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single template by its UUID path parameter.
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

	t, err := h.sys.Find(r.Context(), id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

// Variables returns a template's substitution values keyed by name.
func (h *Handler) Variables(w http.ResponseWriter, r *http.Request) {
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

	vars, err := h.sys.Variables(r.Context(), &id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, vars)
}
