package letters

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/pkg/handlers"
	"github.com/finchlaw/redress/pkg/pagination"
	"github.com/finchlaw/redress/pkg/routes"
)

var errInvalidID = errors.New("invalid letter id")

// Handler provides HTTP endpoints for letter operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "letters"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for letter endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/letters",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/analyze", Handler: h.Analyze},
			{Method: "POST", Pattern: "/{id}/generate", Handler: h.Generate},
			{Method: "POST", Pattern: "/{id}/refine", Handler: h.Refine},
			{Method: "POST", Pattern: "/{id}/complete", Handler: h.Complete},
			{Method: "POST", Pattern: "/{id}/reset", Handler: h.Reset},
			{Method: "PUT", Pattern: "/{id}/content", Handler: h.UpdateContent},
			{Method: "GET", Pattern: "/{id}/status", Handler: h.Status},
			{Method: "GET", Pattern: "/{id}/revisions", Handler: h.Revisions},
		},
	}
}

type createRequest struct {
	Title       string      `json:"title"`
	TemplateID  *uuid.UUID  `json:"template_id,omitempty"`
	Tone        ai.Tone     `json:"tone,omitempty"`
	DocumentIDs []uuid.UUID `json:"document_ids"`
}

type generateRequest struct {
	Tone               *ai.Tone `json:"tone,omitempty"`
	CustomInstructions *string  `json:"custom_instructions,omitempty"`
}

type refineRequest struct {
	Feedback       string   `json:"feedback"`
	TargetSections []string `json:"target_sections,omitempty"`
}

type contentRequest struct {
	Content string `json:"content"`
}

// identity resolves the firm and actor headers common to every endpoint.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (firmID, actorID uuid.UUID, ok bool) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, uuid.Nil, false
	}

	actorID, err = handlers.ActorID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, uuid.Nil, false
	}

	return firmID, actorID, true
}

func (h *Handler) letterID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// Create registers a new draft letter with its document associations.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	firmID, actorID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	letter, err := h.sys.Create(r.Context(), CreateCommand{
		Title:       req.Title,
		TemplateID:  req.TemplateID,
		Tone:        req.Tone,
		DocumentIDs: req.DocumentIDs,
		FirmID:      firmID,
		ActorID:     actorID,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, letter)
}

// List returns a paginated, firm-scoped list of letters with optional
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

// Find returns a single letter by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	letter, err := h.sys.Get(r.Context(), id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// Analyze runs the document analysis stage for a letter.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	firmID, actorID, ok := h.identity(w, r)
	if !ok {
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	letter, err := h.sys.Analyze(r.Context(), id, firmID, actorID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// Generate runs the letter generation stage.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	firmID, actorID, ok := h.identity(w, r)
	if !ok {
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
			return
		}
	}

	letter, err := h.sys.Generate(r.Context(), GenerateCommand{
		LetterID:           id,
		Tone:               req.Tone,
		CustomInstructions: req.CustomInstructions,
		FirmID:             firmID,
		ActorID:            actorID,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// Refine runs a refinement pass with attorney feedback.
func (h *Handler) Refine(w http.ResponseWriter, r *http.Request) {
	firmID, actorID, ok := h.identity(w, r)
	if !ok {
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	letter, err := h.sys.Refine(r.Context(), RefineCommand{
		LetterID:       id,
		Feedback:       req.Feedback,
		TargetSections: req.TargetSections,
		FirmID:         firmID,
		ActorID:        actorID,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// Complete marks a generated letter as complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	letter, err := h.sys.Complete(r.Context(), id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// Reset returns a letter to draft from a recoverable state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	letter, err := h.sys.Reset(r.Context(), id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// UpdateContent applies a manual content edit.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	firmID, actorID, ok := h.identity(w, r)
	if !ok {
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	letter, err := h.sys.UpdateContent(r.Context(), UpdateContentCommand{
		LetterID: id,
		Content:  req.Content,
		FirmID:   firmID,
		ActorID:  actorID,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, letter)
}

// Status returns the workflow status read model for a letter.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	status, err := h.sys.Status(r.Context(), id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, status)
}

// Revisions returns a letter's revision history.
func (h *Handler) Revisions(w http.ResponseWriter, r *http.Request) {
	firmID, err := handlers.FirmID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, ok := h.letterID(w, r)
	if !ok {
		return
	}

	revs, err := h.sys.Revisions(r.Context(), id, firmID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, revs)
}
