package letters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/documents"
	"github.com/finchlaw/redress/internal/pipeline"
	"github.com/finchlaw/redress/internal/revisions"
	"github.com/finchlaw/redress/internal/templates"
	"github.com/finchlaw/redress/internal/workflow"
	"github.com/finchlaw/redress/pkg/pagination"
)

// Analyzer runs the document analysis pipeline for a letter. It is
// injected so the orchestrator can be exercised without a live graph.
type Analyzer func(
	ctx context.Context,
	letterID, firmID uuid.UUID,
	documentIDs []uuid.UUID,
) (*pipeline.Result, error)

// Dependencies holds the collaborators a letter service requires.
type Dependencies struct {
	Store      Store
	Documents  documents.System
	Templates  templates.System
	Revisions  revisions.System
	AI         ai.System
	Analyzer   Analyzer
	Logger     *slog.Logger
	Pagination pagination.Config
}

type service struct {
	store      Store
	documents  documents.System
	templates  templates.System
	revisions  revisions.System
	ai         ai.System
	analyzer   Analyzer
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a letter service implementing the System interface.
func New(deps Dependencies) System {
	return &service{
		store:      deps.Store,
		documents:  deps.Documents,
		templates:  deps.Templates,
		revisions:  deps.Revisions,
		ai:         deps.AI,
		analyzer:   deps.Analyzer,
		logger:     deps.Logger.With("system", "letters"),
		pagination: deps.Pagination,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*DemandLetter, error) {
	if cmd.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}

	tone := cmd.Tone
	if tone == "" {
		tone = ai.ToneFormal
	}
	if !tone.Valid() {
		return nil, fmt.Errorf("%w: unknown tone %q", ErrInvalidRequest, tone)
	}

	if cmd.TemplateID != nil {
		if _, err := s.templates.Find(ctx, *cmd.TemplateID, cmd.FirmID); err != nil {
			return nil, fmt.Errorf("resolve template: %w", err)
		}
	}

	for _, docID := range cmd.DocumentIDs {
		if _, err := s.documents.Find(ctx, docID, cmd.FirmID); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDocumentNotFound, docID, err)
		}
	}

	letter := DemandLetter{
		ID:            uuid.New(),
		FirmID:        cmd.FirmID,
		CreatedBy:     cmd.ActorID,
		Title:         cmd.Title,
		TemplateID:    cmd.TemplateID,
		Tone:          tone,
		WorkflowState: workflow.StateDraft,
	}

	return s.store.Insert(ctx, letter, cmd.DocumentIDs)
}

func (s *service) Get(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error) {
	return s.store.Get(ctx, id, firmID)
}

func (s *service) List(
	ctx context.Context,
	firmID uuid.UUID,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[DemandLetter], error) {
	return s.store.List(ctx, firmID, page, filters)
}

func (s *service) Analyze(ctx context.Context, id, firmID, actorID uuid.UUID) (*DemandLetter, error) {
	letter, err := s.store.Get(ctx, id, firmID)
	if err != nil {
		return nil, err
	}

	working, err := workflow.Transition(letter.WorkflowState, workflow.ActionStartAnalysis)
	if err != nil {
		return nil, err
	}

	documentIDs, err := s.store.DocumentIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(documentIDs) == 0 {
		return nil, fmt.Errorf("%w: letter %s", ErrNoDocuments, id)
	}

	if err := s.store.Transition(ctx, id, firmID, letter.WorkflowState, working); err != nil {
		return nil, err
	}

	result, err := s.analyzer(ctx, id, firmID, documentIDs)
	if err != nil {
		s.fail(ctx, id, firmID, working, workflow.ActionAnalysisError)
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if len(result.AnalyzedDocumentIDs) == 0 {
		s.fail(ctx, id, firmID, working, workflow.ActionAnalysisError)
		return nil, fmt.Errorf("%w: no documents produced extractions", ErrAnalysisFailed)
	}

	done, err := workflow.Transition(working, workflow.ActionAnalysisComplete)
	if err != nil {
		return nil, err
	}

	metadata := letter.Metadata
	metadata.Absorb(result.Usage, result.ModelID)

	if err := s.store.SaveAnalysis(ctx, SaveAnalysis{
		LetterID:            id,
		FirmID:              firmID,
		Data:                result.Data,
		Metadata:            metadata,
		AnalyzedDocumentIDs: result.AnalyzedDocumentIDs,
		From:                working,
		To:                  done,
	}); err != nil {
		s.fail(ctx, id, firmID, working, workflow.ActionAnalysisError)
		return nil, err
	}

	s.logger.Info(
		"analysis complete",
		"id", id,
		"analyzed", len(result.AnalyzedDocumentIDs),
		"skipped", len(result.SkippedDocumentIDs),
	)
	return s.store.Get(ctx, id, firmID)
}

func (s *service) Generate(ctx context.Context, cmd GenerateCommand) (*DemandLetter, error) {
	letter, err := s.store.Get(ctx, cmd.LetterID, cmd.FirmID)
	if err != nil {
		return nil, err
	}

	working, err := workflow.Transition(letter.WorkflowState, workflow.ActionStartGeneration)
	if err != nil {
		return nil, err
	}

	if letter.ExtractedData == nil {
		return nil, fmt.Errorf("%w: letter has no extracted data", ErrInvalidRequest)
	}

	tone := letter.Tone
	if cmd.Tone != nil {
		if !cmd.Tone.Valid() {
			return nil, fmt.Errorf("%w: unknown tone %q", ErrInvalidRequest, *cmd.Tone)
		}
		tone = *cmd.Tone
	}

	variables, err := s.templates.Variables(ctx, letter.TemplateID, cmd.FirmID)
	if err != nil {
		return nil, fmt.Errorf("resolve template variables: %w", err)
	}

	if err := s.store.Transition(ctx, cmd.LetterID, cmd.FirmID, letter.WorkflowState, working); err != nil {
		return nil, err
	}

	result, err := s.ai.GenerateLetter(ctx, ai.GenerateRequest{
		LetterID:           cmd.LetterID,
		Data:               *letter.ExtractedData,
		TemplateVariables:  variables,
		Tone:               tone,
		CustomInstructions: cmd.CustomInstructions,
		FirmID:             cmd.FirmID,
		ActorID:            cmd.ActorID,
	})
	if err != nil {
		s.fail(ctx, cmd.LetterID, cmd.FirmID, working, workflow.ActionGenerationError)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if !result.Success || result.Letter == nil {
		s.fail(ctx, cmd.LetterID, cmd.FirmID, working, workflow.ActionGenerationError)
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, result.ErrorMessage)
	}

	done, err := workflow.Transition(working, workflow.ActionGenerationComplete)
	if err != nil {
		return nil, err
	}

	generatedAt := result.Timestamp
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	metadata := letter.Metadata
	metadata.Absorb(result.Usage, result.ModelID)
	metadata.GeneratedAt = &generatedAt

	content := Flatten(result.Letter.Sections)

	changeType := revisions.ChangeAIGeneration
	if letter.CurrentContent == nil {
		changeType = revisions.ChangeInitial
	}

	if err := s.store.SaveContent(ctx, SaveContent{
		LetterID: cmd.LetterID,
		FirmID:   cmd.FirmID,
		Content:  content,
		Metadata: metadata,
		Revision: revisions.AppendCommand{
			LetterID:   cmd.LetterID,
			Content:    content,
			ChangeType: changeType,
			CreatedBy:  cmd.ActorID,
		},
		From: working,
		To:   done,
	}); err != nil {
		s.fail(ctx, cmd.LetterID, cmd.FirmID, working, workflow.ActionGenerationError)
		return nil, err
	}

	s.logger.Info(
		"generation complete",
		"id", cmd.LetterID,
		"tone", tone,
		"word_count", result.Letter.WordCount,
	)
	return s.store.Get(ctx, cmd.LetterID, cmd.FirmID)
}

func (s *service) Refine(ctx context.Context, cmd RefineCommand) (*DemandLetter, error) {
	if cmd.Feedback == "" {
		return nil, fmt.Errorf("%w: feedback is required", ErrInvalidRequest)
	}

	letter, err := s.store.Get(ctx, cmd.LetterID, cmd.FirmID)
	if err != nil {
		return nil, err
	}

	working, err := workflow.Transition(letter.WorkflowState, workflow.ActionStartRefinement)
	if err != nil {
		return nil, err
	}

	if letter.CurrentContent == nil {
		return nil, fmt.Errorf("%w: letter has no content to refine", ErrInvalidRequest)
	}
	sections := ParseSections(*letter.CurrentContent)

	history, err := s.revisions.History(ctx, cmd.LetterID, cmd.FirmID)
	if err != nil {
		return nil, fmt.Errorf("load conversation history: %w", err)
	}

	if err := s.store.Transition(ctx, cmd.LetterID, cmd.FirmID, letter.WorkflowState, working); err != nil {
		return nil, err
	}

	result, err := s.ai.RefineLetter(ctx, ai.RefineRequest{
		LetterID:       cmd.LetterID,
		Sections:       sections,
		Feedback:       cmd.Feedback,
		TargetSections: cmd.TargetSections,
		History:        history,
		FirmID:         cmd.FirmID,
		ActorID:        cmd.ActorID,
	})
	if err != nil {
		s.fail(ctx, cmd.LetterID, cmd.FirmID, working, workflow.ActionRefinementError)
		return nil, fmt.Errorf("%w: %w", ErrRefinementFailed, err)
	}
	if !result.Success || result.Letter == nil {
		s.fail(ctx, cmd.LetterID, cmd.FirmID, working, workflow.ActionRefinementError)
		return nil, fmt.Errorf("%w: %s", ErrRefinementFailed, result.ErrorMessage)
	}

	done, err := workflow.Transition(working, workflow.ActionRefinementComplete)
	if err != nil {
		return nil, err
	}

	refinedAt := time.Now().UTC()
	metadata := letter.Metadata
	metadata.Absorb(result.Usage, result.ModelID)
	metadata.RefinedAt = &refinedAt
	metadata.RefinementCount++

	content := Flatten(result.Letter.Sections)

	if err := s.store.SaveContent(ctx, SaveContent{
		LetterID: cmd.LetterID,
		FirmID:   cmd.FirmID,
		Content:  content,
		Metadata: metadata,
		Revision: revisions.AppendCommand{
			LetterID:   cmd.LetterID,
			Content:    content,
			ChangeType: revisions.ChangeAIRefinement,
			CreatedBy:  cmd.ActorID,
			Notes:      &cmd.Feedback,
		},
		From: working,
		To:   done,
	}); err != nil {
		s.fail(ctx, cmd.LetterID, cmd.FirmID, working, workflow.ActionRefinementError)
		return nil, err
	}

	s.logger.Info(
		"refinement complete",
		"id", cmd.LetterID,
		"changes", result.ChangesSummary,
	)
	return s.store.Get(ctx, cmd.LetterID, cmd.FirmID)
}

func (s *service) Complete(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error) {
	return s.apply(ctx, id, firmID, workflow.ActionMarkComplete)
}

func (s *service) Reset(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error) {
	return s.apply(ctx, id, firmID, workflow.ActionReset)
}

func (s *service) UpdateContent(ctx context.Context, cmd UpdateContentCommand) (*DemandLetter, error) {
	if cmd.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidRequest)
	}

	err := s.store.UpdateContent(
		ctx,
		cmd.LetterID, cmd.FirmID,
		cmd.Content,
		[]workflow.State{workflow.StateGenerated, workflow.StateComplete},
		revisions.AppendCommand{
			LetterID:   cmd.LetterID,
			Content:    cmd.Content,
			ChangeType: revisions.ChangeManualEdit,
			CreatedBy:  cmd.ActorID,
		},
	)
	if err != nil {
		return nil, err
	}

	return s.store.Get(ctx, cmd.LetterID, cmd.FirmID)
}

func (s *service) Status(ctx context.Context, id, firmID uuid.UUID) (*WorkflowStatus, error) {
	letter, err := s.store.Get(ctx, id, firmID)
	if err != nil {
		return nil, err
	}

	total, analyzed, err := s.store.Counts(ctx, id)
	if err != nil {
		return nil, err
	}

	return &WorkflowStatus{
		LetterID:              letter.ID,
		State:                 letter.WorkflowState,
		Status:                letter.Status,
		AvailableActions:      workflow.Actions(letter.WorkflowState),
		DocumentCount:         total,
		AnalyzedDocumentCount: analyzed,
		HasContent:            letter.CurrentContent != nil,
		RefinementCount:       letter.Metadata.RefinementCount,
		UpdatedAt:             letter.UpdatedAt,
	}, nil
}

func (s *service) Revisions(ctx context.Context, id, firmID uuid.UUID) ([]revisions.Revision, error) {
	if _, err := s.store.Get(ctx, id, firmID); err != nil {
		return nil, err
	}
	return s.revisions.ListByLetter(ctx, id, firmID)
}

// apply performs a bare state transition with no stage work attached.
func (s *service) apply(
	ctx context.Context,
	id, firmID uuid.UUID,
	action workflow.Action,
) (*DemandLetter, error) {
	letter, err := s.store.Get(ctx, id, firmID)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Transition(letter.WorkflowState, action)
	if err != nil {
		return nil, err
	}

	if err := s.store.Transition(ctx, id, firmID, letter.WorkflowState, next); err != nil {
		return nil, err
	}

	return s.store.Get(ctx, id, firmID)
}

// fail moves a letter to the error state after a stage failure. The
// transition is best effort; the stage error is what the caller needs
// to see, not a second failure from the bookkeeping.
func (s *service) fail(
	ctx context.Context,
	id, firmID uuid.UUID,
	from workflow.State,
	action workflow.Action,
) {
	to, err := workflow.Transition(from, action)
	if err != nil {
		s.logger.Error("no error transition defined", "id", id, "from", from, "action", action)
		return
	}

	if err := s.store.Transition(ctx, id, firmID, from, to); err != nil {
		s.logger.Warn("error-state transition failed", "id", id, "error", err)
	}
}
