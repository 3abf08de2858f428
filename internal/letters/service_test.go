package letters_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/documents"
	"github.com/finchlaw/redress/internal/extraction"
	"github.com/finchlaw/redress/internal/letters"
	"github.com/finchlaw/redress/internal/pipeline"
	"github.com/finchlaw/redress/internal/revisions"
	"github.com/finchlaw/redress/internal/templates"
	"github.com/finchlaw/redress/internal/workflow"
	"github.com/finchlaw/redress/pkg/pagination"
)

type fakeStore struct {
	letters  map[uuid.UUID]*letters.DemandLetter
	docs     map[uuid.UUID][]uuid.UUID
	analyzed map[uuid.UUID]map[uuid.UUID]bool
	revs     *fakeRevisions

	saveAnalysisErr error
	saveContentErr  error
}

func newFakeStore(revs *fakeRevisions) *fakeStore {
	return &fakeStore{
		letters:  make(map[uuid.UUID]*letters.DemandLetter),
		docs:     make(map[uuid.UUID][]uuid.UUID),
		analyzed: make(map[uuid.UUID]map[uuid.UUID]bool),
		revs:     revs,
	}
}

func (f *fakeStore) get(id uuid.UUID) (*letters.DemandLetter, error) {
	l, ok := f.letters[id]
	if !ok {
		return nil, letters.ErrNotFound
	}
	copied := *l
	copied.Status = copied.WorkflowState.Status()
	return &copied, nil
}

func (f *fakeStore) Insert(
	_ context.Context,
	letter letters.DemandLetter,
	documentIDs []uuid.UUID,
) (*letters.DemandLetter, error) {
	now := time.Now().UTC()
	letter.CreatedAt, letter.UpdatedAt = now, now
	f.letters[letter.ID] = &letter
	f.docs[letter.ID] = slices.Clone(documentIDs)
	f.analyzed[letter.ID] = make(map[uuid.UUID]bool)
	return f.get(letter.ID)
}

func (f *fakeStore) Get(_ context.Context, id, firmID uuid.UUID) (*letters.DemandLetter, error) {
	l, err := f.get(id)
	if err != nil || l.FirmID != firmID {
		return nil, letters.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) List(
	_ context.Context,
	_ uuid.UUID,
	page pagination.PageRequest,
	_ letters.Filters,
) (*pagination.PageResult[letters.DemandLetter], error) {
	result := pagination.NewPageResult([]letters.DemandLetter{}, 0, page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeStore) cas(id, firmID uuid.UUID, from workflow.State) (*letters.DemandLetter, error) {
	l, ok := f.letters[id]
	if !ok || l.FirmID != firmID {
		return nil, letters.ErrNotFound
	}
	if l.WorkflowState != from {
		return nil, fmt.Errorf("%w: letter %s", letters.ErrStateConflict, id)
	}
	return l, nil
}

func (f *fakeStore) Transition(_ context.Context, id, firmID uuid.UUID, from, to workflow.State) error {
	l, err := f.cas(id, firmID, from)
	if err != nil {
		return err
	}
	l.WorkflowState = to
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) SaveAnalysis(_ context.Context, save letters.SaveAnalysis) error {
	if f.saveAnalysisErr != nil {
		return f.saveAnalysisErr
	}
	l, err := f.cas(save.LetterID, save.FirmID, save.From)
	if err != nil {
		return err
	}
	data := save.Data
	l.ExtractedData = &data
	l.Metadata = save.Metadata
	l.WorkflowState = save.To
	for _, docID := range save.AnalyzedDocumentIDs {
		f.analyzed[save.LetterID][docID] = true
	}
	return nil
}

func (f *fakeStore) SaveContent(_ context.Context, save letters.SaveContent) error {
	if f.saveContentErr != nil {
		return f.saveContentErr
	}
	l, err := f.cas(save.LetterID, save.FirmID, save.From)
	if err != nil {
		return err
	}
	content := save.Content
	l.CurrentContent = &content
	l.Metadata = save.Metadata
	l.WorkflowState = save.To
	f.revs.appended = append(f.revs.appended, save.Revision)
	return nil
}

func (f *fakeStore) UpdateContent(
	_ context.Context,
	id, firmID uuid.UUID,
	content string,
	allowed []workflow.State,
	rev revisions.AppendCommand,
) error {
	l, ok := f.letters[id]
	if !ok || l.FirmID != firmID {
		return letters.ErrNotFound
	}
	if !slices.Contains(allowed, l.WorkflowState) {
		return fmt.Errorf("%w: letter %s", letters.ErrStateConflict, id)
	}
	l.CurrentContent = &content
	f.revs.appended = append(f.revs.appended, rev)
	return nil
}

func (f *fakeStore) DocumentIDs(_ context.Context, letterID uuid.UUID) ([]uuid.UUID, error) {
	return slices.Clone(f.docs[letterID]), nil
}

func (f *fakeStore) Counts(_ context.Context, letterID uuid.UUID) (int, int, error) {
	return len(f.docs[letterID]), len(f.analyzed[letterID]), nil
}

type fakeDocuments struct {
	known map[uuid.UUID]bool
}

func (f *fakeDocuments) Handler() *documents.Handler { return nil }

func (f *fakeDocuments) List(
	context.Context,
	uuid.UUID,
	pagination.PageRequest,
	documents.Filters,
) (*pagination.PageResult[documents.Document], error) {
	return nil, nil
}

func (f *fakeDocuments) Find(_ context.Context, id, _ uuid.UUID) (*documents.Document, error) {
	if !f.known[id] {
		return nil, documents.ErrNotFound
	}
	return &documents.Document{ID: id}, nil
}

func (f *fakeDocuments) Text(context.Context, uuid.UUID, uuid.UUID) (string, error) {
	return "", nil
}

type fakeTemplates struct {
	vars map[string]string
}

func (f *fakeTemplates) Handler() *templates.Handler { return nil }

func (f *fakeTemplates) List(
	context.Context,
	uuid.UUID,
	pagination.PageRequest,
) (*pagination.PageResult[templates.Template], error) {
	return nil, nil
}

func (f *fakeTemplates) Find(_ context.Context, id, _ uuid.UUID) (*templates.Template, error) {
	return &templates.Template{ID: id}, nil
}

func (f *fakeTemplates) Variables(
	context.Context,
	*uuid.UUID,
	uuid.UUID,
) (map[string]string, error) {
	if f.vars == nil {
		return map[string]string{}, nil
	}
	return f.vars, nil
}

type fakeRevisions struct {
	appended []revisions.AppendCommand
}

func (f *fakeRevisions) Append(_ context.Context, cmd revisions.AppendCommand) (*revisions.Revision, error) {
	f.appended = append(f.appended, cmd)
	return &revisions.Revision{
		ID:             uuid.New(),
		LetterID:       cmd.LetterID,
		RevisionNumber: len(f.appended),
		Content:        cmd.Content,
		ChangeType:     cmd.ChangeType,
		CreatedBy:      cmd.CreatedBy,
		Notes:          cmd.Notes,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (f *fakeRevisions) ListByLetter(_ context.Context, letterID, _ uuid.UUID) ([]revisions.Revision, error) {
	var revs []revisions.Revision
	for i, cmd := range f.appended {
		if cmd.LetterID != letterID {
			continue
		}
		revs = append(revs, revisions.Revision{
			LetterID:       letterID,
			RevisionNumber: i + 1,
			Content:        cmd.Content,
			ChangeType:     cmd.ChangeType,
			Notes:          cmd.Notes,
		})
	}
	return revs, nil
}

func (f *fakeRevisions) History(ctx context.Context, letterID, firmID uuid.UUID) (*ai.ConversationHistory, error) {
	revs, err := f.ListByLetter(ctx, letterID, firmID)
	if err != nil {
		return nil, err
	}
	return revisions.BuildHistory(revs), nil
}

type fakeAI struct {
	generateResult *ai.GenerateResult
	refineResult   *ai.RefineResult
	generateErr    error
	refineErr      error

	lastGenerate *ai.GenerateRequest
	lastRefine   *ai.RefineRequest
}

func (f *fakeAI) AnalyzeDocument(context.Context, ai.AnalyzeRequest) (*ai.AnalyzeResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeAI) GenerateLetter(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResult, error) {
	f.lastGenerate = &req
	return f.generateResult, f.generateErr
}

func (f *fakeAI) RefineLetter(_ context.Context, req ai.RefineRequest) (*ai.RefineResult, error) {
	f.lastRefine = &req
	return f.refineResult, f.refineErr
}

type harness struct {
	store     *fakeStore
	docs      *fakeDocuments
	revisions *fakeRevisions
	ai        *fakeAI
	analyzer  letters.Analyzer
	sys       letters.System

	firmID  uuid.UUID
	actorID uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	revs := &fakeRevisions{}
	h := &harness{
		store:     newFakeStore(revs),
		docs:      &fakeDocuments{known: make(map[uuid.UUID]bool)},
		revisions: revs,
		ai:        &fakeAI{},
		firmID:    uuid.New(),
		actorID:   uuid.New(),
	}

	h.sys = letters.New(letters.Dependencies{
		Store:     h.store,
		Documents: h.docs,
		Templates: &fakeTemplates{},
		Revisions: h.revisions,
		AI:        h.ai,
		Analyzer: func(ctx context.Context, letterID, firmID uuid.UUID, ids []uuid.UUID) (*pipeline.Result, error) {
			if h.analyzer == nil {
				return nil, errors.New("no analyzer configured")
			}
			return h.analyzer(ctx, letterID, firmID, ids)
		},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Pagination: pagination.Config{},
	})

	return h
}

func (h *harness) newDocument() uuid.UUID {
	id := uuid.New()
	h.docs.known[id] = true
	return id
}

func (h *harness) createLetter(t *testing.T, docIDs ...uuid.UUID) *letters.DemandLetter {
	t.Helper()

	letter, err := h.sys.Create(context.Background(), letters.CreateCommand{
		Title:       "Smith v. Jones",
		DocumentIDs: docIDs,
		FirmID:      h.firmID,
		ActorID:     h.actorID,
	})
	if err != nil {
		t.Fatalf("create letter: %v", err)
	}
	return letter
}

func (h *harness) forceState(t *testing.T, id uuid.UUID, state workflow.State) {
	t.Helper()
	l, ok := h.store.letters[id]
	if !ok {
		t.Fatalf("letter %s not in store", id)
	}
	l.WorkflowState = state
}

func generatedSections() []ai.Section {
	return []ai.Section{
		{Type: "introduction", Title: "Introduction", Content: "We represent Ms. Smith.", Order: 1},
		{Type: "demand", Title: "Demand", Content: "We demand $50,000.", Order: 2},
	}
}

func TestCreateDraft(t *testing.T) {
	h := newHarness(t)
	docA, docB := h.newDocument(), h.newDocument()

	letter := h.createLetter(t, docA, docB)

	if letter.WorkflowState != workflow.StateDraft {
		t.Errorf("state: got %s, want draft", letter.WorkflowState)
	}
	if letter.Status != workflow.StatusDraft {
		t.Errorf("status: got %s, want draft", letter.Status)
	}
	if letter.Tone != ai.ToneFormal {
		t.Errorf("tone: got %s, want formal default", letter.Tone)
	}

	ids, _ := h.store.DocumentIDs(context.Background(), letter.ID)
	if len(ids) != 2 || ids[0] != docA || ids[1] != docB {
		t.Errorf("documents: got %v, want [%s %s]", ids, docA, docB)
	}
}

func TestCreateUnknownDocument(t *testing.T) {
	h := newHarness(t)

	_, err := h.sys.Create(context.Background(), letters.CreateCommand{
		Title:       "Smith v. Jones",
		DocumentIDs: []uuid.UUID{uuid.New()},
		FirmID:      h.firmID,
		ActorID:     h.actorID,
	})
	if !errors.Is(err, letters.ErrDocumentNotFound) {
		t.Errorf("error: got %v, want ErrDocumentNotFound", err)
	}
}

func TestCreateRejectsUnknownTone(t *testing.T) {
	h := newHarness(t)

	_, err := h.sys.Create(context.Background(), letters.CreateCommand{
		Title:   "Smith v. Jones",
		Tone:    ai.Tone("sarcastic"),
		FirmID:  h.firmID,
		ActorID: h.actorID,
	})
	if !errors.Is(err, letters.ErrInvalidRequest) {
		t.Errorf("error: got %v, want ErrInvalidRequest", err)
	}
}

func TestAnalyzeMergesSuccessfulDocuments(t *testing.T) {
	h := newHarness(t)
	docA, docB := h.newDocument(), h.newDocument()
	letter := h.createLetter(t, docA, docB)

	h.analyzer = func(_ context.Context, _, _ uuid.UUID, ids []uuid.UUID) (*pipeline.Result, error) {
		if len(ids) != 2 {
			t.Fatalf("analyzer ids: got %d, want 2", len(ids))
		}
		return &pipeline.Result{
			Data: extraction.ExtractedData{
				Parties: []extraction.Party{{Name: "Smith", PartyType: "plaintiff"}},
			},
			AnalyzedDocumentIDs: []uuid.UUID{docA},
			SkippedDocumentIDs:  []uuid.UUID{docB},
			Usage:               ai.TokenUsage{InputTokens: 500, OutputTokens: 120},
			ModelID:             "claude-3-sonnet",
		}, nil
	}

	updated, err := h.sys.Analyze(context.Background(), letter.ID, h.firmID, h.actorID)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if updated.WorkflowState != workflow.StateAnalyzed {
		t.Errorf("state: got %s, want analyzed", updated.WorkflowState)
	}
	if updated.ExtractedData == nil || len(updated.ExtractedData.Parties) != 1 {
		t.Fatalf("extracted data: %+v", updated.ExtractedData)
	}
	if updated.Metadata.InputTokens != 500 || updated.Metadata.OutputTokens != 120 {
		t.Errorf("metadata tokens: %+v", updated.Metadata)
	}
	if !h.store.analyzed[letter.ID][docA] {
		t.Error("docA not marked analyzed")
	}
	if h.store.analyzed[letter.ID][docB] {
		t.Error("skipped docB marked analyzed")
	}
}

func TestAnalyzeFailureMovesToError(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())

	h.analyzer = func(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) (*pipeline.Result, error) {
		return nil, errors.New("processor unreachable")
	}

	_, err := h.sys.Analyze(context.Background(), letter.ID, h.firmID, h.actorID)
	if !errors.Is(err, letters.ErrAnalysisFailed) {
		t.Fatalf("error: got %v, want ErrAnalysisFailed", err)
	}

	current, _ := h.store.Get(context.Background(), letter.ID, h.firmID)
	if current.WorkflowState != workflow.StateError {
		t.Errorf("state: got %s, want error", current.WorkflowState)
	}
}

func TestAnalyzeWithoutDocuments(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t)

	_, err := h.sys.Analyze(context.Background(), letter.ID, h.firmID, h.actorID)
	if !errors.Is(err, letters.ErrNoDocuments) {
		t.Fatalf("error: got %v, want ErrNoDocuments", err)
	}

	current, _ := h.store.Get(context.Background(), letter.ID, h.firmID)
	if current.WorkflowState != workflow.StateDraft {
		t.Errorf("state: got %s, want draft unchanged", current.WorkflowState)
	}
}

func TestGenerateFromDraftRejected(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())

	_, err := h.sys.Generate(context.Background(), letters.GenerateCommand{
		LetterID: letter.ID,
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	})
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("error: got %v, want ErrInvalidTransition", err)
	}

	if h.ai.lastGenerate != nil {
		t.Error("AI called despite rejected transition")
	}

	current, _ := h.store.Get(context.Background(), letter.ID, h.firmID)
	if current.WorkflowState != workflow.StateDraft {
		t.Errorf("state: got %s, want draft unchanged", current.WorkflowState)
	}
}

func TestGenerateProducesContentAndRevision(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateAnalyzed)
	h.store.letters[letter.ID].ExtractedData = &extraction.ExtractedData{
		Parties: []extraction.Party{{Name: "Smith", PartyType: "plaintiff"}},
	}

	h.ai.generateResult = &ai.GenerateResult{
		Success: true,
		Letter: &ai.GeneratedLetter{
			Sections: generatedSections(),
			Tone:     ai.ToneFormal,
		},
		Usage:   ai.TokenUsage{InputTokens: 4000, OutputTokens: 1500},
		ModelID: "claude-3-sonnet",
	}

	updated, err := h.sys.Generate(context.Background(), letters.GenerateCommand{
		LetterID: letter.ID,
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if updated.WorkflowState != workflow.StateGenerated {
		t.Errorf("state: got %s, want generated", updated.WorkflowState)
	}
	if updated.CurrentContent == nil {
		t.Fatal("content is nil")
	}
	if want := "## Introduction\n\nWe represent Ms. Smith."; (*updated.CurrentContent)[:len(want)] != want {
		t.Errorf("content: %q", *updated.CurrentContent)
	}
	if updated.Metadata.GeneratedAt == nil {
		t.Error("GeneratedAt not set")
	}
	if updated.Metadata.InputTokens != 4000 {
		t.Errorf("input tokens: got %d", updated.Metadata.InputTokens)
	}

	if len(h.revisions.appended) != 1 {
		t.Fatalf("revisions: got %d, want 1", len(h.revisions.appended))
	}
	if h.revisions.appended[0].ChangeType != revisions.ChangeInitial {
		t.Errorf("change type: got %s, want initial", h.revisions.appended[0].ChangeType)
	}
}

func TestGenerateReportedFailureMovesToError(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateAnalyzed)
	h.store.letters[letter.ID].ExtractedData = &extraction.ExtractedData{}

	h.ai.generateResult = &ai.GenerateResult{
		Success:      false,
		ErrorMessage: "model refused",
	}

	_, err := h.sys.Generate(context.Background(), letters.GenerateCommand{
		LetterID: letter.ID,
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	})
	if !errors.Is(err, letters.ErrGenerationFailed) {
		t.Fatalf("error: got %v, want ErrGenerationFailed", err)
	}

	current, _ := h.store.Get(context.Background(), letter.ID, h.firmID)
	if current.WorkflowState != workflow.StateError {
		t.Errorf("state: got %s, want error", current.WorkflowState)
	}
	if current.CurrentContent != nil {
		t.Error("content set despite failed generation")
	}
	if len(h.revisions.appended) != 0 {
		t.Error("revision appended despite failed generation")
	}
}

func TestRefineFirstPassSendsNoHistory(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateGenerated)
	content := letters.Flatten(generatedSections())
	h.store.letters[letter.ID].CurrentContent = &content

	h.ai.refineResult = &ai.RefineResult{
		Success: true,
		Letter: &ai.GeneratedLetter{
			Sections: generatedSections(),
		},
		ChangesSummary: "tightened the demand",
		Usage:          ai.TokenUsage{InputTokens: 3000, OutputTokens: 900},
		ModelID:        "claude-3-sonnet",
	}

	updated, err := h.sys.Refine(context.Background(), letters.RefineCommand{
		LetterID: letter.ID,
		Feedback: "be firmer about the deadline",
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	})
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}

	if h.ai.lastRefine == nil {
		t.Fatal("AI not called")
	}
	if h.ai.lastRefine.History != nil {
		t.Errorf("history: got %+v, want nil for first refinement", h.ai.lastRefine.History)
	}
	if len(h.ai.lastRefine.Sections) != 2 {
		t.Errorf("sections sent: got %d, want 2", len(h.ai.lastRefine.Sections))
	}

	if updated.WorkflowState != workflow.StateGenerated {
		t.Errorf("state: got %s, want generated", updated.WorkflowState)
	}
	if updated.Metadata.RefinementCount != 1 {
		t.Errorf("refinement count: got %d, want 1", updated.Metadata.RefinementCount)
	}

	if len(h.revisions.appended) != 1 {
		t.Fatalf("revisions: got %d, want 1", len(h.revisions.appended))
	}
	rev := h.revisions.appended[0]
	if rev.ChangeType != revisions.ChangeAIRefinement {
		t.Errorf("change type: got %s", rev.ChangeType)
	}
	if rev.Notes == nil || *rev.Notes != "be firmer about the deadline" {
		t.Errorf("notes: got %v", rev.Notes)
	}
}

func TestRefineSecondPassCarriesHistory(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateGenerated)
	content := letters.Flatten(generatedSections())
	h.store.letters[letter.ID].CurrentContent = &content

	h.ai.refineResult = &ai.RefineResult{
		Success: true,
		Letter:  &ai.GeneratedLetter{Sections: generatedSections()},
	}

	for _, feedback := range []string{"soften the tone", "add the deadline"} {
		if _, err := h.sys.Refine(context.Background(), letters.RefineCommand{
			LetterID: letter.ID,
			Feedback: feedback,
			FirmID:   h.firmID,
			ActorID:  h.actorID,
		}); err != nil {
			t.Fatalf("Refine(%q): %v", feedback, err)
		}
	}

	if h.ai.lastRefine.History == nil {
		t.Fatal("history: got nil, want prior turn")
	}
	if len(h.ai.lastRefine.History.Turns) != 1 {
		t.Fatalf("turns: got %d, want 1", len(h.ai.lastRefine.History.Turns))
	}
	if h.ai.lastRefine.History.Turns[0].Content != "soften the tone" {
		t.Errorf("turn content: %q", h.ai.lastRefine.History.Turns[0].Content)
	}
}

func TestRefineRequiresFeedback(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())

	_, err := h.sys.Refine(context.Background(), letters.RefineCommand{
		LetterID: letter.ID,
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	})
	if !errors.Is(err, letters.ErrInvalidRequest) {
		t.Errorf("error: got %v, want ErrInvalidRequest", err)
	}
}

func TestCompleteAndReset(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateGenerated)

	completed, err := h.sys.Complete(context.Background(), letter.ID, h.firmID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.WorkflowState != workflow.StateComplete {
		t.Errorf("state: got %s, want complete", completed.WorkflowState)
	}
	if completed.Status != workflow.StatusComplete {
		t.Errorf("status: got %s, want complete", completed.Status)
	}

	reset, err := h.sys.Reset(context.Background(), letter.ID, h.firmID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if reset.WorkflowState != workflow.StateDraft {
		t.Errorf("state: got %s, want draft", reset.WorkflowState)
	}
}

func TestCompleteFromDraftRejected(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())

	_, err := h.sys.Complete(context.Background(), letter.ID, h.firmID)
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("error: got %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateContentRecordsManualEdit(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateGenerated)

	updated, err := h.sys.UpdateContent(context.Background(), letters.UpdateContentCommand{
		LetterID: letter.ID,
		Content:  "## Demand\n\nRevised by hand.",
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	})
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}

	if updated.CurrentContent == nil || *updated.CurrentContent != "## Demand\n\nRevised by hand." {
		t.Errorf("content: %v", updated.CurrentContent)
	}
	if len(h.revisions.appended) != 1 || h.revisions.appended[0].ChangeType != revisions.ChangeManualEdit {
		t.Errorf("revisions: %+v", h.revisions.appended)
	}
}

func TestUpdateContentRejectedInDraft(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())

	_, err := h.sys.UpdateContent(context.Background(), letters.UpdateContentCommand{
		LetterID: letter.ID,
		Content:  "## Demand\n\nToo early.",
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	})
	if !errors.Is(err, letters.ErrStateConflict) {
		t.Errorf("error: got %v, want ErrStateConflict", err)
	}
}

func TestStatusReadModel(t *testing.T) {
	h := newHarness(t)
	docA, docB := h.newDocument(), h.newDocument()
	letter := h.createLetter(t, docA, docB)
	h.forceState(t, letter.ID, workflow.StateGenerated)
	content := "## Demand\n\nPay up."
	h.store.letters[letter.ID].CurrentContent = &content
	h.store.analyzed[letter.ID][docA] = true

	status, err := h.sys.Status(context.Background(), letter.ID, h.firmID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	if status.State != workflow.StateGenerated || status.Status != workflow.StatusDraft {
		t.Errorf("state/status: %s/%s", status.State, status.Status)
	}
	if status.DocumentCount != 2 || status.AnalyzedDocumentCount != 1 {
		t.Errorf("counts: %d/%d", status.DocumentCount, status.AnalyzedDocumentCount)
	}
	if !status.HasContent {
		t.Error("HasContent: got false")
	}
	if len(status.AvailableActions) != 2 {
		t.Errorf("actions: %v", status.AvailableActions)
	}
}

func TestAnalyzeSaveFailureMovesToError(t *testing.T) {
	h := newHarness(t)
	docA := h.newDocument()
	letter := h.createLetter(t, docA)
	h.store.saveAnalysisErr = errors.New("connection reset")

	h.analyzer = func(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) (*pipeline.Result, error) {
		return &pipeline.Result{
			AnalyzedDocumentIDs: []uuid.UUID{docA},
		}, nil
	}

	if _, err := h.sys.Analyze(context.Background(), letter.ID, h.firmID, h.actorID); err == nil {
		t.Fatal("expected error from failed analysis save")
	}

	current, _ := h.store.Get(context.Background(), letter.ID, h.firmID)
	if current.WorkflowState != workflow.StateError {
		t.Errorf("state: got %s, want error", current.WorkflowState)
	}
}

func TestGenerateSaveFailureMovesToError(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateAnalyzed)
	h.store.letters[letter.ID].ExtractedData = &extraction.ExtractedData{}
	h.store.saveContentErr = errors.New("connection reset")

	h.ai.generateResult = &ai.GenerateResult{
		Success: true,
		Letter:  &ai.GeneratedLetter{Sections: generatedSections()},
	}

	if _, err := h.sys.Generate(context.Background(), letters.GenerateCommand{
		LetterID: letter.ID,
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	}); err == nil {
		t.Fatal("expected error from failed content save")
	}

	current, _ := h.store.Get(context.Background(), letter.ID, h.firmID)
	if current.WorkflowState != workflow.StateError {
		t.Errorf("state: got %s, want error", current.WorkflowState)
	}
	if len(h.revisions.appended) != 0 {
		t.Error("revision appended despite failed content save")
	}
}

func TestRefineSaveFailureMovesToError(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())
	h.forceState(t, letter.ID, workflow.StateGenerated)
	content := letters.Flatten(generatedSections())
	h.store.letters[letter.ID].CurrentContent = &content
	h.store.saveContentErr = errors.New("connection reset")

	h.ai.refineResult = &ai.RefineResult{
		Success: true,
		Letter:  &ai.GeneratedLetter{Sections: generatedSections()},
	}

	if _, err := h.sys.Refine(context.Background(), letters.RefineCommand{
		LetterID: letter.ID,
		Feedback: "be firmer",
		FirmID:   h.firmID,
		ActorID:  h.actorID,
	}); err == nil {
		t.Fatal("expected error from failed content save")
	}

	current, _ := h.store.Get(context.Background(), letter.ID, h.firmID)
	if current.WorkflowState != workflow.StateError {
		t.Errorf("state: got %s, want error", current.WorkflowState)
	}
}

func TestGetScopedToFirm(t *testing.T) {
	h := newHarness(t)
	letter := h.createLetter(t, h.newDocument())

	if _, err := h.sys.Get(context.Background(), letter.ID, uuid.New()); !errors.Is(err, letters.ErrNotFound) {
		t.Errorf("error: got %v, want ErrNotFound for foreign firm", err)
	}
}
