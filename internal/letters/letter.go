// Package letters implements the demand letter domain for Redress.
// A letter moves through the analyze/generate/refine pipeline under the
// workflow state machine; this package owns the letter records, the
// orchestration of each pipeline stage, and the HTTP surface for both.
package letters

import (
	"time"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/extraction"
	"github.com/finchlaw/redress/internal/workflow"
)

// DemandLetter represents a demand letter and its pipeline state.
// WorkflowState is the single authoritative stage; Status is projected
// from it when the record is read and never stored.
type DemandLetter struct {
	ID             uuid.UUID                 `json:"id"`
	FirmID         uuid.UUID                 `json:"firm_id"`
	CreatedBy      uuid.UUID                 `json:"created_by"`
	Title          string                    `json:"title"`
	TemplateID     *uuid.UUID                `json:"template_id,omitempty"`
	Tone           ai.Tone                   `json:"tone"`
	CurrentContent *string                   `json:"current_content,omitempty"`
	ExtractedData  *extraction.ExtractedData `json:"extracted_data,omitempty"`
	Metadata       Metadata                  `json:"metadata"`
	WorkflowState  workflow.State            `json:"workflow_state"`
	Status         workflow.Status           `json:"status"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// Metadata accumulates AI bookkeeping across a letter's lifetime.
// Token counts are cumulative over every analysis, generation, and
// refinement call made for the letter.
type Metadata struct {
	ModelID         string     `json:"model_id,omitempty"`
	GeneratedAt     *time.Time `json:"generated_at,omitempty"`
	RefinedAt       *time.Time `json:"refined_at,omitempty"`
	InputTokens     int        `json:"input_tokens"`
	OutputTokens    int        `json:"output_tokens"`
	RefinementCount int        `json:"refinement_count"`
}

// Absorb folds an AI call's usage into the metadata.
func (m *Metadata) Absorb(usage ai.TokenUsage, modelID string) {
	m.InputTokens += usage.InputTokens
	m.OutputTokens += usage.OutputTokens
	if modelID != "" {
		m.ModelID = modelID
	}
}

// WorkflowStatus is the read model returned by the status operation.
type WorkflowStatus struct {
	LetterID              uuid.UUID         `json:"letter_id"`
	State                 workflow.State    `json:"workflow_state"`
	Status                workflow.Status   `json:"status"`
	AvailableActions      []workflow.Action `json:"available_actions"`
	DocumentCount         int               `json:"document_count"`
	AnalyzedDocumentCount int               `json:"analyzed_document_count"`
	HasContent            bool              `json:"has_content"`
	RefinementCount       int               `json:"refinement_count"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new draft letter.
type CreateCommand struct {
	Title       string
	TemplateID  *uuid.UUID
	Tone        ai.Tone
	DocumentIDs []uuid.UUID
	FirmID      uuid.UUID
	ActorID     uuid.UUID
}

// GenerateCommand carries the inputs for the generation stage.
// A nil Tone keeps the tone chosen at creation.
type GenerateCommand struct {
	LetterID           uuid.UUID
	Tone               *ai.Tone
	CustomInstructions *string
	FirmID             uuid.UUID
	ActorID            uuid.UUID
}

// RefineCommand carries the attorney feedback for a refinement pass.
type RefineCommand struct {
	LetterID       uuid.UUID
	Feedback       string
	TargetSections []string
	FirmID         uuid.UUID
	ActorID        uuid.UUID
}

// UpdateContentCommand carries a manual content edit.
type UpdateContentCommand struct {
	LetterID uuid.UUID
	Content  string
	FirmID   uuid.UUID
	ActorID  uuid.UUID
}
