// Package revisions implements the letter revision history for Redress.
// Every content change to a demand letter appends an immutable revision;
// revision numbers are dense and 1-based per letter. Refinement
// revisions also carry the attorney instruction that produced them,
// which is how the refinement conversation history is reconstructed.
package revisions

import (
	"time"

	"github.com/google/uuid"
)

// Change types recorded on a revision.
const (
	ChangeInitial      = "initial"
	ChangeAIGeneration = "ai_generation"
	ChangeManualEdit   = "manual_edit"
	ChangeAIRefinement = "ai_refinement"
)

// Revision is an immutable snapshot of a letter's content at a point in
// its workflow. Notes holds the attorney feedback for ai_refinement
// changes and is nil otherwise.
type Revision struct {
	ID             uuid.UUID `json:"id"`
	LetterID       uuid.UUID `json:"letter_id"`
	FirmID         uuid.UUID `json:"firm_id"`
	RevisionNumber int       `json:"revision_number"`
	Content        string    `json:"content"`
	ChangeType     string    `json:"change_type"`
	CreatedBy      uuid.UUID `json:"created_by"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AppendCommand carries the data needed to record a new revision.
type AppendCommand struct {
	LetterID   uuid.UUID
	Content    string
	ChangeType string
	CreatedBy  uuid.UUID
	Notes      *string
}
