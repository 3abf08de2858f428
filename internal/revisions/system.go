package revisions

import (
	"context"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
)

// System defines the public contract for revision domain operations.
type System interface {
	Append(ctx context.Context, cmd AppendCommand) (*Revision, error)
	ListByLetter(ctx context.Context, letterID, firmID uuid.UUID) ([]Revision, error)
	History(ctx context.Context, letterID, firmID uuid.UUID) (*ai.ConversationHistory, error)
}
