package letters

import (
	"context"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/revisions"
	"github.com/finchlaw/redress/pkg/pagination"
)

// System defines the public contract for letter domain operations.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, cmd CreateCommand) (*DemandLetter, error)
	Get(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error)

	List(
		ctx context.Context,
		firmID uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[DemandLetter], error)

	Analyze(ctx context.Context, id, firmID, actorID uuid.UUID) (*DemandLetter, error)
	Generate(ctx context.Context, cmd GenerateCommand) (*DemandLetter, error)
	Refine(ctx context.Context, cmd RefineCommand) (*DemandLetter, error)
	Complete(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error)
	Reset(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error)
	UpdateContent(ctx context.Context, cmd UpdateContentCommand) (*DemandLetter, error)

	Status(ctx context.Context, id, firmID uuid.UUID) (*WorkflowStatus, error)
	Revisions(ctx context.Context, id, firmID uuid.UUID) ([]revisions.Revision, error)
}
