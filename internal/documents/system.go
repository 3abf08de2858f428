package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/pkg/pagination"
)

// System defines the public contract for document domain operations.
// All queries are scoped to a firm; a document belonging to another
// firm is indistinguishable from one that does not exist.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		firmID uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id, firmID uuid.UUID) (*Document, error)
	Text(ctx context.Context, id, firmID uuid.UUID) (string, error)
}
