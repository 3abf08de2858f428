package templates

import (
	"context"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/pkg/pagination"
)

// System defines the public contract for template domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		firmID uuid.UUID,
		page pagination.PageRequest,
	) (*pagination.PageResult[Template], error)

	Find(ctx context.Context, id, firmID uuid.UUID) (*Template, error)
	Variables(ctx context.Context, templateID *uuid.UUID, firmID uuid.UUID) (map[string]string, error)
}
