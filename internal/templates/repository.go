package templates

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/pkg/pagination"
	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a template repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "templates"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	firmID uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[Template], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("FirmID", firmID).
		WhereSearch(page.Search, "Name", "Description")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count templates: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	ts, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}

	result := pagination.NewPageResult(ts, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id, firmID uuid.UUID) (*Template, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("FirmID", firmID).
		BuildSingleOrNull()

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTemplate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

// Variables returns a template's substitution values keyed by name.
// A nil template id means the letter has no template; generation then
// proceeds with no substitutions.
func (r *repo) Variables(
	ctx context.Context,
	templateID *uuid.UUID,
	firmID uuid.UUID,
) (map[string]string, error) {
	vars := make(map[string]string)
	if templateID == nil {
		return vars, nil
	}

	if _, err := r.Find(ctx, *templateID, firmID); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(variableProjection, variableSort).
		WhereEquals("TemplateID", *templateID).
		Build()

	vs, err := repository.QueryMany(ctx, r.db, q, args, scanVariable)
	if err != nil {
		return nil, fmt.Errorf("query template variables: %w", err)
	}

	for _, v := range vs {
		vars[v.Name] = v.Value
	}
	return vars, nil
}
