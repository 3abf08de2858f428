package documents

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/pkg/pagination"
	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
	"github.com/finchlaw/redress/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
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
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("FirmID", firmID).
		WhereSearch(page.Search, "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id, firmID uuid.UUID) (*Document, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("FirmID", firmID).
		BuildSingleOrNull()

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

// Text returns the extracted text for a document. Extraction happens at
// upload time in the intake service; documents that have not finished
// processing have no text blob yet.
func (r *repo) Text(ctx context.Context, id, firmID uuid.UUID) (string, error) {
	doc, err := r.Find(ctx, id, firmID)
	if err != nil {
		return "", err
	}

	if doc.TextKey == nil || *doc.TextKey == "" {
		return "", fmt.Errorf("%w: document %s", ErrNoText, id)
	}

	blob, err := r.storage.Download(ctx, *doc.TextKey)
	if err != nil {
		return "", fmt.Errorf("download document text %s: %w", id, err)
	}
	defer blob.Close()

	data, err := io.ReadAll(blob)
	if err != nil {
		return "", fmt.Errorf("read document text %s: %w", id, err)
	}

	return string(data), nil
}
