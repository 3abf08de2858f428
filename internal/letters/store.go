package letters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/extraction"
	"github.com/finchlaw/redress/internal/revisions"
	"github.com/finchlaw/redress/internal/workflow"
	"github.com/finchlaw/redress/pkg/pagination"
	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
)

// Store defines the persistence contract for demand letters. Every
// state-changing method takes the expected current workflow state and
// applies a compare-and-swap: the update matches zero rows when another
// writer moved the letter first, surfacing as ErrStateConflict.
type Store interface {
	Insert(ctx context.Context, letter DemandLetter, documentIDs []uuid.UUID) (*DemandLetter, error)
	Get(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error)

	List(
		ctx context.Context,
		firmID uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[DemandLetter], error)

	Transition(ctx context.Context, id, firmID uuid.UUID, from, to workflow.State) error
	SaveAnalysis(ctx context.Context, save SaveAnalysis) error
	SaveContent(ctx context.Context, save SaveContent) error

	UpdateContent(
		ctx context.Context,
		id, firmID uuid.UUID,
		content string,
		allowed []workflow.State,
		rev revisions.AppendCommand,
	) error

	DocumentIDs(ctx context.Context, letterID uuid.UUID) ([]uuid.UUID, error)
	Counts(ctx context.Context, letterID uuid.UUID) (total, analyzed int, err error)
}

// SaveAnalysis carries the result of a completed analysis stage.
type SaveAnalysis struct {
	LetterID            uuid.UUID
	FirmID              uuid.UUID
	Data                extraction.ExtractedData
	Metadata            Metadata
	AnalyzedDocumentIDs []uuid.UUID
	From, To            workflow.State
}

// SaveContent carries new letter content from a generation or
// refinement stage. The revision commits in the same transaction as the
// content update so the audit trail never diverges from the letter.
type SaveContent struct {
	LetterID uuid.UUID
	FirmID   uuid.UUID
	Content  string
	Metadata Metadata
	Revision revisions.AppendCommand
	From, To workflow.State
}

type sqlStore struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates a SQL-backed letter store.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Store {
	return &sqlStore{
		db:         db,
		logger:     logger.With("system", "letters"),
		pagination: pagination,
	}
}

func (st *sqlStore) Insert(
	ctx context.Context,
	letter DemandLetter,
	documentIDs []uuid.UUID,
) (*DemandLetter, error) {
	metadata, err := json.Marshal(letter.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	q := `
		INSERT INTO demand_letters(id, firm_id, created_by, title, template_id, tone, metadata, workflow_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, firm_id, created_by, title, template_id, tone, current_content, extracted_data, metadata, workflow_state, created_at, updated_at`

	insertArgs := []any{
		letter.ID,
		letter.FirmID,
		letter.CreatedBy,
		letter.Title,
		letter.TemplateID,
		letter.Tone,
		metadata,
		letter.WorkflowState,
	}

	created, err := repository.WithTx(ctx, st.db, func(tx *sql.Tx) (DemandLetter, error) {
		l, err := repository.QueryOne(ctx, tx, q, insertArgs, scanLetter)
		if err != nil {
			return l, err
		}

		for i, docID := range documentIDs {
			if err := repository.ExecExpectOne(
				ctx, tx,
				"INSERT INTO letter_documents(letter_id, document_id, position) VALUES ($1, $2, $3)",
				l.ID, docID, i+1,
			); err != nil {
				return l, fmt.Errorf("associate document %s: %w", docID, err)
			}
		}

		return l, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	st.logger.Info("letter created", "id", created.ID, "title", created.Title)
	return &created, nil
}

func (st *sqlStore) Get(ctx context.Context, id, firmID uuid.UUID) (*DemandLetter, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("FirmID", firmID).
		BuildSingleOrNull()

	l, err := repository.QueryOne(ctx, st.db, q, args, scanLetter)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (st *sqlStore) List(
	ctx context.Context,
	firmID uuid.UUID,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[DemandLetter], error) {
	page.Normalize(st.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("FirmID", firmID).
		WhereSearch(page.Search, "Title")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := st.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count letters: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	ls, err := repository.QueryMany(ctx, st.db, pageSQL, pageArgs, scanLetter)
	if err != nil {
		return nil, fmt.Errorf("query letters: %w", err)
	}

	result := pagination.NewPageResult(ls, total, page.Page, page.PageSize)
	return &result, nil
}

func (st *sqlStore) Transition(
	ctx context.Context,
	id, firmID uuid.UUID,
	from, to workflow.State,
) error {
	err := repository.ExecExpectOne(
		ctx, st.db,
		`UPDATE demand_letters
		 SET workflow_state = $1, updated_at = now()
		 WHERE id = $2 AND firm_id = $3 AND workflow_state = $4`,
		to, id, firmID, from,
	)
	if err != nil {
		return st.casError(ctx, id, firmID, err)
	}

	st.logger.Info("letter transitioned", "id", id, "from", from, "to", to)
	return nil
}

func (st *sqlStore) SaveAnalysis(ctx context.Context, save SaveAnalysis) error {
	data, err := json.Marshal(save.Data)
	if err != nil {
		return fmt.Errorf("encode extracted data: %w", err)
	}

	metadata, err := json.Marshal(save.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = repository.WithTx(ctx, st.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			`UPDATE demand_letters
			 SET extracted_data = $1, metadata = $2, workflow_state = $3, updated_at = now()
			 WHERE id = $4 AND firm_id = $5 AND workflow_state = $6`,
			data, metadata, save.To, save.LetterID, save.FirmID, save.From,
		); err != nil {
			return struct{}{}, err
		}

		for _, docID := range save.AnalyzedDocumentIDs {
			if err := repository.ExecExpectOne(
				ctx, tx,
				"UPDATE letter_documents SET analyzed = true WHERE letter_id = $1 AND document_id = $2",
				save.LetterID, docID,
			); err != nil {
				return struct{}{}, fmt.Errorf("mark document %s analyzed: %w", docID, err)
			}
		}

		return struct{}{}, nil
	})
	if err != nil {
		return st.casError(ctx, save.LetterID, save.FirmID, err)
	}

	st.logger.Info(
		"analysis saved",
		"id", save.LetterID,
		"analyzed_documents", len(save.AnalyzedDocumentIDs),
	)
	return nil
}

func (st *sqlStore) SaveContent(ctx context.Context, save SaveContent) error {
	metadata, err := json.Marshal(save.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = repository.WithTx(ctx, st.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			`UPDATE demand_letters
			 SET current_content = $1, metadata = $2, workflow_state = $3, updated_at = now()
			 WHERE id = $4 AND firm_id = $5 AND workflow_state = $6`,
			save.Content, metadata, save.To, save.LetterID, save.FirmID, save.From,
		); err != nil {
			return struct{}{}, err
		}

		if _, err := revisions.Insert(ctx, tx, save.Revision); err != nil {
			return struct{}{}, fmt.Errorf("append revision: %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return st.casError(ctx, save.LetterID, save.FirmID, err)
	}

	st.logger.Info(
		"content saved",
		"id", save.LetterID,
		"state", save.To,
		"change_type", save.Revision.ChangeType,
	)
	return nil
}

func (st *sqlStore) UpdateContent(
	ctx context.Context,
	id, firmID uuid.UUID,
	content string,
	allowed []workflow.State,
	rev revisions.AppendCommand,
) error {
	placeholders := make([]string, len(allowed))
	args := []any{content, id, firmID}
	for i, s := range allowed {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, s)
	}

	q := fmt.Sprintf(
		`UPDATE demand_letters
		 SET current_content = $1, updated_at = now()
		 WHERE id = $2 AND firm_id = $3 AND workflow_state IN (%s)`,
		strings.Join(placeholders, ", "),
	)

	_, err := repository.WithTx(ctx, st.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(ctx, tx, q, args...); err != nil {
			return struct{}{}, err
		}

		if _, err := revisions.Insert(ctx, tx, rev); err != nil {
			return struct{}{}, fmt.Errorf("append revision: %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return st.casError(ctx, id, firmID, err)
	}

	st.logger.Info("content updated", "id", id)
	return nil
}

func (st *sqlStore) DocumentIDs(ctx context.Context, letterID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := repository.QueryMany(
		ctx, st.db,
		"SELECT document_id FROM letter_documents WHERE letter_id = $1 ORDER BY position",
		[]any{letterID},
		func(s repository.Scanner) (uuid.UUID, error) {
			var id uuid.UUID
			err := s.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("query letter documents: %w", err)
	}
	return ids, nil
}

func (st *sqlStore) Counts(ctx context.Context, letterID uuid.UUID) (int, int, error) {
	var total, analyzed int
	err := st.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE analyzed)
		 FROM letter_documents WHERE letter_id = $1`,
		letterID,
	).Scan(&total, &analyzed)
	if err != nil {
		return 0, 0, fmt.Errorf("count letter documents: %w", err)
	}
	return total, analyzed, nil
}

// casError distinguishes a compare-and-swap miss from a missing letter.
// Both surface from the driver as sql.ErrNoRows on the update.
func (st *sqlStore) casError(ctx context.Context, id, firmID uuid.UUID, err error) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if _, getErr := st.Get(ctx, id, firmID); getErr != nil {
		return getErr
	}
	return fmt.Errorf("%w: letter %s", ErrStateConflict, id)
}
