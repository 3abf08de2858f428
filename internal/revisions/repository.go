package revisions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a revision repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "revisions"),
	}
}

const appendSQL = `
	INSERT INTO letter_revisions(id, letter_id, revision_number, content, change_type, created_by, notes)
	VALUES (
		$1, $2,
		(SELECT COALESCE(MAX(revision_number), 0) + 1 FROM letter_revisions WHERE letter_id = $2),
		$3, $4, $5, $6
	)
	RETURNING id, letter_id, revision_number, content, change_type, created_by, notes, created_at`

// Insert appends a revision using q, which may be a transaction shared
// with other writes so the revision commits or rolls back with them.
// The revision number is assigned inside the insert from the current
// maximum for the letter; the unique constraint on
// (letter_id, revision_number) rejects the race where two appends read
// the same maximum.
func Insert(ctx context.Context, q repository.Querier, cmd AppendCommand) (Revision, error) {
	insertArgs := []any{
		uuid.New(),
		cmd.LetterID,
		cmd.Content,
		cmd.ChangeType,
		cmd.CreatedBy,
		cmd.Notes,
	}

	return repository.QueryOne(ctx, q, appendSQL, insertArgs, scanInserted)
}

// Append records a new revision in its own transaction. A lost numbering
// race surfaces as ErrDuplicate.
func (r *repo) Append(ctx context.Context, cmd AppendCommand) (*Revision, error) {
	rev, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Revision, error) {
		return Insert(ctx, tx, cmd)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"revision recorded",
		"letter_id", rev.LetterID,
		"revision", rev.RevisionNumber,
		"change_type", rev.ChangeType,
	)
	return &rev, nil
}

func (r *repo) ListByLetter(ctx context.Context, letterID, firmID uuid.UUID) ([]Revision, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("LetterID", letterID).
		WhereEquals("FirmID", firmID).
		Build()

	revs, err := repository.QueryMany(ctx, r.db, q, args, scanRevision)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	return revs, nil
}

// History reconstructs the refinement conversation for a letter from its
// ai_refinement revisions, oldest first. Returns nil when the letter has
// never been refined; callers treat absent history as a fresh
// conversation.
func (r *repo) History(ctx context.Context, letterID, firmID uuid.UUID) (*ai.ConversationHistory, error) {
	revs, err := r.ListByLetter(ctx, letterID, firmID)
	if err != nil {
		return nil, err
	}

	return BuildHistory(revs), nil
}

// BuildHistory assembles a refinement conversation from a letter's
// revisions. Only ai_refinement revisions carrying notes contribute
// turns; revisions arrive ordered by revision number.
func BuildHistory(revs []Revision) *ai.ConversationHistory {
	var turns []ai.Turn
	for _, rev := range revs {
		if rev.ChangeType != ChangeAIRefinement || rev.Notes == nil {
			continue
		}
		turns = append(turns, ai.Turn{
			Role:      "user",
			Content:   *rev.Notes,
			Timestamp: rev.CreatedAt,
		})
	}

	if len(turns) == 0 {
		return nil
	}
	return &ai.ConversationHistory{Turns: turns}
}

// scanInserted covers the RETURNING clause of Append, which has no
// access to the joined firm column.
func scanInserted(s repository.Scanner) (Revision, error) {
	var r Revision
	err := s.Scan(
		&r.ID,
		&r.LetterID,
		&r.RevisionNumber,
		&r.Content,
		&r.ChangeType,
		&r.CreatedBy,
		&r.Notes,
		&r.CreatedAt,
	)
	return r, err
}
