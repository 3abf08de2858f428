package revisions_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/finchlaw/redress/internal/revisions"
)

// Numbering is assigned inside the insert SQL, so it needs a real
// database. Set REDRESS_TEST_DB_DSN to a migrated database to run.
func TestAppendAssignsDenseNumbers(t *testing.T) {
	dsn := os.Getenv("REDRESS_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("REDRESS_TEST_DB_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	letterID, firmID, actorID := uuid.New(), uuid.New(), uuid.New()

	if _, err := db.ExecContext(ctx,
		"INSERT INTO demand_letters(id, firm_id, created_by, title) VALUES ($1, $2, $3, $4)",
		letterID, firmID, actorID, "numbering check",
	); err != nil {
		t.Fatalf("insert letter: %v", err)
	}
	defer db.ExecContext(ctx, "DELETE FROM demand_letters WHERE id = $1", letterID)

	sys := revisions.New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i := 1; i <= 5; i++ {
		rev, err := sys.Append(ctx, revisions.AppendCommand{
			LetterID:   letterID,
			Content:    fmt.Sprintf("draft %d", i),
			ChangeType: revisions.ChangeManualEdit,
			CreatedBy:  actorID,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if rev.RevisionNumber != i {
			t.Errorf("append %d: revision number %d", i, rev.RevisionNumber)
		}
	}

	revs, err := sys.ListByLetter(ctx, letterID, firmID)
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revs) != 5 {
		t.Fatalf("revisions: got %d, want 5", len(revs))
	}
	for i, rev := range revs {
		if rev.RevisionNumber != i+1 {
			t.Errorf("revision %d: number %d, want %d", i, rev.RevisionNumber, i+1)
		}
	}
}
