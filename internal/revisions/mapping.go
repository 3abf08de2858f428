package revisions

import (
	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "letter_revisions", "r").
	Project("id", "ID").
	Project("letter_id", "LetterID").
	Project("revision_number", "RevisionNumber").
	Project("content", "Content").
	Project("change_type", "ChangeType").
	Project("created_by", "CreatedBy").
	Project("notes", "Notes").
	Project("created_at", "CreatedAt").
	Join("public", "demand_letters", "l", "INNER JOIN", "r.letter_id = l.id").
	Project("firm_id", "FirmID")

var defaultSort = query.SortField{
	Field: "RevisionNumber",
}

func scanRevision(s repository.Scanner) (Revision, error) {
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
		&r.FirmID,
	)
	return r, err
}
