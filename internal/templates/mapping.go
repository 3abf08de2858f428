package templates

import (
	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "letter_templates", "t").
	Project("id", "ID").
	Project("firm_id", "FirmID").
	Project("name", "Name").
	Project("description", "Description").
	Project("default_tone", "DefaultTone").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field: "Name",
}

var variableProjection = query.
	NewProjectionMap("public", "template_variables", "v").
	Project("id", "ID").
	Project("template_id", "TemplateID").
	Project("name", "Name").
	Project("value", "Value").
	Project("created_at", "CreatedAt")

var variableSort = query.SortField{
	Field: "Name",
}

func scanTemplate(s repository.Scanner) (Template, error) {
	var t Template
	err := s.Scan(
		&t.ID,
		&t.FirmID,
		&t.Name,
		&t.Description,
		&t.DefaultTone,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func scanVariable(s repository.Scanner) (Variable, error) {
	var v Variable
	err := s.Scan(
		&v.ID,
		&v.TemplateID,
		&v.Name,
		&v.Value,
		&v.CreatedAt,
	)
	return v, err
}
