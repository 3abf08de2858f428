package letters

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/workflow"
	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "demand_letters", "l").
	Project("id", "ID").
	Project("firm_id", "FirmID").
	Project("created_by", "CreatedBy").
	Project("title", "Title").
	Project("template_id", "TemplateID").
	Project("tone", "Tone").
	Project("current_content", "CurrentContent").
	Project("extracted_data", "ExtractedData").
	Project("metadata", "Metadata").
	Project("workflow_state", "WorkflowState").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for letter queries.
// Nil fields are ignored; all fields use exact matching.
type Filters struct {
	State      *workflow.State `json:"workflow_state,omitempty"`
	CreatedBy  *uuid.UUID      `json:"created_by,omitempty"`
	TemplateID *uuid.UUID      `json:"template_id,omitempty"`
	Tone       *string         `json:"tone,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("WorkflowState", f.State).
		WhereEquals("CreatedBy", f.CreatedBy).
		WhereEquals("TemplateID", f.TemplateID).
		WhereEquals("Tone", f.Tone)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("workflow_state"); s != "" {
		state := workflow.State(s)
		f.State = &state
	}

	if cb := values.Get("created_by"); cb != "" {
		if v, err := uuid.Parse(cb); err == nil {
			f.CreatedBy = &v
		}
	}

	if tid := values.Get("template_id"); tid != "" {
		if v, err := uuid.Parse(tid); err == nil {
			f.TemplateID = &v
		}
	}

	if tone := values.Get("tone"); tone != "" {
		f.Tone = &tone
	}

	return f
}

func scanLetter(s repository.Scanner) (DemandLetter, error) {
	var l DemandLetter
	var extracted, metadata []byte

	err := s.Scan(
		&l.ID,
		&l.FirmID,
		&l.CreatedBy,
		&l.Title,
		&l.TemplateID,
		&l.Tone,
		&l.CurrentContent,
		&extracted,
		&metadata,
		&l.WorkflowState,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return l, err
	}

	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &l.ExtractedData); err != nil {
			return l, fmt.Errorf("decode extracted data: %w", err)
		}
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &l.Metadata); err != nil {
			return l, fmt.Errorf("decode metadata: %w", err)
		}
	}

	l.Status = l.WorkflowState.Status()
	return l, nil
}
