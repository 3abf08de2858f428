// Package templates implements the letter template domain for Redress.
// Templates carry firm letterhead and boilerplate as named variables
// that are substituted into generated letters.
package templates

import (
	"time"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
)

// Template represents a firm's letter template.
type Template struct {
	ID          uuid.UUID `json:"id"`
	FirmID      uuid.UUID `json:"firm_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	DefaultTone ai.Tone   `json:"default_tone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Variable is a named substitution value belonging to a template.
type Variable struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}
