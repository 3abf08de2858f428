package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const analysisInstructions = `You are a legal document analyst for a plaintiff's firm.
Extract structured facts from the document below. Respond with a single JSON
object matching this shape, with no prose outside the JSON:

{
  "parties": [{"name", "party_type", "contact_info", "insurance_company", "policy_number", "confidence", "source_text"}],
  "damages": [{"damage_type", "description", "amount", "amount_is_estimate", "provider", "confidence", "source_text"}],
  "timeline": [{"date", "description", "category", "confidence", "source_text"}],
  "claims": [{"theory", "description", "confidence", "source_text"}],
  "incident": {"date", "location", "description", "incident_type", "police_report_number", "confidence", "source_text"}
}

party_type is one of plaintiff, defendant, witness, insurance_company, other.
damage_type is one of medical, property, lost_wages, pain_and_suffering, punitive, other.
confidence is one of high, medium, low, uncertain. Omit fields you cannot support
with document text. Do not invent facts.`

const generationInstructions = `You are drafting a formal legal demand letter on behalf of a
plaintiff's firm. Produce the letter as a single JSON object, no prose outside it:

{
  "sections": [{"type", "title", "content", "order"}],
  "changes_summary": ""
}

Use these section types in order: header, introduction, facts, liability, damages,
demand, closing. Number order from 1. Write complete paragraphs in content; never
use placeholders for facts you were given. Substitute the template variables
verbatim where they apply.`

const refinementInstructions = `You are revising an existing demand letter per attorney feedback.
Respond with a single JSON object, no prose outside it:

{
  "sections": [{"type", "title", "content", "order"}],
  "changes_summary": "one or two sentences describing what changed"
}

Return the complete letter, not just the edited sections. Preserve sections the
feedback does not touch. When target sections are named, confine edits to them.`

func composeAnalysisPrompt(req AnalyzeRequest) string {
	var sb strings.Builder
	sb.WriteString(analysisInstructions)
	if req.DocumentType != "" {
		fmt.Fprintf(&sb, "\n\nDocument type: %s", req.DocumentType)
	}
	sb.WriteString("\n\nDocument text:\n\n")
	sb.WriteString(req.Text)
	return sb.String()
}

func composeGenerationPrompt(req GenerateRequest) (string, error) {
	data, err := json.MarshalIndent(req.Data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize extracted data: %w", err)
	}

	vars, err := json.MarshalIndent(req.TemplateVariables, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize template variables: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generationInstructions)
	fmt.Fprintf(&sb, "\n\nTone: %s", req.Tone)
	if req.CustomInstructions != nil && *req.CustomInstructions != "" {
		fmt.Fprintf(&sb, "\n\nAdditional instructions from the attorney:\n%s", *req.CustomInstructions)
	}
	sb.WriteString("\n\nTemplate variables:\n\n")
	sb.Write(vars)
	sb.WriteString("\n\nCase facts extracted from the source documents:\n\n")
	sb.Write(data)
	return sb.String(), nil
}

func composeRefinementPrompt(req RefineRequest) (string, error) {
	sections, err := json.MarshalIndent(req.Sections, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize sections: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(refinementInstructions)

	if req.History != nil {
		sb.WriteString("\n\nPrior refinement instructions, oldest first:")
		for i, turn := range req.History.Turns {
			fmt.Fprintf(&sb, "\n%d. %s", i+1, turn.Content)
		}
	}

	if len(req.TargetSections) > 0 {
		fmt.Fprintf(&sb, "\n\nTarget sections: %s", strings.Join(req.TargetSections, ", "))
	}

	fmt.Fprintf(&sb, "\n\nAttorney feedback:\n%s", req.Feedback)
	sb.WriteString("\n\nCurrent letter sections:\n\n")
	sb.Write(sections)
	return sb.String(), nil
}
