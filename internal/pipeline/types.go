// Package pipeline implements the document analysis pipeline for Redress.
// It runs a 3-node state graph (fetch → analyze → merge) that retrieves
// document text from blob storage, fans analysis calls out to the AI
// system with bounded concurrency, and merges the per-document
// extractions into a single result.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/extraction"
)

// State bag keys shared across pipeline nodes.
const (
	KeyLetterID    = "letter_id"
	KeyFirmID      = "firm_id"
	KeyDocumentIDs = "document_ids"
	KeyDocuments   = "documents"
	KeyOutcomes    = "outcomes"
	KeyResult      = "result"
)

// sourceDocument carries a document's text through the graph. Documents
// keep their input order so the merge stays deterministic.
type sourceDocument struct {
	ID           uuid.UUID
	DocumentType string
	Text         string
}

// outcome pairs a document with its analysis result. Results where the
// AI reported failure are kept; the merge node decides what to skip.
type outcome struct {
	DocumentID uuid.UUID
	Result     *ai.AnalyzeResult
}

// Result is the final output from a pipeline execution.
type Result struct {
	Data                extraction.ExtractedData `json:"data"`
	AnalyzedDocumentIDs []uuid.UUID              `json:"analyzed_document_ids"`
	SkippedDocumentIDs  []uuid.UUID              `json:"skipped_document_ids,omitempty"`
	Usage               ai.TokenUsage            `json:"token_usage"`
	ModelID             string                   `json:"model_id"`
	CompletedAt         time.Time                `json:"completed_at"`
}
