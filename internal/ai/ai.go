// Package ai defines the AI service contract for document analysis, letter
// generation, and letter refinement, with two interchangeable backends: an
// HTTP client for the dedicated processor service and an in-process client
// backed by a configured agent provider.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/finchlaw/redress/internal/extraction"
)

// Tone selects the drafting register for a generated letter.
type Tone string

// Supported tones. ToneFormal is the default.
const (
	ToneFormal     Tone = "formal"
	ToneAssertive  Tone = "assertive"
	ToneDiplomatic Tone = "diplomatic"
	ToneAggressive Tone = "aggressive"
)

// Valid reports whether t is a supported tone.
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneAssertive, ToneDiplomatic, ToneAggressive:
		return true
	}
	return false
}

// TokenUsage tracks provider-reported token consumption for one call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates other into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Section is one titled, ordered block of generated letter content.
type Section struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// GeneratedLetter is the AI service's output shape for generation and
// refinement: ordered sections plus generation metadata.
type GeneratedLetter struct {
	Sections    []Section `json:"sections"`
	Tone        Tone      `json:"tone"`
	WordCount   int       `json:"word_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Turn is a single message in a refinement conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationHistory carries prior refinement instructions, oldest first.
// A nil *ConversationHistory means no refinement has happened yet, which the
// refinement contract treats differently from an empty one.
type ConversationHistory struct {
	Turns []Turn `json:"turns"`
}

// AnalyzeRequest asks for structured extraction from one document's text.
type AnalyzeRequest struct {
	DocumentID   uuid.UUID
	Text         string
	DocumentType string
	FirmID       uuid.UUID
}

// AnalyzeResult reports one document's extraction outcome. Success false
// means the service processed the request but could not extract data;
// callers skip the document rather than failing the batch.
type AnalyzeResult struct {
	Success      bool
	Data         *extraction.ExtractedData
	Usage        TokenUsage
	ModelID      string
	ErrorMessage string
}

// GenerateRequest asks for a full demand letter draft.
type GenerateRequest struct {
	LetterID           uuid.UUID
	Data               extraction.ExtractedData
	TemplateVariables  map[string]string
	Tone               Tone
	CustomInstructions *string
	FirmID             uuid.UUID
	ActorID            uuid.UUID
}

// GenerateResult reports a generation outcome.
type GenerateResult struct {
	Success      bool
	Letter       *GeneratedLetter
	Usage        TokenUsage
	ModelID      string
	Timestamp    time.Time
	ErrorMessage string
}

// RefineRequest asks for a revision of the current letter per attorney
// feedback. TargetSections optionally narrows the edit to named sections;
// History carries prior instructions for context-aware refinement.
type RefineRequest struct {
	LetterID       uuid.UUID
	Sections       []Section
	Feedback       string
	TargetSections []string
	History        *ConversationHistory
	FirmID         uuid.UUID
	ActorID        uuid.UUID
}

// RefineResult reports a refinement outcome.
type RefineResult struct {
	Success        bool
	Letter         *GeneratedLetter
	ChangesSummary string
	Usage          TokenUsage
	ModelID        string
	ErrorMessage   string
}

// System is the AI service capability consumed by the workflow engine.
type System interface {
	AnalyzeDocument(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error)
	GenerateLetter(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	RefineLetter(ctx context.Context, req RefineRequest) (*RefineResult, error)
}

// New creates an AI system for the configured backend.
func New(cfg *Config, agent gaconfig.AgentConfig, logger *slog.Logger) (System, error) {
	switch cfg.Mode {
	case ModeProcessor:
		return newProcessorClient(cfg, logger), nil
	case ModeAgent:
		return newAgentClient(agent, logger), nil
	default:
		return nil, fmt.Errorf("unsupported ai mode: %s", cfg.Mode)
	}
}

func wordCount(sections []Section) int {
	total := 0
	for _, s := range sections {
		total += len(strings.Fields(s.Content))
	}
	return total
}
