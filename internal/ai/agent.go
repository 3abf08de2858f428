package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/finchlaw/redress/internal/extraction"
	"github.com/finchlaw/redress/pkg/formatting"
)

// agentClient runs AI calls in-process against a configured agent provider.
// Structured output is requested via prompt and parsed from the completion;
// a completion that fails to parse is reported as an unsuccessful result,
// mirroring the processor's success envelope.
type agentClient struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

func newAgentClient(cfg gaconfig.AgentConfig, logger *slog.Logger) *agentClient {
	return &agentClient{
		cfg:    cfg,
		logger: logger.With("system", "ai", "mode", ModeAgent),
	}
}

type letterResponse struct {
	Sections       []Section `json:"sections"`
	ChangesSummary string    `json:"changes_summary"`
}

func (c *agentClient) AnalyzeDocument(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	prompt := composeAnalysisPrompt(req)

	content, usage, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze document %s: %w", req.DocumentID, err)
	}

	parsed, err := formatting.Parse[extraction.ExtractedData](content)
	if err != nil {
		c.logger.Warn("analysis response unparseable", "document_id", req.DocumentID, "error", err)
		return &AnalyzeResult{
			Success:      false,
			Usage:        usage,
			ModelID:      c.modelID(),
			ErrorMessage: err.Error(),
		}, nil
	}

	return &AnalyzeResult{
		Success: true,
		Data:    &parsed,
		Usage:   usage,
		ModelID: c.modelID(),
	}, nil
}

func (c *agentClient) GenerateLetter(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	prompt, err := composeGenerationPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("generate letter %s: %w", req.LetterID, err)
	}

	content, usage, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate letter %s: %w", req.LetterID, err)
	}

	now := time.Now().UTC()
	parsed, err := formatting.Parse[letterResponse](content)
	if err != nil {
		return &GenerateResult{
			Success:      false,
			Usage:        usage,
			ModelID:      c.modelID(),
			Timestamp:    now,
			ErrorMessage: err.Error(),
		}, nil
	}

	return &GenerateResult{
		Success: true,
		Letter: &GeneratedLetter{
			Sections:    parsed.Sections,
			Tone:        req.Tone,
			WordCount:   wordCount(parsed.Sections),
			GeneratedAt: now,
		},
		Usage:     usage,
		ModelID:   c.modelID(),
		Timestamp: now,
	}, nil
}

func (c *agentClient) RefineLetter(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	prompt, err := composeRefinementPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("refine letter %s: %w", req.LetterID, err)
	}

	content, usage, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("refine letter %s: %w", req.LetterID, err)
	}

	parsed, err := formatting.Parse[letterResponse](content)
	if err != nil {
		return &RefineResult{
			Success:      false,
			Usage:        usage,
			ModelID:      c.modelID(),
			ErrorMessage: err.Error(),
		}, nil
	}

	return &RefineResult{
		Success: true,
		Letter: &GeneratedLetter{
			Sections:    parsed.Sections,
			Tone:        ToneFormal,
			WordCount:   wordCount(parsed.Sections),
			GeneratedAt: time.Now().UTC(),
		},
		ChangesSummary: parsed.ChangesSummary,
		Usage:          usage,
		ModelID:        c.modelID(),
	}, nil
}

func (c *agentClient) chat(ctx context.Context, prompt string) (string, TokenUsage, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", TokenUsage{}, fmt.Errorf("%w: create agent: %w", ErrUnavailable, err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", TokenUsage{}, fmt.Errorf("%w: chat call: %w", ErrUnavailable, err)
	}

	content := resp.Text()
	return content, estimateUsage(prompt, content), nil
}

func (c *agentClient) modelID() string {
	if c.cfg.Model != nil {
		return c.cfg.Model.Name
	}
	return ""
}

// estimateUsage approximates token counts from character length. The agent
// transport does not surface provider-reported usage, and accumulated
// metadata only needs order-of-magnitude accuracy.
func estimateUsage(prompt, completion string) TokenUsage {
	return TokenUsage{
		InputTokens:  len(prompt) / 4,
		OutputTokens: len(completion) / 4,
	}
}
