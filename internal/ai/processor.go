package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/extraction"
)

// processorClient talks to the dedicated AI processor service over HTTP.
// Every endpoint returns a success envelope; a false success flag is a
// well-formed result, not a transport error.
type processorClient struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

func newProcessorClient(cfg *Config, logger *slog.Logger) *processorClient {
	return &processorClient{
		http:    &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		baseURL: cfg.ProcessorURL,
		logger:  logger.With("system", "ai", "mode", ModeProcessor),
	}
}

type analyzeEnvelope struct {
	Success       bool                      `json:"success"`
	ExtractedData *extraction.ExtractedData `json:"extracted_data"`
	TokenUsage    TokenUsage                `json:"token_usage"`
	ModelID       string                    `json:"model_id"`
	ErrorMessage  string                    `json:"error_message"`
}

type generateEnvelope struct {
	Success      bool             `json:"success"`
	Letter       *GeneratedLetter `json:"letter"`
	TokenUsage   TokenUsage       `json:"token_usage"`
	ModelID      string           `json:"model_id"`
	Timestamp    time.Time        `json:"generation_timestamp"`
	ErrorMessage string           `json:"error_message"`
}

type refineEnvelope struct {
	Success        bool             `json:"success"`
	RefinedLetter  *GeneratedLetter `json:"refined_letter"`
	ChangesSummary string           `json:"changes_summary"`
	TokenUsage     TokenUsage       `json:"token_usage"`
	ModelID        string           `json:"model_id"`
	ErrorMessage   string           `json:"error_message"`
}

func (c *processorClient) AnalyzeDocument(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	payload := map[string]any{
		"document_id":   req.DocumentID,
		"document_text": req.Text,
		"document_type": req.DocumentType,
		"firm_id":       req.FirmID,
	}

	env, err := post[analyzeEnvelope](ctx, c, "/analyze", payload)
	if err != nil {
		return nil, fmt.Errorf("analyze document %s: %w", req.DocumentID, err)
	}

	return &AnalyzeResult{
		Success:      env.Success,
		Data:         env.ExtractedData,
		Usage:        env.TokenUsage,
		ModelID:      env.ModelID,
		ErrorMessage: env.ErrorMessage,
	}, nil
}

func (c *processorClient) GenerateLetter(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	payload := map[string]any{
		"letter_id":          req.LetterID,
		"extracted_data":     req.Data,
		"template_variables": req.TemplateVariables,
		"tone":               req.Tone,
		"firm_id":            req.FirmID,
		"user_id":            req.ActorID,
	}
	if req.CustomInstructions != nil {
		payload["custom_instructions"] = *req.CustomInstructions
	}

	env, err := post[generateEnvelope](ctx, c, "/generate", payload)
	if err != nil {
		return nil, fmt.Errorf("generate letter %s: %w", req.LetterID, err)
	}

	return &GenerateResult{
		Success:      env.Success,
		Letter:       env.Letter,
		Usage:        env.TokenUsage,
		ModelID:      env.ModelID,
		Timestamp:    env.Timestamp,
		ErrorMessage: env.ErrorMessage,
	}, nil
}

func (c *processorClient) RefineLetter(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	payload := map[string]any{
		"letter_id":        req.LetterID,
		"current_sections": req.Sections,
		"feedback":         req.Feedback,
		"firm_id":          req.FirmID,
		"user_id":          req.ActorID,
	}
	if len(req.TargetSections) > 0 {
		payload["target_sections"] = req.TargetSections
	}
	if req.History != nil {
		payload["conversation_history"] = req.History
	}

	env, err := post[refineEnvelope](ctx, c, "/refine", payload)
	if err != nil {
		return nil, fmt.Errorf("refine letter %s: %w", req.LetterID, err)
	}

	return &RefineResult{
		Success:        env.Success,
		Letter:         env.RefinedLetter,
		ChangesSummary: env.ChangesSummary,
		Usage:          env.TokenUsage,
		ModelID:        env.ModelID,
		ErrorMessage:   env.ErrorMessage,
	}, nil
}

func post[T any](ctx context.Context, c *processorClient, path string, payload map[string]any) (*T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Info("processor call complete",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	// The processor returns its success envelope on 200 and 500 alike;
	// only undecodable bodies are treated as transport failures.
	var env T
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: status %d: %w", ErrUnavailable, resp.StatusCode, err)
	}

	return &env, nil
}
