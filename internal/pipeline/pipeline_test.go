package pipeline

import (
	"testing"

	"github.com/google/uuid"

	"github.com/finchlaw/redress/internal/ai"
	"github.com/finchlaw/redress/internal/extraction"
)

func successOutcome(name string, in, out int) outcome {
	return outcome{
		DocumentID: uuid.New(),
		Result: &ai.AnalyzeResult{
			Success: true,
			Data: &extraction.ExtractedData{
				Parties: []extraction.Party{{Name: name, PartyType: "plaintiff"}},
			},
			Usage:   ai.TokenUsage{InputTokens: in, OutputTokens: out},
			ModelID: "claude-3-sonnet",
		},
	}
}

func failedOutcome(in int) outcome {
	return outcome{
		DocumentID: uuid.New(),
		Result: &ai.AnalyzeResult{
			Success:      false,
			Usage:        ai.TokenUsage{InputTokens: in},
			ErrorMessage: "unreadable scan",
		},
	}
}

func TestCollectOutcomesMergesInOrder(t *testing.T) {
	outcomes := []outcome{
		successOutcome("Smith", 100, 50),
		successOutcome("Jones", 200, 80),
	}

	result := collectOutcomes(outcomes)

	if len(result.Data.Parties) != 2 {
		t.Fatalf("parties: got %d, want 2", len(result.Data.Parties))
	}
	if result.Data.Parties[0].Name != "Smith" || result.Data.Parties[1].Name != "Jones" {
		t.Errorf("party order: got %s, %s", result.Data.Parties[0].Name, result.Data.Parties[1].Name)
	}
	if len(result.AnalyzedDocumentIDs) != 2 {
		t.Errorf("analyzed: got %d, want 2", len(result.AnalyzedDocumentIDs))
	}
	if result.AnalyzedDocumentIDs[0] != outcomes[0].DocumentID {
		t.Error("analyzed IDs out of document order")
	}
}

func TestCollectOutcomesSkipsFailures(t *testing.T) {
	failed := failedOutcome(10)
	outcomes := []outcome{
		failed,
		successOutcome("Smith", 100, 50),
	}

	result := collectOutcomes(outcomes)

	if len(result.Data.Parties) != 1 {
		t.Fatalf("parties: got %d, want 1", len(result.Data.Parties))
	}
	if len(result.SkippedDocumentIDs) != 1 || result.SkippedDocumentIDs[0] != failed.DocumentID {
		t.Errorf("skipped: got %v", result.SkippedDocumentIDs)
	}
	if len(result.AnalyzedDocumentIDs) != 1 {
		t.Errorf("analyzed: got %d, want 1", len(result.AnalyzedDocumentIDs))
	}
}

func TestCollectOutcomesAccumulatesUsage(t *testing.T) {
	outcomes := []outcome{
		successOutcome("Smith", 100, 50),
		failedOutcome(10),
		successOutcome("Jones", 200, 80),
	}

	result := collectOutcomes(outcomes)

	if result.Usage.InputTokens != 310 {
		t.Errorf("input tokens: got %d, want 310", result.Usage.InputTokens)
	}
	if result.Usage.OutputTokens != 130 {
		t.Errorf("output tokens: got %d, want 130", result.Usage.OutputTokens)
	}
	if result.ModelID != "claude-3-sonnet" {
		t.Errorf("model: got %s", result.ModelID)
	}
}

func TestCollectOutcomesEmpty(t *testing.T) {
	result := collectOutcomes(nil)

	if result.Data.Parties == nil || result.Data.Damages == nil {
		t.Error("merged data should have non-nil lists")
	}
	if len(result.AnalyzedDocumentIDs) != 0 {
		t.Errorf("analyzed: got %d, want 0", len(result.AnalyzedDocumentIDs))
	}
}

func TestWorkerCount(t *testing.T) {
	if got := workerCount(0); got != 1 {
		t.Errorf("workerCount(0) = %d, want 1", got)
	}
	if got := workerCount(1); got != 1 {
		t.Errorf("workerCount(1) = %d, want 1", got)
	}
	if got := workerCount(10000); got < 1 {
		t.Errorf("workerCount(10000) = %d, want >= 1", got)
	}
}
