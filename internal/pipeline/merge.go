package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/finchlaw/redress/internal/extraction"
)

// MergeNode returns a state node that combines the successful
// per-document extractions into a single result. Unsuccessful outcomes
// are skipped with a warning rather than failing the pipeline; one
// unreadable document should not discard the extractions of the rest.
func MergeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		outcomesVal, ok := s.Get(KeyOutcomes)
		if !ok {
			return s, fmt.Errorf("merge: missing %s in state", KeyOutcomes)
		}

		outcomes, ok := outcomesVal.([]outcome)
		if !ok {
			return s, fmt.Errorf("merge: %s is not []outcome", KeyOutcomes)
		}

		result := collectOutcomes(outcomes)

		for _, id := range result.SkippedDocumentIDs {
			rt.Logger.WarnContext(ctx, "document skipped by analysis", "document_id", id)
		}

		rt.Logger.InfoContext(
			ctx, "merge node complete",
			"analyzed", len(result.AnalyzedDocumentIDs),
			"skipped", len(result.SkippedDocumentIDs),
		)

		s = s.Set(KeyResult, result)
		return s, nil
	})
}

// collectOutcomes folds analysis outcomes, in document order, into the
// pipeline result. Usage accumulates across all outcomes including
// skipped ones; failed calls still consumed tokens.
func collectOutcomes(outcomes []outcome) Result {
	result := Result{
		AnalyzedDocumentIDs: make([]uuid.UUID, 0, len(outcomes)),
		CompletedAt:         time.Now().UTC(),
	}

	extracted := make([]extraction.ExtractedData, 0, len(outcomes))

	for _, o := range outcomes {
		result.Usage.Add(o.Result.Usage)

		if !o.Result.Success || o.Result.Data == nil {
			result.SkippedDocumentIDs = append(result.SkippedDocumentIDs, o.DocumentID)
			continue
		}

		extracted = append(extracted, *o.Result.Data)
		result.AnalyzedDocumentIDs = append(result.AnalyzedDocumentIDs, o.DocumentID)

		if result.ModelID == "" {
			result.ModelID = o.Result.ModelID
		}
	}

	result.Data = extraction.Merge(extracted)
	return result
}
