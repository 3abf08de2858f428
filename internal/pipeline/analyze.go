package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/finchlaw/redress/internal/ai"
)

// AnalyzeNode returns a state node that performs parallel per-document
// extraction using bounded errgroup concurrency. Documents are analyzed
// independently; cross-document synthesis is deferred to the merge node.
// Transport failures abort the pipeline, while results the AI reports as
// unsuccessful are carried forward for the merge node to skip.
func AnalyzeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		firmID, docs, err := extractAnalyzeState(s)
		if err != nil {
			return s, fmt.Errorf("analyze: %w", err)
		}

		outcomes, err := analyzeDocuments(ctx, rt, firmID, docs)
		if err != nil {
			return s, fmt.Errorf("analyze: %w", err)
		}

		rt.Logger.InfoContext(
			ctx, "analyze node complete",
			"document_count", len(outcomes),
		)

		s = s.Set(KeyOutcomes, outcomes)
		return s, nil
	})
}

func extractAnalyzeState(s state.State) (uuid.UUID, []sourceDocument, error) {
	firmVal, ok := s.Get(KeyFirmID)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: missing %s in state", ErrAnalyzeFailed, KeyFirmID)
	}

	firmID, ok := firmVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: %s is not uuid.UUID", ErrAnalyzeFailed, KeyFirmID)
	}

	docsVal, ok := s.Get(KeyDocuments)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: missing %s in state", ErrAnalyzeFailed, KeyDocuments)
	}

	docs, ok := docsVal.([]sourceDocument)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: %s is not []sourceDocument", ErrAnalyzeFailed, KeyDocuments)
	}

	return firmID, docs, nil
}

func analyzeDocuments(
	ctx context.Context,
	rt *Runtime,
	firmID uuid.UUID,
	docs []sourceDocument,
) ([]outcome, error) {
	outcomes := make([]outcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(docs)))

	for i, doc := range docs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			result, err := rt.AI.AnalyzeDocument(gctx, ai.AnalyzeRequest{
				DocumentID:   doc.ID,
				Text:         doc.Text,
				DocumentType: doc.DocumentType,
				FirmID:       firmID,
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrAnalyzeFailed, doc.ID, err)
			}

			outcomes[i] = outcome{DocumentID: doc.ID, Result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}
