package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// FetchNode returns a state node that loads the text of every requested
// document with bounded concurrency. Any missing document or text blob
// aborts the pipeline; analysis over a partial document set would
// silently produce an incomplete extraction.
func FetchNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		firmID, documentIDs, err := extractFetchState(s)
		if err != nil {
			return s, fmt.Errorf("fetch: %w", err)
		}

		docs, err := fetchDocuments(ctx, rt, firmID, documentIDs)
		if err != nil {
			return s, fmt.Errorf("fetch: %w", err)
		}

		rt.Logger.InfoContext(
			ctx, "fetch node complete",
			"firm_id", firmID,
			"document_count", len(docs),
		)

		s = s.Set(KeyDocuments, docs)
		return s, nil
	})
}

func extractFetchState(s state.State) (uuid.UUID, []uuid.UUID, error) {
	firmVal, ok := s.Get(KeyFirmID)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: missing %s in state", ErrFetchFailed, KeyFirmID)
	}

	firmID, ok := firmVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: %s is not uuid.UUID", ErrFetchFailed, KeyFirmID)
	}

	idsVal, ok := s.Get(KeyDocumentIDs)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: missing %s in state", ErrFetchFailed, KeyDocumentIDs)
	}

	documentIDs, ok := idsVal.([]uuid.UUID)
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("%w: %s is not []uuid.UUID", ErrFetchFailed, KeyDocumentIDs)
	}

	return firmID, documentIDs, nil
}

func fetchDocuments(
	ctx context.Context,
	rt *Runtime,
	firmID uuid.UUID,
	documentIDs []uuid.UUID,
) ([]sourceDocument, error) {
	docs := make([]sourceDocument, len(documentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(documentIDs)))

	for i, id := range documentIDs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			doc, err := rt.Documents.Find(gctx, id, firmID)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrDocumentNotFound, id, err)
			}

			text, err := rt.Documents.Text(gctx, id, firmID)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrFetchFailed, id, err)
			}

			docs[i] = sourceDocument{
				ID:           id,
				DocumentType: doc.DocumentType,
				Text:         text,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}
