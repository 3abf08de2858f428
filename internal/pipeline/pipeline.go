package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Execute runs the analysis pipeline for a letter's documents. It builds
// the state graph (fetch → analyze → merge), executes it, and extracts
// the Result from the final state.
func Execute(
	ctx context.Context,
	rt *Runtime,
	letterID, firmID uuid.UUID,
	documentIDs []uuid.UUID,
) (*Result, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyLetterID, letterID)
	initialState = initialState.Set(KeyFirmID, firmID)
	initialState = initialState.Set(KeyDocumentIDs, documentIDs)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("redress-analyze")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("fetch", FetchNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("analyze", AnalyzeNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("merge", MergeNode(rt)); err != nil {
		return nil, err
	}

	// fetch → analyze → merge (unconditional)
	if err := graph.AddEdge("fetch", "analyze", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("analyze", "merge", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("fetch"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("merge"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractResult(s state.State) (*Result, error) {
	val, ok := s.Get(KeyResult)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyResult)
	}

	result, ok := val.(Result)
	if !ok {
		return nil, fmt.Errorf("%s is not Result", KeyResult)
	}

	return &result, nil
}

func workerCount(documentCount int) int {
	return max(min(runtime.NumCPU(), documentCount), 1)
}
