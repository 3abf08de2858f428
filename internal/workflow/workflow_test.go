package workflow_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/finchlaw/redress/internal/workflow"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from   workflow.State
		action workflow.Action
		want   workflow.State
	}{
		{workflow.StateDraft, workflow.ActionStartAnalysis, workflow.StateAnalyzing},
		{workflow.StateAnalyzing, workflow.ActionAnalysisComplete, workflow.StateAnalyzed},
		{workflow.StateAnalyzing, workflow.ActionAnalysisError, workflow.StateError},
		{workflow.StateAnalyzed, workflow.ActionStartGeneration, workflow.StateGenerating},
		{workflow.StateGenerating, workflow.ActionGenerationComplete, workflow.StateGenerated},
		{workflow.StateGenerating, workflow.ActionGenerationError, workflow.StateError},
		{workflow.StateGenerated, workflow.ActionStartRefinement, workflow.StateRefining},
		{workflow.StateGenerated, workflow.ActionMarkComplete, workflow.StateComplete},
		{workflow.StateRefining, workflow.ActionRefinementComplete, workflow.StateGenerated},
		{workflow.StateRefining, workflow.ActionRefinementError, workflow.StateError},
		{workflow.StateError, workflow.ActionStartAnalysis, workflow.StateAnalyzing},
		{workflow.StateError, workflow.ActionStartGeneration, workflow.StateGenerating},
		{workflow.StateError, workflow.ActionStartRefinement, workflow.StateRefining},
		{workflow.StateError, workflow.ActionReset, workflow.StateDraft},
		{workflow.StateComplete, workflow.ActionStartRefinement, workflow.StateRefining},
		{workflow.StateComplete, workflow.ActionReset, workflow.StateDraft},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" "+string(tt.action), func(t *testing.T) {
			got, err := workflow.Transition(tt.from, tt.action)
			if err != nil {
				t.Fatalf("Transition(%s, %s) error: %v", tt.from, tt.action, err)
			}
			if got != tt.want {
				t.Errorf("Transition(%s, %s) = %s, want %s", tt.from, tt.action, got, tt.want)
			}
		})
	}
}

func TestTransitionUndefinedPairs(t *testing.T) {
	states := []workflow.State{
		workflow.StateDraft,
		workflow.StateAnalyzing,
		workflow.StateAnalyzed,
		workflow.StateGenerating,
		workflow.StateGenerated,
		workflow.StateRefining,
		workflow.StateComplete,
		workflow.StateError,
	}
	actions := []workflow.Action{
		workflow.ActionStartAnalysis,
		workflow.ActionAnalysisComplete,
		workflow.ActionAnalysisError,
		workflow.ActionStartGeneration,
		workflow.ActionGenerationComplete,
		workflow.ActionGenerationError,
		workflow.ActionStartRefinement,
		workflow.ActionRefinementComplete,
		workflow.ActionRefinementError,
		workflow.ActionMarkComplete,
		workflow.ActionReset,
	}

	for _, s := range states {
		legal := workflow.Actions(s)
		for _, a := range actions {
			if slices.Contains(legal, a) {
				continue
			}
			next, err := workflow.Transition(s, a)
			if err == nil {
				t.Errorf("Transition(%s, %s) = %s, want error", s, a, next)
				continue
			}
			if !errors.Is(err, workflow.ErrInvalidTransition) {
				t.Errorf("Transition(%s, %s) error = %v, want ErrInvalidTransition", s, a, err)
			}
			if next != "" {
				t.Errorf("Transition(%s, %s) returned state %s alongside error", s, a, next)
			}
		}
	}
}

func TestTransitionErrorCarriesPair(t *testing.T) {
	_, err := workflow.Transition(workflow.StateDraft, workflow.ActionStartGeneration)

	var ite *workflow.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("error = %v, want *InvalidTransitionError", err)
	}
	if ite.State != workflow.StateDraft || ite.Action != workflow.ActionStartGeneration {
		t.Errorf("pair = (%s, %s), want (draft, START_GENERATION)", ite.State, ite.Action)
	}
}

func TestRecoveryActions(t *testing.T) {
	tests := []struct {
		state workflow.State
		want  []workflow.Action
	}{
		{workflow.StateError, []workflow.Action{
			workflow.ActionStartAnalysis,
			workflow.ActionStartGeneration,
			workflow.ActionStartRefinement,
			workflow.ActionReset,
		}},
		{workflow.StateComplete, []workflow.Action{
			workflow.ActionStartRefinement,
			workflow.ActionReset,
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			got := workflow.Actions(tt.state)
			slices.Sort(got)
			slices.Sort(tt.want)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Actions(%s) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestStateValid(t *testing.T) {
	for _, s := range []workflow.State{
		workflow.StateDraft, workflow.StateAnalyzing, workflow.StateAnalyzed,
		workflow.StateGenerating, workflow.StateGenerated, workflow.StateRefining,
		workflow.StateComplete, workflow.StateError,
	} {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false, want true", s)
		}
	}

	if workflow.State("archived").Valid() {
		t.Error(`State("archived").Valid() = true, want false`)
	}
	if workflow.State("").Valid() {
		t.Error(`State("").Valid() = true, want false`)
	}
}

func TestStatusProjection(t *testing.T) {
	tests := []struct {
		state workflow.State
		want  workflow.Status
	}{
		{workflow.StateDraft, workflow.StatusDraft},
		{workflow.StateAnalyzing, workflow.StatusAnalyzing},
		{workflow.StateAnalyzed, workflow.StatusDraft},
		{workflow.StateGenerating, workflow.StatusGenerating},
		{workflow.StateGenerated, workflow.StatusDraft},
		{workflow.StateRefining, workflow.StatusRefining},
		{workflow.StateComplete, workflow.StatusComplete},
		{workflow.StateError, workflow.StatusDraft},
	}

	for _, tt := range tests {
		if got := tt.state.Status(); got != tt.want {
			t.Errorf("%s.Status() = %s, want %s", tt.state, got, tt.want)
		}
	}
}
