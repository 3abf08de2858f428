// Package workflow implements the demand letter state machine.
// It defines the pipeline states, the actions that move a letter between
// them, and a pure transition function over the two. Persistence of the
// resulting state is the letters orchestrator's concern.
package workflow

// State is the authoritative stage of the analyze/generate/refine pipeline.
type State string

// Workflow states. Draft is the initial state of every letter. Complete and
// Error both admit recovery actions; there is no hard terminal state.
const (
	StateDraft      State = "draft"
	StateAnalyzing  State = "analyzing"
	StateAnalyzed   State = "analyzed"
	StateGenerating State = "generating"
	StateGenerated  State = "generated"
	StateRefining   State = "refining"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// Action is a requested transition on a letter's workflow state.
type Action string

// Workflow actions.
const (
	ActionStartAnalysis      Action = "START_ANALYSIS"
	ActionAnalysisComplete   Action = "ANALYSIS_COMPLETE"
	ActionAnalysisError      Action = "ANALYSIS_ERROR"
	ActionStartGeneration    Action = "START_GENERATION"
	ActionGenerationComplete Action = "GENERATION_COMPLETE"
	ActionGenerationError    Action = "GENERATION_ERROR"
	ActionStartRefinement    Action = "START_REFINEMENT"
	ActionRefinementComplete Action = "REFINEMENT_COMPLETE"
	ActionRefinementError    Action = "REFINEMENT_ERROR"
	ActionMarkComplete       Action = "MARK_COMPLETE"
	ActionReset              Action = "RESET"
)

// Status is the coarse user-facing projection of a workflow state.
type Status string

// Coarse statuses. Archived is never produced by the state machine; it is
// applied by the archival collaborator outside this engine.
const (
	StatusDraft      Status = "draft"
	StatusAnalyzing  Status = "analyzing"
	StatusGenerating Status = "generating"
	StatusRefining   Status = "refining"
	StatusComplete   Status = "complete"
	StatusArchived   Status = "archived"
)

var transitions = map[State]map[Action]State{
	StateDraft: {
		ActionStartAnalysis: StateAnalyzing,
	},
	StateAnalyzing: {
		ActionAnalysisComplete: StateAnalyzed,
		ActionAnalysisError:    StateError,
	},
	StateAnalyzed: {
		ActionStartGeneration: StateGenerating,
	},
	StateGenerating: {
		ActionGenerationComplete: StateGenerated,
		ActionGenerationError:    StateError,
	},
	StateGenerated: {
		ActionStartRefinement: StateRefining,
		ActionMarkComplete:    StateComplete,
	},
	StateRefining: {
		ActionRefinementComplete: StateGenerated,
		ActionRefinementError:    StateError,
	},
	StateError: {
		ActionStartAnalysis:   StateAnalyzing,
		ActionStartGeneration: StateGenerating,
		ActionStartRefinement: StateRefining,
		ActionReset:           StateDraft,
	},
	StateComplete: {
		ActionStartRefinement: StateRefining,
		ActionReset:           StateDraft,
	},
}

// Transition returns the state reached by applying action to current.
// It is pure and total: undefined (state, action) pairs return an
// InvalidTransitionError and never a state.
func Transition(current State, action Action) (State, error) {
	if next, ok := transitions[current][action]; ok {
		return next, nil
	}
	return "", &InvalidTransitionError{State: current, Action: action}
}

// Valid reports whether s is one of the defined workflow states.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Actions returns the actions legal from s, in undefined order.
func Actions(s State) []Action {
	table := transitions[s]
	actions := make([]Action, 0, len(table))
	for a := range table {
		actions = append(actions, a)
	}
	return actions
}

// Status projects s onto the coarse user-facing status. States holding
// editable content (draft, analyzed, generated, error) all project to
// draft; the in-progress and complete states map one-to-one.
func (s State) Status() Status {
	switch s {
	case StateAnalyzing:
		return StatusAnalyzing
	case StateGenerating:
		return StatusGenerating
	case StateRefining:
		return StatusRefining
	case StateComplete:
		return StatusComplete
	default:
		return StatusDraft
	}
}
