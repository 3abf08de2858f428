package workflow

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition matches any InvalidTransitionError via errors.Is.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// InvalidTransitionError reports a (state, action) pair not present in the
// transition table.
type InvalidTransitionError struct {
	State  State
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid workflow transition: %s from state %s", e.Action, e.State)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
