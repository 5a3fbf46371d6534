package workflow

import "fmt"

// State is a step of the expense entry workflow.
type State int

const (
	Idle State = iota
	LoadingReferenceData
	Editing
	Submitting
	PromptCreateRoom
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingReferenceData:
		return "loading"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case PromptCreateRoom:
		return "prompt_create_room"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// canTransition reports whether the workflow may move from one state to
// another. Closing the workflow (any state to Idle) is always allowed.
func canTransition(from, to State) bool {
	if to == Idle {
		return true
	}
	switch from {
	case Idle:
		return to == LoadingReferenceData
	case LoadingReferenceData:
		return to == Editing || to == LoadingReferenceData
	case Editing:
		return to == LoadingReferenceData || to == Submitting || to == PromptCreateRoom
	case Submitting:
		return to == Editing
	case PromptCreateRoom:
		return to == Submitting || to == Editing || to == LoadingReferenceData
	default:
		return false
	}
}
