package workflow

import (
	"fliptrack/internal/budget"
	"fliptrack/internal/core"
	"fliptrack/internal/validation"
)

// Outcome says how a submit step ended.
type Outcome int

const (
	// Blocked: the form has errors; nothing was sent.
	Blocked Outcome = iota
	// NeedsRoomConfirmation: the room is unknown and the workflow waits in
	// PromptCreateRoom for ConfirmCreateRoom.
	NeedsRoomConfirmation
	Submitted
	// Failed: the backend rejected a call. The form is kept for a retry.
	Failed
	// Cancelled: room creation was declined; nothing was sent.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Blocked:
		return "blocked"
	case NeedsRoomConfirmation:
		return "needs_room_confirmation"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

type Result struct {
	Outcome  Outcome
	Verdicts validation.Verdicts
	// MissingRoom is set on Blocked when the only error is a room name that
	// is not in the project; switching to custom room mode resolves it.
	MissingRoom string
	// Expense is what was sent. Its ID is set only when the backend printed
	// one in the add output; otherwise it stays 0.
	Expense     core.Expense
	RoomCreated bool
	Warning     *budget.Warning
	Message     string
	Output      string
	Err         error
}

// View is a point-in-time copy of the workflow state.
type View struct {
	State       State
	ProjectID   int64
	Project     string
	Rooms       []core.Room
	Budget      core.Money
	Spent       core.Money
	CustomRoom  bool
	Info        string
	Form        validation.ExpenseForm
	Verdicts    validation.Verdicts
	Submitting  bool
	PendingRoom string
}

// Remaining is the budget minus the amount spent.
func (v View) Remaining() core.Money {
	return v.Budget.Sub(v.Spent)
}
