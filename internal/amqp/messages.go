package amqp

import (
	"time"

	"github.com/goccy/go-json"

	"fliptrack/internal/core"
)

// Event names carried in RefreshMessage.Event.
const (
	EventExpenseAdded   = "expense.added"
	EventExpenseDeleted = "expense.deleted"
)

// RefreshMessage tells listeners that a project's listings changed. It is a
// signal, not a record: consumers re-read the backend for the data.
type RefreshMessage struct {
	Event     string    `json:"event"`
	ProjectID int64     `json:"project_id"`
	ExpenseID int64     `json:"expense_id,omitempty"`
	RoomName  string    `json:"room_name,omitempty"`
	Category  string    `json:"category,omitempty"`
	Cost      string    `json:"cost,omitempty"`
	Date      string    `json:"date,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseAddedMessage describes an expense the backend accepted.
func NewExpenseAddedMessage(e core.Expense, sessionID string) *RefreshMessage {
	return &RefreshMessage{
		Event:     EventExpenseAdded,
		ProjectID: e.ProjectID,
		ExpenseID: e.ID,
		RoomName:  e.RoomName,
		Category:  e.Category.String(),
		Cost:      e.Cost.StringFixed(2),
		Date:      e.Date.String(),
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

// NewExpenseDeletedMessage describes a deleted expense.
func NewExpenseDeletedMessage(projectID, expenseID int64, sessionID string) *RefreshMessage {
	return &RefreshMessage{
		Event:     EventExpenseDeleted,
		ProjectID: projectID,
		ExpenseID: expenseID,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON decodes a message body.
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
