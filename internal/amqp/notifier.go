package amqp

import (
	"context"

	"fliptrack/internal/core"
	"fliptrack/internal/log"
)

// Publisher sends one refresh message.
type Publisher interface {
	Publish(ctx context.Context, msg *RefreshMessage) error
}

// Notifier turns workflow events into refresh messages. Publishing is best
// effort: the expense is already saved, so failures are logged and dropped.
type Notifier struct {
	pub    Publisher
	logger *log.Logger
}

func NewNotifier(pub Publisher, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Discard()
	}
	return &Notifier{pub: pub, logger: logger.WithComponent(log.ComponentAMQP)}
}

func (n *Notifier) ExpenseAdded(ctx context.Context, sessionID string, e core.Expense) {
	n.send(ctx, NewExpenseAddedMessage(e, sessionID))
}

func (n *Notifier) ExpenseDeleted(ctx context.Context, sessionID string, projectID, expenseID int64) {
	n.send(ctx, NewExpenseDeletedMessage(projectID, expenseID, sessionID))
}

func (n *Notifier) send(ctx context.Context, msg *RefreshMessage) {
	if err := n.pub.Publish(ctx, msg); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish refresh event",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithSession(msg.SessionID).
				WithProject(msg.ProjectID).
				WithError(err).
				ToSlice()...)
	}
}
