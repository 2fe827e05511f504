// Package notify emits notification events as side effects of entity
// mutations. Emission is fire-and-forget: a publish failure is logged and
// counted but never aborts or rolls back the mutation that triggered it.
package notify

import (
	"context"

	"go.uber.org/zap"

	"projecttracker/pkg/metrics"
	"projecttracker/pkg/mq"
)

// Event is the payload published once per affected recipient.
type Event struct {
	EventType string `json:"event_type"`
	UserID    int    `json:"user_id"`
	ProjectID *int   `json:"project_id"`
	Message   string `json:"message"`
}

// Dispatcher publishes a single event. Implementations may block on I/O.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
}

// AMQPDispatcher publishes events to the topic exchange with the event
// type as routing key.
type AMQPDispatcher struct {
	publisher *mq.Publisher
}

func NewAMQPDispatcher(publisher *mq.Publisher) *AMQPDispatcher {
	return &AMQPDispatcher{publisher: publisher}
}

func (d *AMQPDispatcher) Publish(ctx context.Context, event Event) error {
	return d.publisher.Publish(ctx, event.EventType, event)
}

// Notifier fans an event out to a set of recipients through a Dispatcher.
type Notifier struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewNotifier(dispatcher Dispatcher, logger *zap.Logger) *Notifier {
	return &Notifier{dispatcher: dispatcher, logger: logger}
}

// Notify publishes one event per distinct recipient. Failures are logged
// and swallowed; callers never see them.
func (n *Notifier) Notify(ctx context.Context, eventType string, projectID int, message string, recipientIDs ...int) {
	if n == nil || n.dispatcher == nil {
		return
	}

	var pid *int
	if projectID != 0 {
		pid = &projectID
	}

	seen := make(map[int]bool, len(recipientIDs))
	for _, userID := range recipientIDs {
		if userID == 0 || seen[userID] {
			continue
		}
		seen[userID] = true

		event := Event{
			EventType: eventType,
			UserID:    userID,
			ProjectID: pid,
			Message:   message,
		}
		if err := n.dispatcher.Publish(ctx, event); err != nil {
			n.logger.Warn("Failed to publish notification event",
				zap.String("event_type", eventType),
				zap.Int("user_id", userID),
				zap.Int("project_id", projectID),
				zap.Error(err),
			)
			metrics.IncrementNotificationPublish(eventType, "failed")
			continue
		}
		metrics.IncrementNotificationPublish(eventType, "success")
	}
}
