package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

// NotificationTopic carries user-facing notices published by the ledger.
const NotificationTopic = "notifications.user"

// BusNotifier delivers reporter notifications over the event bus. Delivery
// is best-effort; the caller treats errors as non-fatal.
type BusNotifier struct {
	Bus *Bus
}

func (n BusNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	return n.Bus.Publish(ctx, NotificationTopic, ports.EventEnvelope{
		EventID:      uuid.NewString(),
		EventType:    NotificationTopic,
		PartitionKey: notification.UserID,
		OccurredAt:   time.Now().UTC(),
		Data: map[string]any{
			"user_id":  notification.UserID,
			"issue_id": notification.IssueID,
			"title":    notification.Title,
			"message":  notification.Message,
		},
	})
}

var _ ports.Notifier = BusNotifier{}
