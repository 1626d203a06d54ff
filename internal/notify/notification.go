// Package notify delivers interview event notifications on a best-effort basis.
//
// Callers hand notifications to a Dispatcher, which queues them and returns
// immediately. Workers drain the queue into a Sender (log, Kafka or a Redis
// stream). Delivery failures are logged and counted but never reported back
// to the caller.
package notify

import (
	"time"

	"github.com/google/uuid"

	id "jobboard/pkg/domain"
)

// Kind names the change that triggered a notification.
type Kind string

const (
	KindScheduled Kind = "scheduled"
	KindConfirmed Kind = "confirmed"
	KindCancelled Kind = "cancelled"
	KindCompleted Kind = "completed"
	KindReminder  Kind = "reminder"
	KindDeleted   Kind = "deleted"
)

// Notification tells recipients about a change to an interview event.
type Notification struct {
	ID         uuid.UUID   `json:"id"`
	EventID    id.EventID  `json:"event_id"`
	Kind       Kind        `json:"kind"`
	Recipients []id.UserID `json:"recipients"`
	Attendees  []string    `json:"attendees,omitempty"`
	StartTime  time.Time   `json:"start_time"`
	Reason     string      `json:"reason,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// New fills in the notification id and timestamp.
func New(eventID id.EventID, kind Kind, recipients []id.UserID, now time.Time) Notification {
	return Notification{
		ID:         uuid.New(),
		EventID:    eventID,
		Kind:       kind,
		Recipients: recipients,
		OccurredAt: now.UTC(),
	}
}
