package audit

import (
	"time"

	"github.com/google/uuid"

	id "jobboard/pkg/domain"
)

// Action names an audited operation.
type Action string

const (
	ActionEventCreated      Action = "interview_event_created"
	ActionEventTransitioned Action = "interview_event_transitioned"
	ActionEventDeleted      Action = "interview_event_deleted"
	ActionEventReminded     Action = "interview_event_reminded"
	ActionAccessDenied      Action = "access_denied"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	// ActorID is nil for actions taken by background workers.
	ActorID   id.UserID
	Action    Action
	Subject   string
	Decision  string
	Reason    string
	RequestID string
}
