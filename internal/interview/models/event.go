package models

import (
	"net/url"
	"slices"
	"strings"
	"time"

	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	platformstrings "jobboard/pkg/platform/strings"
)

// Event is one scheduled interaction tied to a job application.
//
// Invariants:
//   - EndTime is strictly after StartTime; both are stored in UTC
//   - Virtual events carry a MeetingLink and no Location, physical events the reverse
//   - Status only moves along the transition table (see transition.go)
//   - Notes are append-only
//   - Version increases by one on every committed mutation
type Event struct {
	ID            id.EventID       `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`

	// Denormalised from the application at creation time.
	CandidateID id.UserID    `json:"candidate_id"`
	JobID       id.JobID     `json:"job_id"`
	CompanyID   id.CompanyID `json:"company_id"`
	ManagerID   id.UserID    `json:"manager_id"`

	Type        EventType `json:"type"`
	Status      Status    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Virtual     bool      `json:"virtual"`
	Location    string    `json:"location,omitempty"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	Attendees   []string  `json:"attendees"`
	Notes       []Note    `json:"notes"`
	Result      Result    `json:"result,omitempty"`

	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledBy  *id.UserID `json:"cancelled_by,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	RemindedAt   *time.Time `json:"reminded_at,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventType classifies the interaction.
type EventType string

const (
	TypeInterview EventType = "interview"
	TypeTest      EventType = "test"
	TypeMeeting   EventType = "meeting"
	TypeOther     EventType = "other"
)

func (t EventType) IsValid() bool {
	switch t {
	case TypeInterview, TypeTest, TypeMeeting, TypeOther:
		return true
	}
	return false
}

// Status is the lifecycle state of an event.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsTerminal reports whether no further transition can leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo reports whether the state graph has an edge from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled || next == StatusCompleted
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	default:
		return false
	}
}

// Result is the outcome recorded when an event completes.
type Result string

const (
	ResultUnset  Result = ""
	ResultPassed Result = "passed"
	ResultFailed Result = "failed"
)

func (r Result) IsValid() bool {
	return r == ResultUnset || r == ResultPassed || r == ResultFailed
}

// Note is a free-text remark appended to an event.
type Note struct {
	AuthorID  id.UserID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Parties are the ids resolved from the job application when an event is created.
type Parties struct {
	ApplicationID id.ApplicationID
	CandidateID   id.UserID
	JobID         id.JobID
	CompanyID     id.CompanyID
	ManagerID     id.UserID
}

// Schedule is the caller-supplied part of a new event.
type Schedule struct {
	Type        EventType
	StartTime   time.Time
	EndTime     time.Time
	Virtual     bool
	Location    string
	MeetingLink string
	Attendees   []string
}

const maxLocationLength = 255

// NewEvent validates the schedule and builds a pending event. All field
// problems are reported together in one validation error.
func NewEvent(eventID id.EventID, parties Parties, s Schedule, now time.Time) (*Event, error) {
	fields := map[string]string{}

	if !s.Type.IsValid() {
		fields["type"] = "must be one of interview, test, meeting, other"
	}
	switch {
	case s.StartTime.IsZero():
		fields["start_time"] = "is required"
	case s.EndTime.IsZero():
		fields["end_time"] = "is required"
	case !s.EndTime.After(s.StartTime):
		fields["end_time"] = "must be after start_time"
	}

	location := strings.TrimSpace(s.Location)
	link := strings.TrimSpace(s.MeetingLink)
	if s.Virtual {
		if link == "" {
			fields["meeting_link"] = "is required for virtual events"
		} else if !isHTTPURL(link) {
			fields["meeting_link"] = "must be an absolute http or https URL"
		}
		if location != "" {
			fields["location"] = "must be empty for virtual events"
		}
	} else {
		if location == "" {
			fields["location"] = "is required for in-person events"
		} else if len(location) > maxLocationLength {
			fields["location"] = "must be 255 characters or less"
		}
		if link != "" {
			fields["meeting_link"] = "must be empty for in-person events"
		}
	}

	if parties.ApplicationID.IsNil() || parties.CandidateID.IsNil() || parties.ManagerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event parties are incomplete")
	}
	if len(fields) > 0 {
		return nil, dErrors.NewValidation("invalid event", fields)
	}

	attendees := platformstrings.DedupeAndTrimFold(s.Attendees)
	if attendees == nil {
		attendees = []string{}
	}

	now = now.UTC()
	return &Event{
		ID:            eventID,
		ApplicationID: parties.ApplicationID,
		CandidateID:   parties.CandidateID,
		JobID:         parties.JobID,
		CompanyID:     parties.CompanyID,
		ManagerID:     parties.ManagerID,
		Type:          s.Type,
		Status:        StatusPending,
		StartTime:     s.StartTime.UTC(),
		EndTime:       s.EndTime.UTC(),
		Virtual:       s.Virtual,
		Location:      location,
		MeetingLink:   link,
		Attendees:     attendees,
		Notes:         []Note{},
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// CandidateUserID is the candidate the event is for.
func (e *Event) CandidateUserID() id.UserID { return e.CandidateID }

// CompanyManagerID is the manager of the hiring company.
func (e *Event) CompanyManagerID() id.UserID { return e.ManagerID }

// Recipients are the users told about changes to the event.
func (e *Event) Recipients() []id.UserID {
	return []id.UserID{e.CandidateID, e.ManagerID}
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Attendees = slices.Clone(e.Attendees)
	c.Notes = slices.Clone(e.Notes)
	c.CancelledBy = clonePtr(e.CancelledBy)
	c.ConfirmedAt = clonePtr(e.ConfirmedAt)
	c.CompletedAt = clonePtr(e.CompletedAt)
	c.RemindedAt = clonePtr(e.RemindedAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
