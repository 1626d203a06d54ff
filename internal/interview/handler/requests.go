package handler

import (
	"strings"
	"time"

	"jobboard/internal/interview/models"
	"jobboard/internal/interview/service"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	platformstrings "jobboard/pkg/platform/strings"
)

const (
	maxAttendees    = 50
	maxReasonLength = 1000
	maxNoteLength   = 4000
)

// CreateEventRequest is the body of POST /applications/{applicationID}/events.
// Schedule rules (times, location versus link) are checked by the domain.
type CreateEventRequest struct {
	Type        string    `json:"type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Virtual     bool      `json:"virtual"`
	Location    string    `json:"location"`
	MeetingLink string    `json:"meeting_link"`
	Attendees   []string  `json:"attendees"`
}

// Validate implements httputil.Validatable.
func (r *CreateEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Attendees) > maxAttendees {
		return dErrors.NewValidation("invalid event", map[string]string{"attendees": "must list at most 50 addresses"})
	}
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Location = strings.TrimSpace(r.Location)
	r.MeetingLink = strings.TrimSpace(r.MeetingLink)
	r.Attendees = platformstrings.DedupeAndTrimFold(r.Attendees)
	return nil
}

func (r *CreateEventRequest) toService(appID id.ApplicationID) service.CreateEventRequest {
	return service.CreateEventRequest{
		ApplicationID: appID,
		Schedule: models.Schedule{
			Type:        models.EventType(r.Type),
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Virtual:     r.Virtual,
			Location:    r.Location,
			MeetingLink: r.MeetingLink,
			Attendees:   r.Attendees,
		},
	}
}

// TransitionRequest is the body of POST /events/{eventID}/transitions.
type TransitionRequest struct {
	Action          string `json:"action"`
	Reason          string `json:"reason"`
	Note            string `json:"note"`
	Result          string `json:"result"`
	ExpectedVersion int64  `json:"expected_version"`
}

// Validate implements httputil.Validatable. Action-specific payload rules
// live in models.TransitionRequest.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	fields := map[string]string{}
	if len(r.Reason) > maxReasonLength {
		fields["reason"] = "must be at most 1000 characters"
	}
	if len(r.Note) > maxNoteLength {
		fields["note"] = "must be at most 4000 characters"
	}
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	if r.Action == "" {
		fields["action"] = "is required"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation("invalid transition request", fields)
	}
	r.Result = strings.ToLower(strings.TrimSpace(r.Result))
	return nil
}

func (r *TransitionRequest) toModel() models.TransitionRequest {
	return models.TransitionRequest{
		Action:          models.Action(r.Action),
		Reason:          r.Reason,
		Note:            r.Note,
		Result:          models.Result(r.Result),
		ExpectedVersion: r.ExpectedVersion,
	}
}
