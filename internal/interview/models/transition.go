package models

import (
	"strings"
	"time"

	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
)

// Action is a lifecycle operation requested against an event.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionAddNote  Action = "add_note"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionConfirm, ActionReject, ActionCancel, ActionComplete, ActionAddNote:
		return true
	}
	return false
}

// Actor is the user performing a transition.
type Actor struct {
	ID   id.UserID
	Role id.Role
}

// TransitionRequest carries the action and its payload. ExpectedVersion of
// zero skips the optimistic version check.
type TransitionRequest struct {
	Action          Action
	Reason          string
	Note            string
	Result          Result
	ExpectedVersion int64
}

// Validate checks the payload alone, before any state is consulted.
func (r TransitionRequest) Validate() error {
	fields := map[string]string{}
	switch r.Action {
	case ActionReject, ActionCancel:
		if strings.TrimSpace(r.Reason) == "" {
			fields["reason"] = "is required"
		}
	case ActionAddNote:
		if strings.TrimSpace(r.Note) == "" {
			fields["note"] = "is required"
		}
	case ActionComplete:
		if !r.Result.IsValid() {
			fields["result"] = "must be passed or failed"
		}
	case ActionConfirm:
	default:
		fields["action"] = "must be one of confirm, reject, cancel, complete, add_note"
	}
	if r.ExpectedVersion < 0 {
		fields["expected_version"] = "must not be negative"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation("invalid transition request", fields)
	}
	return nil
}

// actionRoles lists which roles may request each action at all.
var actionRoles = map[Action][]id.Role{
	ActionConfirm:  {id.RoleCandidate},
	ActionReject:   {id.RoleCandidate},
	ActionCancel:   {id.RoleCandidate, id.RoleManager, id.RoleAdmin},
	ActionComplete: {id.RoleManager, id.RoleAdmin},
	ActionAddNote:  {id.RoleCandidate, id.RoleManager, id.RoleAdmin},
}

// RoleMayRequest reports whether role is allowed to request the action.
func RoleMayRequest(action Action, role id.Role) bool {
	for _, r := range actionRoles[action] {
		if r == role {
			return true
		}
	}
	return false
}

// CanTransition runs every check for the request against the current state
// without mutating the event. Checks run in a fixed order: payload, role,
// version, then state and time.
func (e *Event) CanTransition(actor Actor, req TransitionRequest, now time.Time) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !RoleMayRequest(req.Action, actor.Role) {
		return dErrors.New(dErrors.CodeForbidden, "role "+actor.Role.String()+" cannot "+string(req.Action)+" an event")
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != e.Version {
		return dErrors.New(dErrors.CodeInvalidTransition, "event was modified by another request")
	}
	return e.checkState(actor, req.Action, now)
}

func (e *Event) checkState(actor Actor, action Action, now time.Time) error {
	switch action {
	case ActionConfirm:
		if e.Status != StatusPending {
			return invalidTransition(action, e.Status)
		}
		if !now.Before(e.StartTime) {
			return dErrors.New(dErrors.CodeInvalidTransition, "event has already started")
		}
	case ActionReject:
		if e.Status != StatusPending {
			return invalidTransition(action, e.Status)
		}
	case ActionCancel:
		if !e.Status.CanTransitionTo(StatusCancelled) {
			return invalidTransition(action, e.Status)
		}
		if actor.Role == id.RoleCandidate && e.Status != StatusPending {
			return dErrors.New(dErrors.CodeInvalidTransition, "candidates can only cancel pending events")
		}
	case ActionComplete:
		if !e.Status.CanTransitionTo(StatusCompleted) {
			return invalidTransition(action, e.Status)
		}
		if now.Before(e.EndTime) {
			return dErrors.New(dErrors.CodeInvalidTransition, "event has not ended yet")
		}
	case ActionAddNote:
		if e.Status.IsTerminal() {
			return invalidTransition(action, e.Status)
		}
	}
	return nil
}

func invalidTransition(action Action, from Status) error {
	return dErrors.New(dErrors.CodeInvalidTransition, "cannot "+string(action)+" an event that is "+string(from))
}

// ApplyTransition mutates the event. Call CanTransition first.
func (e *Event) ApplyTransition(actor Actor, req TransitionRequest, now time.Time) {
	now = now.UTC()
	switch req.Action {
	case ActionConfirm:
		e.Status = StatusConfirmed
		e.ConfirmedAt = &now
	case ActionReject, ActionCancel:
		e.Status = StatusCancelled
		e.CancelReason = strings.TrimSpace(req.Reason)
		by := actor.ID
		e.CancelledBy = &by
	case ActionComplete:
		e.Status = StatusCompleted
		e.CompletedAt = &now
		e.Result = req.Result
		if note := strings.TrimSpace(req.Note); note != "" {
			e.appendNote(actor.ID, note, now)
		}
	case ActionAddNote:
		e.appendNote(actor.ID, strings.TrimSpace(req.Note), now)
	}
	e.touch(now)
}

// Transition validates and applies in one call.
// Prefer CanTransition + ApplyTransition inside store Execute callbacks.
func (e *Event) Transition(actor Actor, req TransitionRequest, now time.Time) error {
	if err := e.CanTransition(actor, req, now); err != nil {
		return err
	}
	e.ApplyTransition(actor, req, now)
	return nil
}

// MarkReminded records that the reminder for this event went out.
func (e *Event) MarkReminded(now time.Time) {
	now = now.UTC()
	e.RemindedAt = &now
	e.touch(now)
}

// DueForReminder reports whether a reminder should be sent at now, given how
// far ahead of the start reminders go out.
func (e *Event) DueForReminder(now time.Time, lead time.Duration) bool {
	if e.RemindedAt != nil || e.Status.IsTerminal() {
		return false
	}
	return now.Before(e.StartTime) && !e.StartTime.After(now.Add(lead))
}

func (e *Event) appendNote(author id.UserID, body string, now time.Time) {
	e.Notes = append(e.Notes, Note{AuthorID: author, Body: body, CreatedAt: now})
}

func (e *Event) touch(now time.Time) {
	e.UpdatedAt = now
	e.Version++
}
