package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jobboard/internal/audit"
	"jobboard/internal/interview/models"
	"jobboard/internal/notify"
	"jobboard/internal/policy"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/requestcontext"
)

// CreateEventRequest asks for a new event on an application.
type CreateEventRequest struct {
	ApplicationID id.ApplicationID
	Schedule      models.Schedule
}

// CreateEvent schedules a pending event. Candidate, job, company and manager
// are resolved from the application and stored on the event.
func (s *Service) CreateEvent(ctx context.Context, actor models.Actor, req CreateEventRequest) (_ *models.Event, err error) {
	ctx, span := s.startSpan(ctx, "interview.CreateEvent",
		attribute.String("application.id", req.ApplicationID.String()))
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation(operationCreate, time.Now())

	app, err := s.applications.Resolve(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "job application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve job application")
	}
	if err := s.authorizer.Authorize(ctx, subjectOf(actor), policy.AbilityCreate, policy.ResourceEvent, app); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	event, err := models.NewEvent(id.EventID(uuid.New()), models.Parties{
		ApplicationID: app.Application.ID,
		CandidateID:   app.Application.CandidateID,
		JobID:         app.Job.ID,
		CompanyID:     app.Company.ID,
		ManagerID:     app.Company.OwnerID,
	}, req.Schedule, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, event); err != nil {
			return wrapEventErr(err, "create interview event")
		}
		if s.audit == nil {
			return nil
		}
		if err := s.audit.Emit(txCtx, audit.Event{
			ActorID:  actor.ID,
			Action:   audit.ActionEventCreated,
			Subject:  eventSubject(event.ID),
			Decision: string(event.Status),
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated(string(event.Type))
	s.logger.InfoContext(ctx, "interview event created",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", event.ID.String(),
		"application_id", event.ApplicationID.String(),
		"start_time", event.StartTime,
	)
	s.notifier.Dispatch(ctx, notificationFor(event, notify.KindScheduled, now))
	return event, nil
}

// GetEvent returns an event the actor may view.
func (s *Service) GetEvent(ctx context.Context, actor models.Actor, eventID id.EventID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err, "load interview event")
	}
	if err := s.authorizer.Authorize(ctx, subjectOf(actor), policy.AbilityView, policy.ResourceEvent, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListByApplication returns the application's events ordered by start time.
func (s *Service) ListByApplication(ctx context.Context, actor models.Actor, appID id.ApplicationID) ([]*models.Event, error) {
	app, err := s.applications.Resolve(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "job application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve job application")
	}
	if err := s.authorizer.Authorize(ctx, subjectOf(actor), policy.AbilityViewAny, policy.ResourceEvent, app); err != nil {
		return nil, err
	}
	events, err := s.events.ListByApplication(ctx, appID)
	if err != nil {
		return nil, wrapEventErr(err, "list interview events")
	}
	return events, nil
}

// abilityFor maps a lifecycle action to the policy ability that guards it.
func abilityFor(action models.Action) policy.Ability {
	switch action {
	case models.ActionConfirm:
		return policy.AbilityConfirm
	case models.ActionReject, models.ActionCancel:
		return policy.AbilityCancel
	case models.ActionComplete:
		return policy.AbilityComplete
	default:
		return policy.AbilityAddNote
	}
}

// Transition applies a lifecycle action atomically. Checks run in order:
// payload, actor, expected version, state and time. Any failure leaves the
// event untouched. Status changes notify the candidate and the manager after
// the write commits.
//
// Uses the Execute callback pattern for atomic validate-then-mutate.
func (s *Service) Transition(ctx context.Context, actor models.Actor, eventID id.EventID, req models.TransitionRequest) (_ *models.Event, err error) {
	ctx, span := s.startSpan(ctx, "interview.Transition",
		attribute.String("event.id", eventID.String()),
		attribute.String("event.action", string(req.Action)))
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation(operationTransition, time.Now())

	if err := req.Validate(); err != nil {
		s.metrics.IncrementTransition(string(req.Action), outcomeOf(err))
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var from models.Status
	event, err := s.events.Execute(ctx, eventID,
		func(e *models.Event) error {
			if err := s.authorizer.Authorize(ctx, subjectOf(actor), abilityFor(req.Action), policy.ResourceEvent, e); err != nil {
				return err
			}
			from = e.Status
			return e.CanTransition(actor, req, now)
		},
		func(e *models.Event) {
			e.ApplyTransition(actor, req, now)
		},
	)
	if err != nil {
		err = wrapEventErr(err, "transition interview event")
		s.metrics.IncrementTransition(string(req.Action), outcomeOf(err))
		s.logger.InfoContext(ctx, "interview transition rejected",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", eventID.String(),
			"action", string(req.Action),
			"error", err,
		)
		return nil, err
	}

	s.metrics.IncrementTransition(string(req.Action), "ok")
	s.emitAudit(ctx, audit.Event{
		ActorID:  actor.ID,
		Action:   audit.ActionEventTransitioned,
		Subject:  eventSubject(event.ID),
		Decision: string(req.Action),
		Reason:   event.CancelReason,
	})
	s.logger.InfoContext(ctx, "interview event transitioned",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", event.ID.String(),
		"action", string(req.Action),
		"from", string(from),
		"to", string(event.Status),
		"version", event.Version,
	)
	if event.Status != from {
		s.notifier.Dispatch(ctx, notificationFor(event, kindForStatus(event.Status), now))
	}
	return event, nil
}

// DeleteEvent removes an event regardless of its status.
func (s *Service) DeleteEvent(ctx context.Context, actor models.Actor, eventID id.EventID) (err error) {
	ctx, span := s.startSpan(ctx, "interview.DeleteEvent",
		attribute.String("event.id", eventID.String()))
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation(operationDelete, time.Now())

	existing, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return wrapEventErr(err, "load interview event")
	}
	if err := s.authorizer.Authorize(ctx, subjectOf(actor), policy.AbilityDelete, policy.ResourceEvent, existing); err != nil {
		return err
	}

	removed, err := s.events.Delete(ctx, eventID)
	if err != nil {
		return wrapEventErr(err, "delete interview event")
	}

	s.metrics.IncrementDeleted()
	s.emitAudit(ctx, audit.Event{
		ActorID:  actor.ID,
		Action:   audit.ActionEventDeleted,
		Subject:  eventSubject(eventID),
		Decision: string(removed.Status),
	})
	s.logger.InfoContext(ctx, "interview event deleted",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", eventID.String(),
		"status", string(removed.Status),
	)
	s.notifier.Dispatch(ctx, notificationFor(removed, notify.KindDeleted, requestcontext.Now(ctx)))
	return nil
}

func outcomeOf(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation:
		return "validation"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeInvalidTransition:
		return "invalid"
	case dErrors.CodeNotFound:
		return "not_found"
	default:
		return "error"
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
