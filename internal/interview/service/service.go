package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	appmodels "jobboard/internal/applications/models"
	"jobboard/internal/audit"
	interviewmetrics "jobboard/internal/interview/metrics"
	"jobboard/internal/interview/models"
	"jobboard/internal/notify"
	"jobboard/internal/policy"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/sentinel"
)

// Store persists interview events. Execute must hold a per-event lock (mutex
// or FOR UPDATE) across validate and mutate.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*models.Event, error)
	ListDueForReminder(ctx context.Context, now time.Time, lead time.Duration, limit int) ([]*models.Event, error)
	Execute(ctx context.Context, eventID id.EventID, validate func(*models.Event) error, mutate func(*models.Event)) (*models.Event, error)
	Delete(ctx context.Context, eventID id.EventID) (*models.Event, error)
}

// ApplicationLookup resolves the candidate, job and company behind an application.
type ApplicationLookup interface {
	Resolve(ctx context.Context, appID id.ApplicationID) (*appmodels.Context, error)
}

// Authorizer is satisfied by *policy.Evaluator.
type Authorizer interface {
	Authorize(ctx context.Context, sub policy.Subject, ability policy.Ability, rt policy.ResourceType, resource any) error
}

// Notifier accepts notifications without blocking. The return value only
// reports whether the notification was queued.
type Notifier interface {
	Dispatch(ctx context.Context, n notify.Notification) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// StoreTx scopes a unit of work. Postgres wiring passes a tx.Runner; the
// default runs fn inline.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type inlineTx struct{}

func (inlineTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type noopNotifier struct{}

func (noopNotifier) Dispatch(context.Context, notify.Notification) bool { return false }

const (
	defaultReminderLead  = 24 * time.Hour
	reminderBatchSize    = 100
	tracerName           = "jobboard/interview"
	operationCreate      = "create"
	operationTransition  = "transition"
	operationDelete      = "delete"
	operationRemindBatch = "remind"
)

// Service orchestrates the interview event lifecycle.
type Service struct {
	events       Store
	applications ApplicationLookup
	authorizer   Authorizer
	notifier     Notifier
	audit        AuditPublisher
	tx           StoreTx
	logger       *slog.Logger
	metrics      *interviewmetrics.Metrics
	tracer       trace.Tracer
	reminderLead time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *interviewmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

// WithAuthorizer replaces the default job-board policy evaluator.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Service) {
		s.authorizer = a
	}
}

// WithStoreTx scopes create and its audit record in one unit of work. Nil
// keeps the inline default.
func WithStoreTx(tx StoreTx) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithReminderLead sets how far ahead of the start reminders go out.
func WithReminderLead(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reminderLead = d
		}
	}
}

// New constructs a Service. The store and application lookup are required.
func New(events Store, applications ApplicationLookup, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, errors.New("event store is required")
	}
	if applications == nil {
		return nil, errors.New("application lookup is required")
	}
	s := &Service{
		events:       events,
		applications: applications,
		notifier:     noopNotifier{},
		tx:           inlineTx{},
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
		reminderLead: defaultReminderLead,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authorizer == nil {
		s.authorizer = policy.NewDefault(policy.WithLogger(s.logger))
	}
	return s, nil
}

// wrapEventErr translates store facts into domain errors. Domain errors pass
// through unchanged.
func wrapEventErr(err error, action string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "interview event not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeInvalidTransition, "event was modified by another request")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "timed out while trying to "+action)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
	}
}

func subjectOf(actor models.Actor) policy.Subject {
	return policy.Subject{ID: actor.ID, Role: actor.Role}
}

// notificationFor builds the notification for a committed change.
func notificationFor(e *models.Event, kind notify.Kind, now time.Time) notify.Notification {
	n := notify.New(e.ID, kind, e.Recipients(), now)
	n.Attendees = e.Attendees
	n.StartTime = e.StartTime
	if kind == notify.KindCancelled {
		n.Reason = e.CancelReason
	}
	return n
}

func kindForStatus(s models.Status) notify.Kind {
	switch s {
	case models.StatusConfirmed:
		return notify.KindConfirmed
	case models.StatusCancelled:
		return notify.KindCancelled
	case models.StatusCompleted:
		return notify.KindCompleted
	default:
		return ""
	}
}

// emitAudit logs and swallows audit failures for changes that are already committed.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"subject", event.Subject,
			"error", err,
		)
	}
}

func eventSubject(eventID id.EventID) string {
	return "interview_event:" + eventID.String()
}
