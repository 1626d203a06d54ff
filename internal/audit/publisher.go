package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"jobboard/pkg/requestcontext"
)

// Store persists audit events. Postgres stores write through the transaction
// carried in ctx when there is one.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger}
}

// Emit fills id, timestamp and request id from ctx when unset, logs the event
// and appends it to the store.
func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}
	p.logger.InfoContext(ctx, string(base.Action),
		"log_type", "audit",
		"request_id", base.RequestID,
		"actor_id", base.ActorID.String(),
		"subject", base.Subject,
		"decision", base.Decision,
	)
	return p.store.Append(ctx, base)
}

func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
