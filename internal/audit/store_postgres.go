package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "jobboard/pkg/domain"
	txcontext "jobboard/pkg/platform/tx"
)

// PostgresStore writes audit rows to audit_events.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	var actor uuid.NullUUID
	if !event.ActorID.IsNil() {
		actor = uuid.NullUUID{UUID: uuid.UUID(event.ActorID), Valid: true}
	}
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (id, occurred_at, actor_id, action, subject, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, event.ID, event.Timestamp, actor, string(event.Action), event.Subject, event.Decision, event.Reason, event.RequestID)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, occurred_at, actor_id, action, subject, decision, reason, request_id
		FROM audit_events WHERE subject = $1 ORDER BY occurred_at
	`, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var (
			e      Event
			actor  uuid.NullUUID
			action string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &actor, &action, &e.Subject, &e.Decision, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if actor.Valid {
			e.ActorID = id.UserID(actor.UUID)
		}
		e.Action = Action(action)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}
