package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"jobboard/internal/interview/models"
	id "jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
	txcontext "jobboard/pkg/platform/tx"
)

// Postgres persists events in interview_events. Execute locks the row with
// SELECT ... FOR UPDATE and writes back only if the version is unchanged.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const eventColumns = `id, application_id, candidate_id, job_id, company_id, manager_id,
	type, status, start_time, end_time, virtual, location, meeting_link,
	attendees, notes, result, cancel_reason, cancelled_by, confirmed_at,
	completed_at, reminded_at, version, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, e *models.Event) error {
	notes, err := json.Marshal(e.Notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	_, err = txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO interview_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24)
	`,
		uuid.UUID(e.ID), uuid.UUID(e.ApplicationID), uuid.UUID(e.CandidateID),
		uuid.UUID(e.JobID), uuid.UUID(e.CompanyID), uuid.UUID(e.ManagerID),
		string(e.Type), string(e.Status), e.StartTime, e.EndTime, e.Virtual,
		e.Location, e.MeetingLink, pq.Array(e.Attendees), notes, string(e.Result),
		e.CancelReason, nullUUID(e.CancelledBy), e.ConfirmedAt, e.CompletedAt,
		e.RemindedAt, e.Version, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interview event: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM interview_events WHERE id = $1`, uuid.UUID(eventID))
	return scanEvent(row)
}

func (s *Postgres) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*models.Event, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM interview_events
		 WHERE application_id = $1
		 ORDER BY start_time, created_at`, uuid.UUID(appID))
	if err != nil {
		return nil, fmt.Errorf("list interview events: %w", err)
	}
	return collectEvents(rows)
}

func (s *Postgres) ListDueForReminder(ctx context.Context, now time.Time, lead time.Duration, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM interview_events
		 WHERE reminded_at IS NULL
		   AND status IN ('pending', 'confirmed')
		   AND start_time > $1 AND start_time <= $2
		 ORDER BY start_time, created_at
		 LIMIT $3`, now, now.Add(lead), limit)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return collectEvents(rows)
}

func (s *Postgres) Execute(ctx context.Context, eventID id.EventID, validate func(*models.Event) error, mutate func(*models.Event)) (*models.Event, error) {
	var out *models.Event
	err := txcontext.Run(ctx, s.db, func(txCtx context.Context) error {
		exec := txcontext.ExecutorFrom(txCtx, s.db)
		row := exec.QueryRowContext(txCtx,
			`SELECT `+eventColumns+` FROM interview_events WHERE id = $1 FOR UPDATE`, uuid.UUID(eventID))
		e, err := scanEvent(row)
		if err != nil {
			return err
		}
		if err := validate(e); err != nil {
			return err
		}
		loadedVersion := e.Version
		mutate(e)
		if err := s.update(txCtx, e, loadedVersion); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Postgres) update(ctx context.Context, e *models.Event, loadedVersion int64) error {
	notes, err := json.Marshal(e.Notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE interview_events SET
			status = $2, attendees = $3, notes = $4, result = $5, cancel_reason = $6,
			cancelled_by = $7, confirmed_at = $8, completed_at = $9, reminded_at = $10,
			version = $11, updated_at = $12
		WHERE id = $1 AND version = $13
	`,
		uuid.UUID(e.ID), string(e.Status), pq.Array(e.Attendees), notes, string(e.Result),
		e.CancelReason, nullUUID(e.CancelledBy), e.ConfirmedAt, e.CompletedAt,
		e.RemindedAt, e.Version, e.UpdatedAt, loadedVersion,
	)
	if err != nil {
		return fmt.Errorf("update interview event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update interview event: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`DELETE FROM interview_events WHERE id = $1 RETURNING `+eventColumns, uuid.UUID(eventID))
	return scanEvent(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		e                                                        models.Event
		eventID, appID, candidateID, jobID, companyID, managerID uuid.UUID
		eventType, status, result                                string
		attendees                                                []string
		notes                                                    []byte
		cancelledBy                                              uuid.NullUUID
		confirmedAt, completedAt, remindedAt                     sql.NullTime
	)
	err := row.Scan(
		&eventID, &appID, &candidateID, &jobID, &companyID, &managerID,
		&eventType, &status, &e.StartTime, &e.EndTime, &e.Virtual, &e.Location, &e.MeetingLink,
		pq.Array(&attendees), &notes, &result, &e.CancelReason, &cancelledBy, &confirmedAt,
		&completedAt, &remindedAt, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan interview event: %w", err)
	}
	if err := json.Unmarshal(notes, &e.Notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	e.ID = id.EventID(eventID)
	e.ApplicationID = id.ApplicationID(appID)
	e.CandidateID = id.UserID(candidateID)
	e.JobID = id.JobID(jobID)
	e.CompanyID = id.CompanyID(companyID)
	e.ManagerID = id.UserID(managerID)
	e.Type = models.EventType(eventType)
	e.Status = models.Status(status)
	e.Result = models.Result(result)
	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
	e.Attendees = attendees
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	if e.Notes == nil {
		e.Notes = []models.Note{}
	}
	if cancelledBy.Valid {
		by := id.UserID(cancelledBy.UUID)
		e.CancelledBy = &by
	}
	e.ConfirmedAt = timePtr(confirmedAt)
	e.CompletedAt = timePtr(completedAt)
	e.RemindedAt = timePtr(remindedAt)
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	defer rows.Close()
	out := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interview events: %w", err)
	}
	return out, nil
}

func nullUUID(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
