// Package postgres opens the shared database/sql pool backed by the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the tables used by the Postgres stores. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL CHECK (role IN ('admin', 'manager', 'candidate')),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		title TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS job_applications (
		id UUID PRIMARY KEY,
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		candidate_id UUID NOT NULL REFERENCES users(id),
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS interview_events (
		id UUID PRIMARY KEY,
		application_id UUID NOT NULL REFERENCES job_applications(id) ON DELETE CASCADE,
		candidate_id UUID NOT NULL,
		job_id UUID NOT NULL,
		company_id UUID NOT NULL,
		manager_id UUID NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		virtual BOOLEAN NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		meeting_link TEXT NOT NULL DEFAULT '',
		attendees TEXT[] NOT NULL DEFAULT '{}',
		notes JSONB NOT NULL DEFAULT '[]',
		result TEXT NOT NULL DEFAULT '',
		cancel_reason TEXT NOT NULL DEFAULT '',
		cancelled_by UUID,
		confirmed_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		reminded_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS interview_events_application_idx ON interview_events (application_id)`,
	`CREATE INDEX IF NOT EXISTS interview_events_reminder_idx ON interview_events (start_time) WHERE reminded_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id UUID PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL,
		actor_id UUID,
		action TEXT NOT NULL,
		subject TEXT NOT NULL,
		decision TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT ''
	)`,
}
