package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"jobboard/internal/applications/models"
	id "jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
	txcontext "jobboard/pkg/platform/tx"
)

// Postgres reads and writes companies, jobs and job applications.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) SaveCompany(ctx context.Context, c models.Company) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO companies (id, name, owner_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, owner_id = EXCLUDED.owner_id
	`, uuid.UUID(c.ID), c.Name, uuid.UUID(c.OwnerID))
	if err != nil {
		return fmt.Errorf("save company: %w", err)
	}
	return nil
}

func (s *Postgres) SaveJob(ctx context.Context, j models.Job) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO jobs (id, company_id, title) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title
	`, uuid.UUID(j.ID), uuid.UUID(j.CompanyID), j.Title)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func (s *Postgres) SaveApplication(ctx context.Context, a models.Application) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO job_applications (id, job_id, candidate_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
	`, uuid.UUID(a.ID), uuid.UUID(a.JobID), uuid.UUID(a.CandidateID), string(a.Status), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

func (s *Postgres) Resolve(ctx context.Context, appID id.ApplicationID) (*models.Context, error) {
	var (
		out                                         models.Context
		appUUID, jobUUID, candUUID, compUUID, owner uuid.UUID
		status                                      string
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT a.id, a.candidate_id, a.status, a.created_at,
		       j.id, j.title,
		       c.id, c.name, c.owner_id
		FROM job_applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.id = $1
	`, uuid.UUID(appID)).Scan(
		&appUUID, &candUUID, &status, &out.Application.CreatedAt,
		&jobUUID, &out.Job.Title,
		&compUUID, &out.Company.Name, &owner,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("resolve application: %w", err)
	}
	out.Application.ID = id.ApplicationID(appUUID)
	out.Application.JobID = id.JobID(jobUUID)
	out.Application.CandidateID = id.UserID(candUUID)
	out.Application.Status = models.ApplicationStatus(status)
	out.Job.ID = id.JobID(jobUUID)
	out.Job.CompanyID = id.CompanyID(compUUID)
	out.Company.ID = id.CompanyID(compUUID)
	out.Company.OwnerID = id.UserID(owner)
	return &out, nil
}

func (s *Postgres) FindCompany(ctx context.Context, companyID id.CompanyID) (*models.Company, error) {
	var (
		c     models.Company
		owner uuid.UUID
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT name, owner_id FROM companies WHERE id = $1`, uuid.UUID(companyID),
	).Scan(&c.Name, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	c.ID = companyID
	c.OwnerID = id.UserID(owner)
	return &c, nil
}

func (s *Postgres) ResolveJob(ctx context.Context, jobID id.JobID) (*models.JobContext, error) {
	var (
		out             models.JobContext
		compUUID, owner uuid.UUID
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT j.title, c.id, c.name, c.owner_id
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE j.id = $1
	`, uuid.UUID(jobID)).Scan(&out.Job.Title, &compUUID, &out.Company.Name, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("resolve job: %w", err)
	}
	out.Job.ID = jobID
	out.Job.CompanyID = id.CompanyID(compUUID)
	out.Company.ID = id.CompanyID(compUUID)
	out.Company.OwnerID = id.UserID(owner)
	return &out, nil
}
