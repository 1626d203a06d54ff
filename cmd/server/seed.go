package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appmodels "jobboard/internal/applications/models"
	jwttoken "jobboard/internal/jwt_token"
	usermodels "jobboard/internal/users/models"
	id "jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

const demoTokenTTL = 24 * time.Hour

type userSaver interface {
	Save(ctx context.Context, user *usermodels.User) error
}

type applicationSaver interface {
	SaveCompany(ctx context.Context, c appmodels.Company) error
	SaveJob(ctx context.Context, j appmodels.Job) error
	SaveApplication(ctx context.Context, a appmodels.Application) error
}

// Fixed ids so repeated seeding against Postgres is idempotent.
var (
	demoAdminID       = id.UserID(uuid.MustParse("00000000-0000-4000-8000-000000000001"))
	demoManagerID     = id.UserID(uuid.MustParse("00000000-0000-4000-8000-000000000002"))
	demoCandidateID   = id.UserID(uuid.MustParse("00000000-0000-4000-8000-000000000003"))
	demoCompanyID     = id.CompanyID(uuid.MustParse("00000000-0000-4000-8000-000000000010"))
	demoJobID         = id.JobID(uuid.MustParse("00000000-0000-4000-8000-000000000020"))
	demoApplicationID = id.ApplicationID(uuid.MustParse("00000000-0000-4000-8000-000000000030"))
)

// seedDemo loads one admin, one manager with a company and job, and one
// candidate who has applied. A bearer token per user is logged so the API can
// be tried straight away.
func seedDemo(ctx context.Context, users userSaver, apps applicationSaver, jwt *jwttoken.JWTService, logger *slog.Logger) error {
	now := time.Now().UTC()
	accounts := []*usermodels.User{
		{ID: demoAdminID, Name: "Ada Admin", Email: "admin@jobboard.test", Role: id.RoleAdmin, IsActive: true, CreatedAt: now},
		{ID: demoManagerID, Name: "Max Manager", Email: "manager@jobboard.test", Role: id.RoleManager, IsActive: true, CreatedAt: now},
		{ID: demoCandidateID, Name: "Cam Candidate", Email: "candidate@jobboard.test", Role: id.RoleCandidate, IsActive: true, CreatedAt: now},
	}
	for _, u := range accounts {
		if err := users.Save(ctx, u); err != nil && !errors.Is(err, sentinel.ErrConflict) {
			return fmt.Errorf("save user %s: %w", u.Email, err)
		}
	}

	if err := apps.SaveCompany(ctx, appmodels.Company{ID: demoCompanyID, Name: "Acme Corp", OwnerID: demoManagerID}); err != nil {
		return fmt.Errorf("save company: %w", err)
	}
	if err := apps.SaveJob(ctx, appmodels.Job{ID: demoJobID, CompanyID: demoCompanyID, Title: "Backend Engineer"}); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	if err := apps.SaveApplication(ctx, appmodels.Application{
		ID:          demoApplicationID,
		JobID:       demoJobID,
		CandidateID: demoCandidateID,
		Status:      appmodels.ApplicationInReview,
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("save application: %w", err)
	}

	for _, u := range accounts {
		token, err := jwt.GenerateAccessToken(u.ID, u.Role, demoTokenTTL)
		if err != nil {
			return fmt.Errorf("issue demo token: %w", err)
		}
		logger.Info("demo user ready",
			"email", u.Email,
			"role", u.Role.String(),
			"user_id", u.ID.String(),
			"token", token,
		)
	}
	logger.Info("demo application ready", "application_id", demoApplicationID.String())
	return nil
}
