//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	appmodels "jobboard/internal/applications/models"
	appstore "jobboard/internal/applications/store"
	"jobboard/internal/interview/models"
	"jobboard/internal/interview/store"
	usermodels "jobboard/internal/users/models"
	userstore "jobboard/internal/users/store"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	parties  models.Parties
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "interview_events", "job_applications", "jobs", "companies", "users"))

	users := userstore.NewPostgres(s.postgres.DB)
	apps := appstore.NewPostgres(s.postgres.DB)
	manager := &usermodels.User{ID: id.UserID(uuid.New()), Name: "Mia", Email: "mia@acme.test", Role: id.RoleManager, IsActive: true, CreatedAt: time.Now()}
	candidate := &usermodels.User{ID: id.UserID(uuid.New()), Name: "Cal", Email: "cal@mail.test", Role: id.RoleCandidate, IsActive: true, CreatedAt: time.Now()}
	s.Require().NoError(users.Save(ctx, manager))
	s.Require().NoError(users.Save(ctx, candidate))

	company := appmodels.Company{ID: id.CompanyID(uuid.New()), Name: "Acme", OwnerID: manager.ID}
	job := appmodels.Job{ID: id.JobID(uuid.New()), CompanyID: company.ID, Title: "SRE"}
	app := appmodels.Application{ID: id.ApplicationID(uuid.New()), JobID: job.ID, CandidateID: candidate.ID, Status: appmodels.ApplicationInterviewing, CreatedAt: time.Now()}
	s.Require().NoError(apps.SaveCompany(ctx, company))
	s.Require().NoError(apps.SaveJob(ctx, job))
	s.Require().NoError(apps.SaveApplication(ctx, app))

	s.parties = models.Parties{
		ApplicationID: app.ID,
		CandidateID:   candidate.ID,
		JobID:         job.ID,
		CompanyID:     company.ID,
		ManagerID:     manager.ID,
	}
}

func (s *PostgresStoreSuite) newEvent(start time.Time) *models.Event {
	e, err := models.NewEvent(id.EventID(uuid.New()), s.parties, models.Schedule{
		Type:        models.TypeInterview,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Virtual:     true,
		MeetingLink: "https://meet.example.com/room",
		Attendees:   []string{"mia@acme.test", "cal@mail.test"},
	}, time.Now())
	s.Require().NoError(err)
	return e
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	e := s.newEvent(time.Now().Add(48 * time.Hour).Truncate(time.Second))
	s.Require().NoError(s.store.Create(ctx, e))

	found, err := s.store.FindByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.Attendees, found.Attendees)
	s.Equal(e.MeetingLink, found.MeetingLink)
	s.True(e.StartTime.Equal(found.StartTime))
	s.Empty(found.Notes)

	list, err := s.store.ListByApplication(ctx, s.parties.ApplicationID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresStoreSuite) TestExecutePersistsNotes() {
	ctx := context.Background()
	e := s.newEvent(time.Now().Add(48 * time.Hour))
	s.Require().NoError(s.store.Create(ctx, e))

	actor := models.Actor{ID: s.parties.ManagerID, Role: id.RoleManager}
	req := models.TransitionRequest{Action: models.ActionAddNote, Note: "bring laptop"}
	now := time.Now()
	updated, err := s.store.Execute(ctx, e.ID,
		func(ev *models.Event) error { return ev.CanTransition(actor, req, now) },
		func(ev *models.Event) { ev.ApplyTransition(actor, req, now) },
	)
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)

	found, err := s.store.FindByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Require().Len(found.Notes, 1)
	s.Equal("bring laptop", found.Notes[0].Body)
	s.Equal(s.parties.ManagerID, found.Notes[0].AuthorID)
}

func (s *PostgresStoreSuite) TestConcurrentTransitionsHaveOneWinner() {
	ctx := context.Background()
	e := s.newEvent(time.Now().Add(48 * time.Hour))
	s.Require().NoError(s.store.Create(ctx, e))

	candidate := models.Actor{ID: s.parties.CandidateID, Role: id.RoleCandidate}
	manager := models.Actor{ID: s.parties.ManagerID, Role: id.RoleManager}
	confirm := models.TransitionRequest{Action: models.ActionConfirm, ExpectedVersion: 1}
	cancel := models.TransitionRequest{Action: models.ActionCancel, Reason: "filled", ExpectedVersion: 1}

	var (
		wg                   sync.WaitGroup
		successes, conflicts atomic.Int32
	)
	run := func(actor models.Actor, req models.TransitionRequest) {
		defer wg.Done()
		now := time.Now()
		_, err := s.store.Execute(ctx, e.ID,
			func(ev *models.Event) error { return ev.CanTransition(actor, req, now) },
			func(ev *models.Event) { ev.ApplyTransition(actor, req, now) },
		)
		if err == nil {
			successes.Add(1)
		} else if dErrors.HasCode(err, dErrors.CodeInvalidTransition) {
			conflicts.Add(1)
		}
	}
	wg.Add(2)
	go run(candidate, confirm)
	go run(manager, cancel)
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestDueReminderAndDelete() {
	ctx := context.Background()
	soon := s.newEvent(time.Now().Add(2 * time.Hour))
	far := s.newEvent(time.Now().Add(96 * time.Hour))
	s.Require().NoError(s.store.Create(ctx, soon))
	s.Require().NoError(s.store.Create(ctx, far))

	due, err := s.store.ListDueForReminder(ctx, time.Now(), 24*time.Hour, 10)
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Equal(soon.ID, due[0].ID)

	removed, err := s.store.Delete(ctx, soon.ID)
	s.Require().NoError(err)
	s.Equal(soon.ID, removed.ID)
	_, err = s.store.FindByID(ctx, soon.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
