package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	appmodels "jobboard/internal/applications/models"
	appstore "jobboard/internal/applications/store"
	interviewhandler "jobboard/internal/interview/handler"
	interviewmodels "jobboard/internal/interview/models"
	interviewservice "jobboard/internal/interview/service"
	interviewstore "jobboard/internal/interview/store"
	jwttoken "jobboard/internal/jwt_token"
	"jobboard/internal/platform/metrics"
	"jobboard/internal/policy"
	"jobboard/internal/ratelimit"
	ratelimitstore "jobboard/internal/ratelimit/store"
	usermodels "jobboard/internal/users/models"
	userstore "jobboard/internal/users/store"
	id "jobboard/pkg/domain"
	"jobboard/pkg/testutil"
)

// =============================================================================
// Router Test Suite
// =============================================================================
// Justification: the router is where authentication, account status and the
// authorize endpoint meet. Tests go through real tokens and in-memory stores.

type RouterSuite struct {
	suite.Suite
	router    http.Handler
	jwt       *jwttoken.JWTService
	manager   *usermodels.User
	candidate *usermodels.User
	inactive  *usermodels.User
	company   appmodels.Company
	event     *interviewmodels.Event
	storeErr  error
	cfg       Config
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	userStore := userstore.NewInMemory()
	s.manager = s.saveUser(userStore, "manager@acme.test", id.RoleManager, true)
	s.candidate = s.saveUser(userStore, "cand@mail.test", id.RoleCandidate, true)
	s.inactive = s.saveUser(userStore, "gone@acme.test", id.RoleAdmin, false)

	apps := appstore.NewInMemory()
	s.company = appmodels.Company{ID: id.CompanyID(uuid.New()), Name: "Acme", OwnerID: s.manager.ID}
	job := appmodels.Job{ID: id.JobID(uuid.New()), CompanyID: s.company.ID, Title: "SRE"}
	app := appmodels.Application{ID: id.ApplicationID(uuid.New()), JobID: job.ID, CandidateID: s.candidate.ID}
	s.Require().NoError(apps.SaveCompany(ctx, s.company))
	s.Require().NoError(apps.SaveJob(ctx, job))
	s.Require().NoError(apps.SaveApplication(ctx, app))

	events := interviewstore.NewInMemory()
	start := time.Now().Add(48 * time.Hour).UTC()
	event, err := interviewmodels.NewEvent(id.EventID(uuid.New()), interviewmodels.Parties{
		ApplicationID: app.ID,
		CandidateID:   s.candidate.ID,
		JobID:         job.ID,
		CompanyID:     s.company.ID,
		ManagerID:     s.manager.ID,
	}, interviewmodels.Schedule{
		Type:      interviewmodels.TypeInterview,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Location:  "HQ",
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(events.Create(ctx, event))
	s.event = event

	evaluator := policy.NewDefault(policy.WithLogger(logger))
	svc, err := interviewservice.New(events, apps,
		interviewservice.WithLogger(logger),
		interviewservice.WithAuthorizer(evaluator),
	)
	s.Require().NoError(err)

	s.jwt = jwttoken.NewJWTService("test-signing-key", "jobboard-test")
	s.cfg = Config{
		Logger:    logger,
		Metrics:   metrics.NewWithRegistry(reg),
		Gatherer:  reg,
		Validator: jwttoken.NewAdapter(s.jwt),
		Users:     userStore,
		Authorize: NewAuthorizeHandler(evaluator, userStore, apps, events, logger),
		Modules:   []Registrar{interviewhandler.New(svc, logger)},
		Checks: map[string]HealthCheck{
			"store": func(context.Context) error { return s.storeErr },
		},
	}
	s.router = NewRouter(s.cfg)
}

func (s *RouterSuite) saveUser(store *userstore.InMemory, email string, role id.Role, active bool) *usermodels.User {
	u := &usermodels.User{
		ID:        id.UserID(uuid.New()),
		Name:      email,
		Email:     email,
		Role:      role,
		IsActive:  active,
		CreatedAt: time.Now(),
	}
	s.Require().NoError(store.Save(context.Background(), u))
	return u
}

func (s *RouterSuite) bearer(req *http.Request, u *usermodels.User, claimed id.Role) *http.Request {
	token, err := s.jwt.GenerateAccessToken(u.ID, claimed, time.Hour)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *RouterSuite) authorize(u *usermodels.User, body map[string]string) (int, bool) {
	req := s.bearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/authorize", body), u, u.Role)
	rr := testutil.DoRequest(s.router, req)
	if rr.Code != http.StatusOK {
		return rr.Code, false
	}
	return rr.Code, testutil.UnmarshalResponse[AuthorizeResponse](s.T(), rr).Allowed
}

func (s *RouterSuite) TestPublicEndpoints() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	s.Equal(http.StatusOK, rr.Code)
	s.NotEmpty(rr.Header().Get("X-Request-ID"))

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	s.Equal(http.StatusOK, rr.Code)
	s.True(strings.Contains(rr.Body.String(), "jobboard_http_requests_total"))

	s.storeErr = errors.New("connection refused")
	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	s.Equal(http.StatusServiceUnavailable, rr.Code)
	s.Contains(rr.Body.String(), `"store":"unavailable"`)
}

func (s *RouterSuite) TestAuthentication() {
	s.Run("missing token is unauthorized", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/authorize",
			map[string]string{"ability": "manager", "resource_type": "gate"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("inactive user is forbidden", func() {
		code, _ := s.authorize(s.inactive, map[string]string{"ability": "admin", "resource_type": "gate"})
		s.Equal(http.StatusForbidden, code)
	})

	s.Run("stored role wins over the token claim", func() {
		req := s.bearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/authorize",
			map[string]string{"ability": "admin", "resource_type": "gate"}), s.manager, id.RoleAdmin)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)
		s.False(testutil.UnmarshalResponse[AuthorizeResponse](s.T(), rr).Allowed)
	})
}

func (s *RouterSuite) TestAuthorize() {
	cases := []struct {
		name    string
		user    func() *usermodels.User
		body    func() map[string]string
		allowed bool
	}{
		{
			name: "manager passes the manager gate",
			user: func() *usermodels.User { return s.manager },
			body: func() map[string]string {
				return map[string]string{"ability": "manager", "resource_type": "gate"}
			},
			allowed: true,
		},
		{
			name: "candidate fails the admin gate",
			user: func() *usermodels.User { return s.candidate },
			body: func() map[string]string {
				return map[string]string{"ability": "admin", "resource_type": "gate"}
			},
		},
		{
			name: "owner may update the company",
			user: func() *usermodels.User { return s.manager },
			body: func() map[string]string {
				return map[string]string{"ability": "update", "resource_type": "company", "resource_id": s.company.ID.String()}
			},
			allowed: true,
		},
		{
			name: "candidate may confirm their own event",
			user: func() *usermodels.User { return s.candidate },
			body: func() map[string]string {
				return map[string]string{"ability": "confirm", "resource_type": "event", "resource_id": s.event.ID.String()}
			},
			allowed: true,
		},
		{
			name: "manager may not confirm on behalf of the candidate",
			user: func() *usermodels.User { return s.manager },
			body: func() map[string]string {
				return map[string]string{"ability": "confirm", "resource_type": "event", "resource_id": s.event.ID.String()}
			},
		},
		{
			name: "user may view themselves",
			user: func() *usermodels.User { return s.candidate },
			body: func() map[string]string {
				return map[string]string{"ability": "view", "resource_type": "user", "resource_id": s.candidate.ID.String()}
			},
			allowed: true,
		},
		{
			name: "unknown ability is denied",
			user: func() *usermodels.User { return s.manager },
			body: func() map[string]string {
				return map[string]string{"ability": "publish", "resource_type": "company", "resource_id": s.company.ID.String()}
			},
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			code, allowed := s.authorize(tc.user(), tc.body())
			s.Require().Equal(http.StatusOK, code)
			s.Equal(tc.allowed, allowed)
		})
	}
}

func (s *RouterSuite) TestAuthorizeErrors() {
	s.Run("unknown resource type is a validation error", func() {
		code, _ := s.authorize(s.manager, map[string]string{"ability": "view", "resource_type": "invoice"})
		s.Equal(http.StatusUnprocessableEntity, code)
	})

	s.Run("missing resource is not found", func() {
		code, _ := s.authorize(s.manager, map[string]string{
			"ability": "view", "resource_type": "event", "resource_id": uuid.NewString(),
		})
		s.Equal(http.StatusNotFound, code)
	})

	s.Run("malformed resource id is a bad request", func() {
		code, _ := s.authorize(s.manager, map[string]string{
			"ability": "view", "resource_type": "job", "resource_id": "nope",
		})
		s.Equal(http.StatusBadRequest, code)
	})
}

func (s *RouterSuite) TestInterviewRoutesAreMounted() {
	req := s.bearer(testutil.NewRequest(s.T(), http.MethodGet, "/events/"+s.event.ID.String()), s.candidate, id.RoleCandidate)
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	got := testutil.UnmarshalResponse[interviewhandler.EventResponse](s.T(), rr)
	s.Equal(s.event.ID, got.ID)
	s.Greater(got.SecondsUntilStart, int64(0))
}

func (s *RouterSuite) TestRateLimitAppliesPerUser() {
	cfg := s.cfg
	limiter := ratelimit.New(ratelimitstore.NewInMemory(), ratelimit.Limits{Reads: 1, Writes: 1, Window: time.Minute}, cfg.Logger)
	cfg.RateLimit = limiter.PerUser
	router := NewRouter(cfg)

	get := func(u *usermodels.User) int {
		req := s.bearer(testutil.NewRequest(s.T(), http.MethodGet, "/events/"+s.event.ID.String()), u, u.Role)
		return testutil.DoRequest(router, req).Code
	}

	s.Equal(http.StatusOK, get(s.candidate))
	s.Equal(http.StatusTooManyRequests, get(s.candidate))
	s.Equal(http.StatusOK, get(s.manager))

	s.Run("inactive users are rejected before counting", func() {
		s.Equal(http.StatusForbidden, get(s.inactive))
		s.Equal(http.StatusForbidden, get(s.inactive))
	})
}
