package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	appmodels "jobboard/internal/applications/models"
	interviewmodels "jobboard/internal/interview/models"
	"jobboard/internal/policy"
	usermodels "jobboard/internal/users/models"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/requestcontext"
)

// Lookups the authorize endpoint needs to load a resource by id.
type (
	UserFinder interface {
		FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	}
	ApplicationFinder interface {
		FindCompany(ctx context.Context, companyID id.CompanyID) (*appmodels.Company, error)
		ResolveJob(ctx context.Context, jobID id.JobID) (*appmodels.JobContext, error)
		Resolve(ctx context.Context, appID id.ApplicationID) (*appmodels.Context, error)
	}
	EventFinder interface {
		FindByID(ctx context.Context, eventID id.EventID) (*interviewmodels.Event, error)
	}
)

// Evaluator is satisfied by *policy.Evaluator.
type Evaluator interface {
	Evaluate(ctx context.Context, sub policy.Subject, ability policy.Ability, rt policy.ResourceType, resource any) bool
}

// AuthorizeRequest is the body of POST /authorize. ResourceID may be empty for
// abilities that do not target one resource (viewAny, create, role gates).
type AuthorizeRequest struct {
	Ability      string `json:"ability"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
}

func (r *AuthorizeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Ability = strings.TrimSpace(r.Ability)
	r.ResourceType = strings.ToLower(strings.TrimSpace(r.ResourceType))
	r.ResourceID = strings.TrimSpace(r.ResourceID)

	fields := map[string]string{}
	if r.Ability == "" {
		fields["ability"] = "is required"
	}
	switch policy.ResourceType(r.ResourceType) {
	case policy.ResourceUser, policy.ResourceCompany, policy.ResourceJob,
		policy.ResourceApplication, policy.ResourceEvent, policy.ResourceGate:
	case "":
		fields["resource_type"] = "is required"
	default:
		fields["resource_type"] = "must be one of user, company, job, application, event, gate"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation("invalid authorize request", fields)
	}
	return nil
}

type AuthorizeResponse struct {
	Allowed bool `json:"allowed"`
}

// AuthorizeHandler answers "may the caller do this?" for front ends that hide
// or show actions.
type AuthorizeHandler struct {
	evaluator    Evaluator
	users        UserFinder
	applications ApplicationFinder
	events       EventFinder
	logger       *slog.Logger
}

func NewAuthorizeHandler(evaluator Evaluator, users UserFinder, applications ApplicationFinder, events EventFinder, logger *slog.Logger) *AuthorizeHandler {
	return &AuthorizeHandler{
		evaluator:    evaluator,
		users:        users,
		applications: applications,
		events:       events,
		logger:       logger,
	}
}

// HandleAuthorize handles POST /authorize.
func (h *AuthorizeHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AuthorizeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rt := policy.ResourceType(req.ResourceType)

	resource, err := h.load(ctx, rt, req.ResourceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, string(rt)+" not found")
		}
		httputil.WriteError(w, err)
		return
	}

	sub := policy.Subject{ID: requestcontext.UserID(ctx), Role: requestcontext.Role(ctx)}
	allowed := h.evaluator.Evaluate(ctx, sub, policy.Ability(req.Ability), rt, resource)
	httputil.WriteJSON(w, http.StatusOK, AuthorizeResponse{Allowed: allowed})
}

// load fetches the resource the policy will inspect. Store errors other than
// sentinel.ErrNotFound come back wrapped as internal errors.
func (h *AuthorizeHandler) load(ctx context.Context, rt policy.ResourceType, rawID string) (any, error) {
	if rawID == "" || rt == policy.ResourceGate {
		return nil, nil
	}
	var (
		resource any
		err      error
	)
	switch rt {
	case policy.ResourceUser:
		var userID id.UserID
		if userID, err = id.ParseUserID(rawID); err != nil {
			return nil, err
		}
		var u *usermodels.User
		if u, err = h.users.FindByID(ctx, userID); err == nil {
			resource = policy.UserRef(u.ID)
		}
	case policy.ResourceCompany:
		var companyID id.CompanyID
		if companyID, err = id.ParseCompanyID(rawID); err != nil {
			return nil, err
		}
		resource, err = h.applications.FindCompany(ctx, companyID)
	case policy.ResourceJob:
		var jobID id.JobID
		if jobID, err = id.ParseJobID(rawID); err != nil {
			return nil, err
		}
		resource, err = h.applications.ResolveJob(ctx, jobID)
	case policy.ResourceApplication:
		var appID id.ApplicationID
		if appID, err = id.ParseApplicationID(rawID); err != nil {
			return nil, err
		}
		resource, err = h.applications.Resolve(ctx, appID)
	case policy.ResourceEvent:
		var eventID id.EventID
		if eventID, err = id.ParseEventID(rawID); err != nil {
			return nil, err
		}
		resource, err = h.events.FindByID(ctx, eventID)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+string(rt))
	}
	return resource, nil
}
