package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobboard/internal/interview/models"
	"jobboard/internal/interview/service"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/requestcontext"
)

// Service is satisfied by *service.Service.
type Service interface {
	CreateEvent(ctx context.Context, actor models.Actor, req service.CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, actor models.Actor, eventID id.EventID) (*models.Event, error)
	ListByApplication(ctx context.Context, actor models.Actor, appID id.ApplicationID) ([]*models.Event, error)
	Transition(ctx context.Context, actor models.Actor, eventID id.EventID, req models.TransitionRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, actor models.Actor, eventID id.EventID) error
}

// Handler exposes the interview event lifecycle over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the event routes. Callers must install authentication
// middleware on r first.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications/{applicationID}/events", h.HandleCreate)
	r.Get("/applications/{applicationID}/events", h.HandleList)
	r.Get("/events/{eventID}", h.HandleGet)
	r.Post("/events/{eventID}/transitions", h.HandleTransition)
	r.Delete("/events/{eventID}", h.HandleDelete)
}

// HandleCreate handles POST /applications/{applicationID}/events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event, err := h.service.CreateEvent(ctx, actor, req.toService(appID))
	if err != nil {
		h.logFailure(ctx, "create interview event failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromEvent(event, requestcontext.Now(ctx)))
}

// HandleList handles GET /applications/{applicationID}/events.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	appID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.ListByApplication(ctx, actor, appID)
	if err != nil {
		h.logFailure(ctx, "list interview events failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEvents(events, requestcontext.Now(ctx)))
}

// HandleGet handles GET /events/{eventID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	event, err := h.service.GetEvent(ctx, actor, eventID)
	if err != nil {
		h.logFailure(ctx, "get interview event failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvent(event, requestcontext.Now(ctx)))
}

// HandleTransition handles POST /events/{eventID}/transitions.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event, err := h.service.Transition(ctx, actor, eventID, req.toModel())
	if err != nil {
		h.logFailure(ctx, "interview event transition failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvent(event, requestcontext.Now(ctx)))
}

// HandleDelete handles DELETE /events/{eventID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEvent(ctx, actor, eventID); err != nil {
		h.logFailure(ctx, "delete interview event failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireActor(w http.ResponseWriter, ctx context.Context) (models.Actor, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return models.Actor{}, false
	}
	return models.Actor{ID: userID, Role: requestcontext.Role(ctx)}, true
}

func eventIDParam(w http.ResponseWriter, r *http.Request) (id.EventID, bool) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.EventID{}, false
	}
	return eventID, true
}

// logFailure logs client errors at info and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelError
	if status := httputil.StatusFor(dErrors.CodeOf(err)); status < http.StatusInternalServerError {
		level = slog.LevelInfo
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", requestcontext.UserID(ctx).String(),
		"error", err,
	)
}
