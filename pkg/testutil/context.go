package testutil

import (
	"context"
	"net/http"
	"time"

	id "jobboard/pkg/domain"
	"jobboard/pkg/requestcontext"
)

// WithActor sets what RequireAuth would put on an authenticated request.
func WithActor(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithTime pins the request clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// ContextAt returns a background context whose request clock reads now.
func ContextAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}
