// Package users exposes the read-only view of accounts the job board needs:
// who the caller is, which role they hold and whether they may act at all.
package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"jobboard/internal/users/models"
	id "jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/requestcontext"
)

// Lookup is satisfied by the memory and postgres user stores.
type Lookup interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

// RequireActive loads the authenticated user and replaces the role claimed in
// the token with the stored one. Unknown users are unauthorized and inactive
// users are forbidden. Must run after middleware.RequireAuth.
func RequireActive(lookup Lookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			user, err := lookup.FindByID(ctx, requestcontext.UserID(ctx))
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				logger.WarnContext(ctx, "unauthorized access - unknown user",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "unknown user"))
				return
			case err != nil:
				logger.ErrorContext(ctx, "failed to load user",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user"))
				return
			case !user.IsActive:
				logger.WarnContext(ctx, "forbidden - inactive user",
					"request_id", requestID,
					"user_id", user.ID.String(),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "account is inactive"))
				return
			}

			ctx = requestcontext.WithRole(ctx, models.RoleOf(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
