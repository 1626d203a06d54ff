package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/users/models"
	"jobboard/internal/users/store"
	id "jobboard/pkg/domain"
	"jobboard/pkg/requestcontext"
)

func TestRequireActive(t *testing.T) {
	users := store.NewInMemory()
	active := &models.User{ID: id.UserID(uuid.New()), Email: "m@acme.test", Role: id.RoleManager, IsActive: true, CreatedAt: time.Now()}
	inactive := &models.User{ID: id.UserID(uuid.New()), Email: "x@acme.test", Role: id.RoleAdmin, IsActive: false, CreatedAt: time.Now()}
	require.NoError(t, users.Save(context.Background(), active))
	require.NoError(t, users.Save(context.Background(), inactive))

	mw := RequireActive(users, slog.New(slog.NewTextHandler(io.Discard, nil)))

	serve := func(userID id.UserID, claimed id.Role) (*httptest.ResponseRecorder, id.Role) {
		var seen id.Role
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.Role(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := requestcontext.WithUserID(req.Context(), userID)
		ctx = requestcontext.WithRole(ctx, claimed)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req.WithContext(ctx))
		return rec, seen
	}

	t.Run("stored role replaces the claimed role", func(t *testing.T) {
		rec, role := serve(active.ID, id.RoleAdmin)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, id.RoleManager, role)
	})

	t.Run("inactive user is forbidden", func(t *testing.T) {
		rec, _ := serve(inactive.ID, id.RoleAdmin)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		rec, _ := serve(id.UserID(uuid.New()), id.RoleManager)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
