package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"jobboard/internal/ratelimit/metrics"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/requestcontext"
)

// Middleware enforces Limits per authenticated user.
type Middleware struct {
	store   Store
	limits  Limits
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func New(store Store, limits Limits, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: limits,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerUser must run after authentication. Store failures let the request
// through and are counted.
func (m *Middleware) PerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := requestcontext.UserID(ctx)
		if userID.IsNil() {
			next.ServeHTTP(w, r)
			return
		}

		class := ClassOf(r.Method)
		key := string(class) + ":" + userID.String()
		result, err := m.store.Allow(ctx, key, m.limits.forClass(class), m.limits.Window)
		if err != nil {
			m.metrics.IncrementStoreErrors()
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"request_id", requestcontext.RequestID(ctx),
				"user_id", userID.String(),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.metrics.IncrementRejected(string(class))
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"user_id", userID.String(),
				"class", string(class),
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(requestcontext.Now(ctx))))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
