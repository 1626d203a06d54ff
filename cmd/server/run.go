package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	appstore "jobboard/internal/applications/store"
	"jobboard/internal/audit"
	interviewhandler "jobboard/internal/interview/handler"
	interviewmetrics "jobboard/internal/interview/metrics"
	"jobboard/internal/interview/reminder"
	interviewservice "jobboard/internal/interview/service"
	interviewstore "jobboard/internal/interview/store"
	jwttoken "jobboard/internal/jwt_token"
	"jobboard/internal/notify"
	notifymetrics "jobboard/internal/notify/metrics"
	"jobboard/internal/platform/config"
	"jobboard/internal/platform/httpserver"
	"jobboard/internal/platform/metrics"
	"jobboard/internal/platform/postgres"
	"jobboard/internal/platform/redis"
	"jobboard/internal/policy"
	policymetrics "jobboard/internal/policy/metrics"
	"jobboard/internal/ratelimit"
	ratelimitmetrics "jobboard/internal/ratelimit/metrics"
	ratelimitstore "jobboard/internal/ratelimit/store"
	httptransport "jobboard/internal/transport/http"
	userstore "jobboard/internal/users/store"
	"jobboard/pkg/platform/circuit"
	txcontext "jobboard/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

// stores groups the persistence backends chosen at startup.
type stores struct {
	users interface {
		httptransport.UserFinder
		userSaver
	}
	applications interface {
		httptransport.ApplicationFinder
		applicationSaver
	}
	events  interviewservice.Store
	audit   audit.Store
	tx      interviewservice.StoreTx
	healthy httptransport.HealthCheck
	close   func() error
}

func run(ctx context.Context, cfg config.Server, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("failed to close stores", "error", err)
		}
	}()

	jwt := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	if cfg.SeedDemoData {
		if err := seedDemo(ctx, st.users, st.applications, jwt, logger); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	checks := map[string]httptransport.HealthCheck{"store": st.healthy}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
	}

	sender, closeSender, err := buildSender(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeSender()

	dispatcher := notify.NewDispatcher(sender,
		notify.WithQueueSize(cfg.Notify.QueueSize),
		notify.WithWorkers(cfg.Notify.Workers),
		notify.WithSendTimeout(cfg.Notify.SendTimeout),
		notify.WithBreaker(circuit.New("notify-"+sender.Name(),
			circuit.WithFailureThreshold(cfg.Notify.BreakerThreshold),
			circuit.WithCooldown(cfg.Notify.BreakerCooldown),
		)),
		notify.WithLogger(logger),
		notify.WithMetrics(notifymetrics.New()),
	)

	evaluator := policy.NewDefault(
		policy.WithLogger(logger),
		policy.WithMetrics(policymetrics.New()),
	)
	svc, err := interviewservice.New(st.events, st.applications,
		interviewservice.WithLogger(logger),
		interviewservice.WithMetrics(interviewmetrics.New()),
		interviewservice.WithAuthorizer(evaluator),
		interviewservice.WithNotifier(dispatcher),
		interviewservice.WithAuditPublisher(audit.NewPublisher(st.audit, logger)),
		interviewservice.WithStoreTx(st.tx),
		interviewservice.WithReminderLead(cfg.Reminder.Lead),
	)
	if err != nil {
		return fmt.Errorf("build interview service: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:    logger,
		Metrics:   metrics.New(),
		Validator: jwttoken.NewAdapter(jwt),
		Users:     st.users,
		Authorize: httptransport.NewAuthorizeHandler(evaluator, st.users, st.applications, st.events, logger),
		Modules:   []httptransport.Registrar{interviewhandler.New(svc, logger)},
		Checks:    checks,
		RateLimit: buildRateLimit(cfg.RateLimit, redisClient, logger),
	})
	srv := httpserver.New(cfg.Addr, router)

	// The dispatcher outlives the HTTP server so notifications queued by
	// in-flight requests still get flushed.
	dispatchCtx, stopDispatch := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting jobboard", "addr", cfg.Addr, "notify_sink", sender.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopDispatch()
		return err
	})
	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})
	if cfg.Reminder.Enabled {
		scheduler, err := reminder.New(svc, cfg.Reminder.Interval, reminder.WithLogger(logger))
		if err != nil {
			return err
		}
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("jobboard stopped")
	return err
}

// openStores picks Postgres when DATABASE_URL is set and memory otherwise.
func openStores(ctx context.Context, cfg config.Server, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			users:        userstore.NewInMemory(),
			applications: appstore.NewInMemory(),
			events:       interviewstore.NewInMemory(),
			audit:        audit.NewInMemoryStore(),
			healthy:      func(context.Context) error { return nil },
			close:        func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &stores{
		users:        userstore.NewPostgres(db),
		applications: appstore.NewPostgres(db),
		events:       interviewstore.NewPostgres(db),
		audit:        audit.NewPostgresStore(db),
		tx:           txcontext.NewRunner(db),
		healthy:      pingDB(db),
		close:        db.Close,
	}, nil
}

func pingDB(db *sql.DB) httptransport.HealthCheck {
	return db.PingContext
}

// buildRateLimit shares budgets through Redis when a client is configured.
func buildRateLimit(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return nil
	}
	var store ratelimit.Store = ratelimitstore.NewInMemory()
	if redisClient != nil {
		store = ratelimitstore.NewRedis(redisClient.Client)
	}
	mw := ratelimit.New(store, ratelimit.Limits{
		Reads:  cfg.ReadsPerWindow,
		Writes: cfg.WritesPerWindow,
		Window: cfg.Window,
	}, logger, ratelimit.WithMetrics(ratelimitmetrics.New()))
	return mw.PerUser
}
