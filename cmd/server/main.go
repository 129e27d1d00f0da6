// Command server wires the duplicate-account detection service: stores,
// fingerprint guard, audit pipeline, fraud workflow, and the HTTP surface.
// Business logic lives in the internal packages; main only assembles.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"dupguard/internal/account/models"
	accountstore "dupguard/internal/account/store"
	adminhandler "dupguard/internal/admin/handler"
	"dupguard/internal/fraud"
	fraudmetrics "dupguard/internal/fraud/metrics"
	notificationstore "dupguard/internal/notification/store"
	"dupguard/internal/platform/config"
	"dupguard/internal/platform/httpserver"
	"dupguard/internal/platform/jwttoken"
	"dupguard/internal/platform/logger"
	"dupguard/internal/platform/middleware"
	platformredis "dupguard/internal/platform/redis"
	"dupguard/internal/registration"
	registrationhandler "dupguard/internal/registration/handler"
	"dupguard/internal/review"
	"dupguard/pkg/platform/audit"
	"dupguard/pkg/platform/audit/publisher"
	auditworker "dupguard/pkg/platform/audit/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		accounts      accountstore.Store
		notifications notificationstore.Store
	)
	if cfg.PostgresURL != "" {
		db, err := sql.Open("pgx", cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}

		accountDB := accountstore.NewPostgres(db)
		if err := accountDB.EnsureSchema(ctx); err != nil {
			return err
		}
		notificationDB := notificationstore.NewPostgres(db)
		if err := notificationDB.EnsureSchema(ctx); err != nil {
			return err
		}
		accounts = accountDB
		notifications = notificationDB
		log.Info("using postgres stores")
	} else {
		accounts = accountstore.NewInMemory()
		notifications = notificationstore.NewInMemory()
		log.Warn("no postgres configured, using in-memory stores")
	}

	// Fingerprint guard: Redis when configured, no-op otherwise.
	var guard fraud.Guard = fraud.NopGuard{}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		guard = fraud.NewRedisGuard(redisClient.Client, 10*time.Second, log)
		log.Info("fingerprint guard enabled")
	}

	// Audit pipeline: channel-fed worker fanning out to slog and, when
	// configured, Kafka.
	auditPublisher := auditworker.NewChannelPublisher(256, log)
	sinks := []audit.Sink{auditworker.SlogSink{Logger: log}}
	if cfg.KafkaBrokers != "" {
		kafkaSink, err := publisher.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("kafka audit sink enabled", "topic", cfg.AuditTopic)
	}
	worker := auditworker.New(auditPublisher.Inbox(), log, sinks...)

	fraudSvc, err := fraud.New(accounts, notifications,
		fraud.WithLogger(log),
		fraud.WithMetrics(fraudmetrics.New()),
		fraud.WithAuditPublisher(auditPublisher),
		fraud.WithGuard(guard),
	)
	if err != nil {
		return err
	}

	registrationSvc, err := registration.New(accounts, fraudSvc,
		registration.WithLogger(log),
		registration.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	var providerService registrationhandler.Service = registrationSvc

	// Demo review generator: one repeating task per registered provider.
	var reviews *review.Scheduler
	if cfg.DemoReviews {
		reviews = review.NewScheduler(review.NewInMemory(), review.NewGenerator(), cfg.DemoReviewInterval, log)
		defer reviews.Close()
		providerService = &demoReviewService{
			Service:   registrationSvc,
			ctx:       ctx,
			scheduler: reviews,
		}
		log.Info("demo review generator enabled", "interval", cfg.DemoReviewInterval.String())
	}

	tokens := jwttoken.NewService(cfg.AdminJWTKey, "dupguard")

	router := chi.NewRouter()
	router.Use(middleware.RequestMeta)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	registrationhandler.New(providerService, log).Register(router)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(tokens, log))
		adminhandler.New(notifications, log, adminhandler.WithAuditPublisher(auditPublisher)).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// demoReviewService decorates the registration service so every successfully
// registered provider gets a demo-review task.
type demoReviewService struct {
	registrationhandler.Service
	ctx       context.Context
	scheduler *review.Scheduler
}

func (d *demoReviewService) Register(ctx context.Context, req registration.NewAccount) (*models.Account, error) {
	account, err := d.Service.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	// Bound tasks to the process context, not the request context.
	d.scheduler.Start(d.ctx, account.ID)
	return account, nil
}
