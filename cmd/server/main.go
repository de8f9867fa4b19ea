// Command server runs the talentgate HTTP service: form submission intake,
// person identity resolution, the application pipeline and the assessment
// webhook.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	applicationmetrics "talentgate/internal/application/metrics"
	applicationservice "talentgate/internal/application/service"
	applicationstore "talentgate/internal/application/store/application"
	"talentgate/internal/assessment"
	assessmenthandler "talentgate/internal/assessment/handler"
	assessmentmetrics "talentgate/internal/assessment/metrics"
	assessmentservice "talentgate/internal/assessment/service"
	"talentgate/internal/audit"
	"talentgate/internal/form"
	"talentgate/internal/jwttoken"
	personhandler "talentgate/internal/person/handler"
	personservice "talentgate/internal/person/service"
	personstore "talentgate/internal/person/store/person"
	"talentgate/internal/platform/config"
	"talentgate/internal/platform/httpserver"
	"talentgate/internal/platform/lock"
	"talentgate/internal/platform/logger"
	"talentgate/internal/platform/postgres"
	platformredis "talentgate/internal/platform/redis"
	submissionhandler "talentgate/internal/submission/handler"
	submissionmetrics "talentgate/internal/submission/metrics"
	submissionservice "talentgate/internal/submission/service"
	submissionstore "talentgate/internal/submission/store/submission"
	httptransport "talentgate/internal/transport/http"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backing infrastructure is optional: with no DSN/URL/brokers configured
	// the engine runs fully in-process, which is how tests and local
	// development use it.
	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info("postgres connected")
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	var locks lock.Locker = lock.NewKeyedMutex()
	if redisClient != nil {
		locks = lock.NewRedisLocker(redisClient.Client)
	}

	// Stores.
	var persons personservice.Store = personstore.NewInMemoryStore()
	var applications applicationservice.Store = applicationstore.NewInMemoryStore()
	var submissions submissionservice.Store = submissionstore.NewInMemoryStore()
	var auditStore audit.Store = audit.NewInMemoryStore()
	if db != nil {
		persons = personstore.NewPostgresStore(db)
		applications = applicationstore.NewPostgresStore(db)
		submissions = submissionstore.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	}

	var kafkaPublisher *audit.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err = audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic, auditStore, log)
		if err != nil {
			return err
		}
		defer func() {
			// the run context is already canceled here; give the flush
			// its own deadline so buffered audit events still go out
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := kafkaPublisher.Close(flushCtx); err != nil {
				log.Error("kafka audit flush failed", "error", err)
			}
		}()
		auditStore = kafkaPublisher
		log.Info("kafka audit publisher enabled", "topic", cfg.KafkaAuditTopic)
	}
	auditRecorder := audit.NewRecorder(auditStore, log)

	// Forms.
	forms := form.NewRegistry()
	if cfg.FormsPath != "" {
		if err := forms.LoadFile(cfg.FormsPath); err != nil {
			return err
		}
		log.Info("forms loaded", "path", cfg.FormsPath)
	}

	// Services.
	gate, err := assessment.NewGate(cfg.AssessmentThreshold, cfg.AssessmentScale)
	if err != nil {
		return err
	}

	resolver, err := personservice.New(persons,
		personservice.WithLogger(log),
		personservice.WithLocker(locks),
	)
	if err != nil {
		return err
	}

	advancer, err := applicationservice.New(applications, auditRecorder,
		applicationservice.WithLogger(log),
		applicationservice.WithMetrics(applicationmetrics.New()),
	)
	if err != nil {
		return err
	}

	submissionSvc, err := submissionservice.New(submissions, forms, resolver, advancer, gate, auditRecorder,
		submissionservice.WithLogger(log),
		submissionservice.WithMetrics(submissionmetrics.New()),
		submissionservice.WithLocker(locks),
	)
	if err != nil {
		return err
	}

	assessmentSvc, err := assessmentservice.New(persons, resolver, advancer, gate, auditRecorder,
		assessmentservice.WithLogger(log),
		assessmentservice.WithMetrics(assessmentmetrics.New()),
	)
	if err != nil {
		return err
	}

	tokens := jwttoken.New(cfg.WebhookSecret, "talentgate")

	// HTTP surface.
	var checks []httptransport.HealthCheck
	if db != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	router := httptransport.NewRouter(log, checks,
		submissionhandler.New(submissionSvc, log),
		personhandler.New(resolver, advancer, log),
		assessmenthandler.New(assessmentSvc, tokens, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting talentgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
