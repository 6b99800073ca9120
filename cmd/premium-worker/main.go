// cmd/premium-worker/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"premium-workers/internal/api"
	"premium-workers/internal/artifacts"
	"premium-workers/internal/audit"
	commonaws "premium-workers/internal/common/aws"
	"premium-workers/internal/common/camunda"
	"premium-workers/internal/common/config"
	"premium-workers/internal/common/database"
	"premium-workers/internal/common/logger"
	"premium-workers/internal/common/observability"
	"premium-workers/internal/premium"

	pp "premium-workers/internal/workers/pricing/predict-premium"
	spq "premium-workers/internal/workers/pricing/send-premium-quote"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting premium worker...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()
	if cfg.Tracing.Enabled {
		if err := obs.EnableTracing(cfg.Tracing, cfg.App.Version); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx := context.Background()

	// --- Artifacts ---
	policy := premium.DefaultPolicy()
	if cfg.Artifacts.PolicyVersion != "" {
		p, err := premium.LookupPolicy(cfg.Artifacts.PolicyVersion)
		if err != nil {
			zapLog.Fatal("unknown encoding policy", zap.Error(err))
		}
		policy = p
	}

	registry, err := artifacts.Open(cfg.Artifacts.ManifestPath, artifacts.RegistryOptions{
		Policy:        policy,
		RemoteTimeout: config.GetDuration(cfg.Artifacts.RemoteTimeout),
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("artifact manifest rejected", zap.Error(err))
	}
	if cfg.Artifacts.EagerLoad {
		if err := registry.Load(ctx); err != nil {
			zapLog.Fatal("artifact load failed", zap.Error(err))
		}
		zapLog.Info("Model bundles loaded", zap.String("manifest", registry.Manifest().Version))
	}

	// --- Stores ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Host != "" {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			redis = database.NewRedis(cfg.Database.Redis)
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("quote cache unavailable, continuing without it", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	var esClient *database.ElasticsearchClient
	if cfg.Audit.HasSink("elasticsearch") {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.Index, audit.IndexMapping); err != nil {
			zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Audit ---
	sinks, err := buildSinks(cfg, pg, esClient)
	if err != nil {
		zapLog.Fatal("audit sink setup failed", zap.Error(err))
	}
	auditSink := audit.NewMulti(log, sinks...)
	defer auditSink.Close()

	router, err := premium.NewRouter(premium.RouterOptions{
		Bundles:     registry,
		Policy:      policy,
		YoungMaxAge: cfg.Pricing.YoungMaxAge,
		Audit:       auditSink,
		Logger:      log,
	})
	if err != nil {
		zapLog.Fatal("router setup failed", zap.Error(err))
	}

	// --- Camunda workers ---
	var (
		zeebe    *camunda.Client
		handlers []interface{ Close() }
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		handlers, err = registerWorkers(ctx, cfg, zeebe, router, auditSink, pg, redis, obs, log)
		if err != nil {
			zapLog.Fatal("worker registration failed", zap.Error(err))
		}
	}

	// --- HTTP ---
	checks := map[string]api.Check{
		"artifacts": registry.Load,
	}
	if pg != nil {
		checks["postgres"] = pg.Ping
	}
	if zeebe != nil {
		checks["zeebe"] = zeebe.HealthCheck
	}

	var server *api.Server
	if cfg.Server.Enabled {
		server, err = api.New(api.Options{
			Predictor:      router,
			CurrencySymbol: cfg.Pricing.CurrencySymbol,
			ReadyChecks:    checks,
			Logger:         log,
		})
		if err != nil {
			zapLog.Fatal("api setup failed", zap.Error(err))
		}
		go func() {
			if err := server.Start(cfg.Server.Address); err != nil {
				zapLog.Error("HTTP server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping HTTP server", zap.Error(err))
		}
	}
	for _, h := range handlers {
		h.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Premium worker stopped gracefully")
}

func buildSinks(cfg *config.Config, pg *database.PostgresClient, es *database.ElasticsearchClient) ([]audit.Sink, error) {
	var sinks []audit.Sink
	for _, name := range cfg.Audit.Sinks {
		switch name {
		case "file":
			zl, err := logger.NewFile(cfg.Audit.FilePath, "info")
			if err != nil {
				return nil, fmt.Errorf("open prediction log %s: %w", cfg.Audit.FilePath, err)
			}
			sinks = append(sinks, audit.NewFileSink(zl))
		case "postgres":
			if pg == nil {
				return nil, fmt.Errorf("postgres audit sink needs database.postgres")
			}
			sinks = append(sinks, audit.NewPostgresSink(pg.DB))
		case "elasticsearch":
			sinks = append(sinks, audit.NewElasticsearchSink(es.Client, cfg.Database.Elasticsearch.Index))
		}
	}
	return sinks, nil
}

func registerWorkers(
	ctx context.Context,
	cfg *config.Config,
	zeebe *camunda.Client,
	router *premium.Router,
	auditSink premium.AuditSink,
	pg *database.PostgresClient,
	redis *database.RedisClient,
	obs *observability.Observability,
	log logger.Logger,
) ([]interface{ Close() }, error) {
	db := pgDB(pg)

	predict, err := pp.NewHandler(pp.HandlerOptions{
		AppConfig: cfg,
		Dependencies: pp.ServiceDependencies{
			Predictor:     router,
			DB:            db,
			Cache:         redis,
			Audit:         auditSink,
			Observability: obs,
			Logger:        log,
		},
		Logger: log,
	})
	if err != nil {
		return nil, err
	}

	deps := spq.ServiceDependencies{DB: db, Logger: log}
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := commonaws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		if cfg.Notifications.Email.Enabled {
			deps.Email = commonaws.NewSESClient(awsCfg, cfg.Notifications.Email.FromEmail)
		}
		if cfg.Notifications.SMS.Enabled {
			deps.SMS = commonaws.NewSNSClient(awsCfg, cfg.Notifications.SMS.SenderID)
		}
	}
	notify, err := spq.NewHandler(spq.HandlerOptions{
		AppConfig:    cfg,
		Dependencies: deps,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}

	predict.Register(zeebe.GetClient())
	notify.Register(zeebe.GetClient())
	return []interface{ Close() }{predict, notify}, nil
}

func pgDB(pg *database.PostgresClient) *sql.DB {
	if pg == nil {
		return nil
	}
	return pg.DB
}
