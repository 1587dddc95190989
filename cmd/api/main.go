package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amplify_roi/pkg/api"
	"amplify_roi/pkg/config"
	"amplify_roi/pkg/core/currency"
	"amplify_roi/pkg/core/notify"
	"amplify_roi/pkg/core/pipeline"
	"amplify_roi/pkg/core/refdata"
	"amplify_roi/pkg/core/report"
	"amplify_roi/pkg/core/scheduler"
	"amplify_roi/pkg/core/store"
	"amplify_roi/pkg/logger"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Reference data
	registry, err := refdata.LoadFromDirectory(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to load reference data")
	}
	countries, types := registry.Count()
	log.Info().Int("countries", countries).Int("business_types", types).Msg("Reference data loaded")

	// 2. Calculator
	formatter := currency.NewFormatter(registry.Currencies()...)
	calculator := pipeline.NewCalculator(formatter)
	calculator.SetLogger(log)

	// 3. Collaborators
	analytics, err := openAnalytics(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to open analytics store")
	}
	defer analytics.Close()

	geo := store.NewGeoResolver(cfg.GeoIPPath, log)
	defer geo.Close()

	cache := store.NewResultCache(ctx, store.RedisOptions{
		Enabled:  cfg.Redis.Enabled,
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.CacheTTL(), log)
	defer cache.Close()

	serverCfg := api.Config{
		Port:       cfg.Port,
		Version:    cfg.Version,
		AdminToken: cfg.AdminToken,
		Log:        log,
		Registry:   registry,
		Calculator: calculator,
		Formatter:  formatter,
		Analytics:  analytics,
		Cache:      cache,
		CacheMode:  cache.Mode,
		Geo:        geo,
	}

	if cfg.ResendAPIKey != "" {
		serverCfg.Mailer = notify.NewMailer(cfg.ResendAPIKey, cfg.EmailFrom, log)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set; email delivery disabled")
	}

	if cfg.S3Bucket != "" {
		archiver, err := report.NewS3Archiver(ctx, cfg.S3Bucket, cfg.S3Region, log)
		if err != nil {
			log.Error().Err(err).Msg("S3 archiving disabled")
		} else {
			serverCfg.Archiver = archiver
		}
	}

	if cfg.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN not set; admin endpoints are closed")
	}

	// 4. Background jobs
	sched := scheduler.New(log)
	if cfg.RetentionDays > 0 {
		job := scheduler.NewRetentionJob(analytics, cfg.Retention(), log)
		if err := sched.AddJob(cfg.RetentionSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RetentionSchedule).Msg("Invalid retention schedule")
		}
	}
	sched.Start()
	defer sched.Stop()

	// 5. HTTP
	srv := api.New(serverCfg)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func openAnalytics(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.AnalyticsRepository, error) {
	if cfg.DatabaseDriver == config.DriverPostgres {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo := store.NewPostgresAnalyticsRepo(pool, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return repo, nil
	}
	return store.NewSQLiteAnalyticsRepo(cfg.DatabasePath, log)
}
