package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/N0urDEV/Formalitys-sub001/internal/adapters"
	"github.com/N0urDEV/Formalitys-sub001/internal/adapters/storage"
	"github.com/N0urDEV/Formalitys-sub001/internal/admin"
	"github.com/N0urDEV/Formalitys-sub001/internal/auth"
	"github.com/N0urDEV/Formalitys-sub001/internal/blog"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers"
	"github.com/N0urDEV/Formalitys-sub001/internal/email"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	apphttp "github.com/N0urDEV/Formalitys-sub001/internal/http"
	"github.com/N0urDEV/Formalitys-sub001/internal/http/router"
	"github.com/N0urDEV/Formalitys-sub001/internal/notifications"
	"github.com/N0urDEV/Formalitys-sub001/internal/payments"
	"github.com/N0urDEV/Formalitys-sub001/internal/pdf"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing"
	"github.com/N0urDEV/Formalitys-sub001/internal/scheduler"
	"github.com/N0urDEV/Formalitys-sub001/migrations"
	"github.com/N0urDEV/Formalitys-sub001/platform/config"
	"github.com/N0urDEV/Formalitys-sub001/platform/db"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender := email.NewSender(cfg)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for uploads (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "dossier-documents", cfg.GetMinioBucketDossierDocuments())
	ensureBucket(ctx, log, storageSvc, "dossier-pdfs", cfg.GetMinioBucketDossierPDFs())
	ensureBucket(ctx, log, storageSvc, "blog-images", cfg.GetMinioBucketBlogImages())
	log.Info(
		"storage service initialized",
		"dossierDocumentsBucket", cfg.GetMinioBucketDossierDocuments(),
		"dossierPDFsBucket", cfg.GetMinioBucketDossierPDFs(),
		"blogImagesBucket", cfg.GetMinioBucketBlogImages(),
	)

	// Gotenberg PDF generator
	gotenberg := pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
	pdfGenerator := pdf.NewGenerator(gotenberg)
	if cfg.IsGotenbergEnabled() {
		log.Info("gotenberg PDF generator initialized", "url", cfg.GetGotenbergURL())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	pricingModule := pricing.NewModule(pool, cfg, val, log)
	authModule := auth.NewModule(pool, cfg, sender, eventBus, val, log)
	dossiersModule := dossiers.NewModule(pool, storageSvc, cfg.GetMinioBucketDossierDocuments(), cfg.GetMinioBucketDossierPDFs(), pricingModule.Service(), eventBus, val, log)

	// Anti-corruption layer: payments resolve payer contact through auth
	userReader := adapters.NewAuthUserReader(authModule.Service())

	paymentsModule := payments.NewModule(pool, cfg, dossiersModule.Service(), pricingModule.Service(), userReader, eventBus, log)
	blogModule := blog.NewModule(pool, storageSvc, cfg.GetMinioBucketBlogImages(), val, log)
	adminModule := admin.NewModule(pool, dossiersModule.Service(), val, log)

	// Email notifications driven by domain events
	notifier := notifications.NewSubscriber(sender, userReader, cfg.GetAdminNotifyEmail(), log)
	notifier.Subscribe(eventBus)

	// Background jobs: queued through Redis when configured, inline otherwise
	jobs := scheduler.NewJobs(dossiersModule.Service(), pdfGenerator, storageSvc, cfg.GetMinioBucketDossierPDFs(), sender, userReader, cfg.GetAppBaseURL(), log)
	schedulerClient := initSchedulerClient(cfg, log)
	if schedulerClient != nil {
		defer schedulerClient.Close()
	}
	dispatcher := scheduler.NewDispatcher(schedulerClient, jobs, log)
	dispatcher.Subscribe(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			pricingModule,
			dossiersModule,
			paymentsModule,
			blogModule,
			adminModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSchedulerClient(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background jobs run inline")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil
	}
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
