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
	"github.com/N0urDEV/Formalitys-sub001/internal/auth"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers"
	"github.com/N0urDEV/Formalitys-sub001/internal/email"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	"github.com/N0urDEV/Formalitys-sub001/internal/pdf"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing"
	"github.com/N0urDEV/Formalitys-sub001/internal/scheduler"
	"github.com/N0urDEV/Formalitys-sub001/platform/config"
	"github.com/N0urDEV/Formalitys-sub001/platform/db"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
	"github.com/N0urDEV/Formalitys-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	sender := email.NewSender(cfg)
	val := validator.New()

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	gotenberg := pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
	pdfGenerator := pdf.NewGenerator(gotenberg)

	pricingModule := pricing.NewModule(pool, cfg, val, log)
	authModule := auth.NewModule(pool, cfg, sender, eventBus, val, log)
	dossiersModule := dossiers.NewModule(pool, storageSvc, cfg.GetMinioBucketDossierDocuments(), cfg.GetMinioBucketDossierPDFs(), pricingModule.Service(), eventBus, val, log)
	userReader := adapters.NewAuthUserReader(authModule.Service())

	jobs := scheduler.NewJobs(dossiersModule.Service(), pdfGenerator, storageSvc, cfg.GetMinioBucketDossierPDFs(), sender, userReader, cfg.GetAppBaseURL(), log)

	worker, err := scheduler.NewWorker(cfg, jobs, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	log.Info("worker listening for tasks")
	worker.Run(ctx)
	log.Info("worker stopped")
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
