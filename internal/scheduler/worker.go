package scheduler

import (
	"context"
	"fmt"

	"github.com/N0urDEV/Formalitys-sub001/platform/config"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes the background task queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	jobs   *Jobs
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, jobs *Jobs, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		jobs:   jobs,
		log:    log,
	}

	mux.HandleFunc(TaskPaymentConfirmationEmail, w.handlePaymentConfirmation)
	mux.HandleFunc(TaskDossierPDFGenerate, w.handleDossierPDF)

	return w, nil
}

func (w *Worker) handlePaymentConfirmation(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePaymentConfirmationPayload(task)
	if err != nil {
		return err
	}
	return w.jobs.SendPaymentConfirmation(ctx, payload)
}

func (w *Worker) handleDossierPDF(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDossierPDFPayload(task)
	if err != nil {
		return err
	}
	return w.jobs.GenerateDossierPDF(ctx, payload)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
