package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type stubSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c stubSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c stubSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c stubSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c stubSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestClientEnqueuesPaymentTasks(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := stubSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "formalitys"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := PaymentConfirmationPayload{
		PaymentID:     "3f0e8a52-0000-0000-0000-000000000001",
		DossierID:     "3f0e8a52-0000-0000-0000-000000000002",
		DossierType:   "tourism",
		UserID:        "3f0e8a52-0000-0000-0000-000000000003",
		AmountCents:   136000,
		CustomerEmail: "client@example.com",
	}
	if err := client.EnqueuePaymentConfirmation(context.Background(), payload); err != nil {
		t.Fatalf("EnqueuePaymentConfirmation: %v", err)
	}
	if err := client.EnqueueDossierPDF(context.Background(), DossierPDFPayload{
		DossierID:   payload.DossierID,
		DossierType: payload.DossierType,
		UserID:      payload.UserID,
	}); err != nil {
		t.Fatalf("EnqueueDossierPDF: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("formalitys")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending tasks = %d, want 2", len(pending))
	}

	byType := map[string][]byte{}
	for _, task := range pending {
		byType[task.Type] = task.Payload
	}
	raw, ok := byType[TaskPaymentConfirmationEmail]
	if !ok {
		t.Fatalf("no %s task enqueued, got %v", TaskPaymentConfirmationEmail, byType)
	}
	if _, ok := byType[TaskDossierPDFGenerate]; !ok {
		t.Fatalf("no %s task enqueued", TaskDossierPDFGenerate)
	}

	var got PaymentConfirmationPayload
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got != payload {
		t.Errorf("payload = %+v, want %+v", got, payload)
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var client *Client
	if err := client.EnqueuePaymentConfirmation(context.Background(), PaymentConfirmationPayload{}); err != nil {
		t.Fatalf("nil client enqueue: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client close: %v", err)
	}
}
