package scheduler

import (
	"context"
	"fmt"

	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
)

// Dispatcher reacts to successful payments by queueing the PDF generation
// and confirmation email tasks. With a nil Client it runs the jobs inline so
// deployments without Redis keep working.
type Dispatcher struct {
	client *Client
	jobs   *Jobs
	log    *logger.Logger
}

func NewDispatcher(client *Client, jobs *Jobs, log *logger.Logger) *Dispatcher {
	return &Dispatcher{client: client, jobs: jobs, log: log}
}

// Subscribe registers the dispatcher on the event bus.
func (d *Dispatcher) Subscribe(bus events.Bus) {
	bus.Subscribe(events.PaymentSucceeded{}.EventName(), events.HandlerFunc(d.onPaymentSucceeded))
}

func (d *Dispatcher) onPaymentSucceeded(ctx context.Context, event events.Event) error {
	e, ok := event.(events.PaymentSucceeded)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	pdfPayload := DossierPDFPayload{
		DossierID:   e.DossierID.String(),
		DossierType: e.DossierType,
		UserID:      e.UserID.String(),
	}
	mailPayload := PaymentConfirmationPayload{
		PaymentID:     e.PaymentID.String(),
		DossierID:     e.DossierID.String(),
		DossierType:   e.DossierType,
		UserID:        e.UserID.String(),
		AmountCents:   e.AmountCents,
		CustomerEmail: e.CustomerMail,
	}

	if d.client != nil {
		if err := d.client.EnqueueDossierPDF(ctx, pdfPayload); err != nil {
			return err
		}
		return d.client.EnqueuePaymentConfirmation(ctx, mailPayload)
	}

	// Inline fallback: generate the PDF first so the email can attach it.
	if err := d.jobs.GenerateDossierPDF(ctx, pdfPayload); err != nil {
		d.log.Warn("inline pdf generation failed", "dossier_id", e.DossierID, "error", err)
	}
	return d.jobs.SendPaymentConfirmation(ctx, mailPayload)
}
