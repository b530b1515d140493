// Package service implements payment orchestration: Stripe PaymentIntent
// creation for dossiers and webhook-driven settlement.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	dossierrepo "github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	"github.com/N0urDEV/Formalitys-sub001/internal/payments/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
)

const currencyEUR = "eur"

// DossierAccess is the slice of the dossiers module that payments needs.
type DossierAccess interface {
	OwnerAndStatus(ctx context.Context, dossierType string, id uuid.UUID) (uuid.UUID, string, error)
	SetStatus(ctx context.Context, dossierType string, id uuid.UUID, newStatus string) error
}

// Quoter prices a dossier and persists the discount snapshot atomically.
type Quoter interface {
	ApplyDiscountToDossier(ctx context.Context, userID, dossierID uuid.UUID, dossierType engine.DossierType) (engine.Quote, error)
}

// UserInfo is the contact data attached to payment events.
type UserInfo struct {
	Email string
	Name  string
}

// UserReader resolves a user's contact details.
type UserReader interface {
	UserInfo(ctx context.Context, userID uuid.UUID) (UserInfo, error)
}

// Intent is the client-facing result of CreateIntent.
type Intent struct {
	Payment      repository.Payment
	ClientSecret string
	Quote        engine.Quote
}

type Service struct {
	repo          repository.Repository
	dossiers      DossierAccess
	quoter        Quoter
	users         UserReader
	bus           events.Bus
	log           *logger.Logger
	webhookSecret string

	// createIntent is swapped out in tests.
	createIntent func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func New(repo repository.Repository, dossiers DossierAccess, quoter Quoter, users UserReader, bus events.Bus, webhookSecret string, log *logger.Logger) *Service {
	return &Service{
		repo:          repo,
		dossiers:      dossiers,
		quoter:        quoter,
		users:         users,
		bus:           bus,
		log:           log,
		webhookSecret: webhookSecret,
		createIntent:  paymentintent.New,
	}
}

// CreateIntent prices the dossier with the caller's loyalty discount, creates
// a Stripe PaymentIntent for the final amount and moves the dossier to
// PENDING_PAYMENT. The returned client secret drives the frontend checkout.
func (s *Service) CreateIntent(ctx context.Context, userID, dossierID uuid.UUID, dossierType string) (Intent, error) {
	ownerID, status, err := s.dossiers.OwnerAndStatus(ctx, dossierType, dossierID)
	if err != nil {
		return Intent{}, err
	}
	if ownerID != userID {
		return Intent{}, apperr.Forbidden("dossier does not belong to you")
	}
	if status != dossierrepo.StatusDraft && status != dossierrepo.StatusPendingPayment {
		return Intent{}, apperr.Conflict(fmt.Sprintf("dossier in status %s cannot be paid", status))
	}

	quote, err := s.quoter.ApplyDiscountToDossier(ctx, userID, dossierID, engine.DossierType(dossierType))
	if err != nil {
		return Intent{}, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(quote.FinalPrice),
		Currency: stripe.String(currencyEUR),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("dossier_id", dossierID.String())
	params.AddMetadata("dossier_type", dossierType)
	params.AddMetadata("user_id", userID.String())

	pi, err := s.createIntent(params)
	if err != nil {
		return Intent{}, apperr.Wrap(apperr.KindInternal, "create payment intent", err)
	}

	payment, err := s.repo.Create(ctx, repository.Payment{
		UserID:         userID,
		DossierID:      dossierID,
		DossierType:    dossierType,
		StripeIntentID: pi.ID,
		AmountCents:    quote.FinalPrice,
		Currency:       currencyEUR,
	})
	if err != nil {
		return Intent{}, err
	}

	if status == dossierrepo.StatusDraft {
		if err := s.dossiers.SetStatus(ctx, dossierType, dossierID, dossierrepo.StatusPendingPayment); err != nil {
			return Intent{}, err
		}
	}

	s.log.PaymentEvent("intent_created", dossierType, quote.FinalPrice, pi.ID)
	return Intent{Payment: payment, ClientSecret: pi.ClientSecret, Quote: quote}, nil
}

// ListMine returns the caller's payment history.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Payment, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

// HandleWebhook verifies the Stripe signature, deduplicates the event and
// applies its effect. Unknown event types are acknowledged and ignored.
// The event id is recorded only after its effects succeed: a delivery that
// fails halfway returns an error, Stripe retries, and the retry is applied
// rather than dropped as a replay.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return apperr.Wrap(apperr.KindUnauthorized, "invalid webhook signature", err)
	}

	seen, err := s.repo.IsEventProcessed(ctx, event.ID)
	if err != nil {
		return err
	}
	if seen {
		s.log.Info("webhook event replayed, skipping", "event_id", event.ID, "type", event.Type)
		return nil
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		err = s.handleIntentSucceeded(ctx, event)
	case stripe.EventTypePaymentIntentPaymentFailed:
		err = s.handleIntentFailed(ctx, event)
	default:
		s.log.Info("ignoring webhook event", "type", event.Type)
	}
	if err != nil {
		return err
	}

	_, err = s.repo.MarkEventProcessed(ctx, event.ID, string(event.Type))
	return err
}

func (s *Service) handleIntentSucceeded(ctx context.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "decode payment intent", err)
	}

	payment, err := s.repo.MarkSucceeded(ctx, pi.ID)
	if err != nil {
		return err
	}
	if err := s.dossiers.SetStatus(ctx, payment.DossierType, payment.DossierID, dossierrepo.StatusPaid); err != nil {
		return err
	}

	customerMail := ""
	if info, err := s.users.UserInfo(ctx, payment.UserID); err == nil {
		customerMail = info.Email
	} else {
		s.log.Warn("could not resolve payer contact", "user_id", payment.UserID, "error", err)
	}

	s.bus.Publish(ctx, events.PaymentSucceeded{
		BaseEvent:    events.NewBaseEvent(),
		PaymentID:    payment.ID,
		DossierID:    payment.DossierID,
		UserID:       payment.UserID,
		DossierType:  payment.DossierType,
		AmountCents:  payment.AmountCents,
		CustomerMail: customerMail,
	})
	s.log.PaymentEvent("payment_succeeded", payment.DossierType, payment.AmountCents, pi.ID)
	return nil
}

func (s *Service) handleIntentFailed(ctx context.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "decode payment intent", err)
	}

	reason := "payment declined"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}

	payment, err := s.repo.MarkFailed(ctx, pi.ID, reason)
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.PaymentFailed{
		BaseEvent:   events.NewBaseEvent(),
		PaymentID:   payment.ID,
		DossierID:   payment.DossierID,
		UserID:      payment.UserID,
		DossierType: payment.DossierType,
		Reason:      reason,
	})
	s.log.PaymentEvent("payment_failed", payment.DossierType, payment.AmountCents, pi.ID)
	return nil
}
