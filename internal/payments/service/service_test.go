package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	dossierrepo "github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	"github.com/N0urDEV/Formalitys-sub001/internal/payments/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

const testWebhookSecret = "whsec_test"

type fakeRepo struct {
	byIntent  map[string]repository.Payment
	processed map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byIntent: map[string]repository.Payment{}, processed: map[string]bool{}}
}

func (f *fakeRepo) Create(_ context.Context, p repository.Payment) (repository.Payment, error) {
	p.ID = uuid.New()
	p.Status = repository.StatusCreated
	p.CreatedAt = time.Now()
	f.byIntent[p.StripeIntentID] = p
	return p, nil
}

func (f *fakeRepo) GetByIntentID(_ context.Context, intentID string) (repository.Payment, error) {
	p, ok := f.byIntent[intentID]
	if !ok {
		return repository.Payment{}, apperr.NotFound("payment not found")
	}
	return p, nil
}

func (f *fakeRepo) MarkSucceeded(_ context.Context, intentID string) (repository.Payment, error) {
	p, ok := f.byIntent[intentID]
	if !ok {
		return repository.Payment{}, apperr.NotFound("payment not found")
	}
	p.Status = repository.StatusSucceeded
	f.byIntent[intentID] = p
	return p, nil
}

func (f *fakeRepo) MarkFailed(_ context.Context, intentID, reason string) (repository.Payment, error) {
	p, ok := f.byIntent[intentID]
	if !ok {
		return repository.Payment{}, apperr.NotFound("payment not found")
	}
	p.Status = repository.StatusFailed
	p.FailureReason = &reason
	f.byIntent[intentID] = p
	return p, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID, _ int) ([]repository.Payment, error) {
	var out []repository.Payment
	for _, p := range f.byIntent {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) IsEventProcessed(_ context.Context, eventID string) (bool, error) {
	return f.processed[eventID], nil
}

func (f *fakeRepo) MarkEventProcessed(_ context.Context, eventID, _ string) (bool, error) {
	if f.processed[eventID] {
		return false, nil
	}
	f.processed[eventID] = true
	return true, nil
}

type fakeDossiers struct {
	owner      uuid.UUID
	status     string
	statusSets []string
	setErrs    []error
}

func (f *fakeDossiers) OwnerAndStatus(context.Context, string, uuid.UUID) (uuid.UUID, string, error) {
	return f.owner, f.status, nil
}

func (f *fakeDossiers) SetStatus(_ context.Context, _ string, _ uuid.UUID, newStatus string) error {
	if len(f.setErrs) > 0 {
		err := f.setErrs[0]
		f.setErrs = f.setErrs[1:]
		if err != nil {
			return err
		}
	}
	f.statusSets = append(f.statusSets, newStatus)
	f.status = newStatus
	return nil
}

type fakeQuoter struct {
	quote engine.Quote
	calls int
}

func (f *fakeQuoter) ApplyDiscountToDossier(context.Context, uuid.UUID, uuid.UUID, engine.DossierType) (engine.Quote, error) {
	f.calls++
	return f.quote, nil
}

type fakeUsers struct{ email string }

func (f *fakeUsers) UserInfo(context.Context, uuid.UUID) (UserInfo, error) {
	if f.email == "" {
		return UserInfo{}, errors.New("no such user")
	}
	return UserInfo{Email: f.email, Name: "Test User"}, nil
}

type fakeBus struct{ published []events.Event }

func (f *fakeBus) Publish(_ context.Context, e events.Event) { f.published = append(f.published, e) }
func (f *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	f.published = append(f.published, e)
	return nil
}
func (f *fakeBus) Subscribe(string, events.Handler) {}

func newTestService(repo repository.Repository, dossiers *fakeDossiers, quoter *fakeQuoter, users *fakeUsers, bus *fakeBus) *Service {
	svc := New(repo, dossiers, quoter, users, bus, testWebhookSecret, logger.New("development"))
	svc.createIntent = func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return &stripe.PaymentIntent{
			ID:           "pi_test_123",
			ClientSecret: "pi_test_123_secret",
			Amount:       *params.Amount,
		}, nil
	}
	return svc
}

func signedPayload(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return []byte(payload), fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func intentEventJSON(eventID, eventType, intentID, failureMsg string) string {
	object := fmt.Sprintf(`{"id":%q,"object":"payment_intent"}`, intentID)
	if failureMsg != "" {
		object = fmt.Sprintf(`{"id":%q,"object":"payment_intent","last_payment_error":{"message":%q}}`, intentID, failureMsg)
	}
	return fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":%s}}`, eventID, eventType, object)
}

func TestCreateIntent(t *testing.T) {
	userID := uuid.New()
	dossierID := uuid.New()
	repo := newFakeRepo()
	dossiers := &fakeDossiers{owner: userID, status: dossierrepo.StatusDraft}
	quoter := &fakeQuoter{quote: engine.Quote{
		DossierType:     engine.DossierTypeTourism,
		OriginalPrice:   160000,
		DiscountPercent: 15,
		DiscountAmount:  24000,
		FinalPrice:      136000,
		Reason:          "loyalty_tier_2",
	}}
	svc := newTestService(repo, dossiers, quoter, &fakeUsers{email: "client@example.com"}, &fakeBus{})

	intent, err := svc.CreateIntent(context.Background(), userID, dossierID, "tourism")
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.ClientSecret != "pi_test_123_secret" {
		t.Errorf("client secret = %q", intent.ClientSecret)
	}
	if intent.Payment.AmountCents != 136000 {
		t.Errorf("amount = %d, want discounted 136000", intent.Payment.AmountCents)
	}
	if quoter.calls != 1 {
		t.Errorf("quoter called %d times", quoter.calls)
	}
	if len(dossiers.statusSets) != 1 || dossiers.statusSets[0] != dossierrepo.StatusPendingPayment {
		t.Errorf("status transitions = %v, want [PENDING_PAYMENT]", dossiers.statusSets)
	}
	if _, err := repo.GetByIntentID(context.Background(), "pi_test_123"); err != nil {
		t.Errorf("payment not persisted: %v", err)
	}
}

func TestCreateIntentRetryKeepsPendingStatus(t *testing.T) {
	userID := uuid.New()
	dossiers := &fakeDossiers{owner: userID, status: dossierrepo.StatusPendingPayment}
	quoter := &fakeQuoter{quote: engine.Quote{FinalPrice: 330000, OriginalPrice: 330000, Reason: "no_discount_company"}}
	svc := newTestService(newFakeRepo(), dossiers, quoter, &fakeUsers{email: "x@y.z"}, &fakeBus{})

	if _, err := svc.CreateIntent(context.Background(), userID, uuid.New(), "company"); err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if len(dossiers.statusSets) != 0 {
		t.Errorf("unexpected status transitions %v for already pending dossier", dossiers.statusSets)
	}
}

func TestCreateIntentRejectsForeignDossier(t *testing.T) {
	dossiers := &fakeDossiers{owner: uuid.New(), status: dossierrepo.StatusDraft}
	svc := newTestService(newFakeRepo(), dossiers, &fakeQuoter{}, &fakeUsers{}, &fakeBus{})

	_, err := svc.CreateIntent(context.Background(), uuid.New(), uuid.New(), "company")
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want forbidden", apperr.GetKind(err))
	}
}

func TestCreateIntentRejectsPaidDossier(t *testing.T) {
	userID := uuid.New()
	dossiers := &fakeDossiers{owner: userID, status: dossierrepo.StatusPaid}
	svc := newTestService(newFakeRepo(), dossiers, &fakeQuoter{}, &fakeUsers{}, &fakeBus{})

	_, err := svc.CreateIntent(context.Background(), userID, uuid.New(), "company")
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestWebhookPaymentSucceeded(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepo()
	dossiers := &fakeDossiers{owner: userID, status: dossierrepo.StatusPendingPayment}
	bus := &fakeBus{}
	svc := newTestService(repo, dossiers, &fakeQuoter{}, &fakeUsers{email: "client@example.com"}, bus)

	seeded, _ := repo.Create(context.Background(), repository.Payment{
		UserID:         userID,
		DossierID:      uuid.New(),
		DossierType:    "tourism",
		StripeIntentID: "pi_test_123",
		AmountCents:    136000,
		Currency:       "eur",
	})

	body, header := signedPayload(t, intentEventJSON("evt_1", "payment_intent.succeeded", "pi_test_123", ""))
	if err := svc.HandleWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	stored, _ := repo.GetByIntentID(context.Background(), "pi_test_123")
	if stored.Status != repository.StatusSucceeded {
		t.Errorf("payment status = %s", stored.Status)
	}
	if len(dossiers.statusSets) != 1 || dossiers.statusSets[0] != dossierrepo.StatusPaid {
		t.Errorf("status transitions = %v, want [PAID]", dossiers.statusSets)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	ev, ok := bus.published[0].(events.PaymentSucceeded)
	if !ok {
		t.Fatalf("published event %T", bus.published[0])
	}
	if ev.PaymentID != seeded.ID || ev.AmountCents != 136000 || ev.CustomerMail != "client@example.com" {
		t.Errorf("unexpected event payload %+v", ev)
	}
}

func TestWebhookReplayIsIgnored(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepo()
	dossiers := &fakeDossiers{owner: userID, status: dossierrepo.StatusPendingPayment}
	bus := &fakeBus{}
	svc := newTestService(repo, dossiers, &fakeQuoter{}, &fakeUsers{email: "client@example.com"}, bus)

	repo.Create(context.Background(), repository.Payment{
		UserID: userID, DossierID: uuid.New(), DossierType: "company",
		StripeIntentID: "pi_test_123", AmountCents: 330000, Currency: "eur",
	})

	body, header := signedPayload(t, intentEventJSON("evt_1", "payment_intent.succeeded", "pi_test_123", ""))
	if err := svc.HandleWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(dossiers.statusSets) != 1 {
		t.Errorf("replay caused %d status transitions, want 1", len(dossiers.statusSets))
	}
	if len(bus.published) != 1 {
		t.Errorf("replay caused %d events, want 1", len(bus.published))
	}
}

func TestWebhookRetryAfterFailureSettles(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepo()
	dossiers := &fakeDossiers{
		owner:   userID,
		status:  dossierrepo.StatusPendingPayment,
		setErrs: []error{errors.New("deadlock detected")},
	}
	bus := &fakeBus{}
	svc := newTestService(repo, dossiers, &fakeQuoter{}, &fakeUsers{email: "client@example.com"}, bus)

	repo.Create(context.Background(), repository.Payment{
		UserID: userID, DossierID: uuid.New(), DossierType: "tourism",
		StripeIntentID: "pi_test_123", AmountCents: 136000, Currency: "eur",
	})

	body, header := signedPayload(t, intentEventJSON("evt_1", "payment_intent.succeeded", "pi_test_123", ""))
	if err := svc.HandleWebhook(context.Background(), body, header); err == nil {
		t.Fatal("expected first delivery to fail on the dossier transition")
	}
	if repo.processed["evt_1"] {
		t.Fatal("failed delivery must not be recorded as processed")
	}

	// Stripe redelivers the same event after the transient failure.
	if err := svc.HandleWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("retry: %v", err)
	}

	stored, _ := repo.GetByIntentID(context.Background(), "pi_test_123")
	if stored.Status != repository.StatusSucceeded {
		t.Errorf("payment status = %s, want SUCCEEDED after retry", stored.Status)
	}
	if len(dossiers.statusSets) != 1 || dossiers.statusSets[0] != dossierrepo.StatusPaid {
		t.Errorf("status transitions = %v, want [PAID]", dossiers.statusSets)
	}
	if !repo.processed["evt_1"] {
		t.Error("retried delivery should be recorded as processed")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeDossiers{}, &fakeQuoter{}, &fakeUsers{}, &fakeBus{})

	body := []byte(intentEventJSON("evt_1", "payment_intent.succeeded", "pi_test_123", ""))
	err := svc.HandleWebhook(context.Background(), body, "t=1,v1=deadbeef")
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("kind = %v, want unauthorized", apperr.GetKind(err))
	}
}

func TestWebhookPaymentFailed(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepo()
	dossiers := &fakeDossiers{owner: userID, status: dossierrepo.StatusPendingPayment}
	bus := &fakeBus{}
	svc := newTestService(repo, dossiers, &fakeQuoter{}, &fakeUsers{email: "client@example.com"}, bus)

	repo.Create(context.Background(), repository.Payment{
		UserID: userID, DossierID: uuid.New(), DossierType: "tourism",
		StripeIntentID: "pi_test_123", AmountCents: 160000, Currency: "eur",
	})

	body, header := signedPayload(t, intentEventJSON("evt_2", "payment_intent.payment_failed", "pi_test_123", "Your card was declined."))
	if err := svc.HandleWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	stored, _ := repo.GetByIntentID(context.Background(), "pi_test_123")
	if stored.Status != repository.StatusFailed {
		t.Errorf("payment status = %s", stored.Status)
	}
	if stored.FailureReason == nil || *stored.FailureReason != "Your card was declined." {
		t.Errorf("failure reason = %v", stored.FailureReason)
	}
	if len(dossiers.statusSets) != 0 {
		t.Errorf("failed payment moved dossier: %v", dossiers.statusSets)
	}
	ev, ok := bus.published[0].(events.PaymentFailed)
	if !ok || ev.Reason != "Your card was declined." {
		t.Errorf("unexpected event %+v", bus.published[0])
	}
}

func TestWebhookIgnoresUnknownEventType(t *testing.T) {
	bus := &fakeBus{}
	svc := newTestService(newFakeRepo(), &fakeDossiers{}, &fakeQuoter{}, &fakeUsers{}, bus)

	body, header := signedPayload(t, intentEventJSON("evt_3", "charge.refunded", "pi_test_123", ""))
	if err := svc.HandleWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(bus.published) != 0 {
		t.Errorf("unknown event type published %d events", len(bus.published))
	}
}
