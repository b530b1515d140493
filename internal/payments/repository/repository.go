// Package repository provides PostgreSQL persistence for payments and
// webhook event idempotency tracking.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Payment statuses.
const (
	StatusCreated   = "CREATED"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Payment is a persisted Stripe payment attempt for a dossier.
type Payment struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	DossierID      uuid.UUID
	DossierType    string
	StripeIntentID string
	AmountCents    int64
	Currency       string
	Status         string
	FailureReason  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const paymentColumns = "id, user_id, dossier_id, dossier_type, stripe_intent_id, amount_cents, currency, status, failure_reason, created_at, updated_at"

// Repository persists payments and tracks processed webhook events.
type Repository interface {
	Create(ctx context.Context, p Payment) (Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (Payment, error)
	MarkSucceeded(ctx context.Context, intentID string) (Payment, error)
	MarkFailed(ctx context.Context, intentID, reason string) (Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Payment, error)
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error)
}

// Repo is the pgx-backed Repository implementation.
type Repo struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Repo)(nil)

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.UserID, &p.DossierID, &p.DossierType, &p.StripeIntentID,
		&p.AmountCents, &p.Currency, &p.Status, &p.FailureReason, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, apperr.NotFound("payment not found")
	}
	if err != nil {
		return Payment{}, apperr.Wrap(apperr.KindInternal, "scan payment", err)
	}
	return p, nil
}

// Create inserts a new payment row in CREATED status.
func (r *Repo) Create(ctx context.Context, p Payment) (Payment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (user_id, dossier_id, dossier_type, stripe_intent_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		p.UserID, p.DossierID, p.DossierType, p.StripeIntentID, p.AmountCents, p.Currency, StatusCreated)
	return scanPayment(row)
}

// GetByIntentID looks a payment up by its Stripe PaymentIntent id.
func (r *Repo) GetByIntentID(ctx context.Context, intentID string) (Payment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE stripe_intent_id = $1`, intentID)
	return scanPayment(row)
}

// MarkSucceeded transitions a payment to SUCCEEDED.
func (r *Repo) MarkSucceeded(ctx context.Context, intentID string) (Payment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE payments
		SET status = $2, failure_reason = NULL, updated_at = now()
		WHERE stripe_intent_id = $1
		RETURNING `+paymentColumns, intentID, StatusSucceeded)
	return scanPayment(row)
}

// MarkFailed transitions a payment to FAILED and records the reason.
func (r *Repo) MarkFailed(ctx context.Context, intentID, reason string) (Payment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE payments
		SET status = $2, failure_reason = $3, updated_at = now()
		WHERE stripe_intent_id = $1
		RETURNING `+paymentColumns, intentID, StatusFailed, reason)
	return scanPayment(row)
}

// ListByUser returns a user's payments, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Payment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list payments", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// IsEventProcessed reports whether a Stripe webhook event id has already
// been settled. Events are only recorded after their effects succeed, so a
// delivery retried after a transient failure is not mistaken for a replay.
func (r *Repo) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM processed_webhook_events WHERE event_id = $1)`,
		eventID,
	).Scan(&seen)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "check webhook event", err)
	}
	return seen, nil
}

// MarkEventProcessed records a Stripe webhook event id and reports whether
// this is the first time it has been seen. Replays return false so handlers
// stay idempotent.
func (r *Repo) MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO processed_webhook_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING`, eventID, eventType)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "record webhook event", err)
	}
	return tag.RowsAffected() == 1, nil
}
