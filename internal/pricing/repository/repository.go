// Package repository implements pricing persistence: completed-dossier counts,
// the discount snapshot write path, and loyalty counter synchronization.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const dossierNotFoundMessage = "dossier not found"

// completedStatuses are the dossier statuses that count toward loyalty tiers.
var completedStatuses = []string{"COMPLETED", "PAID"}

// HistoryEntry is one appended discount audit row.
type HistoryEntry struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	DossierID       uuid.UUID
	DossierType     string
	DiscountPercent int64
	DiscountAmount  int64
	OriginalPrice   int64
	FinalPrice      int64
	Reason          string
	CreatedAt       time.Time
}

// Repository defines pricing persistence operations.
type Repository interface {
	// CountCompletedDossiers sums the user's COMPLETED and PAID dossiers
	// across both dossier tables.
	CountCompletedDossiers(ctx context.Context, userID uuid.UUID) (int, error)

	// ApplyDiscount recounts, quotes via the supplied function, writes the
	// price snapshot onto the dossier, and appends the audit row — all inside
	// a single transaction serialized per user.
	ApplyDiscount(ctx context.Context, userID, dossierID uuid.UUID, dossierType engine.DossierType, quote QuoteFunc) (engine.Quote, error)

	// SyncUserCounters recounts and overwrites the user's denormalized
	// totalDossiersCompleted and loyaltyTier columns under a row lock.
	SyncUserCounters(ctx context.Context, userID uuid.UUID, tierFor TierFunc) (int, int, error)

	// ListHistory returns the user's discount audit rows, newest first.
	ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]HistoryEntry, error)
}

// QuoteFunc computes a quote from a completed-dossier count.
// It runs inside the ApplyDiscount transaction.
type QuoteFunc func(completedDossiers int) (engine.Quote, error)

// TierFunc maps a completed-dossier count to a tier number.
type TierFunc func(completedDossiers int) int

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new pricing repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CountCompletedDossiers issues both per-table counts concurrently and sums
// them; there is no ordering dependency between the two queries.
func (r *Repo) CountCompletedDossiers(ctx context.Context, userID uuid.UUID) (int, error) {
	var companyCount, tourismCount int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx,
			`SELECT COUNT(*) FROM company_dossiers WHERE user_id = $1 AND status = ANY($2)`,
			userID, completedStatuses,
		).Scan(&companyCount)
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx,
			`SELECT COUNT(*) FROM tourism_dossiers WHERE user_id = $1 AND status = ANY($2)`,
			userID, completedStatuses,
		).Scan(&tourismCount)
	})

	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("count completed dossiers: %w", err)
	}

	return companyCount + tourismCount, nil
}

// ApplyDiscount runs the full count-quote-write sequence in one transaction.
// The user row is locked first, so two near-simultaneous payments for the same
// user cannot both quote from the same stale count.
func (r *Repo) ApplyDiscount(ctx context.Context, userID, dossierID uuid.UUID, dossierType engine.DossierType, quote QuoteFunc) (engine.Quote, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return engine.Quote{}, fmt.Errorf("begin apply discount: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUser(ctx, tx, userID); err != nil {
		return engine.Quote{}, err
	}

	completed, err := countCompletedTx(ctx, tx, userID)
	if err != nil {
		return engine.Quote{}, err
	}

	q, err := quote(completed)
	if err != nil {
		return engine.Quote{}, err
	}

	table, err := dossierTable(dossierType)
	if err != nil {
		return engine.Quote{}, err
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s SET
			original_price = $3,
			discount_applied = $4,
			final_price = $5,
			discount_reason = $6,
			updated_at = now()
		WHERE id = $1 AND user_id = $2`, table)

	result, err := tx.Exec(ctx, updateQuery,
		dossierID, userID, q.OriginalPrice, q.DiscountAmount, q.FinalPrice, q.Reason,
	)
	if err != nil {
		return engine.Quote{}, fmt.Errorf("apply discount snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return engine.Quote{}, apperr.NotFound(dossierNotFoundMessage)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO discount_history
			(user_id, dossier_id, dossier_type, discount_percentage, discount_amount, original_price, final_price, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, dossierID, string(dossierType),
		q.DiscountPercent, q.DiscountAmount, q.OriginalPrice, q.FinalPrice, q.Reason,
	)
	if err != nil {
		return engine.Quote{}, fmt.Errorf("append discount history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return engine.Quote{}, fmt.Errorf("commit apply discount: %w", err)
	}

	return q, nil
}

// SyncUserCounters recounts under the user row lock and overwrites the
// denormalized counter and tier columns.
func (r *Repo) SyncUserCounters(ctx context.Context, userID uuid.UUID, tierFor TierFunc) (int, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin counter sync: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUser(ctx, tx, userID); err != nil {
		return 0, 0, err
	}

	completed, err := countCompletedTx(ctx, tx, userID)
	if err != nil {
		return 0, 0, err
	}

	tier := tierFor(completed)

	_, err = tx.Exec(ctx, `
		UPDATE users SET total_dossiers_completed = $2, loyalty_tier = $3, updated_at = now()
		WHERE id = $1`, userID, completed, tier)
	if err != nil {
		return 0, 0, fmt.Errorf("update user counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit counter sync: %w", err)
	}

	return completed, tier, nil
}

// ListHistory returns the user's discount audit rows, newest first.
func (r *Repo) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]HistoryEntry, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, dossier_id, dossier_type, discount_percentage,
			discount_amount, original_price, final_price, reason, created_at
		FROM discount_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list discount history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.DossierID, &entry.DossierType,
			&entry.DiscountPercent, &entry.DiscountAmount, &entry.OriginalPrice,
			&entry.FinalPrice, &entry.Reason, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan discount history: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discount history: %w", err)
	}

	return entries, nil
}

func lockUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return fmt.Errorf("lock user row: %w", err)
	}
	return nil
}

func countCompletedTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int, error) {
	var companyCount, tourismCount int

	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM company_dossiers WHERE user_id = $1 AND status = ANY($2)`,
		userID, completedStatuses,
	).Scan(&companyCount)
	if err != nil {
		return 0, fmt.Errorf("count company dossiers: %w", err)
	}

	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM tourism_dossiers WHERE user_id = $1 AND status = ANY($2)`,
		userID, completedStatuses,
	).Scan(&tourismCount)
	if err != nil {
		return 0, fmt.Errorf("count tourism dossiers: %w", err)
	}

	return companyCount + tourismCount, nil
}

func dossierTable(dossierType engine.DossierType) (string, error) {
	switch dossierType {
	case engine.DossierTypeCompany:
		return "company_dossiers", nil
	case engine.DossierTypeTourism:
		return "tourism_dossiers", nil
	default:
		return "", apperr.BadRequest(fmt.Sprintf("unknown dossier type %q", dossierType))
	}
}
