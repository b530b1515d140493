// Package repository provides the cross-module read model for the admin
// back-office: dashboard aggregates, user and dossier listings.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// DashboardStats is the aggregate snapshot shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers           int
	VerifiedUsers        int
	DossiersByStatus     map[string]int
	DossiersByType       map[string]int
	RevenueCents         int64
	PaymentsSucceeded    int
	PaymentsFailed       int
	DiscountsGranted     int
	DiscountsAmountCents int64
	PublishedPosts       int
}

// UserRow is one entry in the admin user listing.
type UserRow struct {
	ID                    uuid.UUID
	Email                 string
	Name                  string
	Role                  string
	IsEmailVerified       bool
	TotalDossiersComplete int
	LoyaltyTier           int
	DossierCount          int
	CreatedAt             time.Time
}

// DossierRow is one entry in the cross-type dossier listing.
type DossierRow struct {
	ID          uuid.UUID
	DossierType string
	UserID      uuid.UUID
	UserEmail   string
	UserName    string
	Status      string
	CurrentStep int
	FinalPrice  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DossierFilter narrows the admin dossier listing.
type DossierFilter struct {
	Status      string
	DossierType string
	UserID      *uuid.UUID
	Limit       int
	Offset      int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// unionDossiers exposes both dossier tables as one relation with the
// columns the back-office needs.
const unionDossiers = `
	SELECT id, 'company' AS dossier_type, user_id, status, current_step, final_price, created_at, updated_at
	FROM company_dossiers
	UNION ALL
	SELECT id, 'tourism' AS dossier_type, user_id, status, current_step, final_price, created_at, updated_at
	FROM tourism_dossiers`

// GetDashboardStats gathers the dashboard aggregates concurrently.
func (r *Repository) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{
		DossiersByStatus: map[string]int{},
		DossiersByType:   map[string]int{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT count(*), count(*) FILTER (WHERE is_email_verified)
			FROM users`).Scan(&stats.TotalUsers, &stats.VerifiedUsers)
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT dossier_type, status, count(*)
			FROM (`+unionDossiers+`) d
			GROUP BY dossier_type, status`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var dossierType, status string
			var n int
			if err := rows.Scan(&dossierType, &status, &n); err != nil {
				return err
			}
			stats.DossiersByType[dossierType] += n
			stats.DossiersByStatus[status] += n
		}
		return rows.Err()
	})

	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT coalesce(sum(amount_cents) FILTER (WHERE status = 'SUCCEEDED'), 0),
			       count(*) FILTER (WHERE status = 'SUCCEEDED'),
			       count(*) FILTER (WHERE status = 'FAILED')
			FROM payments`).Scan(&stats.RevenueCents, &stats.PaymentsSucceeded, &stats.PaymentsFailed)
	})

	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT count(*), coalesce(sum(discount_amount), 0)
			FROM discount_history
			WHERE discount_percentage > 0`).Scan(&stats.DiscountsGranted, &stats.DiscountsAmountCents)
	})

	g.Go(func() error {
		return r.pool.QueryRow(gctx,
			`SELECT count(*) FROM blog_posts WHERE published`).Scan(&stats.PublishedPosts)
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, apperr.Wrap(apperr.KindInternal, "dashboard stats", err)
	}
	return stats, nil
}

// ListUsers returns a page of users with their dossier counts, newest first.
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]UserRow, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count users", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.role, u.is_email_verified,
		       u.total_dossiers_completed, u.loyalty_tier,
		       (SELECT count(*) FROM (`+unionDossiers+`) d WHERE d.user_id = u.id),
		       u.created_at
		FROM users u
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list users", err)
	}
	defer rows.Close()

	var out []UserRow
	for rows.Next() {
		var u UserRow
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsEmailVerified,
			&u.TotalDossiersComplete, &u.LoyaltyTier, &u.DossierCount, &u.CreatedAt); err != nil {
			return nil, 0, apperr.Wrap(apperr.KindInternal, "scan user", err)
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// ListDossiers returns a filtered page across both dossier types.
func (r *Repository) ListDossiers(ctx context.Context, f DossierFilter) ([]DossierRow, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := "WHERE 1=1"
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where += " AND d.status = " + arg(f.Status)
	}
	if f.DossierType != "" {
		where += " AND d.dossier_type = " + arg(f.DossierType)
	}
	if f.UserID != nil {
		where += " AND d.user_id = " + arg(*f.UserID)
	}

	var total int
	countQuery := `SELECT count(*) FROM (` + unionDossiers + `) d ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count dossiers", err)
	}

	query := `
		SELECT d.id, d.dossier_type, d.user_id, u.email, u.name, d.status,
		       d.current_step, d.final_price, d.created_at, d.updated_at
		FROM (` + unionDossiers + `) d
		JOIN users u ON u.id = d.user_id
		` + where + `
		ORDER BY d.created_at DESC
		LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list dossiers", err)
	}
	defer rows.Close()

	var out []DossierRow
	for rows.Next() {
		var d DossierRow
		if err := rows.Scan(&d.ID, &d.DossierType, &d.UserID, &d.UserEmail, &d.UserName,
			&d.Status, &d.CurrentStep, &d.FinalPrice, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, apperr.Wrap(apperr.KindInternal, "scan dossier", err)
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}
