// Package repository implements dossier persistence for both dossier kinds
// and their attached documents.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dossier statuses, shared by both dossier kinds.
const (
	StatusDraft          = "DRAFT"
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusPaid           = "PAID"
	StatusInProgress     = "IN_PROGRESS"
	StatusCompleted      = "COMPLETED"
	StatusCancelled      = "CANCELLED"
)

// ValidStatus reports whether s is a known dossier status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPendingPayment, StatusPaid, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PriceSnapshot is written onto a dossier once per payment attempt and never
// recomputed retroactively.
type PriceSnapshot struct {
	OriginalPrice   *int64  `json:"originalPrice"`
	DiscountApplied *int64  `json:"discountApplied"`
	FinalPrice      *int64  `json:"finalPrice"`
	DiscountReason  *string `json:"discountReason"`
}

// CompanyDossier is a company creation filing.
type CompanyDossier struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Status        string
	CurrentStep   int
	ProposedNames []string
	LegalForm     string
	Activities    string
	CapitalCents  int64
	Headquarters  string
	Associates    json.RawMessage
	PriceSnapshot
	PDFFileKey *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TourismDossier is a tourism-rental regularization filing.
type TourismDossier struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Status          string
	CurrentStep     int
	PropertyType    string
	PropertyAddress string
	City            string
	RoomsCount      int
	GuestCapacity   int
	OwnerDetails    json.RawMessage
	PermitNumber    *string
	PriceSnapshot
	PDFFileKey *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Document is a justificatif attached to a dossier.
type Document struct {
	ID          uuid.UUID
	DossierID   uuid.UUID
	DossierType string
	UserID      uuid.UUID
	FileKey     string
	FileName    string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

const errDossierNotFound = "dossier not found"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- company dossiers ---

const companyColumns = `id, user_id, status, current_step, proposed_names, legal_form,
	activities, capital_cents, headquarters, associates,
	original_price, discount_applied, final_price, discount_reason,
	pdf_file_key, created_at, updated_at`

func (r *Repository) scanCompany(row pgx.Row) (CompanyDossier, error) {
	var d CompanyDossier
	err := row.Scan(
		&d.ID, &d.UserID, &d.Status, &d.CurrentStep, &d.ProposedNames, &d.LegalForm,
		&d.Activities, &d.CapitalCents, &d.Headquarters, &d.Associates,
		&d.OriginalPrice, &d.DiscountApplied, &d.FinalPrice, &d.DiscountReason,
		&d.PDFFileKey, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CompanyDossier{}, apperr.NotFound(errDossierNotFound)
	}
	if err != nil {
		return CompanyDossier{}, fmt.Errorf("scan company dossier: %w", err)
	}
	return d, nil
}

func (r *Repository) CreateCompany(ctx context.Context, d CompanyDossier) (CompanyDossier, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO company_dossiers
			(user_id, status, current_step, proposed_names, legal_form, activities, capital_cents, headquarters, associates)
		VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8)
		RETURNING `+companyColumns,
		d.UserID, StatusDraft, d.ProposedNames, d.LegalForm, d.Activities,
		d.CapitalCents, d.Headquarters, d.Associates,
	)
	return r.scanCompany(row)
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (CompanyDossier, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM company_dossiers WHERE id = $1`, id)
	return r.scanCompany(row)
}

func (r *Repository) ListCompanyByUser(ctx context.Context, userID uuid.UUID) ([]CompanyDossier, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+companyColumns+` FROM company_dossiers
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list company dossiers: %w", err)
	}
	defer rows.Close()

	var list []CompanyDossier
	for rows.Next() {
		d, err := r.scanCompany(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *Repository) UpdateCompany(ctx context.Context, d CompanyDossier) (CompanyDossier, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE company_dossiers SET
			proposed_names = $3, legal_form = $4, activities = $5,
			capital_cents = $6, headquarters = $7, associates = $8,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+companyColumns,
		d.ID, d.UserID, d.ProposedNames, d.LegalForm, d.Activities,
		d.CapitalCents, d.Headquarters, d.Associates,
	)
	return r.scanCompany(row)
}

// --- tourism dossiers ---

const tourismColumns = `id, user_id, status, current_step, property_type, property_address,
	city, rooms_count, guest_capacity, owner_details, permit_number,
	original_price, discount_applied, final_price, discount_reason,
	pdf_file_key, created_at, updated_at`

func (r *Repository) scanTourism(row pgx.Row) (TourismDossier, error) {
	var d TourismDossier
	err := row.Scan(
		&d.ID, &d.UserID, &d.Status, &d.CurrentStep, &d.PropertyType, &d.PropertyAddress,
		&d.City, &d.RoomsCount, &d.GuestCapacity, &d.OwnerDetails, &d.PermitNumber,
		&d.OriginalPrice, &d.DiscountApplied, &d.FinalPrice, &d.DiscountReason,
		&d.PDFFileKey, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return TourismDossier{}, apperr.NotFound(errDossierNotFound)
	}
	if err != nil {
		return TourismDossier{}, fmt.Errorf("scan tourism dossier: %w", err)
	}
	return d, nil
}

func (r *Repository) CreateTourism(ctx context.Context, d TourismDossier) (TourismDossier, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tourism_dossiers
			(user_id, status, current_step, property_type, property_address, city, rooms_count, guest_capacity, owner_details, permit_number)
		VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+tourismColumns,
		d.UserID, StatusDraft, d.PropertyType, d.PropertyAddress, d.City,
		d.RoomsCount, d.GuestCapacity, d.OwnerDetails, d.PermitNumber,
	)
	return r.scanTourism(row)
}

func (r *Repository) GetTourism(ctx context.Context, id uuid.UUID) (TourismDossier, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tourismColumns+` FROM tourism_dossiers WHERE id = $1`, id)
	return r.scanTourism(row)
}

func (r *Repository) ListTourismByUser(ctx context.Context, userID uuid.UUID) ([]TourismDossier, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tourismColumns+` FROM tourism_dossiers
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tourism dossiers: %w", err)
	}
	defer rows.Close()

	var list []TourismDossier
	for rows.Next() {
		d, err := r.scanTourism(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *Repository) UpdateTourism(ctx context.Context, d TourismDossier) (TourismDossier, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tourism_dossiers SET
			property_type = $3, property_address = $4, city = $5,
			rooms_count = $6, guest_capacity = $7, owner_details = $8, permit_number = $9,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+tourismColumns,
		d.ID, d.UserID, d.PropertyType, d.PropertyAddress, d.City,
		d.RoomsCount, d.GuestCapacity, d.OwnerDetails, d.PermitNumber,
	)
	return r.scanTourism(row)
}

// --- shared operations keyed by dossier type ---

func tableFor(dossierType string) (string, error) {
	switch dossierType {
	case "company":
		return "company_dossiers", nil
	case "tourism":
		return "tourism_dossiers", nil
	default:
		return "", apperr.BadRequest(fmt.Sprintf("unknown dossier type %q", dossierType))
	}
}

// GetOwnerAndStatus returns the owner and current status of a dossier.
func (r *Repository) GetOwnerAndStatus(ctx context.Context, dossierType string, id uuid.UUID) (uuid.UUID, string, error) {
	table, err := tableFor(dossierType)
	if err != nil {
		return uuid.Nil, "", err
	}

	var ownerID uuid.UUID
	var status string
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT user_id, status FROM %s WHERE id = $1`, table), id,
	).Scan(&ownerID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, "", apperr.NotFound(errDossierNotFound)
	}
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("get dossier owner: %w", err)
	}
	return ownerID, status, nil
}

// SetStatus updates a dossier's status and returns the previous one.
func (r *Repository) SetStatus(ctx context.Context, dossierType string, id uuid.UUID, status string) (string, error) {
	table, err := tableFor(dossierType)
	if err != nil {
		return "", err
	}

	var oldStatus string
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s d SET status = $2, updated_at = now()
		FROM (SELECT id, status FROM %s WHERE id = $1 FOR UPDATE) old
		WHERE d.id = old.id
		RETURNING old.status`, table, table),
		id, status,
	).Scan(&oldStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound(errDossierNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("set dossier status: %w", err)
	}
	return oldStatus, nil
}

// SetCurrentStep advances the wizard step.
func (r *Repository) SetCurrentStep(ctx context.Context, dossierType string, id, userID uuid.UUID, step int) error {
	table, err := tableFor(dossierType)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET current_step = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2`, table),
		id, userID, step,
	)
	if err != nil {
		return fmt.Errorf("set current step: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(errDossierNotFound)
	}
	return nil
}

// SetPDFFileKey records the generated summary PDF location.
func (r *Repository) SetPDFFileKey(ctx context.Context, dossierType string, id uuid.UUID, fileKey string) error {
	table, err := tableFor(dossierType)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET pdf_file_key = $2, updated_at = now()
		WHERE id = $1`, table),
		id, fileKey,
	)
	if err != nil {
		return fmt.Errorf("set pdf file key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(errDossierNotFound)
	}
	return nil
}

// GetPDFFileKey returns the dossier owner and the stored summary PDF key,
// which is nil until the PDF has been generated.
func (r *Repository) GetPDFFileKey(ctx context.Context, dossierType string, id uuid.UUID) (uuid.UUID, *string, error) {
	table, err := tableFor(dossierType)
	if err != nil {
		return uuid.Nil, nil, err
	}

	var ownerID uuid.UUID
	var fileKey *string
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT user_id, pdf_file_key FROM %s WHERE id = $1`, table),
		id,
	).Scan(&ownerID, &fileKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil, apperr.NotFound(errDossierNotFound)
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("get pdf file key: %w", err)
	}
	return ownerID, fileKey, nil
}

// Delete removes a DRAFT dossier and its document rows.
func (r *Repository) Delete(ctx context.Context, dossierType string, id, userID uuid.UUID) error {
	table, err := tableFor(dossierType)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete dossier: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM dossier_documents WHERE dossier_id = $1 AND dossier_type = $2`,
		id, dossierType); err != nil {
		return fmt.Errorf("delete dossier documents: %w", err)
	}

	result, err := tx.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1 AND user_id = $2 AND status = $3`, table),
		id, userID, StatusDraft,
	)
	if err != nil {
		return fmt.Errorf("delete dossier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(errDossierNotFound)
	}

	return tx.Commit(ctx)
}

// --- documents ---

func (r *Repository) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO dossier_documents (dossier_id, dossier_type, user_id, file_key, file_name, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		doc.DossierID, doc.DossierType, doc.UserID, doc.FileKey, doc.FileName, doc.ContentType, doc.SizeBytes,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (r *Repository) ListDocuments(ctx context.Context, dossierType string, dossierID uuid.UUID) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, dossier_id, dossier_type, user_id, file_key, file_name, content_type, size_bytes, created_at
		FROM dossier_documents
		WHERE dossier_id = $1 AND dossier_type = $2
		ORDER BY created_at`, dossierID, dossierType)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(
			&doc.ID, &doc.DossierID, &doc.DossierType, &doc.UserID,
			&doc.FileKey, &doc.FileName, &doc.ContentType, &doc.SizeBytes, &doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *Repository) GetDocument(ctx context.Context, docID uuid.UUID) (Document, error) {
	var doc Document
	err := r.pool.QueryRow(ctx, `
		SELECT id, dossier_id, dossier_type, user_id, file_key, file_name, content_type, size_bytes, created_at
		FROM dossier_documents WHERE id = $1`, docID,
	).Scan(
		&doc.ID, &doc.DossierID, &doc.DossierType, &doc.UserID,
		&doc.FileKey, &doc.FileName, &doc.ContentType, &doc.SizeBytes, &doc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, apperr.NotFound("document not found")
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *Repository) DeleteDocument(ctx context.Context, docID, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM dossier_documents WHERE id = $1 AND user_id = $2`, docID, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("document not found")
	}
	return nil
}
