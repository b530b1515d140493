// Package service orchestrates dossier lifecycle: wizard progress, status
// transitions, ownership checks, and document handling.
package service

import (
	"context"
	"fmt"

	"github.com/N0urDEV/Formalitys-sub001/internal/adapters/storage"
	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
)

// Wizard lengths per dossier kind.
const (
	CompanyMaxStep = 5
	TourismMaxStep = 4
)

// statusTransitions lists the allowed customer-facing moves. Admin overrides
// bypass this table (see SetStatusAdmin).
var statusTransitions = map[string][]string{
	repository.StatusDraft:          {repository.StatusPendingPayment, repository.StatusCancelled},
	repository.StatusPendingPayment: {repository.StatusPaid, repository.StatusCancelled},
	repository.StatusPaid:           {repository.StatusInProgress},
	repository.StatusInProgress:     {repository.StatusCompleted},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// LoyaltySyncer resynchronizes a user's denormalized loyalty counters.
// Implemented by the pricing service.
type LoyaltySyncer interface {
	UpdateUserDossierCounters(ctx context.Context, userID uuid.UUID) (int, int, error)
}

type Service struct {
	repo       *repository.Repository
	storage    storage.StorageService
	docsBucket string
	pdfBucket  string
	loyalty    LoyaltySyncer
	bus        events.Bus
	log        *logger.Logger
}

func New(repo *repository.Repository, store storage.StorageService, docsBucket, pdfBucket string, loyalty LoyaltySyncer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		storage:    store,
		docsBucket: docsBucket,
		pdfBucket:  pdfBucket,
		loyalty:    loyalty,
		bus:        bus,
		log:        log,
	}
}

// --- company dossiers ---

func (s *Service) CreateCompany(ctx context.Context, d repository.CompanyDossier) (repository.CompanyDossier, error) {
	created, err := s.repo.CreateCompany(ctx, d)
	if err != nil {
		return repository.CompanyDossier{}, err
	}

	s.bus.Publish(ctx, events.DossierCreated{
		BaseEvent:   events.NewBaseEvent(),
		DossierID:   created.ID,
		UserID:      created.UserID,
		DossierType: "company",
	})
	return created, nil
}

func (s *Service) GetCompany(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (repository.CompanyDossier, error) {
	d, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return repository.CompanyDossier{}, err
	}
	if d.UserID != requesterID && !isAdmin {
		return repository.CompanyDossier{}, apperr.Forbidden("not your dossier")
	}
	return d, nil
}

func (s *Service) ListCompany(ctx context.Context, userID uuid.UUID) ([]repository.CompanyDossier, error) {
	return s.repo.ListCompanyByUser(ctx, userID)
}

func (s *Service) UpdateCompany(ctx context.Context, d repository.CompanyDossier) (repository.CompanyDossier, error) {
	if err := s.ensureEditable(ctx, "company", d.ID, d.UserID); err != nil {
		return repository.CompanyDossier{}, err
	}
	return s.repo.UpdateCompany(ctx, d)
}

// --- tourism dossiers ---

func (s *Service) CreateTourism(ctx context.Context, d repository.TourismDossier) (repository.TourismDossier, error) {
	created, err := s.repo.CreateTourism(ctx, d)
	if err != nil {
		return repository.TourismDossier{}, err
	}

	s.bus.Publish(ctx, events.DossierCreated{
		BaseEvent:   events.NewBaseEvent(),
		DossierID:   created.ID,
		UserID:      created.UserID,
		DossierType: "tourism",
	})
	return created, nil
}

func (s *Service) GetTourism(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (repository.TourismDossier, error) {
	d, err := s.repo.GetTourism(ctx, id)
	if err != nil {
		return repository.TourismDossier{}, err
	}
	if d.UserID != requesterID && !isAdmin {
		return repository.TourismDossier{}, apperr.Forbidden("not your dossier")
	}
	return d, nil
}

func (s *Service) ListTourism(ctx context.Context, userID uuid.UUID) ([]repository.TourismDossier, error) {
	return s.repo.ListTourismByUser(ctx, userID)
}

func (s *Service) UpdateTourism(ctx context.Context, d repository.TourismDossier) (repository.TourismDossier, error) {
	if err := s.ensureEditable(ctx, "tourism", d.ID, d.UserID); err != nil {
		return repository.TourismDossier{}, err
	}
	return s.repo.UpdateTourism(ctx, d)
}

// --- shared lifecycle ---

// OwnerAndStatus exposes the owner and status of a dossier to other modules
// (payments, admin).
func (s *Service) OwnerAndStatus(ctx context.Context, dossierType string, id uuid.UUID) (uuid.UUID, string, error) {
	return s.repo.GetOwnerAndStatus(ctx, dossierType, id)
}

// ensureEditable verifies ownership and that the dossier has not entered the
// paid pipeline. Drafts and dossiers awaiting payment stay editable.
func (s *Service) ensureEditable(ctx context.Context, dossierType string, id, userID uuid.UUID) error {
	ownerID, status, err := s.repo.GetOwnerAndStatus(ctx, dossierType, id)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return apperr.Forbidden("not your dossier")
	}
	if status != repository.StatusDraft && status != repository.StatusPendingPayment {
		return apperr.Conflict(fmt.Sprintf("dossier in status %s can no longer be edited", status))
	}
	return nil
}

// AdvanceStep moves the wizard forward. Steps only move forward and are
// capped at the final step for the dossier kind.
func (s *Service) AdvanceStep(ctx context.Context, dossierType string, id, userID uuid.UUID, step int) error {
	maxStep := CompanyMaxStep
	if dossierType == "tourism" {
		maxStep = TourismMaxStep
	}
	if step < 1 || step > maxStep {
		return apperr.Validation(fmt.Sprintf("step must be between 1 and %d", maxStep))
	}

	if err := s.ensureEditable(ctx, dossierType, id, userID); err != nil {
		return err
	}
	return s.repo.SetCurrentStep(ctx, dossierType, id, userID, step)
}

// Cancel moves a dossier to CANCELLED and resyncs loyalty counters.
func (s *Service) Cancel(ctx context.Context, dossierType string, id, userID uuid.UUID) error {
	ownerID, status, err := s.repo.GetOwnerAndStatus(ctx, dossierType, id)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return apperr.Forbidden("not your dossier")
	}
	if !transitionAllowed(status, repository.StatusCancelled) {
		return apperr.Conflict(fmt.Sprintf("dossier in status %s cannot be cancelled", status))
	}

	return s.setStatus(ctx, dossierType, id, ownerID, repository.StatusCancelled)
}

// SetStatus applies a customer-path transition (used by payments).
func (s *Service) SetStatus(ctx context.Context, dossierType string, id uuid.UUID, newStatus string) error {
	ownerID, status, err := s.repo.GetOwnerAndStatus(ctx, dossierType, id)
	if err != nil {
		return err
	}
	if status == newStatus {
		return nil
	}
	if !transitionAllowed(status, newStatus) {
		return apperr.Conflict(fmt.Sprintf("cannot move dossier from %s to %s", status, newStatus))
	}
	return s.setStatus(ctx, dossierType, id, ownerID, newStatus)
}

// SetStatusAdmin lets the back-office set any valid status.
func (s *Service) SetStatusAdmin(ctx context.Context, dossierType string, id uuid.UUID, newStatus string) error {
	if !repository.ValidStatus(newStatus) {
		return apperr.Validation(fmt.Sprintf("unknown status %q", newStatus))
	}
	ownerID, _, err := s.repo.GetOwnerAndStatus(ctx, dossierType, id)
	if err != nil {
		return err
	}
	return s.setStatus(ctx, dossierType, id, ownerID, newStatus)
}

func (s *Service) setStatus(ctx context.Context, dossierType string, id, ownerID uuid.UUID, newStatus string) error {
	oldStatus, err := s.repo.SetStatus(ctx, dossierType, id, newStatus)
	if err != nil {
		return err
	}

	// Completed/paid counts feed the loyalty tiers; recount on every change.
	if _, _, err := s.loyalty.UpdateUserDossierCounters(ctx, ownerID); err != nil {
		s.log.Error("loyalty counter sync failed", "user_id", ownerID.String(), "error", err.Error())
	}

	s.bus.Publish(ctx, events.DossierStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		DossierID:   id,
		UserID:      ownerID,
		DossierType: dossierType,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
	})
	return nil
}

// SetPDFFileKey records the generated summary PDF for a dossier.
func (s *Service) SetPDFFileKey(ctx context.Context, dossierType string, id uuid.UUID, fileKey string) error {
	return s.repo.SetPDFFileKey(ctx, dossierType, id, fileKey)
}

// PresignPDF returns a presigned GET URL for the dossier's summary PDF.
// The PDF is generated asynchronously after payment; until then this is a
// not-found.
func (s *Service) PresignPDF(ctx context.Context, dossierType string, id, requesterID uuid.UUID, isAdmin bool) (*storage.PresignedURL, error) {
	ownerID, fileKey, err := s.repo.GetPDFFileKey(ctx, dossierType, id)
	if err != nil {
		return nil, err
	}
	if ownerID != requesterID && !isAdmin {
		return nil, apperr.Forbidden("not your dossier")
	}
	if fileKey == nil {
		return nil, apperr.NotFound("summary PDF not generated yet")
	}
	return s.storage.GenerateDownloadURL(ctx, s.pdfBucket, *fileKey)
}

// Delete removes a draft dossier.
func (s *Service) Delete(ctx context.Context, dossierType string, id, userID uuid.UUID) error {
	return s.repo.Delete(ctx, dossierType, id, userID)
}

// --- documents ---

// PresignUpload validates the file and returns a presigned PUT URL plus the
// recorded document row. The object key is scoped to user and dossier.
func (s *Service) PresignUpload(ctx context.Context, dossierType string, dossierID, userID uuid.UUID, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, repository.Document, error) {
	if err := s.ensureEditable(ctx, dossierType, dossierID, userID); err != nil {
		return nil, repository.Document{}, err
	}

	folder := fmt.Sprintf("%s/%s/%s", userID, dossierType, dossierID)
	presigned, err := s.storage.GenerateUploadURL(ctx, s.docsBucket, folder, fileName, contentType, sizeBytes)
	if err != nil {
		return nil, repository.Document{}, apperr.Wrap(apperr.KindValidation, "upload rejected", err)
	}

	doc, err := s.repo.CreateDocument(ctx, repository.Document{
		DossierID:   dossierID,
		DossierType: dossierType,
		UserID:      userID,
		FileKey:     presigned.FileKey,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
	})
	if err != nil {
		return nil, repository.Document{}, err
	}

	return presigned, doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, dossierType string, dossierID, requesterID uuid.UUID, isAdmin bool) ([]repository.Document, error) {
	ownerID, _, err := s.repo.GetOwnerAndStatus(ctx, dossierType, dossierID)
	if err != nil {
		return nil, err
	}
	if ownerID != requesterID && !isAdmin {
		return nil, apperr.Forbidden("not your dossier")
	}
	return s.repo.ListDocuments(ctx, dossierType, dossierID)
}

// PresignDownload returns a presigned GET URL for one document.
func (s *Service) PresignDownload(ctx context.Context, docID, requesterID uuid.UUID, isAdmin bool) (*storage.PresignedURL, error) {
	doc, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != requesterID && !isAdmin {
		return nil, apperr.Forbidden("not your document")
	}
	return s.storage.GenerateDownloadURL(ctx, s.docsBucket, doc.FileKey)
}

// DeleteDocument removes the row and the stored object.
func (s *Service) DeleteDocument(ctx context.Context, docID, userID uuid.UUID) error {
	doc, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if doc.UserID != userID {
		return apperr.Forbidden("not your document")
	}
	if err := s.ensureEditable(ctx, doc.DossierType, doc.DossierID, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteDocument(ctx, docID, userID); err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, s.docsBucket, doc.FileKey); err != nil {
		// Row is gone; the orphaned object is only a storage leak.
		s.log.Error("delete stored object failed", "file_key", doc.FileKey, "error", err.Error())
	}
	return nil
}
