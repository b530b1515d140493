package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/N0urDEV/Formalitys-sub001/internal/adapters/storage"
	dossierrepo "github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	dossiersvc "github.com/N0urDEV/Formalitys-sub001/internal/dossiers/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/email"
	paymentsvc "github.com/N0urDEV/Formalitys-sub001/internal/payments/service"
	"github.com/N0urDEV/Formalitys-sub001/internal/pdf"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
)

const dossierLabelCompany = "Création de société"
const dossierLabelTourism = "Régularisation de location touristique"

// Jobs executes the background work triggered by a successful payment.
// The worker runs them from the queue; without Redis the dispatcher runs
// them inline.
type Jobs struct {
	dossiers   *dossiersvc.Service
	pdfGen     *pdf.Generator
	store      storage.StorageService
	pdfBucket  string
	mail       email.Sender
	users      paymentsvc.UserReader
	appBaseURL string
	log        *logger.Logger
}

func NewJobs(dossiers *dossiersvc.Service, pdfGen *pdf.Generator, store storage.StorageService, pdfBucket string, mail email.Sender, users paymentsvc.UserReader, appBaseURL string, log *logger.Logger) *Jobs {
	return &Jobs{
		dossiers:   dossiers,
		pdfGen:     pdfGen,
		store:      store,
		pdfBucket:  pdfBucket,
		mail:       mail,
		users:      users,
		appBaseURL: appBaseURL,
		log:        log,
	}
}

// GenerateDossierPDF renders the dossier summary, uploads it to the PDF
// bucket and records the file key on the dossier.
func (j *Jobs) GenerateDossierPDF(ctx context.Context, payload DossierPDFPayload) error {
	dossierID, err := uuid.Parse(payload.DossierID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return err
	}

	data, err := j.summaryData(ctx, payload.DossierType, dossierID, userID)
	if err != nil {
		return err
	}

	pdfBytes, err := j.pdfGen.GenerateSummary(ctx, data)
	if err != nil {
		return fmt.Errorf("render dossier summary: %w", err)
	}

	fileName := fmt.Sprintf("dossier-%s.pdf", dossierID)
	fileKey, err := j.store.UploadFile(ctx, j.pdfBucket, payload.UserID, fileName, "application/pdf",
		bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return fmt.Errorf("upload dossier summary: %w", err)
	}

	if err := j.dossiers.SetPDFFileKey(ctx, payload.DossierType, dossierID, fileKey); err != nil {
		return err
	}

	j.log.Info("dossier summary generated", "dossier_id", dossierID, "file_key", fileKey)
	return nil
}

// SendPaymentConfirmation emails the payment receipt. The dossier summary is
// attached when it has already been generated.
func (j *Jobs) SendPaymentConfirmation(ctx context.Context, payload PaymentConfirmationPayload) error {
	if payload.CustomerEmail == "" {
		j.log.Warn("payment confirmation skipped, no recipient", "payment_id", payload.PaymentID)
		return nil
	}

	dossierID, err := uuid.Parse(payload.DossierID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return err
	}

	customerName := payload.CustomerEmail
	if info, err := j.users.UserInfo(ctx, userID); err == nil && info.Name != "" {
		customerName = info.Name
	}

	label := dossierLabelTourism
	if payload.DossierType == "company" {
		label = dossierLabelCompany
	}

	var attachments []email.Attachment
	if key := j.pdfFileKey(ctx, payload.DossierType, dossierID, userID); key != "" {
		if content, err := j.downloadObject(ctx, key); err == nil {
			attachments = append(attachments, email.Attachment{
				Content:  content,
				FileName: fmt.Sprintf("dossier-%s.pdf", dossierID),
				MIMEType: "application/pdf",
			})
		} else {
			j.log.Warn("could not attach dossier summary", "file_key", key, "error", err)
		}
	}

	return j.mail.SendPaymentConfirmationEmail(ctx, payload.CustomerEmail, customerName, label, payload.AmountCents, attachments...)
}

func (j *Jobs) summaryData(ctx context.Context, dossierType string, dossierID, userID uuid.UUID) (pdf.SummaryData, error) {
	info, err := j.users.UserInfo(ctx, userID)
	if err != nil {
		return pdf.SummaryData{}, err
	}

	data := pdf.SummaryData{
		DossierID:     dossierID.String(),
		CustomerName:  info.Name,
		CustomerEmail: info.Email,
		TrackingURL:   fmt.Sprintf("%s/dossiers/%s/%s", strings.TrimRight(j.appBaseURL, "/"), dossierType, dossierID),
	}

	switch dossierType {
	case "company":
		d, err := j.dossiers.GetCompany(ctx, dossierID, userID, false)
		if err != nil {
			return pdf.SummaryData{}, err
		}
		data.DossierLabel = dossierLabelCompany
		data.Status = d.Status
		data.CreatedAt = d.CreatedAt
		data.Details = []pdf.SummaryLine{
			{Label: "Dénominations proposées", Value: strings.Join(d.ProposedNames, ", ")},
			{Label: "Forme juridique", Value: d.LegalForm},
			{Label: "Activités", Value: d.Activities},
			{Label: "Capital social", Value: pdf.FormatCents(d.CapitalCents)},
			{Label: "Siège social", Value: d.Headquarters},
		}
		fillPricing(&data, d.PriceSnapshot)
	case "tourism":
		d, err := j.dossiers.GetTourism(ctx, dossierID, userID, false)
		if err != nil {
			return pdf.SummaryData{}, err
		}
		data.DossierLabel = dossierLabelTourism
		data.Status = d.Status
		data.CreatedAt = d.CreatedAt
		data.Details = []pdf.SummaryLine{
			{Label: "Type de bien", Value: d.PropertyType},
			{Label: "Adresse", Value: d.PropertyAddress},
			{Label: "Ville", Value: d.City},
			{Label: "Nombre de chambres", Value: fmt.Sprintf("%d", d.RoomsCount)},
			{Label: "Capacité d'accueil", Value: fmt.Sprintf("%d", d.GuestCapacity)},
		}
		if d.PermitNumber != nil {
			data.Details = append(data.Details, pdf.SummaryLine{Label: "Numéro d'autorisation", Value: *d.PermitNumber})
		}
		fillPricing(&data, d.PriceSnapshot)
	default:
		return pdf.SummaryData{}, fmt.Errorf("unknown dossier type %q", dossierType)
	}

	docs, err := j.dossiers.ListDocuments(ctx, dossierType, dossierID, userID, false)
	if err == nil {
		for _, doc := range docs {
			data.Documents = append(data.Documents, doc.FileName)
		}
	}

	return data, nil
}

func fillPricing(data *pdf.SummaryData, snap dossierrepo.PriceSnapshot) {
	if snap.OriginalPrice != nil {
		data.OriginalPrice = pdf.FormatCents(*snap.OriginalPrice)
	}
	if snap.DiscountApplied != nil {
		data.DiscountPercent = *snap.DiscountApplied
	}
	if snap.FinalPrice != nil {
		data.FinalPrice = pdf.FormatCents(*snap.FinalPrice)
	}
	if snap.DiscountReason != nil {
		data.DiscountReason = *snap.DiscountReason
	}
}

func (j *Jobs) pdfFileKey(ctx context.Context, dossierType string, dossierID, userID uuid.UUID) string {
	switch dossierType {
	case "company":
		if d, err := j.dossiers.GetCompany(ctx, dossierID, userID, false); err == nil && d.PDFFileKey != nil {
			return *d.PDFFileKey
		}
	case "tourism":
		if d, err := j.dossiers.GetTourism(ctx, dossierID, userID, false); err == nil && d.PDFFileKey != nil {
			return *d.PDFFileKey
		}
	}
	return ""
}

func (j *Jobs) downloadObject(ctx context.Context, fileKey string) ([]byte, error) {
	rc, err := j.store.DownloadFile(ctx, j.pdfBucket, fileKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
