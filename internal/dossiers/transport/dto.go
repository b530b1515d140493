// Package transport defines the dossier module's request and response shapes.
package transport

import (
	"encoding/json"
	"time"

	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
)

type CompanyDossierRequest struct {
	ProposedNames []string        `json:"proposedNames" validate:"required,min=1,max=3,dive,min=2,max=120"`
	LegalForm     string          `json:"legalForm" validate:"required,oneof=SARL SARLAU SAS SA"`
	Activities    string          `json:"activities" validate:"required,min=3,max=2000"`
	CapitalCents  int64           `json:"capitalCents" validate:"required,gt=0"`
	Headquarters  string          `json:"headquarters" validate:"required,min=3,max=300"`
	Associates    json.RawMessage `json:"associates" validate:"required"`
}

type TourismDossierRequest struct {
	PropertyType    string          `json:"propertyType" validate:"required,oneof=apartment house riad villa guesthouse"`
	PropertyAddress string          `json:"propertyAddress" validate:"required,min=5,max=300"`
	City            string          `json:"city" validate:"required,min=2,max=120"`
	RoomsCount      int             `json:"roomsCount" validate:"required,gte=1,lte=50"`
	GuestCapacity   int             `json:"guestCapacity" validate:"required,gte=1,lte=200"`
	OwnerDetails    json.RawMessage `json:"ownerDetails" validate:"required"`
	PermitNumber    *string         `json:"permitNumber" validate:"omitempty,max=60"`
}

type AdvanceStepRequest struct {
	Step int `json:"step" validate:"required,gte=1,lte=10"`
}

type PresignUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type PriceSnapshotResponse struct {
	OriginalPrice   *int64  `json:"originalPrice"`
	DiscountApplied *int64  `json:"discountApplied"`
	FinalPrice      *int64  `json:"finalPrice"`
	DiscountReason  *string `json:"discountReason"`
}

type CompanyDossierResponse struct {
	ID            string                `json:"id"`
	UserID        string                `json:"userId"`
	Status        string                `json:"status"`
	CurrentStep   int                   `json:"currentStep"`
	ProposedNames []string              `json:"proposedNames"`
	LegalForm     string                `json:"legalForm"`
	Activities    string                `json:"activities"`
	CapitalCents  int64                 `json:"capitalCents"`
	Headquarters  string                `json:"headquarters"`
	Associates    json.RawMessage       `json:"associates"`
	Pricing       PriceSnapshotResponse `json:"pricing"`
	HasPDF        bool                  `json:"hasPdf"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

type TourismDossierResponse struct {
	ID              string                `json:"id"`
	UserID          string                `json:"userId"`
	Status          string                `json:"status"`
	CurrentStep     int                   `json:"currentStep"`
	PropertyType    string                `json:"propertyType"`
	PropertyAddress string                `json:"propertyAddress"`
	City            string                `json:"city"`
	RoomsCount      int                   `json:"roomsCount"`
	GuestCapacity   int                   `json:"guestCapacity"`
	OwnerDetails    json.RawMessage       `json:"ownerDetails"`
	PermitNumber    *string               `json:"permitNumber,omitempty"`
	Pricing         PriceSnapshotResponse `json:"pricing"`
	HasPDF          bool                  `json:"hasPdf"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type DocumentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func FromCompany(d repository.CompanyDossier) CompanyDossierResponse {
	return CompanyDossierResponse{
		ID:            d.ID.String(),
		UserID:        d.UserID.String(),
		Status:        d.Status,
		CurrentStep:   d.CurrentStep,
		ProposedNames: d.ProposedNames,
		LegalForm:     d.LegalForm,
		Activities:    d.Activities,
		CapitalCents:  d.CapitalCents,
		Headquarters:  d.Headquarters,
		Associates:    d.Associates,
		Pricing: PriceSnapshotResponse{
			OriginalPrice:   d.OriginalPrice,
			DiscountApplied: d.DiscountApplied,
			FinalPrice:      d.FinalPrice,
			DiscountReason:  d.DiscountReason,
		},
		HasPDF:    d.PDFFileKey != nil,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func FromTourism(d repository.TourismDossier) TourismDossierResponse {
	return TourismDossierResponse{
		ID:              d.ID.String(),
		UserID:          d.UserID.String(),
		Status:          d.Status,
		CurrentStep:     d.CurrentStep,
		PropertyType:    d.PropertyType,
		PropertyAddress: d.PropertyAddress,
		City:            d.City,
		RoomsCount:      d.RoomsCount,
		GuestCapacity:   d.GuestCapacity,
		OwnerDetails:    d.OwnerDetails,
		PermitNumber:    d.PermitNumber,
		Pricing: PriceSnapshotResponse{
			OriginalPrice:   d.OriginalPrice,
			DiscountApplied: d.DiscountApplied,
			FinalPrice:      d.FinalPrice,
			DiscountReason:  d.DiscountReason,
		},
		HasPDF:    d.PDFFileKey != nil,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func FromDocument(doc repository.Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID.String(),
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		CreatedAt:   doc.CreatedAt,
	}
}
