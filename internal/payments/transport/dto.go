// Package transport defines the HTTP request/response shapes for payments.
package transport

import (
	"time"

	"github.com/N0urDEV/Formalitys-sub001/internal/payments/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/pricing/engine"
)

// IntentResponse is returned when a PaymentIntent is created for a dossier.
type IntentResponse struct {
	PaymentID       string `json:"paymentId"`
	ClientSecret    string `json:"clientSecret"`
	AmountCents     int64  `json:"amountCents"`
	Currency        string `json:"currency"`
	OriginalPrice   int64  `json:"originalPrice"`
	DiscountPercent int64  `json:"discountPercentage"`
	DiscountAmount  int64  `json:"discountAmount"`
	DiscountReason  string `json:"discountReason"`
}

// PaymentResponse is one entry in a user's payment history.
type PaymentResponse struct {
	ID            string    `json:"id"`
	DossierID     string    `json:"dossierId"`
	DossierType   string    `json:"dossierType"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	FailureReason *string   `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IntentFromService builds the intent response from the persisted payment
// and the quote that priced it.
func IntentFromService(p repository.Payment, clientSecret string, q engine.Quote) IntentResponse {
	return IntentResponse{
		PaymentID:       p.ID.String(),
		ClientSecret:    clientSecret,
		AmountCents:     p.AmountCents,
		Currency:        p.Currency,
		OriginalPrice:   q.OriginalPrice,
		DiscountPercent: q.DiscountPercent,
		DiscountAmount:  q.DiscountAmount,
		DiscountReason:  q.Reason,
	}
}

func FromPayment(p repository.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		DossierID:     p.DossierID.String(),
		DossierType:   p.DossierType,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Status:        p.Status,
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
	}
}
