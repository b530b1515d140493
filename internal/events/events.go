// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/N0urDEV/Formalitys-sub001/platform/events"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	VerifyToken string    `json:"verifyToken"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// PasswordResetRequested is published when a user requests a password reset.
type PasswordResetRequested struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	ResetToken string    `json:"resetToken"`
}

func (e PasswordResetRequested) EventName() string { return "auth.password.reset_requested" }

// =============================================================================
// Dossier Domain Events
// =============================================================================

// DossierCreated is published when a customer starts a new dossier.
type DossierCreated struct {
	BaseEvent
	DossierID   uuid.UUID `json:"dossierId"`
	UserID      uuid.UUID `json:"userId"`
	DossierType string    `json:"dossierType"` // "company" or "tourism"
}

func (e DossierCreated) EventName() string { return "dossiers.created" }

// DossierStatusChanged is published when a dossier's status changes
// (payment, admin override, cancellation).
type DossierStatusChanged struct {
	BaseEvent
	DossierID   uuid.UUID `json:"dossierId"`
	UserID      uuid.UUID `json:"userId"`
	DossierType string    `json:"dossierType"`
	OldStatus   string    `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
}

func (e DossierStatusChanged) EventName() string { return "dossiers.status.changed" }

// =============================================================================
// Payment Domain Events
// =============================================================================

// PaymentSucceeded is published when Stripe confirms a payment.
// Subscribers send the confirmation email, generate the dossier PDF,
// and resynchronize the user's loyalty counters.
type PaymentSucceeded struct {
	BaseEvent
	PaymentID    uuid.UUID `json:"paymentId"`
	DossierID    uuid.UUID `json:"dossierId"`
	UserID       uuid.UUID `json:"userId"`
	DossierType  string    `json:"dossierType"`
	AmountCents  int64     `json:"amountCents"`
	CustomerMail string    `json:"customerMail"`
}

func (e PaymentSucceeded) EventName() string { return "payments.succeeded" }

// PaymentFailed is published when Stripe reports a failed payment attempt.
type PaymentFailed struct {
	BaseEvent
	PaymentID   uuid.UUID `json:"paymentId"`
	DossierID   uuid.UUID `json:"dossierId"`
	UserID      uuid.UUID `json:"userId"`
	DossierType string    `json:"dossierType"`
	Reason      string    `json:"reason"`
}

func (e PaymentFailed) EventName() string { return "payments.failed" }
