// Package transport defines the HTTP response shapes for the admin
// back-office.
package transport

import (
	"time"

	"github.com/N0urDEV/Formalitys-sub001/internal/admin/repository"
)

// StatusOverrideRequest moves a dossier to an arbitrary valid status.
type StatusOverrideRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT PENDING_PAYMENT PAID IN_PROGRESS COMPLETED CANCELLED"`
}

type DashboardResponse struct {
	TotalUsers           int            `json:"totalUsers"`
	VerifiedUsers        int            `json:"verifiedUsers"`
	DossiersByStatus     map[string]int `json:"dossiersByStatus"`
	DossiersByType       map[string]int `json:"dossiersByType"`
	RevenueCents         int64          `json:"revenueCents"`
	PaymentsSucceeded    int            `json:"paymentsSucceeded"`
	PaymentsFailed       int            `json:"paymentsFailed"`
	DiscountsGranted     int            `json:"discountsGranted"`
	DiscountsAmountCents int64          `json:"discountsAmountCents"`
	PublishedPosts       int            `json:"publishedPosts"`
}

type UserResponse struct {
	ID                     string    `json:"id"`
	Email                  string    `json:"email"`
	Name                   string    `json:"name"`
	Role                   string    `json:"role"`
	IsEmailVerified        bool      `json:"isEmailVerified"`
	TotalDossiersCompleted int       `json:"totalDossiersCompleted"`
	LoyaltyTier            int       `json:"loyaltyTier"`
	DossierCount           int       `json:"dossierCount"`
	CreatedAt              time.Time `json:"createdAt"`
}

type DossierResponse struct {
	ID          string    `json:"id"`
	DossierType string    `json:"dossierType"`
	UserID      string    `json:"userId"`
	UserEmail   string    `json:"userEmail"`
	UserName    string    `json:"userName"`
	Status      string    `json:"status"`
	CurrentStep int       `json:"currentStep"`
	FinalPrice  *int64    `json:"finalPrice,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromStats(s repository.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalUsers:           s.TotalUsers,
		VerifiedUsers:        s.VerifiedUsers,
		DossiersByStatus:     s.DossiersByStatus,
		DossiersByType:       s.DossiersByType,
		RevenueCents:         s.RevenueCents,
		PaymentsSucceeded:    s.PaymentsSucceeded,
		PaymentsFailed:       s.PaymentsFailed,
		DiscountsGranted:     s.DiscountsGranted,
		DiscountsAmountCents: s.DiscountsAmountCents,
		PublishedPosts:       s.PublishedPosts,
	}
}

func FromUserRow(u repository.UserRow) UserResponse {
	return UserResponse{
		ID:                     u.ID.String(),
		Email:                  u.Email,
		Name:                   u.Name,
		Role:                   u.Role,
		IsEmailVerified:        u.IsEmailVerified,
		TotalDossiersCompleted: u.TotalDossiersComplete,
		LoyaltyTier:            u.LoyaltyTier,
		DossierCount:           u.DossierCount,
		CreatedAt:              u.CreatedAt,
	}
}

func FromDossierRow(d repository.DossierRow) DossierResponse {
	return DossierResponse{
		ID:          d.ID.String(),
		DossierType: d.DossierType,
		UserID:      d.UserID.String(),
		UserEmail:   d.UserEmail,
		UserName:    d.UserName,
		Status:      d.Status,
		CurrentStep: d.CurrentStep,
		FinalPrice:  d.FinalPrice,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
