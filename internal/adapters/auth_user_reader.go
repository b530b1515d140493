// Package adapters bridges modules without introducing import cycles.
package adapters

import (
	"context"

	authsvc "github.com/N0urDEV/Formalitys-sub001/internal/auth/service"
	paymentsvc "github.com/N0urDEV/Formalitys-sub001/internal/payments/service"

	"github.com/google/uuid"
)

// AuthUserReader adapts the auth service to the payments module's
// UserReader port.
type AuthUserReader struct {
	auth *authsvc.Service
}

func NewAuthUserReader(auth *authsvc.Service) *AuthUserReader {
	return &AuthUserReader{auth: auth}
}

func (a *AuthUserReader) UserInfo(ctx context.Context, userID uuid.UUID) (paymentsvc.UserInfo, error) {
	user, err := a.auth.GetMe(ctx, userID)
	if err != nil {
		return paymentsvc.UserInfo{}, err
	}
	return paymentsvc.UserInfo{Email: user.Email, Name: user.Name}, nil
}

var _ paymentsvc.UserReader = (*AuthUserReader)(nil)
