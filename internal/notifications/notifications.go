// Package notifications subscribes to domain events and turns them into
// transactional emails.
package notifications

import (
	"context"
	"fmt"

	dossierrepo "github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	"github.com/N0urDEV/Formalitys-sub001/internal/email"
	"github.com/N0urDEV/Formalitys-sub001/internal/events"
	paymentsvc "github.com/N0urDEV/Formalitys-sub001/internal/payments/service"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"
)

const labelCompany = "Création de société"
const labelTourism = "Régularisation de location touristique"

// Subscriber listens for dossier lifecycle events and notifies the parties
// involved.
type Subscriber struct {
	mail       email.Sender
	users      paymentsvc.UserReader
	adminEmail string
	log        *logger.Logger
}

func NewSubscriber(mail email.Sender, users paymentsvc.UserReader, adminEmail string, log *logger.Logger) *Subscriber {
	return &Subscriber{mail: mail, users: users, adminEmail: adminEmail, log: log}
}

// Subscribe registers the email handlers on the event bus.
func (s *Subscriber) Subscribe(bus events.Bus) {
	bus.Subscribe(events.DossierCreated{}.EventName(), events.HandlerFunc(s.onDossierCreated))
	bus.Subscribe(events.DossierStatusChanged{}.EventName(), events.HandlerFunc(s.onDossierStatusChanged))
}

func (s *Subscriber) onDossierCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.DossierCreated)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if s.adminEmail == "" {
		return nil
	}

	customerName := "client"
	if info, err := s.users.UserInfo(ctx, e.UserID); err == nil && info.Name != "" {
		customerName = info.Name
	}

	return s.mail.SendAdminNewDossierEmail(ctx, s.adminEmail, customerName, label(e.DossierType), e.DossierID.String())
}

func (s *Subscriber) onDossierStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.DossierStatusChanged)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if e.NewStatus != dossierrepo.StatusCompleted {
		return nil
	}

	info, err := s.users.UserInfo(ctx, e.UserID)
	if err != nil {
		s.log.Warn("completed dossier email skipped", "dossier_id", e.DossierID, "error", err)
		return nil
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return s.mail.SendDossierCompletedEmail(ctx, info.Email, name, label(e.DossierType))
}

func label(dossierType string) string {
	if dossierType == "company" {
		return labelCompany
	}
	return labelTourism
}
