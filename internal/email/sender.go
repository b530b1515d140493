// Package email provides transactional email delivery for the platform.
package email

import "context"

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Content  []byte
	FileName string // e.g. "recapitulatif-dossier.pdf"
	MIMEType string // e.g. "application/pdf"
}

// Sender delivers the platform's transactional emails.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error
	SendPaymentConfirmationEmail(ctx context.Context, toEmail, customerName, dossierLabel string, amountCents int64, attachments ...Attachment) error
	SendDossierCompletedEmail(ctx context.Context, toEmail, customerName, dossierLabel string) error
	SendAdminNewDossierEmail(ctx context.Context, toEmail, customerName, dossierLabel, dossierID string) error
}

// NoopSender is used when SMTP is not configured; every send is a no-op.
type NoopSender struct{}

func (NoopSender) SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error {
	return nil
}

func (NoopSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	return nil
}

func (NoopSender) SendPaymentConfirmationEmail(ctx context.Context, toEmail, customerName, dossierLabel string, amountCents int64, attachments ...Attachment) error {
	return nil
}

func (NoopSender) SendDossierCompletedEmail(ctx context.Context, toEmail, customerName, dossierLabel string) error {
	return nil
}

func (NoopSender) SendAdminNewDossierEmail(ctx context.Context, toEmail, customerName, dossierLabel, dossierID string) error {
	return nil
}

// Compile-time check that NoopSender implements Sender.
var _ Sender = (*NoopSender)(nil)
