package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error {
	content, err := renderEmailTemplate("verification.html", verificationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Vérifiez votre adresse e-mail",
			Heading:  "Vérifiez votre adresse e-mail",
			CTALabel: "Vérifier mon adresse",
			CTAURL:   verifyURL,
		},
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectVerification, content)
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	content, err := renderEmailTemplate("password_reset.html", passwordResetEmailData{
		baseEmailData: baseEmailData{
			Title:    "Réinitialisation de votre mot de passe",
			Heading:  "Réinitialisation de votre mot de passe",
			CTALabel: "Choisir un nouveau mot de passe",
			CTAURL:   resetURL,
		},
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectPasswordReset, content)
}

func (s *SMTPSender) SendPaymentConfirmationEmail(ctx context.Context, toEmail, customerName, dossierLabel string, amountCents int64, attachments ...Attachment) error {
	subject := fmt.Sprintf(subjectPaymentConfirmationFmt, dossierLabel)
	content, err := renderEmailTemplate("payment_confirmation.html", paymentConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Paiement confirmé",
			Heading: "Paiement confirmé",
		},
		CustomerName:    customerName,
		DossierLabel:    dossierLabel,
		AmountFormatted: formatCurrencyEUR(amountCents),
		HasAttachments:  len(attachments) > 0,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content, attachments...)
}

func (s *SMTPSender) SendDossierCompletedEmail(ctx context.Context, toEmail, customerName, dossierLabel string) error {
	subject := fmt.Sprintf(subjectDossierCompletedFmt, dossierLabel)
	content, err := renderEmailTemplate("dossier_completed.html", dossierCompletedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Dossier finalisé",
			Heading: "Votre dossier est finalisé",
		},
		CustomerName: customerName,
		DossierLabel: dossierLabel,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendAdminNewDossierEmail(ctx context.Context, toEmail, customerName, dossierLabel, dossierID string) error {
	subject := fmt.Sprintf(subjectAdminNewDossierFmt, dossierLabel)
	content, err := renderEmailTemplate("admin_new_dossier.html", adminNewDossierEmailData{
		baseEmailData: baseEmailData{
			Title:   "Nouveau dossier payé",
			Heading: "Nouveau dossier payé",
		},
		CustomerName: customerName,
		DossierLabel: dossierLabel,
		DossierID:    dossierID,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

// Compile-time check that SMTPSender implements Sender.
var _ Sender = (*SMTPSender)(nil)
