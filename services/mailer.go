package services

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	logrus.WithFields(logrus.Fields{"message_id": sent.Id, "to": to}).Info("Email sent")
	return nil
}

// LogMailer only logs. Used when no Resend key is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery disabled, skipping")
	return nil
}

// NewMailer picks Resend when an API key is present.
func NewMailer(apiKey, from string) Mailer {
	if apiKey == "" {
		return LogMailer{}
	}
	return NewResendMailer(apiKey, from)
}

func teacherInvitation(nombre, email, password string) (string, string) {
	subject := "Bienvenido al Centro Ecuestre"
	body := fmt.Sprintf(
		"<p>Hola %s,</p><p>Se creó tu cuenta de profesor.</p><p>Usuario: <b>%s</b><br>Contraseña inicial: <b>%s</b></p><p>Cámbiala al ingresar por primera vez.</p>",
		html.EscapeString(nombre), html.EscapeString(email), html.EscapeString(password),
	)
	return subject, body
}
