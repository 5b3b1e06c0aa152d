package utils

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends transactional email through SendGrid.
type SendGridMailer struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendGridMailer returns a mailer, or an error when no API key is set.
func NewSendGridMailer(apiKey, fromAddr string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: "Fragrance Collection",
		fromAddr: fromAddr,
	}, nil
}

// SendEmail sends an email using SendGrid
func (m *SendGridMailer) SendEmail(ctx context.Context, toName, toEmail, subject, textContent, htmlContent string) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending email to %s: %w", toEmail, err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}
	return nil
}
