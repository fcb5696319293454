package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service delivers verification code emails through SendGrid
type Service struct {
	client      *sendgrid.Client
	fromName    string
	fromAddress string
}

func NewService(apiKey, fromName, fromAddress string) *Service {
	return &Service{
		client:      sendgrid.NewSendClient(apiKey),
		fromName:    fromName,
		fromAddress: fromAddress,
	}
}

// SendVerificationCode emails the raw passcode to the user. The code exists
// only in this message; nothing recoverable is stored server-side.
func (s *Service) SendVerificationCode(ctx context.Context, toEmail, code string, expiry time.Duration) error {
	subject := "Your Verification Code - Campus Compass"

	body, err := s.renderVerificationCodeTemplate(code, int(expiry.Minutes()))
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	from := mail.NewEmail(s.fromName, s.fromAddress)
	to := mail.NewEmail("", toEmail)
	plain := fmt.Sprintf("Your Campus Compass verification code is %s. It expires in %d minutes.", code, int(expiry.Minutes()))
	message := mail.NewSingleEmail(from, subject, to, plain, body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("send email: sendgrid returned status %d", response.StatusCode)
	}

	return nil
}

func (s *Service) renderVerificationCodeTemplate(code string, expiryMinutes int) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f4f4f5; margin: 0; padding: 20px;">
    <div style="max-width: 480px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; padding: 40px; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);">
        <h1 style="color: #18181b; font-size: 24px; margin: 0 0 8px 0;">Verify Your Email</h1>
        <p style="color: #71717a; font-size: 16px; margin: 0 0 32px 0;">Enter this code to complete your registration:</p>

        <div style="background-color: #f4f4f5; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 32px;">
            <span style="font-family: 'SF Mono', Monaco, Consolas, monospace; font-size: 36px; font-weight: 700; letter-spacing: 8px; color: #18181b;">{{.Code}}</span>
        </div>

        <p style="color: #71717a; font-size: 14px; margin: 0 0 8px 0;">This code expires in {{.ExpiryMinutes}} minutes.</p>
        <p style="color: #a1a1aa; font-size: 12px; margin: 0;">If you didn't request this code, you can safely ignore this email.</p>
    </div>
</body>
</html>
`

	t, err := template.New("verificationCode").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		Code          string
		ExpiryMinutes int
	}{
		Code:          code,
		ExpiryMinutes: expiryMinutes,
	}

	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
