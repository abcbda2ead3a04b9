package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/abbasiconnect/api/internal/config"
	"github.com/abbasiconnect/api/internal/logging"
)

// Service renders and delivers application email through the provider chain.
type Service struct {
	notifier Notifier
	logger   *logging.Logger
}

// NewService builds the provider chain from configuration: Brevo first when
// configured, then Resend. The first provider to succeed wins.
func NewService(cfg config.EmailConfig, logger *logging.Logger) *Service {
	var notifiers []Notifier
	if cfg.BrevoAPIKey != "" {
		notifiers = append(notifiers, NewBrevo(cfg.BrevoAPIKey, cfg.SenderName, cfg.SenderEmail))
	}
	if cfg.ResendAPIKey != "" {
		notifiers = append(notifiers, NewResend(cfg.ResendAPIKey, cfg.SenderEmail))
	}

	return &Service{
		notifier: NewFallback(logger, notifiers...),
		logger:   logger,
	}
}

// NewServiceWithNotifier wires an explicit notifier (used by tests).
func NewServiceWithNotifier(notifier Notifier, logger *logging.Logger) *Service {
	return &Service{notifier: notifier, logger: logger}
}

// SendOTPEmail delivers the plaintext one-time code.
func (s *Service) SendOTPEmail(ctx context.Context, toEmail, code string, expiresIn time.Duration) error {
	body, err := renderOTPEmail(code, int(expiresIn.Minutes()))
	if err != nil {
		s.logger.Error("failed to render otp email template", "error", err.Error())
		return fmt.Errorf("render template: %w", err)
	}

	msg := Message{
		To:      toEmail,
		Subject: "Your AbbasiConnect Verification Code",
		HTML:    body,
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send otp email", "email", toEmail, "error", err.Error())
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("otp email sent", "email", toEmail)
	return nil
}

var otpTemplate = template.Must(template.New("otp").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
        <h1 style="color: white; margin: 0;">AbbasiConnect</h1>
    </div>
    <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
        <h2 style="color: #333; margin-top: 0;">Verification Code</h2>
        <p>Your verification code is:</p>
        <div style="background: white; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0;">
            <h1 style="color: #667eea; font-size: 36px; letter-spacing: 8px; margin: 0;">{{.Code}}</h1>
        </div>
        <p>This code will expire in {{.ExpiryMinutes}} minutes.</p>
        <p style="color: #666; font-size: 14px;">If you didn't request this code, please ignore this email.</p>
    </div>
</body>
</html>
`))

func renderOTPEmail(code string, expiryMinutes int) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Code          string
		ExpiryMinutes int
	}{
		Code:          code,
		ExpiryMinutes: expiryMinutes,
	}

	if err := otpTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
