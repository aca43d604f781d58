package services

import (
	"fmt"
	"html"
	"net/smtp"

	"github.com/dimitrije/fleetdesk/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send is a no-op when SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendVerification(to, fullName, verifyURL string) error {
	subject := "Verify your fleet dashboard account"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to the team</h2>
			<p>Hi %s,</p>
			<p>An account has been created for you on the fleet dashboard.</p>
			<p><a href="%s">Click here to verify your email address</a></p>
		</body>
		</html>
	`, html.EscapeString(fullName), verifyURL)

	return s.Send(to, subject, body)
}

func (s *EmailService) SendPasswordReset(to, fullName, resetURL string) error {
	subject := "Reset your fleet dashboard password"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Password reset</h2>
			<p>Hi %s,</p>
			<p>We received a request to reset your password. If it was not you, ignore this email.</p>
			<p><a href="%s">Click here to choose a new password</a></p>
		</body>
		</html>
	`, html.EscapeString(fullName), resetURL)

	return s.Send(to, subject, body)
}
