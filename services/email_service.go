package services

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// EmailService sends the account-lifecycle emails (verification, password
// reset) over SMTP.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(host string, port int, user, password string) *EmailService {
	return &EmailService{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

// SendVerificationEmail mails the verify-email link built from the caller's
// origin.
func (e *EmailService) SendVerificationEmail(to, token, origin string) error {
	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", origin, token)
	body := fmt.Sprintf(`<p>Welcome to Linkup! Click the link below to verify your account:</p><a href="%s">%s</a>`, link, link)
	return e.send(to, "Verify your Linkup account", body)
}

// SendResetPasswordEmail mails the reset-password link.
func (e *EmailService) SendResetPasswordEmail(to, token, clientURL string) error {
	link := fmt.Sprintf("%s/api/auth/reset-password?token=%s", clientURL, token)
	body := fmt.Sprintf(`<p>Click the link below to reset your password:</p><a href="%s">%s</a>`, link, link)
	return e.send(to, "Reset your Linkup password", body)
}

func (e *EmailService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
