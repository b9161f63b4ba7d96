package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/oboteam/guarantor-backend/config"
	"github.com/oboteam/guarantor-backend/pkg/logger"
)

// Sender delivers a single plain-text message to one recipient
type Sender interface {
	Send(to, subject, body string) error
}

// Mailer sends mail over SMTP using a process-wide configuration
type Mailer struct {
	host     string
	port     string
	from     string
	password string
}

func New(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		password: cfg.Password,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.from, to, subject, body,
	))

	// Unauthenticated relay (e.g. a local postfix) when no password is set
	var auth smtp.Auth
	if m.password != "" {
		auth = smtp.PlainAuth("", m.from, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, message); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":   to,
			"addr": addr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Debug("Email sent", map[string]interface{}{
		"to": to,
	})
	return nil
}

// ResetCodeMessage composes the password reset email for a generated code
func ResetCodeMessage(code int) (subject, body string) {
	subject = "Guarantor: password reset code"
	body = fmt.Sprintf("Your password reset code: %d", code)
	return subject, body
}
