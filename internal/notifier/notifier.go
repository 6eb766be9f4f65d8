package notifier

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"ownership-api/internal/config"
)

// Notifier delivers messages to an external recipient. Email is the only
// wired channel; SMS is a known gap.
type Notifier interface {
	Send(to, subject, body string) error
}

// SMTPNotifier sends email through a plain SMTP relay
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

// NewSMTP creates a new SMTPNotifier
func NewSMTP(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// IsConfigured reports whether the relay settings are complete
func (s *SMTPNotifier) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send delivers a single HTML email. A missing SMTP configuration logs and
// drops the message instead of failing the caller.
func (s *SMTPNotifier) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		log.Printf("SMTP not configured, dropping email to %s: %s", to, subject)
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

// InvitationEmail renders the subject and HTML body of a tenant invitation
func InvitationEmail(inviterName, ownershipName, inviteURL string, expiresAt time.Time) (string, string) {
	subject := fmt.Sprintf("You've been invited to join %s", ownershipName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Tenant Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to register as a tenant of <strong>%s</strong>.</p>
			<p><a href="%s">Click here to complete your registration</a></p>
			<p>This invitation expires on %s.</p>
		</body>
		</html>
	`, inviterName, ownershipName, inviteURL, expiresAt.Format("January 2, 2006"))

	return subject, body
}
