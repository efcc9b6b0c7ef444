package mail

import (
	"fmt"

	"github.com/campus-market-api/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends emails. Dispatch is fire-and-forget: a returned error means
// the message was not accepted for delivery, nothing more.
type Mailer interface {
	Send(to, subject, body string) error
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates an SMTP mailer from config. The returned instance is the
// process-wide notifier handle, constructed once in main and passed by
// reference into the services that dispatch mail.
func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
