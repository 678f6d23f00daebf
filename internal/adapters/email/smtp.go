package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ntask/core/internal/infrastructure/config"
	"github.com/ntask/core/internal/infrastructure/logger"
)

// SMTPMailer sends templated HTML mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *logger.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates an SMTP mailer, or nil when the configuration is incomplete.
// A nil mailer disables email the way the source system does: callers log
// and continue.
func New(cfg config.SMTPConfig, log *logger.Logger) *SMTPMailer {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		log.Warn("SMTP configuration incomplete, email disabled")
		return nil
	}
	return &SMTPMailer{cfg: cfg, logger: log, send: smtp.SendMail}
}

// Send delivers one HTML email. The context bounds nothing here (net/smtp
// has no context support); the dial timeout comes from the OS default.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.logger.Debug("Email sent", "to", to, "subject", subject)
	return nil
}
