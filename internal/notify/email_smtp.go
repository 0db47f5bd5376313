package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/wolfman30/autolead-platform/pkg/logging"
)

type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig holds configuration for a plain SMTP relay.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	SSL       bool
}

// SMTPSender sends emails through an SMTP relay with gomail.
type SMTPSender struct {
	dialer    smtpDialer
	fromEmail string
	logger    *logging.Logger
}

// NewSMTPSender returns nil when no host is configured.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Host == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.SSL
	return &SMTPSender{dialer: d, fromEmail: cfg.FromEmail, logger: logger}
}

// Send delivers msg. gomail has no context support, so the dial runs in a
// goroutine and ctx bounds how long the caller waits. When ctx ends first the
// goroutine is not stopped: the message may still be delivered after Send has
// returned ctx's error.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.dialer == nil {
		return fmt.Errorf("notify: smtp dialer not configured")
	}
	if err := msg.validate(); err != nil {
		return err
	}

	from := s.fromEmail
	if msg.From != "" {
		from = msg.From
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			s.logger.Error("smtp send failed", "error", err, "to", msg.To)
			return fmt.Errorf("notify: smtp send failed: %w", err)
		}
	case <-ctx.Done():
		s.logger.Error("smtp send timed out", "error", ctx.Err(), "to", msg.To)
		return fmt.Errorf("notify: smtp send: %w", ctx.Err())
	}

	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
	return nil
}

var _ EmailSender = (*SMTPSender)(nil)
