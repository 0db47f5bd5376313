// Package messaging sends outbound SMS through Twilio or Telnyx.
package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wolfman30/autolead-platform/pkg/logging"
)

// SMS is one outbound text message. Numbers are E.164.
type SMS struct {
	To   string
	From string
	Body string
}

// SMSSender delivers a message and returns the provider's message id.
type SMSSender interface {
	Send(ctx context.Context, msg SMS) (string, error)
}

func (m SMS) validate() error {
	if m.To == "" {
		return errors.New("messaging: to required")
	}
	if m.From == "" {
		return errors.New("messaging: from required")
	}
	if strings.TrimSpace(m.Body) == "" {
		return errors.New("messaging: body required")
	}
	return nil
}

// stubFromNumber stands in for a sender number when none is configured.
const stubFromNumber = "+15555550100"

// StubSender records messages instead of sending them.
type StubSender struct {
	logger *logging.Logger

	mu   sync.Mutex
	sent []SMS
}

func NewStubSender(logger *logging.Logger) *StubSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSender{logger: logger}
}

func (s *StubSender) Send(_ context.Context, msg SMS) (string, error) {
	if msg.From == "" {
		msg.From = stubFromNumber
	}
	if err := msg.validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	id := "stub-" + uuid.NewString()
	s.logger.Info("stub sms recorded", "to", msg.To, "from", msg.From, "message_id", id)
	return id, nil
}

// Sent returns a copy of the recorded messages.
func (s *StubSender) Sent() []SMS {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SMS, len(s.sent))
	copy(out, s.sent)
	return out
}
