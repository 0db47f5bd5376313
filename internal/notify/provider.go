package notify

import (
	"fmt"
	"strings"

	"github.com/wolfman30/autolead-platform/pkg/logging"
)

const (
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderSMTP     = "smtp"
	EmailProviderStub     = "stub"
)

// ProviderSelectionConfig captures everything needed to build the lead mail transport.
type ProviderSelectionConfig struct {
	Provider  string
	SendGrid  SendGridConfig
	SMTP      SMTPConfig
	SES       SESConfig
	SESClient SESAPI
}

// BuildEmailSender returns the configured sender and its provider name. A
// provider that is named but not configured is an error rather than a silent
// fallback to the stub.
func BuildEmailSender(cfg ProviderSelectionConfig, logger *logging.Logger) (EmailSender, string, error) {
	if logger == nil {
		logger = logging.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case EmailProviderSendGrid:
		if s := NewSendGridSender(cfg.SendGrid, logger); s != nil {
			return s, provider, nil
		}
		return nil, "", fmt.Errorf("notify: sendgrid selected but SENDGRID_API_KEY missing")
	case EmailProviderSES:
		if s := NewSESSender(cfg.SESClient, cfg.SES, logger); s != nil {
			return s, provider, nil
		}
		return nil, "", fmt.Errorf("notify: ses selected but no SES client available")
	case EmailProviderSMTP:
		if s := NewSMTPSender(cfg.SMTP, logger); s != nil {
			return s, provider, nil
		}
		return nil, "", fmt.Errorf("notify: smtp selected but SMTP_HOST missing")
	case EmailProviderStub, "":
		return NewStubEmailSender(logger), EmailProviderStub, nil
	default:
		return nil, "", fmt.Errorf("notify: unknown email provider %q", cfg.Provider)
	}
}
