package messaging

import (
	"strings"
	"testing"
)

func TestBuildSMSSenderPreferences(t *testing.T) {
	full := ProviderSelectionConfig{
		TelnyxAPIKey:     "key",
		TelnyxProfileID:  "profile",
		TwilioAccountSID: "AC",
		TwilioAuthToken:  "tok",
	}

	tests := []struct {
		name       string
		cfg        ProviderSelectionConfig
		preference string
		wantName   string
		wantType   string
	}{
		{"auto with both", full, "", "telnyx", "*messaging.TelnyxSender"},
		{"forced twilio", full, "twilio", "twilio", "*messaging.TwilioSender"},
		{"forced telnyx", full, "TELNYX", "telnyx", "*messaging.TelnyxSender"},
		{"auto with twilio only", ProviderSelectionConfig{TwilioAccountSID: "AC", TwilioAuthToken: "tok"}, "auto", "twilio", "*messaging.TwilioSender"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Preference = tt.preference
			sender, name, reason := BuildSMSSender(cfg, nil)
			if sender == nil {
				t.Fatalf("expected sender, got reason %q", reason)
			}
			if name != tt.wantName {
				t.Fatalf("expected provider %q, got %q", tt.wantName, name)
			}
			if got := typeName(sender); got != tt.wantType {
				t.Fatalf("expected %s, got %s", tt.wantType, got)
			}
		})
	}
}

func TestBuildSMSSenderSingleProviderSingleAttempt(t *testing.T) {
	sender, name, _ := BuildSMSSender(ProviderSelectionConfig{
		TelnyxAPIKey:     "key",
		TelnyxProfileID:  "profile",
		TwilioAccountSID: "AC",
		TwilioAuthToken:  "tok",
		MaxAttempts:      1,
	}, nil)
	telnyx, ok := sender.(*TelnyxSender)
	if !ok {
		t.Fatalf("expected a lone telnyx sender, got %s", typeName(sender))
	}
	if name != SMSProviderTelnyx {
		t.Fatalf("expected provider %q, got %q", SMSProviderTelnyx, name)
	}
	if telnyx.maxAttempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", telnyx.maxAttempts)
	}

	sender, _, _ = BuildSMSSender(ProviderSelectionConfig{Preference: "twilio", TwilioAccountSID: "AC", TwilioAuthToken: "tok"}, nil)
	if got := sender.(*TwilioSender).maxAttempts; got != 1 {
		t.Fatalf("expected zero MaxAttempts to mean 1, got %d", got)
	}
}

func TestBuildSMSSenderMissingCredentials(t *testing.T) {
	sender, _, reason := BuildSMSSender(ProviderSelectionConfig{Preference: "twilio"}, nil)
	if sender != nil {
		t.Fatalf("expected no sender")
	}
	if !strings.Contains(reason, "TWILIO_ACCOUNT_SID missing") {
		t.Fatalf("unexpected reason %q", reason)
	}

	_, _, reason = BuildSMSSender(ProviderSelectionConfig{}, nil)
	if !strings.Contains(reason, "telnyx:") || !strings.Contains(reason, "twilio:") {
		t.Fatalf("expected both providers in reason, got %q", reason)
	}
}

func TestPhoneHelpers(t *testing.T) {
	if got := USToE164("2015551234"); got != "+12015551234" {
		t.Fatalf("unexpected e164 %q", got)
	}
	if got := USToE164("12015551234"); got != "+12015551234" {
		t.Fatalf("unexpected e164 for country-coded input %q", got)
	}
	if got := USToE164("(201) 555-1234"); got != "+12015551234" {
		t.Fatalf("unexpected e164 for formatted input %q", got)
	}
	if got := USToE164("+1 201 555 1234"); got != "+12015551234" {
		t.Fatalf("unexpected e164 for e164 input %q", got)
	}
	if got := USToE164(""); got != "" {
		t.Fatalf("expected empty for empty input, got %q", got)
	}
	if got := NormalizeE164(" (973) 555-0000 "); got != "+9735550000" {
		t.Fatalf("unexpected normalize %q", got)
	}
	if got := NormalizeE164("abc"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TwilioSender:
		return "*messaging.TwilioSender"
	case *TelnyxSender:
		return "*messaging.TelnyxSender"
	default:
		return "unknown"
	}
}
