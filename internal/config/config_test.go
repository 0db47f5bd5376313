package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LEAD_TO_EMAILS", "")
	t.Setenv("DISPATCH_TIMEOUT", "")
	t.Setenv("DEALER_TIMEZONE", "")
	t.Setenv("EMAIL_PROVIDER", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.IsProduction() {
		t.Fatalf("expected development env not to be production")
	}
	if len(cfg.LeadToEmails) != 1 || cfg.LeadToEmails[0] != "leads@example.com" {
		t.Fatalf("expected default lead recipient, got %v", cfg.LeadToEmails)
	}
	if cfg.DispatchTimeout != 30*time.Second {
		t.Fatalf("expected default dispatch timeout, got %s", cfg.DispatchTimeout)
	}
	if cfg.DealerTimezone != "America/New_York" {
		t.Fatalf("expected default timezone, got %s", cfg.DealerTimezone)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider by default, got %s", cfg.EmailProvider)
	}
	if cfg.VendorZip != "07044" {
		t.Fatalf("expected vendor zip default, got %s", cfg.VendorZip)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SITE_URL", "https://www.montclairacura.com/")
	t.Setenv("LEAD_TO_EMAILS", "desk@example.com, , bdc@example.com")
	t.Setenv("DISPATCH_TIMEOUT", "5s")
	t.Setenv("SMS_PROVIDER", " Twilio ")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_SSL", "true")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("FORM_RATE_LIMIT_RPS", "2.5")
	t.Setenv("SHORTLINK_CACHE_TTL", "1h")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.SiteURL != "https://www.montclairacura.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.SiteURL)
	}
	if len(cfg.LeadToEmails) != 2 || cfg.LeadToEmails[1] != "bdc@example.com" {
		t.Fatalf("expected two recipients, got %v", cfg.LeadToEmails)
	}
	if cfg.DispatchTimeout != 5*time.Second {
		t.Fatalf("expected dispatch timeout override, got %s", cfg.DispatchTimeout)
	}
	if cfg.SMSProvider != "twilio" {
		t.Fatalf("expected normalized sms provider, got %q", cfg.SMSProvider)
	}
	if cfg.SMTPPort != 2525 {
		t.Fatalf("expected smtp port override, got %d", cfg.SMTPPort)
	}
	if !cfg.SMTPSSL {
		t.Fatalf("expected smtp ssl enabled")
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.FormRateLimitRPS != 2.5 {
		t.Fatalf("expected rate override, got %v", cfg.FormRateLimitRPS)
	}
	if cfg.ShortlinkCacheTTL != time.Hour {
		t.Fatalf("expected cache ttl override, got %s", cfg.ShortlinkCacheTTL)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	t.Setenv("DISPATCH_TIMEOUT", "soon")
	cfg := Load()
	if cfg.SMTPPort != 587 {
		t.Fatalf("expected smtp default on bad input, got %d", cfg.SMTPPort)
	}
	if cfg.DispatchTimeout != 30*time.Second {
		t.Fatalf("expected timeout default on bad input, got %s", cfg.DispatchTimeout)
	}
}
