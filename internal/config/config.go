package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	LogFormat      string
	SiteURL        string
	DealerTimezone string
	DatabaseURL    string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Link shortener
	ShortlinkEndpoint string
	ShortlinkAPIKey   string
	ShortlinkCacheTTL time.Duration

	// SMS providers
	SMSProvider              string
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioFromNumber         string
	TelnyxAPIKey             string
	TelnyxMessagingProfileID string
	TelnyxFromNumber         string
	// Sender number for shopper texts; empty lets each provider use its own.
	SMSFromNumber            string

	// Email transport: "sendgrid", "ses", "smtp" or "stub"
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPSSL           bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Lead routing
	LeadFromEmail     string
	LeadToEmails      []string
	LeadArchiveBucket string
	DispatchTimeout   time.Duration

	FormRateLimitRPS   float64
	FormRateLimitBurst int
	CORSAllowedOrigins []string

	// ADF provider/vendor boilerplate
	ProviderName  string
	ProviderURL   string
	VendorName    string
	VendorURL     string
	VendorPhone   string
	VendorAddress string
	VendorCity    string
	VendorState   string
	VendorZip     string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		SiteURL:        strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		DealerTimezone: getEnv("DEALER_TIMEZONE", "America/New_York"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ShortlinkEndpoint: getEnv("SHORTLINK_ENDPOINT", "https://www.googleapis.com/urlshortener/v1/url"),
		ShortlinkAPIKey:   getEnv("SHORTLINK_API_KEY", ""),
		ShortlinkCacheTTL: getEnvAsDuration("SHORTLINK_CACHE_TTL", 7*24*time.Hour),

		SMSProvider:              strings.ToLower(strings.TrimSpace(getEnv("SMS_PROVIDER", "auto"))),
		TwilioAccountSID:         getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:          getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:         getEnv("TWILIO_FROM_NUMBER", ""),
		TelnyxAPIKey:             getEnv("TELNYX_API_KEY", ""),
		TelnyxMessagingProfileID: getEnv("TELNYX_MESSAGING_PROFILE_ID", ""),
		TelnyxFromNumber:         getEnv("TELNYX_FROM_NUMBER", ""),
		SMSFromNumber:            getEnv("SMS_FROM_NUMBER", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Montclair Acura"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPSSL:           getEnvAsBool("SMTP_SSL", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		LeadFromEmail:     getEnv("LEAD_FROM_EMAIL", "webmaster@localhost"),
		LeadToEmails:      getEnvAsList("LEAD_TO_EMAILS", []string{"leads@example.com"}),
		LeadArchiveBucket: getEnv("LEAD_ARCHIVE_BUCKET", ""),
		DispatchTimeout:   getEnvAsDuration("DISPATCH_TIMEOUT", 30*time.Second),

		FormRateLimitRPS:   getEnvAsFloat("FORM_RATE_LIMIT_RPS", 0.5),
		FormRateLimitBurst: getEnvAsInt("FORM_RATE_LIMIT_BURST", 5),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		ProviderName:  getEnv("PROVIDER_NAME", "Dealership Website Provider"),
		ProviderURL:   getEnv("PROVIDER_URL", "http://www.example.com"),
		VendorName:    getEnv("VENDOR_NAME", "Acura"),
		VendorURL:     getEnv("VENDOR_URL", "http://www.example.com/"),
		VendorPhone:   getEnv("VENDOR_PHONE", "855-464-5522"),
		VendorAddress: getEnv("VENDOR_ADDRESS", "Montclair Acura, 100 Bloomfield Avenue"),
		VendorCity:    getEnv("VENDOR_CITY", "Verona"),
		VendorState:   getEnv("VENDOR_STATE", "NJ"),
		VendorZip:     getEnv("VENDOR_ZIP", "07044"),
	}
}

// IsProduction reports whether the service runs with production semantics.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
