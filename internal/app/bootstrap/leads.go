package bootstrap

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/autolead-platform/internal/adf"
	"github.com/wolfman30/autolead-platform/internal/archive"
	appconfig "github.com/wolfman30/autolead-platform/internal/config"
	"github.com/wolfman30/autolead-platform/internal/inventory"
	"github.com/wolfman30/autolead-platform/internal/leadforms"
	"github.com/wolfman30/autolead-platform/internal/leads"
	"github.com/wolfman30/autolead-platform/internal/messaging"
	"github.com/wolfman30/autolead-platform/internal/notify"
	"github.com/wolfman30/autolead-platform/internal/observability/metrics"
	"github.com/wolfman30/autolead-platform/internal/shortlink"
	"github.com/wolfman30/autolead-platform/pkg/logging"
)

// LeadDeps are the process-wide clients the lead pipeline is built from.
// Every client is optional; missing ones fall back to in-memory or stub
// implementations outside production.
type LeadDeps struct {
	Config     *appconfig.Config
	Logger     *logging.Logger
	Location   *time.Location
	Pool       *pgxpool.Pool
	CatalogDB  *sql.DB
	Redis      redis.Cmdable
	SES        notify.SESAPI
	S3         archive.S3API
	Registerer prometheus.Registerer
}

// LeadServices is the wired lead pipeline.
type LeadServices struct {
	Dispatcher    *leads.Dispatcher
	Metrics       *metrics.LeadMetrics
	SMSProvider   string
	EmailProvider string
}

// BuildLeadServices wires validation, adapters and the dispatcher.
func BuildLeadServices(deps LeadDeps) (*LeadServices, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	var (
		repo    inventory.Repository
		catalog leadforms.Catalog
	)
	if deps.Pool != nil {
		repo = inventory.NewPostgresRepository(deps.Pool)
	} else {
		logger.Warn("DATABASE_URL not set, using demo inventory")
		repo = DemoInventory()
	}
	if deps.CatalogDB != nil {
		catalog = inventory.NewSQLCatalog(deps.CatalogDB)
	} else {
		catalog = DemoCatalog()
	}

	smsSender, smsProvider, err := buildSMSSender(cfg, logger)
	if err != nil {
		return nil, err
	}

	emailSender, emailProvider, err := notify.BuildEmailSender(emailSelection(cfg, deps.SES), logger)
	if err != nil {
		return nil, err
	}
	if emailProvider == notify.EmailProviderStub && cfg.IsProduction() {
		return nil, fmt.Errorf("bootstrap: EMAIL_PROVIDER must name a real transport in production")
	}

	leadMetrics := metrics.NewLeadMetrics(deps.Registerer)

	dispatcher, err := leads.NewDispatcher(leads.DispatcherConfig{
		Validator:   leadforms.NewValidator(catalog, deps.Location),
		Inventory:   repo,
		Shortener:   buildShortener(cfg, deps.Redis, logger),
		SMS:         smsSender,
		Email:       emailSender,
		Archive:     archive.NewStore(deps.S3, cfg.LeadArchiveBucket, logger),
		Metrics:     leadMetrics,
		Boilerplate: Boilerplate(cfg),
		Workflows:   leads.DefaultWorkflowConfigs(cfg.LeadFromEmail, cfg.LeadToEmails),
		SiteURL:     cfg.SiteURL,
		SMSFrom:     cfg.SMSFromNumber,
		Location:    deps.Location,
		Timeout:     cfg.DispatchTimeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("lead pipeline ready",
		"sms_provider", smsProvider,
		"email_provider", emailProvider,
		"archive", cfg.LeadArchiveBucket != "" && deps.S3 != nil,
		"recipients", len(cfg.LeadToEmails),
	)
	return &LeadServices{
		Dispatcher:    dispatcher,
		Metrics:       leadMetrics,
		SMSProvider:   smsProvider,
		EmailProvider: emailProvider,
	}, nil
}

// Boilerplate maps the provider and vendor settings onto the ADF identity.
func Boilerplate(cfg *appconfig.Config) adf.Boilerplate {
	return adf.Boilerplate{
		Provider: adf.Provider{Name: cfg.ProviderName, URL: cfg.ProviderURL},
		Vendor: adf.Vendor{
			Name: cfg.VendorName,
			URL:  cfg.VendorURL,
			Contact: adf.Contact{
				Phone:  cfg.VendorPhone,
				Street: cfg.VendorAddress,
				City:   cfg.VendorCity,
				State:  cfg.VendorState,
				Zip:    cfg.VendorZip,
			},
		},
	}
}

func emailSelection(cfg *appconfig.Config, ses notify.SESAPI) notify.ProviderSelectionConfig {
	return notify.ProviderSelectionConfig{
		Provider: cfg.EmailProvider,
		SendGrid: notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: firstNonEmpty(cfg.SendGridFromEmail, cfg.LeadFromEmail),
			FromName:  cfg.SendGridFromName,
		},
		SMTP: notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			SSL:       cfg.SMTPSSL,
			FromEmail: cfg.LeadFromEmail,
		},
		SES: notify.SESConfig{
			FromEmail: cfg.LeadFromEmail,
			FromName:  cfg.SendGridFromName,
		},
		SESClient: ses,
	}
}

func buildSMSSender(cfg *appconfig.Config, logger *logging.Logger) (messaging.SMSSender, string, error) {
	sender, provider, reason := messaging.BuildSMSSender(messaging.ProviderSelectionConfig{
		Preference:       cfg.SMSProvider,
		TelnyxAPIKey:     cfg.TelnyxAPIKey,
		TelnyxProfileID:  cfg.TelnyxMessagingProfileID,
		TelnyxFromNumber: cfg.TelnyxFromNumber,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
		MaxAttempts:      1,
	}, logger)
	if sender != nil {
		return sender, provider, nil
	}
	if cfg.IsProduction() || cfg.SMSProvider != messaging.SMSProviderAuto {
		return nil, "", fmt.Errorf("bootstrap: no sms provider: %s", reason)
	}
	logger.Warn("no sms provider configured, texts will be logged only", "reason", reason)
	return messaging.NewStubSender(logger), "stub", nil
}

func buildShortener(cfg *appconfig.Config, client redis.Cmdable, logger *logging.Logger) shortlink.Shortener {
	var s shortlink.Shortener
	if strings.TrimSpace(cfg.ShortlinkAPIKey) == "" {
		logger.Warn("SHORTLINK_API_KEY not set, texting full vehicle urls")
		s = shortlink.PassthroughShortener{}
	} else {
		s = shortlink.NewHTTPShortener(cfg.ShortlinkEndpoint, cfg.ShortlinkAPIKey, logger)
	}
	if client == nil {
		return s
	}
	return shortlink.NewCachedShortener(s, client, cfg.ShortlinkCacheTTL, logger)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DemoCatalog is the make/model list used without a database.
func DemoCatalog() *inventory.InMemoryCatalog {
	return inventory.NewInMemoryCatalog().
		AddMake(1, "Acura").
		AddModel(1, "ILX").
		AddModel(2, "TLX").
		AddModel(3, "MDX").
		AddModel(4, "RDX")
}

// DemoInventory holds a single vehicle so send-to-mobile works locally.
func DemoInventory() *inventory.InMemoryRepository {
	return inventory.NewInMemoryRepository(&inventory.Vehicle{
		ID:          1,
		IsNew:       true,
		StockNumber: "A1234",
		VIN:         "5FRYD4H40HB000001",
		Year:        2017,
		MakeID:      1,
		Make:        "Acura",
		ModelID:     3,
		Model:       "MDX",
	})
}
