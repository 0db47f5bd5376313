package leads

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/autolead-platform/internal/adf"
	"github.com/wolfman30/autolead-platform/internal/archive"
	"github.com/wolfman30/autolead-platform/internal/inventory"
	"github.com/wolfman30/autolead-platform/internal/leadforms"
	"github.com/wolfman30/autolead-platform/internal/messaging"
	"github.com/wolfman30/autolead-platform/internal/notify"
	"github.com/wolfman30/autolead-platform/internal/observability/metrics"
	"github.com/wolfman30/autolead-platform/internal/shortlink"
	"github.com/wolfman30/autolead-platform/pkg/logging"
)

var tracer = otel.Tracer("autolead.internal.leads")

// Stage is a step of one dispatch.
type Stage string

const (
	StageValidating   Stage = "validating"
	StageAssembling   Stage = "assembling"
	StageSerializing  Stage = "serializing"
	StageExtraChannel Stage = "extra_channel"
	StageSending      Stage = "sending"
	StageDone         Stage = "done"
)

// DefaultDispatchTimeout bounds a dispatch when no timeout is configured.
const DefaultDispatchTimeout = 30 * time.Second

// SubmissionValidator checks raw form values for a field set.
type SubmissionValidator interface {
	Validate(ctx context.Context, kind leadforms.Kind, values url.Values, now time.Time) (*leadforms.Submission, error)
}

// Archiver keeps a copy of a sent lead.
type Archiver interface {
	ArchiveLead(ctx context.Context, rec *archive.LeadRecord) (string, error)
}

// Result describes a lead that reached the sales desk.
type Result struct {
	Workflow      Workflow
	SuccessTarget string
	Document      []byte
	ShortURL      string
	MessageID     string
	ArchiveKey    string
}

// DispatcherConfig wires a Dispatcher. Validator, Email and Workflows are
// required; Inventory, Shortener and SMS are required only for SendToMobile.
type DispatcherConfig struct {
	Validator   SubmissionValidator
	Inventory   inventory.Repository
	Shortener   shortlink.Shortener
	SMS         messaging.SMSSender
	Email       notify.EmailSender
	Archive     Archiver
	Metrics     *metrics.LeadMetrics
	Boilerplate adf.Boilerplate
	Workflows   map[Workflow]WorkflowConfig

	SiteURL  string
	SMSFrom  string
	Location *time.Location
	Timeout  time.Duration
	Clock    func() time.Time
	Logger   *logging.Logger
}

// Dispatcher drives a workflow from raw form values to a sent lead.
type Dispatcher struct {
	validator   SubmissionValidator
	inventory   inventory.Repository
	shortener   shortlink.Shortener
	sms         messaging.SMSSender
	email       notify.EmailSender
	archive     Archiver
	metrics     *metrics.LeadMetrics
	boilerplate adf.Boilerplate
	workflows   map[Workflow]WorkflowConfig

	siteURL string
	smsFrom string
	loc     *time.Location
	timeout time.Duration
	clock   func() time.Time
	logger  *logging.Logger
}

// NewDispatcher validates cfg and returns a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Validator == nil {
		return nil, errors.New("leads: validator is required")
	}
	if cfg.Email == nil {
		return nil, errors.New("leads: email sender is required")
	}
	if len(cfg.Workflows) == 0 {
		return nil, errors.New("leads: no workflows configured")
	}
	if _, ok := cfg.Workflows[SendToMobile]; ok {
		if cfg.Inventory == nil || cfg.Shortener == nil || cfg.SMS == nil {
			return nil, errors.New("leads: send to mobile needs inventory, shortener and sms sender")
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDispatchTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Dispatcher{
		validator:   cfg.Validator,
		inventory:   cfg.Inventory,
		shortener:   cfg.Shortener,
		sms:         cfg.SMS,
		email:       cfg.Email,
		archive:     cfg.Archive,
		metrics:     cfg.Metrics,
		boilerplate: cfg.Boilerplate,
		workflows:   cfg.Workflows,
		siteURL:     cfg.SiteURL,
		smsFrom:     cfg.SMSFrom,
		loc:         cfg.Location,
		timeout:     cfg.Timeout,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
	}, nil
}

// Location is the dealership timezone used for request dates and schedules.
func (d *Dispatcher) Location() *time.Location {
	return d.loc
}

// Now returns the dispatcher clock in the dealership timezone.
func (d *Dispatcher) Now() time.Time {
	return d.clock().In(d.loc)
}

// Dispatch validates values, builds the lead document and hands it to the
// email transport. For SendToMobile the shopper's SMS goes out first and any
// failure there aborts the lead. A validation failure is returned as
// leadforms.FieldErrors.
func (d *Dispatcher) Dispatch(ctx context.Context, w Workflow, values url.Values) (*Result, error) {
	def, ok := definitions[w]
	cfg, configured := d.workflows[w]
	if !ok || !configured {
		return nil, fmt.Errorf("%w: %q", ErrConfiguration, w)
	}

	ctx, span := tracer.Start(ctx, "leads.dispatch", trace.WithAttributes(
		attribute.String("autolead.workflow", string(w)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	started := d.clock()
	log := d.logger.With("workflow", string(w))

	res, stage, err := d.run(ctx, w, def, cfg, values, log)
	elapsed := d.clock().Sub(started).Seconds()
	if err != nil {
		d.metrics.ObserveStageFailure(string(w), string(stage))
		d.metrics.ObserveDispatch(string(w), outcome(err), elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stage))

		var fe leadforms.FieldErrors
		if errors.As(err, &fe) {
			log.Info("lead rejected", "stage", stage, "fields", fe.Fields())
		} else {
			log.Error("lead dispatch failed", "stage", stage, "error", err)
		}
		return nil, err
	}

	d.metrics.ObserveDispatch(string(w), "sent", elapsed)
	log.Info("lead dispatched", "stage", StageDone, "duration_ms", time.Duration(elapsed*float64(time.Second)).Milliseconds())
	return res, nil
}

func (d *Dispatcher) run(ctx context.Context, w Workflow, def definition, cfg WorkflowConfig, values url.Values, log *logging.Logger) (*Result, Stage, error) {
	requestTime := d.Now()

	log.Debug("dispatch stage", "stage", StageValidating)
	sub, err := d.validator.Validate(ctx, def.kind, values, requestTime)
	if err != nil {
		var fe leadforms.FieldErrors
		if errors.As(err, &fe) {
			return nil, StageValidating, err
		}
		return nil, StageValidating, external("catalog", err)
	}

	log.Debug("dispatch stage", "stage", StageAssembling)
	root, err := Assemble(w, sub, d.boilerplate, requestTime)
	if err != nil {
		return nil, StageAssembling, err
	}

	log.Debug("dispatch stage", "stage", StageSerializing)
	doc, err := adf.Marshal(root)
	if err != nil {
		return nil, StageSerializing, fmt.Errorf("leads: serialize %s: %w", w, err)
	}

	res := &Result{Workflow: w, SuccessTarget: cfg.SuccessTarget, Document: doc}

	if def.shortLink {
		log.Debug("dispatch stage", "stage", StageExtraChannel)
		short, msgID, err := d.sendVehicleLink(ctx, sub, log)
		if err != nil {
			return nil, StageExtraChannel, err
		}
		res.ShortURL = short
		res.MessageID = msgID
	}

	log.Debug("dispatch stage", "stage", StageSending)
	if err := ctx.Err(); err != nil {
		return nil, StageSending, external("email", err)
	}
	msg := notify.EmailMessage{
		From:    cfg.From,
		To:      cfg.To,
		Subject: cfg.Subject,
		Body:    string(doc),
	}
	if err := d.email.Send(ctx, msg); err != nil {
		return nil, StageSending, external("email", err)
	}

	res.ArchiveKey = d.archiveLead(ctx, w, cfg, doc, requestTime, log)
	return res, StageDone, nil
}

// sendVehicleLink resolves the vehicle, shortens its canonical URL and texts
// it to the shopper, in that order.
func (d *Dispatcher) sendVehicleLink(ctx context.Context, sub *leadforms.Submission, log *logging.Logger) (string, string, error) {
	vehicle, err := d.inventory.FindByStockNumber(ctx, sub.Vehicle.StockNumber)
	if err != nil {
		if errors.Is(err, inventory.ErrVehicleNotFound) {
			return "", "", fmt.Errorf("%w: stock %s", ErrVehicleNotFound, sub.Vehicle.StockNumber)
		}
		return "", "", external("inventory", err)
	}

	if err := ctx.Err(); err != nil {
		return "", "", external("shortener", err)
	}
	short, err := d.shortener.Shorten(ctx, vehicle.CanonicalURL(d.siteURL))
	if err != nil {
		return "", "", external("shortener", err)
	}

	if err := ctx.Err(); err != nil {
		d.metrics.ObserveSMS("failed")
		return "", "", external("sms", err)
	}
	msgID, err := d.sms.Send(ctx, messaging.SMS{
		To:   messaging.USToE164(sub.Contact.Phone),
		From: d.smsFrom,
		Body: "Link to the vehicle " + short,
	})
	if err != nil {
		d.metrics.ObserveSMS("failed")
		return "", "", external("sms", err)
	}
	d.metrics.ObserveSMS("sent")
	log.Info("vehicle link sent", "stock_number", vehicle.StockNumber, "short_url", short, "message_id", msgID)
	return short, msgID, nil
}

func (d *Dispatcher) archiveLead(ctx context.Context, w Workflow, cfg WorkflowConfig, doc []byte, sentAt time.Time, log *logging.Logger) string {
	if d.archive == nil {
		return ""
	}
	key, err := d.archive.ArchiveLead(ctx, &archive.LeadRecord{
		Workflow:   string(w),
		Subject:    cfg.Subject,
		Recipients: cfg.To,
		SentAt:     sentAt,
		Document:   doc,
	})
	if err != nil {
		d.metrics.ObserveArchive("error")
		log.Warn("failed to archive lead", "error", err)
		return ""
	}
	if key != "" {
		d.metrics.ObserveArchive("ok")
	}
	return key
}

func outcome(err error) string {
	var fe leadforms.FieldErrors
	var ext *ExternalServiceError
	switch {
	case errors.As(err, &fe):
		return "invalid"
	case errors.Is(err, ErrVehicleNotFound):
		return "not_found"
	case errors.As(err, &ext):
		return "upstream_error"
	default:
		return "failed"
	}
}
