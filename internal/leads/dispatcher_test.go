package leads

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/autolead-platform/internal/adf"
	"github.com/wolfman30/autolead-platform/internal/archive"
	"github.com/wolfman30/autolead-platform/internal/inventory"
	"github.com/wolfman30/autolead-platform/internal/leadforms"
	"github.com/wolfman30/autolead-platform/internal/messaging"
	"github.com/wolfman30/autolead-platform/internal/notify"
	"github.com/wolfman30/autolead-platform/internal/observability/metrics"
	"github.com/wolfman30/autolead-platform/pkg/logging"
)

const siteURL = "https://www.montclairacura.com"

// Tuesday morning.
var fixedNow = time.Date(2024, 3, 5, 10, 0, 0, 0, est)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeShortener struct {
	log   *callLog
	short string
	err   error
	got   string
}

func (f *fakeShortener) Shorten(_ context.Context, longURL string) (string, error) {
	f.log.record("shorten")
	f.got = longURL
	if f.err != nil {
		return "", f.err
	}
	return f.short, nil
}

type fakeSMS struct {
	log  *callLog
	sent []messaging.SMS
	err  error
}

func (f *fakeSMS) Send(_ context.Context, msg messaging.SMS) (string, error) {
	f.log.record("sms")
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "SM123", nil
}

type fakeEmail struct {
	log   *callLog
	sent  []notify.EmailMessage
	err   error
	block bool
}

func (f *fakeEmail) Send(ctx context.Context, msg notify.EmailMessage) error {
	f.log.record("email")
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeArchiver struct {
	records []*archive.LeadRecord
	err     error
}

func (f *fakeArchiver) ArchiveLead(_ context.Context, rec *archive.LeadRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.records = append(f.records, rec)
	return "leads/v1/" + rec.Workflow + ".xml", nil
}

type failingCatalog struct{}

func (failingCatalog) MakeName(context.Context, int64) (string, error) {
	return "", errors.New("connection refused")
}

func (failingCatalog) ModelName(context.Context, int64) (string, error) {
	return "", errors.New("connection refused")
}

type harness struct {
	log       *callLog
	shortener *fakeShortener
	sms       *fakeSMS
	email     *fakeEmail
	archive   *fakeArchiver
	registry  *prometheus.Registry
	metrics   *metrics.LeadMetrics
	vehicle   *inventory.Vehicle
}

func newHarness() *harness {
	log := &callLog{}
	reg := prometheus.NewRegistry()
	return &harness{
		log:       log,
		shortener: &fakeShortener{log: log, short: "https://goo.gl/abc"},
		sms:       &fakeSMS{log: log},
		email:     &fakeEmail{log: log},
		archive:   &fakeArchiver{},
		registry:  reg,
		metrics:   metrics.NewLeadMetrics(reg),
		vehicle: &inventory.Vehicle{
			StockNumber: "A1234",
			VIN:         "5FRYD4H40HB000001",
			Year:        2017,
			Make:        "Acura",
			Model:       "MDX",
		},
	}
}

func (h *harness) config() DispatcherConfig {
	catalog := inventory.NewInMemoryCatalog().AddMake(1, "Acura").AddModel(3, "MDX")
	return DispatcherConfig{
		Validator:   leadforms.NewValidator(catalog, est),
		Inventory:   inventory.NewInMemoryRepository(h.vehicle),
		Shortener:   h.shortener,
		SMS:         h.sms,
		Email:       h.email,
		Archive:     h.archive,
		Metrics:     h.metrics,
		Boilerplate: adf.DefaultBoilerplate(),
		Workflows:   DefaultWorkflowConfigs("webmaster@localhost", []string{"leads@example.com"}),
		SiteURL:     siteURL,
		SMSFrom:     "+18555550100",
		Location:    est,
		Clock:       func() time.Time { return fixedNow },
		Logger:      logging.Default(),
	}
}

func (h *harness) dispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(h.config())
	require.NoError(t, err)
	return d
}

func contactForm() url.Values {
	return url.Values{
		"first_name": {"Jane"},
		"last_name":  {"Doe"},
		"email":      {""},
		"phone":      {"2015551234"},
		"address":    {""},
		"city":       {"Verona"},
		"state":      {"NJ"},
		"zip_code":   {"07044"},
		"message":    {"Please call me"},
	}
}

func vehicleForm() url.Values {
	v := contactForm()
	v.Set("stock_number", "A1234")
	v.Set("vin", "5FRYD4H40HB000001")
	v.Set("year_mfd", "2017")
	v.Set("make", "1")
	v.Set("model", "3")
	return v
}

func mobileForm() url.Values {
	return url.Values{
		"first_name":   {"Jane"},
		"last_name":    {"Doe"},
		"phone":        {"201-555-1234"},
		"stock_number": {"A1234"},
		"vin":          {"5FRYD4H40HB000001"},
		"year_mfd":     {"2017"},
		"make":         {"1"},
		"model":        {"3"},
	}
}

func TestDispatchContactUs(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	res, err := d.Dispatch(context.Background(), ContactUs, contactForm())
	require.NoError(t, err)
	assert.Equal(t, "/contact/thank-you/", res.SuccessTarget)
	assert.Equal(t, "leads/v1/contact_us.xml", res.ArchiveKey)

	require.Len(t, h.email.sent, 1)
	msg := h.email.sent[0]
	assert.Equal(t, "Montclair Acura - Contact Request", msg.Subject)
	assert.Equal(t, "webmaster@localhost", msg.From)
	assert.Equal(t, []string{"leads@example.com"}, msg.To)
	assert.Equal(t, string(res.Document), msg.Body)

	root, err := adf.Parse(res.Document)
	require.NoError(t, err)
	assert.Equal(t, "2015551234", root.FindElement("prospect/customer/contact/phone").Text())
	assert.Equal(t, "Please call me", root.FindElement("prospect/customer/comments").Text())
	assert.Equal(t, "2024-03-05T10:00:00-05:00", root.FindElement("prospect/requestdate").Text())

	assert.Empty(t, h.sms.sent)
	require.Len(t, h.archive.records, 1)
	assert.Equal(t, "Montclair Acura - Contact Request", h.archive.records[0].Subject)
	assert.Equal(t, 1.0, h.dispatchCount(t, "contact_us", "sent"))
}

func (h *harness) dispatchCount(t *testing.T, workflow, outcome string) float64 {
	t.Helper()
	families, err := h.registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "autolead_leads_dispatch_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["workflow"] == workflow && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestDispatchMissingEmailAndPhone(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	values := contactForm()
	values.Set("phone", "")
	_, err := d.Dispatch(context.Background(), ContactUs, values)
	require.Error(t, err)

	var fe leadforms.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"email", "phone"}, fe.Fields())
	assert.Equal(t, []string{leadforms.EmailOrPhoneRequired}, fe["email"])
	assert.Equal(t, []string{leadforms.EmailOrPhoneRequired}, fe["phone"])
	assert.Empty(t, h.log.list())
	assert.Equal(t, 1.0, h.dispatchCount(t, "contact_us", "invalid"))
}

func TestDispatchOnlyEmail(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	values := contactForm()
	values.Set("phone", "")
	values.Set("email", "jane@example.com")
	_, err := d.Dispatch(context.Background(), ContactUs, values)
	require.NoError(t, err)
	assert.Len(t, h.email.sent, 1)
}

func TestDispatchTestDrive(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	first := leadforms.DateLabels(fixedNow, est)[0]
	require.Equal(t, "Tuesday Mar 05, 2024", first)

	values := vehicleForm()
	values.Set("schedule_date", first)
	values.Set("scheduled_slot", "9 am - 11 am")
	values.Set("message", "After work")

	res, err := d.Dispatch(context.Background(), TestDrive, values)
	require.NoError(t, err)
	assert.Equal(t, "/test-drive/thank-you/", res.SuccessTarget)

	root, err := adf.Parse(res.Document)
	require.NoError(t, err)
	interest := root.FindElement("prospect/vehicle").SelectAttrValue("interest", "")
	assert.Equal(t, "test-drive", interest)
	assert.Equal(t, "Test Drive requested between9 am - 11 am on Tuesday Mar 05, 2024\nAfter work",
		root.FindElement("prospect/customer/comments").Text())
	assert.Equal(t, "2024-03-05T09:00:00-05:00", root.FindElement("prospect/customer/timeframe/earliestdate").Text())
	assert.Equal(t, "Montclair Acura - Test Drive Request", h.email.sent[0].Subject)
}

func TestDispatchTestDriveRejectsSunday(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	values := vehicleForm()
	values.Set("schedule_date", "Sunday Mar 10, 2024")
	values.Set("scheduled_slot", "9 am - 11 am")

	_, err := d.Dispatch(context.Background(), TestDrive, values)
	var fe leadforms.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Has("schedule_date"))
	assert.Empty(t, h.email.sent)
}

func TestDispatchEnquiriesUseBuyInterest(t *testing.T) {
	for _, w := range []Workflow{RequestQuote, RequestInfo, ConfirmAvailability, VehicleFinance} {
		t.Run(string(w), func(t *testing.T) {
			h := newHarness()
			d := h.dispatcher(t)

			res, err := d.Dispatch(context.Background(), w, vehicleForm())
			require.NoError(t, err)
			root, err := adf.Parse(res.Document)
			require.NoError(t, err)
			interest := root.FindElement("prospect/vehicle").SelectAttrValue("interest", "")
			assert.Equal(t, "buy", interest)
			assert.Equal(t, definitions[w].subject, h.email.sent[0].Subject)
		})
	}
}

func TestDispatchSendToMobileOrder(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	res, err := d.Dispatch(context.Background(), SendToMobile, mobileForm())
	require.NoError(t, err)

	assert.Equal(t, []string{"shorten", "sms", "email"}, h.log.list())
	assert.Equal(t, h.vehicle.CanonicalURL(siteURL), h.shortener.got)
	require.Len(t, h.sms.sent, 1)
	assert.Equal(t, messaging.SMS{
		To:   "+12015551234",
		From: "+18555550100",
		Body: "Link to the vehicle https://goo.gl/abc",
	}, h.sms.sent[0])
	assert.Equal(t, "https://goo.gl/abc", res.ShortURL)
	assert.Equal(t, "SM123", res.MessageID)
	assert.Equal(t, "/send-to-mobile/thank-you/", res.SuccessTarget)

	root, err := adf.Parse(res.Document)
	require.NoError(t, err)
	assert.Equal(t, "Request to send information to mobile", root.FindElement("prospect/customer/comments").Text())
}

func TestDispatchSendToMobileShortenFailure(t *testing.T) {
	h := newHarness()
	h.shortener.err = errors.New("quota exceeded")
	d := h.dispatcher(t)

	_, err := d.Dispatch(context.Background(), SendToMobile, mobileForm())
	require.Error(t, err)

	var ext *ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, "shortener", ext.Service)
	assert.ErrorIs(t, err, h.shortener.err)
	assert.Equal(t, []string{"shorten"}, h.log.list())
	assert.Empty(t, h.sms.sent)
	assert.Empty(t, h.email.sent)
	assert.Empty(t, h.archive.records)
	assert.Equal(t, 1.0, h.dispatchCount(t, "send_to_mobile", "upstream_error"))
}

func TestDispatchSendToMobileSMSFailureSkipsEmail(t *testing.T) {
	h := newHarness()
	h.sms.err = errors.New("unreachable handset")
	d := h.dispatcher(t)

	_, err := d.Dispatch(context.Background(), SendToMobile, mobileForm())
	var ext *ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, "sms", ext.Service)
	assert.Equal(t, []string{"shorten", "sms"}, h.log.list())
	assert.Empty(t, h.email.sent)
}

func TestDispatchSendToMobileUnknownVehicle(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	values := mobileForm()
	values.Set("stock_number", "Z9999")
	_, err := d.Dispatch(context.Background(), SendToMobile, values)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
	assert.ErrorIs(t, err, inventory.ErrVehicleNotFound)
	assert.Empty(t, h.log.list())
}

func TestDispatchEmailFailure(t *testing.T) {
	h := newHarness()
	h.email.err = errors.New("smtp 421")
	d := h.dispatcher(t)

	_, err := d.Dispatch(context.Background(), ContactUs, contactForm())
	var ext *ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, "email", ext.Service)
	assert.Empty(t, h.archive.records)
}

func TestDispatchTimeoutIsExternalServiceError(t *testing.T) {
	h := newHarness()
	h.email.block = true
	cfg := h.config()
	cfg.Timeout = 20 * time.Millisecond
	d, err := NewDispatcher(cfg)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), ContactUs, contactForm())
	var ext *ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatchCatalogFailure(t *testing.T) {
	h := newHarness()
	cfg := h.config()
	cfg.Validator = leadforms.NewValidator(failingCatalog{}, est)
	d, err := NewDispatcher(cfg)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), RequestQuote, vehicleForm())
	var ext *ExternalServiceError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, "catalog", ext.Service)
	assert.Empty(t, h.email.sent)
}

func TestDispatchArchiveFailureStillSucceeds(t *testing.T) {
	h := newHarness()
	h.archive.err = errors.New("access denied")
	d := h.dispatcher(t)

	res, err := d.Dispatch(context.Background(), ContactUs, contactForm())
	require.NoError(t, err)
	assert.Empty(t, res.ArchiveKey)
	assert.Len(t, h.email.sent, 1)
}

func TestDispatchUnknownWorkflow(t *testing.T) {
	h := newHarness()
	d := h.dispatcher(t)

	_, err := d.Dispatch(context.Background(), Workflow("trade_in"), contactForm())
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg := h.config()
	cfg.Workflows = map[Workflow]WorkflowConfig{ContactUs: cfg.Workflows[ContactUs]}
	d, err = NewDispatcher(cfg)
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), RequestQuote, vehicleForm())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewDispatcherRequirements(t *testing.T) {
	h := newHarness()

	cfg := h.config()
	cfg.Validator = nil
	_, err := NewDispatcher(cfg)
	assert.Error(t, err)

	cfg = h.config()
	cfg.Email = nil
	_, err = NewDispatcher(cfg)
	assert.Error(t, err)

	cfg = h.config()
	cfg.SMS = nil
	_, err = NewDispatcher(cfg)
	assert.Error(t, err)

	cfg = h.config()
	cfg.Workflows = nil
	_, err = NewDispatcher(cfg)
	assert.Error(t, err)

	cfg = h.config()
	cfg.Timeout = 0
	cfg.Location = nil
	d, err := NewDispatcher(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultDispatchTimeout, d.timeout)
	assert.Equal(t, time.UTC, d.Location())
}
