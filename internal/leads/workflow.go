package leads

import (
	"github.com/wolfman30/autolead-platform/internal/adf"
	"github.com/wolfman30/autolead-platform/internal/leadforms"
)

// Workflow names one shopper-facing lead form.
type Workflow string

const (
	ContactUs           Workflow = "contact_us"
	TestDrive           Workflow = "test_drive"
	RequestQuote        Workflow = "request_quote"
	RequestInfo         Workflow = "request_info"
	ConfirmAvailability Workflow = "confirm_availability"
	VehicleFinance      Workflow = "vehicle_finance"
	SendToMobile        Workflow = "send_to_mobile"
)

// definition fixes everything about a workflow that is not deployment
// configuration.
type definition struct {
	kind          leadforms.Kind
	route         string
	subject       string
	successTarget string
	// interest is empty for workflows without a vehicle block.
	interest  string
	vehicle   bool
	timeframe bool
	shortLink bool
	comments  func(*leadforms.Submission) string
}

var workflowOrder = []Workflow{
	ContactUs,
	TestDrive,
	RequestQuote,
	RequestInfo,
	ConfirmAvailability,
	VehicleFinance,
	SendToMobile,
}

var definitions = map[Workflow]definition{
	ContactUs: {
		kind:          leadforms.KindContact,
		route:         "/contact/",
		subject:       "Montclair Acura - Contact Request",
		successTarget: "/contact/thank-you/",
		comments:      func(s *leadforms.Submission) string { return s.Message },
	},
	TestDrive: {
		kind:          leadforms.KindTestDrive,
		route:         "/test-drive/",
		subject:       "Montclair Acura - Test Drive Request",
		successTarget: "/test-drive/thank-you/",
		interest:      adf.InterestTestDrive,
		vehicle:       true,
		timeframe:     true,
		comments:      testDriveComments,
	},
	RequestQuote: {
		kind:          leadforms.KindVehicleEnquiry,
		route:         "/request-quote/",
		subject:       "Montclair Acura - Request for Quotation",
		successTarget: "/request-quote/thank-you/",
		interest:      adf.InterestBuy,
		vehicle:       true,
		comments:      prefixed("Request for Quotation \n"),
	},
	RequestInfo: {
		kind:          leadforms.KindVehicleEnquiry,
		route:         "/request-info/",
		subject:       "Montclair Acura - Request for Information",
		successTarget: "/request-info/thank-you/",
		interest:      adf.InterestBuy,
		vehicle:       true,
		comments:      prefixed("Request for Information \n"),
	},
	ConfirmAvailability: {
		kind:          leadforms.KindVehicleEnquiry,
		route:         "/confirm-availability/",
		subject:       "Montclair Acura - Confirm Availability",
		successTarget: "/confirm-availability/thank-you/",
		interest:      adf.InterestBuy,
		vehicle:       true,
		comments:      prefixed(availabilityPrefix),
	},
	// Finance enquiries reuse the availability wording and thank-you page.
	VehicleFinance: {
		kind:          leadforms.KindVehicleEnquiry,
		route:         "/vehicle-finance/",
		subject:       "Montclair Acura - Enquiry about Finance",
		successTarget: "/confirm-availability/thank-you/",
		interest:      adf.InterestBuy,
		vehicle:       true,
		comments:      prefixed(availabilityPrefix),
	},
	SendToMobile: {
		kind:          leadforms.KindSendToMobile,
		route:         "/send-to-mobile/",
		subject:       "Montclair Acura - Lead via Send To Mobile",
		successTarget: "/send-to-mobile/thank-you/",
		interest:      adf.InterestBuy,
		vehicle:       true,
		shortLink:     true,
		comments:      func(*leadforms.Submission) string { return "Request to send information to mobile" },
	},
}

const availabilityPrefix = "Request to confirm availability \n"

func prefixed(prefix string) func(*leadforms.Submission) string {
	return func(s *leadforms.Submission) string { return prefix + s.Message }
}

// Keeps the historical wording, including no space after "between".
func testDriveComments(s *leadforms.Submission) string {
	return "Test Drive requested between" + s.Schedule.Description() + "\n" + s.Message
}

// Workflows lists every workflow in route registration order.
func Workflows() []Workflow {
	out := make([]Workflow, len(workflowOrder))
	copy(out, workflowOrder)
	return out
}

// ParseWorkflow maps a name back to a known workflow.
func ParseWorkflow(name string) (Workflow, bool) {
	w := Workflow(name)
	_, ok := definitions[w]
	return w, ok
}

// Route is the POST path the workflow's form submits to.
func (w Workflow) Route() string {
	return definitions[w].route
}

// FormKind is the validation field set for the workflow.
func (w Workflow) FormKind() leadforms.Kind {
	return definitions[w].kind
}

// WorkflowConfig is the per-deployment part of a workflow: who the lead
// comes from, who receives it, and where the shopper goes afterwards.
type WorkflowConfig struct {
	Subject       string
	From          string
	To            []string
	SuccessTarget string
}

// DefaultWorkflowConfigs returns a config for every workflow using the
// built-in subjects and thank-you pages.
func DefaultWorkflowConfigs(from string, to []string) map[Workflow]WorkflowConfig {
	out := make(map[Workflow]WorkflowConfig, len(definitions))
	for w, def := range definitions {
		recipients := make([]string, len(to))
		copy(recipients, to)
		out[w] = WorkflowConfig{
			Subject:       def.subject,
			From:          from,
			To:            recipients,
			SuccessTarget: def.successTarget,
		}
	}
	return out
}
