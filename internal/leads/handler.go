package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/autolead-platform/internal/leadforms"
	"github.com/wolfman30/autolead-platform/pkg/logging"
)

// maxFormBytes caps a form body.
const maxFormBytes = 64 << 10

// RedirectHeader carries the thank-you page for AJAX form posts.
const RedirectHeader = "REDIRECT_LOCATION"

// LeadDispatcher is what the HTTP layer needs from a Dispatcher.
type LeadDispatcher interface {
	Dispatch(ctx context.Context, w Workflow, values url.Values) (*Result, error)
	Now() time.Time
	Location() *time.Location
}

// Handler serves the shopper lead forms.
type Handler struct {
	dispatcher LeadDispatcher
	logger     *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(dispatcher LeadDispatcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterRoutes mounts one POST route per workflow plus the test-drive
// choices endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	for _, w := range Workflows() {
		r.Post(w.Route(), h.Submit(w))
	}
	r.Get("/test-drive/dates", h.TestDriveChoices)
}

// SubmitResponse is the success body of a form post.
type SubmitResponse struct {
	Redirect string `json:"redirect"`
}

// ErrorResponse is the failure body of a form post.
type ErrorResponse struct {
	Error  string              `json:"error,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// Submit handles a form-encoded POST for w.
func (h *Handler) Submit(w Workflow) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(rw, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			h.logger.Warn("failed to parse form", "workflow", string(w), "error", err)
			writeJSON(rw, http.StatusBadRequest, ErrorResponse{Error: "invalid form body"})
			return
		}

		res, err := h.dispatcher.Dispatch(r.Context(), w, r.PostForm)
		if err != nil {
			h.writeError(rw, w, err)
			return
		}

		rw.Header().Set(RedirectHeader, res.SuccessTarget)
		writeJSON(rw, http.StatusOK, SubmitResponse{Redirect: res.SuccessTarget})
	}
}

func (h *Handler) writeError(rw http.ResponseWriter, w Workflow, err error) {
	var fe leadforms.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeJSON(rw, http.StatusBadRequest, ErrorResponse{Errors: fe})
	case errors.Is(err, ErrVehicleNotFound):
		writeJSON(rw, http.StatusNotFound, ErrorResponse{Error: "vehicle not found"})
	default:
		h.logger.Error("lead not sent", "workflow", string(w), "error", err)
		writeJSON(rw, http.StatusBadGateway, ErrorResponse{Error: "your request could not be sent, please try again"})
	}
}

// ChoicesResponse lists the schedule choices of the test-drive form.
type ChoicesResponse struct {
	Dates []string `json:"dates"`
	Slots []string `json:"slots"`
}

// TestDriveChoices handles GET /test-drive/dates.
func (h *Handler) TestDriveChoices(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, ChoicesResponse{
		Dates: leadforms.DateLabels(h.dispatcher.Now(), h.dispatcher.Location()),
		Slots: leadforms.SlotLabels(),
	})
}

func writeJSON(rw http.ResponseWriter, status int, body any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(body)
}
