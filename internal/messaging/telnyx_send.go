package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/autolead-platform/pkg/logging"
)

var telnyxSendTracer = otel.Tracer("autolead.internal.messaging.telnyx_send")

const telnyxMessagesURL = "https://api.telnyx.com/v2/messages"

// TelnyxSender posts SMS messages using Telnyx's V2 API.
type TelnyxSender struct {
	apiKey             string
	messagingProfileID string
	from               string
	endpoint           string
	httpClient         *http.Client
	logger             *logging.Logger
	maxAttempts        int
}

// NewTelnyxSender builds a sender for Telnyx V2 API.
func NewTelnyxSender(apiKey, messagingProfileID, defaultFrom string, logger *logging.Logger) *TelnyxSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TelnyxSender{
		apiKey:             apiKey,
		messagingProfileID: messagingProfileID,
		from:               defaultFrom,
		endpoint:           telnyxMessagesURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:      logger,
		maxAttempts: defaultSendAttempts,
	}
}

// WithMaxAttempts caps how many POSTs one Send may make. Values below 1 mean a
// single attempt.
func (s *TelnyxSender) WithMaxAttempts(n int) *TelnyxSender {
	if n < 1 {
		n = 1
	}
	s.maxAttempts = n
	return s
}

var _ SMSSender = (*TelnyxSender)(nil)

// Send dispatches a single SMS via Telnyx V2 API, retrying transient failures
// while attempts remain.
func (s *TelnyxSender) Send(ctx context.Context, msg SMS) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("messaging: telnyx api key missing")
	}
	if msg.From == "" {
		msg.From = s.from
	}
	if err := msg.validate(); err != nil {
		return "", err
	}

	ctx, span := telnyxSendTracer.Start(ctx, "messaging.telnyx.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("autolead.to", msg.To),
		attribute.String("autolead.from", msg.From),
	)

	payload := map[string]interface{}{
		"from": msg.From,
		"to":   msg.To,
		"text": msg.Body,
	}
	if s.messagingProfileID != "" {
		payload["messaging_profile_id"] = s.messagingProfileID
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("messaging: failed to marshal telnyx payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				var parsed struct {
					Data struct {
						ID string `json:"id"`
					} `json:"data"`
				}
				_ = json.Unmarshal(body, &parsed)
				s.logger.Info("telnyx sms sent", "to", msg.To, "from", msg.From, "message_id", parsed.Data.ID)
				return parsed.Data.ID, nil
			}
			var errorBody map[string]interface{}
			if len(body) > 0 && json.Unmarshal(body, &errorBody) == nil {
				lastErr = fmt.Errorf("telnyx send failed: status %d, body: %v", resp.StatusCode, errorBody)
			} else {
				lastErr = fmt.Errorf("telnyx send failed: status %d", resp.StatusCode)
			}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				break
			}
		}

		if attempt < s.maxAttempts {
			if err := sleepWithJitter(ctx); err != nil {
				lastErr = err
				break
			}
		}
	}

	span.RecordError(lastErr)
	s.logger.Error("failed to send telnyx sms", "error", lastErr, "to", msg.To)
	return "", lastErr
}
