// Package shortlink turns vehicle detail URLs into short links for SMS.
package shortlink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/autolead-platform/pkg/logging"
)

var tracer = otel.Tracer("autolead.internal.shortlink")

// ErrEmptyShortURL is returned when the provider accepts a request but sends
// back no short link.
var ErrEmptyShortURL = errors.New("shortlink: provider returned empty id")

// Shortener converts a long URL into a short one.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// HTTPShortener talks to a JSON shortening endpoint:
// POST {endpoint}?key={apiKey} {"longUrl": ...} answered with {"id": short}.
type HTTPShortener struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPShortener builds a shortener for endpoint.
func NewHTTPShortener(endpoint, apiKey string, logger *logging.Logger) *HTTPShortener {
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPShortener{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// WithHTTPClient swaps the underlying client.
func (s *HTTPShortener) WithHTTPClient(client *http.Client) *HTTPShortener {
	if client != nil {
		s.httpClient = client
	}
	return s
}

func (s *HTTPShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if strings.TrimSpace(longURL) == "" {
		return "", errors.New("shortlink: url required")
	}
	ctx, span := tracer.Start(ctx, "shortlink.http.shorten")
	defer span.End()
	span.SetAttributes(attribute.String("autolead.long_url", longURL))

	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("shortlink: parse endpoint: %w", err)
	}
	if s.apiKey != "" {
		q := endpoint.Query()
		q.Set("key", s.apiKey)
		endpoint.RawQuery = q.Encode()
	}

	payload, err := json.Marshal(map[string]string{"longUrl": longURL})
	if err != nil {
		return "", fmt.Errorf("shortlink: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("shortlink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("shortlink: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("shortlink: provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		span.RecordError(err)
		return "", err
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("shortlink: decode response: %w", err)
	}
	if parsed.ID == "" {
		span.RecordError(ErrEmptyShortURL)
		return "", ErrEmptyShortURL
	}
	s.logger.Debug("url shortened", "long_url", longURL, "short_url", parsed.ID)
	return parsed.ID, nil
}

// PassthroughShortener returns URLs unchanged. Used when no provider key is
// configured outside production.
type PassthroughShortener struct{}

func (PassthroughShortener) Shorten(_ context.Context, longURL string) (string, error) {
	if strings.TrimSpace(longURL) == "" {
		return "", errors.New("shortlink: url required")
	}
	return longURL, nil
}
