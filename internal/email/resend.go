package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultResendEndpoint is Resend's send-email endpoint.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// ResendConfig configures the Resend client.
type ResendConfig struct {
	APIKey   string
	FromAddr string // e.g. "onboarding@resend.dev"
	FromName string // e.g. "Red Sox Notifier"

	// Endpoint overrides DefaultResendEndpoint; used by tests.
	Endpoint string

	HTTPClient *http.Client
}

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey     string
	from       string
	endpoint   string
	httpClient *http.Client
}

// NewResendClient returns a Sender that delivers email via Resend.
func NewResendClient(cfg ResendConfig) Sender {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultResendEndpoint
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &resendClient{
		apiKey:     cfg.APIKey,
		from:       formatFrom(cfg.FromName, cfg.FromAddr),
		endpoint:   endpoint,
		httpClient: hc,
	}
}

func formatFrom(name, addr string) string {
	if strings.TrimSpace(name) == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Resend reports failures either as a top-level error object or, on the REST
// API, as {name, message, statusCode} at the root.
type resendResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Msg   string `json:"message"`
	Error *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

// Send posts the payload to Resend once. Any failure is wrapped in
// ErrDeliveryFailed.
func (c *resendClient) Send(ctx context.Context, p Payload, to string) (Receipt, error) {
	reqBody := resendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: p.Subject,
		HTML:    p.HTML,
		Text:    p.Text,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: marshal request: %w", ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: build request: %w", ErrDeliveryFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: http request: %w", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: read response: %w", ErrDeliveryFailed, err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return Receipt{}, fmt.Errorf("%w: unmarshal response (status %d): %w", ErrDeliveryFailed, resp.StatusCode, err)
	}

	if parsed.Error != nil {
		return Receipt{}, fmt.Errorf("%w: Resend error %s: %s", ErrDeliveryFailed, parsed.Error.Name, parsed.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Msg != "" {
			return Receipt{}, fmt.Errorf("%w: Resend error %s (status %d): %s", ErrDeliveryFailed, parsed.Name, resp.StatusCode, parsed.Msg)
		}
		return Receipt{}, fmt.Errorf("%w: unexpected status %d: %.200s", ErrDeliveryFailed, resp.StatusCode, string(respBytes))
	}

	if parsed.ID == "" {
		return Receipt{}, fmt.Errorf("%w: response carried no message id", ErrDeliveryFailed)
	}

	return Receipt{ProviderID: parsed.ID, Recipient: to}, nil
}
