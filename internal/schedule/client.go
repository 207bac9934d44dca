package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public MLB Stats API root.
	DefaultBaseURL = "https://statsapi.mlb.com/api/v1"

	dateLayout         = "2006-01-02"
	defaultHTTPTimeout = 15 * time.Second
	maxBodyBytes       = 1 << 20
)

// Config controls how the client reaches the provider.
type Config struct {
	BaseURL string

	// HTTPClient is optional; a client with a 15s timeout is used when nil.
	HTTPClient *http.Client

	// RequestsPerMinute caps outbound calls. Zero or negative disables the cap.
	RequestsPerMinute int

	Logger *slog.Logger
}

// Client is the MLB Stats API schedule fetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient returns a rate-limited schedule client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultHTTPTimeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    base,
		httpClient: hc,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// FetchGamesForDate returns every game the team plays on date's calendar day,
// in the order the provider lists them. The day is taken from date in its own
// location, so callers pick the reference zone. A day without games yields an
// empty slice and a nil error.
func (c *Client) FetchGamesForDate(ctx context.Context, teamID int, date time.Time) ([]Game, error) {
	day := date.Format(dateLayout)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrNetwork, err)
	}

	params := url.Values{}
	params.Set("sportId", "1")
	params.Set("teamId", strconv.Itoa(teamID))
	params.Set("date", day)
	params.Set("hydrate", "team,linescore,venue")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/schedule?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("schedule: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, truncate(body, 200))
	}

	var payload scheduleResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrUpstreamUnavailable, err)
	}

	games := make([]Game, 0)
	for _, d := range payload.Dates {
		for _, g := range d.Games {
			games = append(games, mapGame(g))
		}
	}

	c.logger.Debug("schedule fetched", "team_id", teamID, "date", day, "games", len(games))
	return games, nil
}

func truncate(b []byte, maxLen int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
