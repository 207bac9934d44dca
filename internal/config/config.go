// Package config loads and validates all environment variables at startup.
// Every other package receives typed values — nothing reads os.Getenv directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port string // default "8080"
	Env  string // "development" | "staging" | "production"

	// CORSAllowOrigins lists the browser origins allowed to post the
	// self-service form. Empty allows any origin outside production and
	// none in production.
	CORSAllowOrigins []string

	// ── Resend ────────────────────────────────────────────────────────────────
	ResendAPIKey  string
	EmailFromAddr string // default "onboarding@resend.dev"
	EmailFromName string // default "Red Sox Notifier"

	// RecipientEmail receives the scheduled digest. Optional at boot; the
	// scheduled and manual triggers fail with a configuration error without it.
	RecipientEmail string

	// CronOriginMarker must appear in the User-Agent of scheduled requests.
	CronOriginMarker string // default "vercel-cron"

	// ── Team & schedule ──────────────────────────────────────────────────────
	TeamID                    int    // default 111 (Boston Red Sox)
	TeamName                  string // default "Red Sox"
	DisplayTimezone           string // default "America/Vancouver"
	ReferenceTimezone         string // default "America/New_York"
	GameDuration              time.Duration
	ScheduleBaseURL           string
	ScheduleRequestsPerMinute int // default 60

	// ── Self-service rate limit ──────────────────────────────────────────────
	FormRateLimit  int           // requests per window per IP, default 10
	FormRateWindow time.Duration // default 60s
}

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; real
// environment variables always take precedence over .env values.
func Load() (*Config, error) {
	return load(true)
}

// LoadRenderOnly is Load for callers that never deliver email, such as the
// preview command. RESEND_API_KEY may be absent.
func LoadRenderOnly() (*Config, error) {
	return load(false)
}

func load(requireDelivery bool) (*Config, error) {
	_ = godotenv.Load(".env")

	c := &Config{
		Port:                      getEnv("PORT", "8080"),
		Env:                       getEnv("ENV", "development"),
		CORSAllowOrigins:          getEnvAsList("CORS_ALLOW_ORIGINS"),
		ResendAPIKey:              os.Getenv("RESEND_API_KEY"),
		EmailFromAddr:             getEnv("EMAIL_FROM_ADDR", "onboarding@resend.dev"),
		EmailFromName:             getEnv("EMAIL_FROM_NAME", "Red Sox Notifier"),
		RecipientEmail:            strings.TrimSpace(os.Getenv("RECIPIENT_EMAIL")),
		CronOriginMarker:          getEnv("CRON_ORIGIN_MARKER", "vercel-cron"),
		TeamID:                    getEnvAsInt("TEAM_ID", 111),
		TeamName:                  getEnv("TEAM_NAME", "Red Sox"),
		DisplayTimezone:           getEnv("DISPLAY_TIMEZONE", "America/Vancouver"),
		ReferenceTimezone:         getEnv("REFERENCE_TIMEZONE", "America/New_York"),
		GameDuration:              getEnvAsDuration("GAME_DURATION_HOURS", 3*time.Hour),
		ScheduleBaseURL:           getEnv("SCHEDULE_BASE_URL", "https://statsapi.mlb.com/api/v1"),
		ScheduleRequestsPerMinute: getEnvAsInt("SCHEDULE_REQUESTS_PER_MINUTE", 60),
		FormRateLimit:             getEnvAsInt("FORM_RATE_LIMIT", 10),
		FormRateWindow:            getEnvAsDuration("FORM_RATE_WINDOW", 60*time.Second),
	}

	return c, c.validate(requireDelivery)
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate(requireDelivery bool) error {
	var errs []error

	if requireDelivery && c.ResendAPIKey == "" {
		errs = append(errs, fmt.Errorf("missing required env var: RESEND_API_KEY"))
	}
	if c.CronOriginMarker == "" {
		errs = append(errs, fmt.Errorf("CRON_ORIGIN_MARKER must not be empty"))
	}
	if c.TeamID <= 0 {
		errs = append(errs, fmt.Errorf("TEAM_ID must be positive, got %d", c.TeamID))
	}
	for name, zone := range map[string]string{
		"DISPLAY_TIMEZONE":   c.DisplayTimezone,
		"REFERENCE_TIMEZONE": c.ReferenceTimezone,
	} {
		if _, err := time.LoadLocation(zone); err != nil || zone == "Local" {
			errs = append(errs, fmt.Errorf("%s: unknown time zone %q", name, zone))
		}
	}
	if c.GameDuration <= 0 {
		errs = append(errs, fmt.Errorf("GAME_DURATION_HOURS must be positive"))
	}
	if c.FormRateLimit <= 0 || c.FormRateWindow <= 0 {
		errs = append(errs, fmt.Errorf("FORM_RATE_LIMIT and FORM_RATE_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// Try a plain number first (treated as hours, minutes, or seconds
	// depending on the variable name).
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		switch {
		case strings.Contains(key, "HOURS"):
			return time.Duration(value * float64(time.Hour))
		case strings.Contains(key, "MINUTES"):
			return time.Duration(value * float64(time.Minute))
		default:
			return time.Duration(value * float64(time.Second))
		}
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
