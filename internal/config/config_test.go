package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nyashahama/gameday-mailer/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ENV", "CORS_ALLOW_ORIGINS", "RESEND_API_KEY", "EMAIL_FROM_ADDR",
		"EMAIL_FROM_NAME", "RECIPIENT_EMAIL", "CRON_ORIGIN_MARKER", "TEAM_ID",
		"TEAM_NAME", "DISPLAY_TIMEZONE", "REFERENCE_TIMEZONE", "GAME_DURATION_HOURS",
		"SCHEDULE_BASE_URL", "SCHEDULE_REQUESTS_PER_MINUTE", "FORM_RATE_LIMIT",
		"FORM_RATE_WINDOW",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESEND_API_KEY", "re_test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.TeamID != 111 || cfg.TeamName != "Red Sox" {
		t.Errorf("unexpected team defaults: %d %q", cfg.TeamID, cfg.TeamName)
	}
	if cfg.DisplayTimezone != "America/Vancouver" || cfg.ReferenceTimezone != "America/New_York" {
		t.Errorf("unexpected zone defaults: %q %q", cfg.DisplayTimezone, cfg.ReferenceTimezone)
	}
	if cfg.GameDuration != 3*time.Hour {
		t.Errorf("unexpected duration %v", cfg.GameDuration)
	}
	if cfg.CronOriginMarker != "vercel-cron" {
		t.Errorf("unexpected marker %q", cfg.CronOriginMarker)
	}
	if cfg.RecipientEmail != "" {
		t.Errorf("recipient should be optional, got %q", cfg.RecipientEmail)
	}
	if cfg.FormRateWindow != time.Minute {
		t.Errorf("unexpected form window %v", cfg.FormRateWindow)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("RECIPIENT_EMAIL", " fan@example.com ")
	t.Setenv("TEAM_ID", "147")
	t.Setenv("GAME_DURATION_HOURS", "2.5")
	t.Setenv("FORM_RATE_WINDOW", "5m")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RecipientEmail != "fan@example.com" {
		t.Errorf("recipient not trimmed: %q", cfg.RecipientEmail)
	}
	if cfg.TeamID != 147 {
		t.Errorf("unexpected team id %d", cfg.TeamID)
	}
	if cfg.GameDuration != 150*time.Minute {
		t.Errorf("unexpected duration %v", cfg.GameDuration)
	}
	if cfg.FormRateWindow != 5*time.Minute {
		t.Errorf("unexpected window %v", cfg.FormRateWindow)
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSAllowOrigins)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISPLAY_TIMEZONE", "Mars/Base")
	t.Setenv("TEAM_ID", "-1")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"RESEND_API_KEY", "DISPLAY_TIMEZONE", "TEAM_ID"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %s in error, got: %s", want, msg)
		}
	}
}

func TestLoadRenderOnly_DoesNotNeedAPIKey(t *testing.T) {
	clearEnv(t)

	if _, err := config.Load(); err == nil {
		t.Fatal("Load should require RESEND_API_KEY")
	}
	cfg, err := config.LoadRenderOnly()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ResendAPIKey != "" {
		t.Errorf("expected empty key, got %q", cfg.ResendAPIKey)
	}
}
