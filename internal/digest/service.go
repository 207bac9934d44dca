// Package digest is the fetch → view → render → send pipeline behind every
// trigger. A Service holds no per-request state; concurrent Runs are
// independent.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/gameday-mailer/internal/email"
	"github.com/nyashahama/gameday-mailer/internal/metrics"
	"github.com/nyashahama/gameday-mailer/internal/schedule"
)

const dateLayout = "2006-01-02"

// ScheduleFetcher is the narrow view of the schedule provider the pipeline
// needs. *schedule.Client satisfies it.
type ScheduleFetcher interface {
	FetchGamesForDate(ctx context.Context, teamID int, date time.Time) ([]schedule.Game, error)
}

// Trigger names the entry point that started a run. It labels logs and
// metrics only.
type Trigger string

const (
	TriggerScheduled   Trigger = "scheduled"
	TriggerManual      Trigger = "manual"
	TriggerSelfService Trigger = "self_service"
	TriggerDiagnostic  Trigger = "diagnostic"
	TriggerCLI         Trigger = "cli"
)

// Options are the fixed, process-wide inputs of the pipeline.
type Options struct {
	TeamID   int
	TeamName string

	// DisplayZone formats times when a request does not name a zone.
	DisplayZone string

	// ReferenceZone decides which calendar day "today" is. It never changes
	// with the display zone.
	ReferenceZone string

	GameDuration time.Duration
}

// Request is one run of the pipeline.
type Request struct {
	Trigger   Trigger
	Recipient string
	Timezone  string // empty → Options.DisplayZone
	Date      string // YYYY-MM-DD; empty → today in the reference zone
	Synthetic bool   // use SampleGames instead of the provider
}

// Preview is a rendered but unsent notification.
type Preview struct {
	RunID    string
	Date     string
	Timezone string
	Games    []DisplayGame
	Payload  email.Payload
}

// Summary describes a delivered notification.
type Summary struct {
	Preview
	Recipient string
	EmailID   string
}

// Service runs the pipeline.
type Service struct {
	fetcher ScheduleFetcher
	sender  email.Sender
	opts    Options
	refLoc  *time.Location
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService validates opts and returns a Service. rec may be nil.
func NewService(fetcher ScheduleFetcher, sender email.Sender, opts Options, rec *metrics.Recorder, logger *slog.Logger) (*Service, error) {
	refLoc, err := ResolveZone(opts.ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("%w: reference zone %q: %w", ErrConfiguration, opts.ReferenceZone, err)
	}
	if _, err := ResolveZone(opts.DisplayZone); err != nil {
		return nil, fmt.Errorf("%w: display zone %q: %w", ErrConfiguration, opts.DisplayZone, err)
	}
	if opts.GameDuration <= 0 {
		opts.GameDuration = DefaultGameDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		sender:  sender,
		opts:    opts,
		refLoc:  refLoc,
		metrics: rec,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DisplayZone is the zone used when a request does not name one.
func (s *Service) DisplayZone() string { return s.opts.DisplayZone }

// ValidRecipient is the minimal well-formedness check applied before any
// upstream call.
func ValidRecipient(addr string) bool {
	return strings.Contains(strings.TrimSpace(addr), "@")
}

// Prepare fetches and renders without sending.
func (s *Service) Prepare(ctx context.Context, req Request) (Preview, error) {
	runID := uuid.NewString()
	log := s.logger.With("run_id", runID, "trigger", string(req.Trigger))

	zone := strings.TrimSpace(req.Timezone)
	if zone == "" {
		zone = s.opts.DisplayZone
	}
	if _, err := ResolveZone(zone); err != nil {
		return Preview{}, fmt.Errorf("%w: unknown time zone %q", ErrInvalidInput, zone)
	}

	day, err := s.referenceDay(req.Date)
	if err != nil {
		return Preview{}, err
	}
	dayStr := day.Format(dateLayout)

	var games []schedule.Game
	if req.Synthetic {
		games = SampleGames(day, s.opts.TeamID, s.opts.TeamName)
		log.Info("using synthetic schedule", "date", dayStr)
	} else {
		start := time.Now()
		games, err = s.fetcher.FetchGamesForDate(ctx, s.opts.TeamID, day)
		s.metrics.FetchFinished(time.Since(start), err)
		if err != nil {
			log.Error("schedule fetch failed", "date", dayStr, "error", err)
			return Preview{}, err
		}
		log.Info("schedule fetched", "date", dayStr, "games", len(games))
	}

	views := BuildViews(games, s.opts.TeamID, zone, s.opts.GameDuration)
	payload, err := NewRenderer(s.opts.TeamName, zone).Render(views)
	if err != nil {
		return Preview{}, err
	}

	return Preview{
		RunID:    runID,
		Date:     dayStr,
		Timezone: zone,
		Games:    views,
		Payload:  payload,
	}, nil
}

// Run executes the full pipeline once. Every failure is terminal; nothing is
// retried.
func (s *Service) Run(ctx context.Context, req Request) (sum Summary, err error) {
	defer func() { s.metrics.RunFinished(string(req.Trigger), err) }()

	if !ValidRecipient(req.Recipient) {
		return Summary{}, fmt.Errorf("%w: valid email address is required", ErrInvalidInput)
	}
	recipient := strings.TrimSpace(req.Recipient)

	preview, err := s.Prepare(ctx, req)
	if err != nil {
		return Summary{}, err
	}

	receipt, err := s.sender.Send(ctx, preview.Payload, recipient)
	s.metrics.EmailFinished(err)
	if err != nil {
		s.logger.Error("email send failed", "run_id", preview.RunID, "error", err)
		return Summary{}, err
	}

	s.logger.Info("digest sent",
		"run_id", preview.RunID,
		"trigger", string(req.Trigger),
		"email_id", receipt.ProviderID,
		"games", len(preview.Games),
		"subject", preview.Payload.Subject,
	)

	return Summary{
		Preview:   preview,
		Recipient: recipient,
		EmailID:   receipt.ProviderID,
	}, nil
}

// referenceDay resolves the calendar day to fetch. An explicit date is taken
// as midnight in the reference zone.
func (s *Service) referenceDay(date string) (time.Time, error) {
	if date == "" {
		now := s.now().In(s.refLoc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.refLoc), nil
	}
	d, err := time.ParseInLocation(dateLayout, date, s.refLoc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return d, nil
}
