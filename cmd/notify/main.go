// Command notify runs the digest pipeline once from the shell.
//
// Usage:
//
//	notify send                                  # today's digest to RECIPIENT_EMAIL
//	notify send --to fan@example.com --timezone America/Chicago
//	notify send --synthetic --date 2025-08-28
//	notify preview --format html > digest.html
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nyashahama/gameday-mailer/internal/config"
	"github.com/nyashahama/gameday-mailer/internal/digest"
	"github.com/nyashahama/gameday-mailer/internal/email"
	"github.com/nyashahama/gameday-mailer/internal/schedule"
)

// Logs go to stderr so stdout carries only the command's output.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	root := &cobra.Command{
		Use:           "notify",
		Short:         "Send or preview the daily game digest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(sendCmd())
	root.AddCommand(previewCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("notify failed", "error", err)
		os.Exit(1)
	}
}

// runFlags are shared by send and preview.
type runFlags struct {
	timezone  string
	date      string
	synthetic bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "IANA zone for displayed times (default DISPLAY_TIMEZONE)")
	cmd.Flags().StringVar(&f.date, "date", "", "Day to report as YYYY-MM-DD (default today in REFERENCE_TIMEZONE)")
	cmd.Flags().BoolVar(&f.synthetic, "synthetic", false, "Use the built-in sample game instead of the live schedule")
}

// --------------------------------------------------------------------------
// send command
// --------------------------------------------------------------------------

func sendCmd() *cobra.Command {
	var (
		flags runFlags
		to    string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Fetch, render and email today's digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if to == "" {
				to = cfg.RecipientEmail
			}
			if to == "" {
				return fmt.Errorf("%w: pass --to or set RECIPIENT_EMAIL", digest.ErrConfiguration)
			}

			svc, err := newService(cfg, email.NewResendClient(email.ResendConfig{
				APIKey:   cfg.ResendAPIKey,
				FromAddr: cfg.EmailFromAddr,
				FromName: cfg.EmailFromName,
			}))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sum, err := svc.Run(ctx, digest.Request{
				Trigger:   digest.TriggerCLI,
				Recipient: to,
				Timezone:  flags.timezone,
				Date:      flags.date,
				Synthetic: flags.synthetic,
			})
			if err != nil {
				return err
			}
			return writeSummary(cmd, sum)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient address (default RECIPIENT_EMAIL)")
	flags.register(cmd)
	return cmd
}

type sendOutput struct {
	RunID     string `json:"runId"`
	EmailID   string `json:"emailId"`
	Recipient string `json:"recipient"`
	Timezone  string `json:"timezone"`
	Date      string `json:"date"`
	GameCount int    `json:"gameCount"`
	Subject   string `json:"subject"`
}

func writeSummary(cmd *cobra.Command, sum digest.Summary) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(sendOutput{
		RunID:     sum.RunID,
		EmailID:   sum.EmailID,
		Recipient: sum.Recipient,
		Timezone:  sum.Timezone,
		Date:      sum.Date,
		GameCount: len(sum.Games),
		Subject:   sum.Payload.Subject,
	})
}

// --------------------------------------------------------------------------
// preview command
// --------------------------------------------------------------------------

func previewCmd() *cobra.Command {
	var (
		flags  runFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render today's digest to stdout without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "html" {
				return fmt.Errorf("%w: --format must be text or html", digest.ErrInvalidInput)
			}

			cfg, err := config.LoadRenderOnly()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			svc, err := newService(cfg, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := svc.Prepare(ctx, digest.Request{
				Trigger:   digest.TriggerCLI,
				Timezone:  flags.timezone,
				Date:      flags.date,
				Synthetic: flags.synthetic,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "html" {
				_, err = fmt.Fprint(out, p.Payload.HTML)
				return err
			}
			_, err = fmt.Fprintf(out, "Subject: %s\n\n%s", p.Payload.Subject, p.Payload.Text)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or html")
	flags.register(cmd)
	return cmd
}

// --------------------------------------------------------------------------
// shared wiring
// --------------------------------------------------------------------------

// newService builds the pipeline. sender may be nil when only Prepare is used.
func newService(cfg *config.Config, sender email.Sender) (*digest.Service, error) {
	fetcher := schedule.NewClient(schedule.Config{
		BaseURL:           cfg.ScheduleBaseURL,
		RequestsPerMinute: cfg.ScheduleRequestsPerMinute,
		Logger:            logger,
	})
	svc, err := digest.NewService(fetcher, sender, digest.Options{
		TeamID:        cfg.TeamID,
		TeamName:      cfg.TeamName,
		DisplayZone:   cfg.DisplayTimezone,
		ReferenceZone: cfg.ReferenceTimezone,
		GameDuration:  cfg.GameDuration,
	}, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return svc, nil
}
