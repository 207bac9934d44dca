package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nyashahama/gameday-mailer/internal/digest"
)

// ─── RESPONSE SHAPES ──────────────────────────────────────────────────────────

type gameSummary struct {
	Opponent string `json:"opponent"`
	Time     string `json:"time"`
	Location string `json:"location"` // "vs" or "@"
	Status   string `json:"status"`
	Venue    string `json:"venue"`
	GameDate string `json:"gameDate,omitempty"`
}

type digestResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	RunID     string        `json:"runId"`
	GameCount int           `json:"gameCount"`
	EmailID   string        `json:"emailId"`
	Recipient string        `json:"recipient"`
	Timezone  string        `json:"timezone"`
	Date      string        `json:"date"`
	Games     []gameSummary `json:"games"`
}

func newDigestResponse(message string, sum digest.Summary) digestResponse {
	games := make([]gameSummary, len(sum.Games))
	for i, g := range sum.Games {
		gs := gameSummary{
			Opponent: g.Opponent,
			Time:     g.TimeRange,
			Location: g.Indicator(),
			Status:   g.Status,
			Venue:    g.Venue,
		}
		if !g.Kickoff.IsZero() {
			gs.GameDate = g.Kickoff.UTC().Format(time.RFC3339)
		}
		games[i] = gs
	}
	return digestResponse{
		Success:   true,
		Message:   message,
		RunID:     sum.RunID,
		GameCount: len(sum.Games),
		EmailID:   sum.EmailID,
		Recipient: sum.Recipient,
		Timezone:  sum.Timezone,
		Date:      sum.Date,
		Games:     games,
	}
}

// ─── GET /api/cron/daily-digest ───────────────────────────────────────────────

// handleScheduledDigest sends today's digest to the configured recipient.
// requireCronOrigin has already rejected anything not sent by the scheduler.
func (s *Server) handleScheduledDigest(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("scheduled digest started", logField(r))
	s.runConfigured(w, r, digest.TriggerScheduled, false, "", "Daily digest email sent successfully")
}

// ─── POST /api/cron/daily-digest ──────────────────────────────────────────────

// handleManualDigest is the operator re-send: same pipeline, no origin check.
func (s *Server) handleManualDigest(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("manual digest started", logField(r))
	s.runConfigured(w, r, digest.TriggerManual, false, "", "Daily digest email sent successfully (manual trigger)")
}

// ─── GET /api/test-email ──────────────────────────────────────────────────────

// handleDiagnostic sends to the configured recipient. test=true swaps the live
// schedule for the synthetic slate; date=YYYY-MM-DD picks another day.
func (s *Server) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	synthetic := false
	if raw := q.Get("test"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondErr(w, http.StatusBadRequest, "Invalid test flag", "test must be true or false")
			return
		}
		synthetic = v
	}

	message := "Digest email sent successfully"
	if synthetic {
		message = "Test email sent successfully"
	}
	s.runConfigured(w, r, digest.TriggerDiagnostic, synthetic, q.Get("date"), message)
}

func (s *Server) runConfigured(w http.ResponseWriter, r *http.Request, trigger digest.Trigger, synthetic bool, date, message string) {
	if s.cfg.RecipientEmail == "" {
		s.respondPipelineErr(w, r, fmt.Errorf("%w: RECIPIENT_EMAIL is not set", digest.ErrConfiguration))
		return
	}
	// The address came from the environment, not the caller, so a bad one
	// is a server fault.
	if !digest.ValidRecipient(s.cfg.RecipientEmail) {
		s.respondPipelineErr(w, r, fmt.Errorf("%w: RECIPIENT_EMAIL is not a valid address", digest.ErrConfiguration))
		return
	}

	sum, err := s.pipeline.Run(r.Context(), digest.Request{
		Trigger:   trigger,
		Recipient: s.cfg.RecipientEmail,
		Date:      date,
		Synthetic: synthetic,
	})
	if err != nil {
		s.respondPipelineErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, newDigestResponse(message, sum))
}

// ─── POST /api/send-one-time-email ────────────────────────────────────────────

type selfServiceRequest struct {
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

// handleSelfService sends today's digest to a caller-supplied address, with
// times in the caller's zone when one is given. The address is checked before
// any upstream call.
func (s *Server) handleSelfService(w http.ResponseWriter, r *http.Request) {
	var req selfServiceRequest
	if !decode(w, r, &req) {
		return
	}

	if !digest.ValidRecipient(req.Email) {
		respondErr(w, http.StatusBadRequest, "Valid email address is required", "")
		return
	}

	sum, err := s.pipeline.Run(r.Context(), digest.Request{
		Trigger:   digest.TriggerSelfService,
		Recipient: strings.TrimSpace(req.Email),
		Timezone:  req.Timezone,
	})
	if err != nil {
		s.respondPipelineErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, newDigestResponse("Digest email sent successfully", sum))
}

// ─── ERROR MAPPING ────────────────────────────────────────────────────────────

// respondPipelineErr maps the error taxonomy onto status codes. Nothing
// escapes as an unstructured failure.
func (s *Server) respondPipelineErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, digest.ErrInvalidInput):
		respondErr(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, ErrUnauthorized):
		respondErr(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, digest.ErrConfiguration):
		s.logger.Error("configuration error", "error", err, logField(r))
		respondErr(w, http.StatusInternalServerError, "Server is not configured to send email", err.Error())
	default:
		s.logger.Error("digest failed", "error", err, "path", r.URL.Path, logField(r))
		respondErr(w, http.StatusInternalServerError, "Failed to send digest email", err.Error())
	}
}
