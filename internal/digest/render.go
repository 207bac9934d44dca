package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/nyashahama/gameday-mailer/internal/email"
)

// Renderer turns a day's games into an email. It holds only branding, so the
// output depends on nothing but its input.
type Renderer struct {
	team      string
	zoneLabel string
}

// NewRenderer returns a renderer branded for team, labelling times with the
// city part of zone.
func NewRenderer(team, zone string) *Renderer {
	return &Renderer{team: team, zoneLabel: ZoneLabel(zone)}
}

// Subject is the email subject for n games.
func (r *Renderer) Subject(n int) string {
	if n == 0 {
		return r.team + " Today: No games today"
	}
	return fmt.Sprintf("%s Today: %d %s", r.team, n, plural(n, "game", "games"))
}

// Render builds the HTML and plain-text bodies from the same games, in order.
func (r *Renderer) Render(games []DisplayGame) (email.Payload, error) {
	var html bytes.Buffer
	data := htmlData{
		Team:      r.team,
		ZoneLabel: r.zoneLabel,
		Headline:  fmt.Sprintf("%d %s Today", len(games), plural(len(games), "Game", "Games")),
		Games:     games,
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return email.Payload{}, fmt.Errorf("digest: render html: %w", err)
	}

	return email.Payload{
		Subject: r.Subject(len(games)),
		HTML:    html.String(),
		Text:    r.text(games),
	}, nil
}

func (r *Renderer) text(games []DisplayGame) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(r.team) + " TODAY\n\n")

	if len(games) == 0 {
		b.WriteString("No games scheduled for today. Enjoy your day off!\n")
	} else {
		fmt.Fprintf(&b, "%d %s scheduled for today:\n", len(games), plural(len(games), "game", "games"))
		for _, g := range games {
			fmt.Fprintf(&b, "\n%s %s %s\n", r.team, g.Indicator(), g.Opponent)
			fmt.Fprintf(&b, "Time: %s (%s Time)\n", g.TimeRange, r.zoneLabel)
			fmt.Fprintf(&b, "Venue: %s\n", g.Venue)
			if g.ShowStatus() {
				fmt.Fprintf(&b, "Status: %s\n", g.Status)
			}
		}
	}

	fmt.Fprintf(&b, "\n---\n%s Daily Notifications\n%s Time\n", r.team, r.zoneLabel)
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// ─── HTML TEMPLATE ────────────────────────────────────────────────────────────

type htmlData struct {
	Team      string
	ZoneLabel string
	Headline  string
	Games     []DisplayGame
}

var htmlTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Team}} Today</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background: linear-gradient(135deg, #C8102E 0%, #BD3039 100%); padding: 30px; border-radius: 12px; text-align: center; margin-bottom: 30px;">
    <h1 style="color: white; margin: 0; font-size: 28px; font-weight: bold;">&#9918; {{.Team}} Today</h1>
    <p style="color: #FFE5E5; margin: 10px 0 0 0; font-size: 16px;">Your daily {{.Team}} update</p>
  </div>
{{- if .Games}}
  <div style="margin-bottom: 20px;">
    <h2 style="color: #C8102E; margin: 0 0 20px 0; font-size: 22px; text-align: center;">{{.Headline}}</h2>
{{- range .Games}}
    <div class="game" style="background: white; border: 1px solid #e1e5e9; border-radius: 8px; padding: 20px; margin-bottom: 15px;">
      <h3 style="color: #C8102E; margin: 0 0 10px 0; font-size: 18px;">{{$.Team}} {{.Indicator}} {{.Opponent}}</h3>
      <p style="margin: 5px 0; color: #666;">&#128336; {{.TimeRange}} ({{$.ZoneLabel}} Time)</p>
      <p style="margin: 5px 0; color: #666;">&#128205; {{.Venue}}</p>
{{- if .ShowStatus}}
      <p style="margin: 5px 0; color: #C8102E; font-weight: bold;">Status: {{.Status}}</p>
{{- end}}
    </div>
{{- end}}
  </div>
{{- else}}
  <div style="background: #f8f9fa; padding: 30px; border-radius: 12px; text-align: center; border-left: 4px solid #C8102E;">
    <h2 style="color: #C8102E; margin: 0 0 15px 0; font-size: 24px;">No Games Today</h2>
    <p style="color: #666; font-size: 18px; margin: 0;">The {{.Team}} have no games scheduled for today. Enjoy your day off!</p>
  </div>
{{- end}}
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; text-align: center; color: #999; font-size: 14px;">
    <p>{{.Team}} Daily Notifications &middot; {{.ZoneLabel}} Time</p>
  </div>
</body>
</html>
`))
