package digest

import (
	"time"

	"github.com/nyashahama/gameday-mailer/internal/schedule"
)

// Relation says which side of a game the tracked team is on.
type Relation string

const (
	RelationHome Relation = "home"
	RelationAway Relation = "away"
)

// DisplayGame is a game seen from the tracked team's side.
type DisplayGame struct {
	GameID               int
	Opponent             string
	OpponentAbbreviation string
	Relation             Relation
	TimeRange            string
	Venue                string
	Status               string
	Kickoff              time.Time
}

// Indicator is "vs" for home games and "@" for road games.
func (g DisplayGame) Indicator() string {
	if g.Relation == RelationHome {
		return "vs"
	}
	return "@"
}

// ShowStatus reports whether the status deserves its own line.
func (g DisplayGame) ShowStatus() bool {
	return g.Status != "" && g.Status != schedule.StatusScheduled
}

// BuildView adapts g to the tracked team's perspective. It performs no I/O.
// The venue is always the one the provider returned, which is the host's.
func BuildView(g schedule.Game, trackedTeamID int, zone string, d time.Duration) DisplayGame {
	rel := RelationAway
	opp := g.HomeTeam
	if g.HomeTeam.ID == trackedTeamID {
		rel = RelationHome
		opp = g.AwayTeam
	}
	return DisplayGame{
		GameID:               g.ID,
		Opponent:             opp.Name,
		OpponentAbbreviation: opp.Abbreviation,
		Relation:             rel,
		TimeRange:            FormatRange(g.Kickoff, zone, d),
		Venue:                g.Venue.Name,
		Status:               g.Status,
		Kickoff:              g.Kickoff,
	}
}

// BuildViews maps games one-to-one, keeping order.
func BuildViews(games []schedule.Game, trackedTeamID int, zone string, d time.Duration) []DisplayGame {
	out := make([]DisplayGame, len(games))
	for i, g := range games {
		out[i] = BuildView(g, trackedTeamID, zone, d)
	}
	return out
}
