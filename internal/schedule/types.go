// Package schedule fetches a team's games for a single day from the MLB Stats
// API and normalizes them into request-scoped Game records.
package schedule

import "time"

// StatusScheduled is the provider's default state for a game that has not
// started. Every other status is surfaced to the reader.
const StatusScheduled = "Scheduled"

// Team is reference data for one side of a game.
type Team struct {
	ID           int
	Name         string
	Abbreviation string
	LeagueID     int
}

// Venue is where a game is played. RegionCode is the state or province
// abbreviation when the provider supplies one.
type Venue struct {
	Name       string
	City       string
	RegionCode string
}

// Game is one normalized schedule entry. Kickoff is in UTC and is the zero
// time when the provider sent a timestamp that could not be parsed.
type Game struct {
	ID       int
	Kickoff  time.Time
	Status   string
	HomeTeam Team
	AwayTeam Team
	Venue    Venue
}

// ─── MLB STATS API SHAPES ─────────────────────────────────────────────────────

type scheduleResponse struct {
	Dates []struct {
		Date  string    `json:"date"`
		Games []apiGame `json:"games"`
	} `json:"dates"`
}

type apiGame struct {
	GamePk   int    `json:"gamePk"`
	GameDate string `json:"gameDate"`
	Status   struct {
		DetailedState string `json:"detailedState"`
	} `json:"status"`
	Teams struct {
		Home apiSide `json:"home"`
		Away apiSide `json:"away"`
	} `json:"teams"`
	Venue struct {
		Name     string `json:"name"`
		Location struct {
			City        string `json:"city"`
			State       string `json:"state"`
			StateAbbrev string `json:"stateAbbrev"`
		} `json:"location"`
	} `json:"venue"`
}

type apiSide struct {
	Team struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
		League       struct {
			ID int `json:"id"`
		} `json:"league"`
	} `json:"team"`
}

func mapGame(g apiGame) Game {
	region := g.Venue.Location.StateAbbrev
	if region == "" {
		region = g.Venue.Location.State
	}
	return Game{
		ID:       g.GamePk,
		Kickoff:  parseKickoff(g.GameDate),
		Status:   g.Status.DetailedState,
		HomeTeam: mapTeam(g.Teams.Home),
		AwayTeam: mapTeam(g.Teams.Away),
		Venue: Venue{
			Name:       g.Venue.Name,
			City:       g.Venue.Location.City,
			RegionCode: region,
		},
	}
}

func mapTeam(s apiSide) Team {
	return Team{
		ID:           s.Team.ID,
		Name:         s.Team.Name,
		Abbreviation: s.Team.Abbreviation,
		LeagueID:     s.Team.League.ID,
	}
}

// parseKickoff returns the zero time for anything that is not RFC 3339 so a
// single bad timestamp degrades to a placeholder further down the pipeline.
func parseKickoff(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
