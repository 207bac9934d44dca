package digest

import (
	"time"

	"github.com/nyashahama/gameday-mailer/internal/schedule"
)

// SampleGames returns a fixed one-game slate for day: a home game against the
// New York Yankees at 23:10 UTC. Used by diagnostic sends so the whole
// pipeline can be checked without the live schedule.
func SampleGames(day time.Time, teamID int, teamName string) []schedule.Game {
	kickoff := time.Date(day.Year(), day.Month(), day.Day(), 23, 10, 0, 0, time.UTC)
	return []schedule.Game{{
		ID:      0,
		Kickoff: kickoff,
		Status:  schedule.StatusScheduled,
		HomeTeam: schedule.Team{
			ID:       teamID,
			Name:     teamName,
			LeagueID: 103,
		},
		AwayTeam: schedule.Team{
			ID:           147,
			Name:         "New York Yankees",
			Abbreviation: "NYY",
			LeagueID:     103,
		},
		Venue: schedule.Venue{Name: "Fenway Park", City: "Boston", RegionCode: "MA"},
	}}
}
