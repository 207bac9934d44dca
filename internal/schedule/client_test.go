package schedule_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nyashahama/gameday-mailer/internal/schedule"
)

const oneGameBody = `{
  "dates": [{
    "date": "2025-08-28",
    "games": [{
      "gamePk": 776123,
      "gameDate": "2025-08-28T23:05:00Z",
      "status": {"detailedState": "Scheduled"},
      "teams": {
        "home": {"team": {"id": 110, "name": "Baltimore Orioles", "abbreviation": "BAL", "league": {"id": 103}}},
        "away": {"team": {"id": 111, "name": "Boston Red Sox", "abbreviation": "BOS", "league": {"id": 103}}}
      },
      "venue": {"name": "Oriole Park at Camden Yards", "location": {"city": "Baltimore", "state": "Maryland", "stateAbbrev": "MD"}}
    }]
  }]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(baseURL string) *schedule.Client {
	return schedule.NewClient(schedule.Config{BaseURL: baseURL, Logger: discardLogger()})
}

func TestFetchGamesForDate_MapsGame(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedule" {
			t.Errorf("expected /schedule, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"sportId": q.Get("sportId"),
			"teamId":  q.Get("teamId"),
			"date":    q.Get("date"),
			"hydrate": q.Get("hydrate"),
		}
		_, _ = io.WriteString(w, oneGameBody)
	}))
	defer srv.Close()

	date := time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)
	games, err := newClient(srv.URL).FetchGamesForDate(context.Background(), 111, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{"sportId": "1", "teamId": "111", "date": "2025-08-28", "hydrate": "team,linescore,venue"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}

	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	g := games[0]
	if g.ID != 776123 {
		t.Errorf("expected provider id preserved, got %d", g.ID)
	}
	if !g.Kickoff.Equal(time.Date(2025, 8, 28, 23, 5, 0, 0, time.UTC)) {
		t.Errorf("unexpected kickoff %v", g.Kickoff)
	}
	if g.HomeTeam.ID != 110 || g.HomeTeam.Abbreviation != "BAL" || g.HomeTeam.LeagueID != 103 {
		t.Errorf("unexpected home team %+v", g.HomeTeam)
	}
	if g.AwayTeam.Name != "Boston Red Sox" {
		t.Errorf("unexpected away team %+v", g.AwayTeam)
	}
	if g.Venue.Name != "Oriole Park at Camden Yards" || g.Venue.City != "Baltimore" || g.Venue.RegionCode != "MD" {
		t.Errorf("unexpected venue %+v", g.Venue)
	}
	if g.Status != schedule.StatusScheduled {
		t.Errorf("unexpected status %q", g.Status)
	}
}

func TestFetchGamesForDate_UsesCalendarDayOfDateLocation(t *testing.T) {
	var gotDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		_, _ = io.WriteString(w, `{"dates": []}`)
	}))
	defer srv.Close()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 02:00 UTC on the 29th is still the evening of the 28th in New York.
	date := time.Date(2025, 8, 29, 2, 0, 0, 0, time.UTC).In(ny)

	if _, err := newClient(srv.URL).FetchGamesForDate(context.Background(), 111, date); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDate != "2025-08-28" {
		t.Errorf("expected 2025-08-28, got %s", gotDate)
	}
}

func TestFetchGamesForDate_NoGamesIsEmptyNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"totalGames": 0, "dates": []}`)
	}))
	defer srv.Close()

	games, err := newClient(srv.URL).FetchGamesForDate(context.Background(), 111, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if games == nil || len(games) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", games)
	}
}

func TestFetchGamesForDate_Non2xxIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchGamesForDate(context.Background(), 111, time.Now())
	if !errors.Is(err, schedule.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchGamesForDate_MalformedBodyIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchGamesForDate(context.Background(), 111, time.Now())
	if !errors.Is(err, schedule.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchGamesForDate_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient(url).FetchGamesForDate(context.Background(), 111, time.Now())
	if !errors.Is(err, schedule.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if errors.Is(err, schedule.ErrUpstreamUnavailable) {
		t.Error("transport failure must not be reported as upstream unavailable")
	}
}

func TestFetchGamesForDate_BadTimestampKeepsGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dates":[{"games":[{"gamePk":1,"gameDate":"not-a-time","status":{"detailedState":"Postponed"}}]}]}`)
	}))
	defer srv.Close()

	games, err := newClient(srv.URL).FetchGamesForDate(context.Background(), 111, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 || !games[0].Kickoff.IsZero() {
		t.Fatalf("expected one game with zero kickoff, got %+v", games)
	}
}

func TestFetchGamesForDate_CancelledContextIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dates": []}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(srv.URL).FetchGamesForDate(ctx, 111, time.Now())
	if !errors.Is(err, schedule.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}
