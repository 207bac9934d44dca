package digest

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultGameDuration stands in for the unknown real length of a game.
	DefaultGameDuration = 3 * time.Hour

	// TimePlaceholder replaces a time range that cannot be formatted.
	TimePlaceholder = "TBD"

	clockLayout = "3:04 PM"
)

// FormatRange renders "<start> - <end>" on the wall clock of zone, with end
// fixed at start+d. The zone offset is resolved separately for start and end,
// so a range that crosses a daylight-saving change shows both sides correctly.
// A zero start or unknown zone yields TimePlaceholder.
func FormatRange(start time.Time, zone string, d time.Duration) string {
	if start.IsZero() {
		return TimePlaceholder
	}
	loc, err := ResolveZone(zone)
	if err != nil {
		return TimePlaceholder
	}
	if d <= 0 {
		d = DefaultGameDuration
	}
	end := start.Add(d)
	return start.In(loc).Format(clockLayout) + " - " + end.In(loc).Format(clockLayout)
}

// ResolveZone loads an IANA zone. The empty name and "Local" are rejected so
// output never depends on the host's clock settings.
func ResolveZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return nil, errors.New("digest: time zone must be an IANA name")
	}
	return time.LoadLocation(name)
}

// ZoneLabel turns an IANA name into the reader-facing label used in emails,
// e.g. "America/New_York" → "New York".
func ZoneLabel(zone string) string {
	if i := strings.LastIndex(zone, "/"); i >= 0 {
		zone = zone[i+1:]
	}
	return strings.ReplaceAll(zone, "_", " ")
}
