package util

import "time"

// LoadLocationOrFixed resolves an IANA timezone name, falling back to a fixed
// offset when the zone database is unavailable. Scraped conquest timestamps
// are local to the game server, so the zone is configuration, not a constant.
func LoadLocationOrFixed(name string, fallbackName string, fallbackOffsetHours int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(fallbackName, fallbackOffsetHours*60*60)
	}
	return loc
}

// FormatIn formats a Unix timestamp in the given location.
func FormatIn(ts int64, loc *time.Location, layout string) string {
	return time.Unix(ts, 0).In(loc).Format(layout)
}
