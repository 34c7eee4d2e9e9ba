package models

import "time"

// GeoCacheEntry is a cached geolocation answer keyed by IP. Empty City,
// Region or Country mean the provider did not report that part.
type GeoCacheEntry struct {
	IP       string
	City     string
	Region   string
	Country  string
	Location string
	CachedAt time.Time
}

// Fresh reports whether the entry is still usable at now.
func (e GeoCacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt) < ttl
}

type LocationSource string

const (
	SourceCache    LocationSource = "cache"
	SourceAPI      LocationSource = "api"
	SourceDisabled LocationSource = "disabled"
	SourceFailed   LocationSource = "failed"
)

// Location is the outcome of resolving an IP. Lookups never fail; a
// disabled or failed lookup carries the "lookup disabled" display string
// and empty parts.
type Location struct {
	City    string
	Region  string
	Country string
	Display string
	Source  LocationSource
}

// Resolved reports whether the location came from the cache or the API.
func (l Location) Resolved() bool {
	return l.Source == SourceCache || l.Source == SourceAPI
}
