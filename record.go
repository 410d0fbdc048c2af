package honeybadger

// Observation is a canonical record of the primary feed: how many times Identifier was seen in
// the lookback window.
type Observation struct {
	Identifier string
	Count      int64
}

// OriginRecord is a canonical record of the autonomous system feed
type OriginRecord struct {
	Identifier  string
	Name        string
	NumericID   int64
	CountryCode string
}

// LocationRecord is a canonical record of the geo IP feed
type LocationRecord struct {
	Identifier string
	Latitude   float64
	Longitude  float64
	Country    string
	Continent  string
}

// MembershipRecord is a canonical record of the blacklist feed
type MembershipRecord struct {
	Identifier string
	Tags       []string
}
