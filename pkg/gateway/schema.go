package gateway

import "github.com/m-mizutani/honeybadger"

// TopEntity is one of the most frequently seen hosts in the last 24 hours
type TopEntity struct {
	Identifier       string `json:"identifier"`
	ObservationCount int64  `json:"observationCount"`
}

// AutonomousSystem is the autonomous system an identifier belongs to
type AutonomousSystem struct {
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	NumericID   int64  `json:"numericId"`
	CountryCode string `json:"countryCode"`
}

func (x *AutonomousSystem) EntityID() string { return x.Identifier }

func (x *AutonomousSystem) Apply(entity *honeybadger.Entity) {
	entity.Origin = &honeybadger.OriginInfo{
		Name:        x.Name,
		NumericID:   x.NumericID,
		CountryCode: x.CountryCode,
	}
}

// GeoLocation is geospatial location of an identifier
type GeoLocation struct {
	Identifier string  `json:"identifier"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Country    string  `json:"country"`
	Continent  string  `json:"continent"`
}

func (x *GeoLocation) EntityID() string { return x.Identifier }

func (x *GeoLocation) Apply(entity *honeybadger.Entity) {
	entity.Location = &honeybadger.LocationInfo{
		Latitude:  x.Latitude,
		Longitude: x.Longitude,
		Country:   x.Country,
		Continent: x.Continent,
	}
}

// Blacklist is set of blacklists an identifier is listed on
type Blacklist struct {
	Identifier string   `json:"identifier"`
	Tags       []string `json:"tags"`
}

func (x *Blacklist) EntityID() string { return x.Identifier }

func (x *Blacklist) Apply(entity *honeybadger.Entity) {
	tags := make([]string, len(x.Tags))
	copy(tags, x.Tags)
	entity.Membership = &honeybadger.MembershipInfo{Tags: tags}
}
