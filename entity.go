package honeybadger

// Entity is a host observed by the honeypot and its accumulated enrichment data. Attribute groups
// are nil until the stage providing them has run, and are never mutated after being set.
type Entity struct {
	Identifier       string          `json:"identifier"`
	ObservationCount int64           `json:"observationCount"`
	Origin           *OriginInfo     `json:"originInfo,omitempty"`
	Location         *LocationInfo   `json:"locationInfo,omitempty"`
	Membership       *MembershipInfo `json:"membershipInfo,omitempty"`
}

// OriginInfo describes the network (autonomous system) owning the identifier
type OriginInfo struct {
	Name        string `json:"name"`
	NumericID   int64  `json:"numericId"`
	CountryCode string `json:"countryCode"`
}

// LocationInfo is geospatial location of the identifier
type LocationInfo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Continent string  `json:"continent"`
}

// MembershipInfo has names of lists (e.g. blacklists) the identifier appears on. Empty Tags
// means the identifier was queried and is a member of none.
type MembershipInfo struct {
	Tags []string `json:"tags"`
}

// Enrichment is one record of an enrichment stage that can be merged into an Entity.
type Enrichment interface {
	EntityID() string
	// Apply sets the attribute group carried by the enrichment. It must not touch other groups.
	Apply(entity *Entity)
}
