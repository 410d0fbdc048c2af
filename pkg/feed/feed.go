// Package feed has adapters of external intelligence feeds. Each adapter normalizes the feed
// native response into canonical records of package honeybadger. Whether an adapter talks to the
// network or reads fixtures is decided by the Source given at construction.
package feed

import (
	"context"
	"io/ioutil"
	"net/http"

	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TopEntitiesFeed returns the most observed identifiers, most observed first (as the feed claims)
type TopEntitiesFeed interface {
	TopEntities(ctx context.Context) ([]*honeybadger.Observation, error)
}

// OriginFeed looks up autonomous systems of identifiers in one batch
type OriginFeed interface {
	LookupOrigins(ctx context.Context, identifiers []string) ([]*honeybadger.OriginRecord, error)
}

// LocationFeed looks up geo locations of identifiers in one batch
type LocationFeed interface {
	LookupLocations(ctx context.Context, identifiers []string) ([]*honeybadger.LocationRecord, error)
}

// MembershipFeed looks up list memberships (blacklists) of identifiers in one batch
type MembershipFeed interface {
	LookupMemberships(ctx context.Context, identifiers []string) ([]*honeybadger.MembershipRecord, error)
}

// Feeds is a set of adapters used by the query gateway
type Feeds struct {
	TopEntities TopEntitiesFeed
	Origins     OriginFeed
	Locations   LocationFeed
	Memberships MembershipFeed
}

// Credentials of feeds. It is stored as JSON in a secret.
type Credentials struct {
	HoneyDBAPIID  string `json:"honeydb_api_id"`
	HoneyDBAPIKey string `json:"honeydb_api_key"`
	ApilityToken  string `json:"apility_token"`
}

// Endpoints are base URLs of feeds. Batch endpoints get "/<comma separated identifiers>" appended.
type Endpoints struct {
	HoneyDBBadHosts   string `yaml:"honeydb_bad_hosts"`
	ApilityASBatch    string `yaml:"apility_as_batch"`
	ApilityGeoIPBatch string `yaml:"apility_geoip_batch"`
	ApilityBadIPBatch string `yaml:"apility_badip_batch"`
}

// DefaultEndpoints returns URLs of production feeds
func DefaultEndpoints() Endpoints {
	return Endpoints{
		HoneyDBBadHosts:   "https://riskdiscovery.com/honeydb/api/bad-hosts",
		ApilityASBatch:    "https://api.apility.net/as_batch/ip",
		ApilityGeoIPBatch: "https://api.apility.net/geoip_batch",
		ApilityBadIPBatch: "https://api.apility.net/badip_batch",
	}
}

// LoadEndpoints reads endpoints from a yaml file. Missing entries fall back to defaults.
func LoadEndpoints(path string) (Endpoints, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Endpoints{}, errors.Wrap(err, "Failed to read endpoints config").With("path", path)
	}

	var endpoints Endpoints
	if err := yaml.Unmarshal(raw, &endpoints); err != nil {
		return Endpoints{}, errors.Wrap(err, "Failed to parse endpoints config").With("path", path)
	}

	defaults := DefaultEndpoints()
	if endpoints.HoneyDBBadHosts == "" {
		endpoints.HoneyDBBadHosts = defaults.HoneyDBBadHosts
	}
	if endpoints.ApilityASBatch == "" {
		endpoints.ApilityASBatch = defaults.ApilityASBatch
	}
	if endpoints.ApilityGeoIPBatch == "" {
		endpoints.ApilityGeoIPBatch = defaults.ApilityGeoIPBatch
	}
	if endpoints.ApilityBadIPBatch == "" {
		endpoints.ApilityBadIPBatch = defaults.ApilityBadIPBatch
	}

	return endpoints, nil
}

const (
	honeyDBAPIAuthIDHeader    = "X-HoneyDb-ApiId"
	honeyDBAPIAuthKeyHeader   = "X-HoneyDb-ApiKey"
	apilityAPIAuthTokenHeader = "X-Auth-Token"
)

// Fixture names. Contents mirror responses of the upstream endpoints exactly.
const (
	FixtureBadHosts   = "bad_hosts.json"
	FixtureASBatch    = "as_batch.json"
	FixtureGeoIPBatch = "geoip_batch.json"
	FixtureBadIPBatch = "badip_batch.json"
)

const (
	honeyDBFeedName      = "HoneyDB"
	apilityASFeedName    = "Apility AS"
	apilityGeoIPFeedName = "Apility GeoIP"
	apilityBadIPFeedName = "Apility BadIP"
)

// NewLiveFeeds returns adapters calling the network with creds
func NewLiveFeeds(client adaptor.HTTPClient, endpoints Endpoints, creds *Credentials) *Feeds {
	honeyDBHeader := http.Header{}
	honeyDBHeader.Set(honeyDBAPIAuthIDHeader, creds.HoneyDBAPIID)
	honeyDBHeader.Set(honeyDBAPIAuthKeyHeader, creds.HoneyDBAPIKey)

	apilityHeader := http.Header{}
	apilityHeader.Set(apilityAPIAuthTokenHeader, creds.ApilityToken)

	return &Feeds{
		TopEntities: NewHoneyDB(NewHTTPSource(honeyDBFeedName, client, fixedURL(endpoints.HoneyDBBadHosts), honeyDBHeader)),
		Origins:     NewApilityAS(NewHTTPSource(apilityASFeedName, client, batchURL(endpoints.ApilityASBatch), apilityHeader)),
		Locations:   NewApilityGeoIP(NewHTTPSource(apilityGeoIPFeedName, client, batchURL(endpoints.ApilityGeoIPBatch), apilityHeader)),
		Memberships: NewApilityBadIP(NewHTTPSource(apilityBadIPFeedName, client, batchURL(endpoints.ApilityBadIPBatch), apilityHeader)),
	}
}

// NewFixtureFeeds returns adapters reading fixtures from loader instead of the network
func NewFixtureFeeds(loader FixtureLoader) *Feeds {
	return &Feeds{
		TopEntities: NewHoneyDB(NewFixtureSource(loader, FixtureBadHosts)),
		Origins:     NewApilityAS(NewFixtureSource(loader, FixtureASBatch)),
		Locations:   NewApilityGeoIP(NewFixtureSource(loader, FixtureGeoIPBatch)),
		Memberships: NewApilityBadIP(NewFixtureSource(loader, FixtureBadIPBatch)),
	}
}
