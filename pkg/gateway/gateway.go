// Package gateway is the typed query boundary between the aggregator and feed adapters. Every
// query delegates to exactly one feed with one batched call.
package gateway

import (
	"context"

	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/feed"
	"github.com/m-mizutani/honeybadger/pkg/logging"
)

// DefaultMaxEntities limits TopEntities. A larger value consumes more of the feed API quota in
// every enrichment stage.
const DefaultMaxEntities = 25

// Arguments of Gateway
type Arguments struct {
	Feeds       *feed.Feeds
	MaxEntities int
}

// Gateway serves typed queries over feed adapters
type Gateway struct {
	feeds       *feed.Feeds
	maxEntities int
}

// New is constructor of Gateway. MaxEntities <= 0 means DefaultMaxEntities.
func New(args *Arguments) *Gateway {
	maxEntities := args.MaxEntities
	if maxEntities <= 0 {
		maxEntities = DefaultMaxEntities
	}

	return &Gateway{
		feeds:       args.Feeds,
		maxEntities: maxEntities,
	}
}

// MaxEntities returns cap of TopEntities
func (x *Gateway) MaxEntities() int { return x.maxEntities }

// TopEntities returns the first MaxEntities hosts of the primary feed. The feed is presumed to
// return the most frequently seen host first; the order is not verified.
func (x *Gateway) TopEntities(ctx context.Context) ([]*TopEntity, error) {
	observations, err := x.feeds.TopEntities.TopEntities(ctx)
	if err != nil {
		return nil, err
	}

	if len(observations) > x.maxEntities {
		logging.Logger.Debug().Int("received", len(observations)).Int("max", x.maxEntities).Msg("Truncate top entities")
		observations = observations[:x.maxEntities]
	}

	entities := make([]*TopEntity, len(observations))
	for i, obs := range observations {
		entities[i] = &TopEntity{
			Identifier:       obs.Identifier,
			ObservationCount: obs.Count,
		}
	}

	return entities, nil
}

func validateIdentifiers(query string, identifiers []string) error {
	if len(identifiers) == 0 {
		return errors.New("identifiers must not be empty").
			WithKind(errors.ErrValidation).With("query", query)
	}
	for i, id := range identifiers {
		if id == "" {
			return errors.New("identifier must not be empty string").
				WithKind(errors.ErrValidation).With("query", query).With("index", i)
		}
	}
	return nil
}

// seen keeps the first record of each identifier. Feeds silently drop unknown identifiers and
// nothing is backfilled for them.
type seen map[string]struct{}

func (x seen) first(id string) bool {
	if _, ok := x[id]; ok {
		return false
	}
	x[id] = struct{}{}
	return true
}

// AutonomousSystems looks up autonomous systems of identifiers
func (x *Gateway) AutonomousSystems(ctx context.Context, identifiers []string) ([]*AutonomousSystem, error) {
	if err := validateIdentifiers(QueryAutonomousSystems, identifiers); err != nil {
		return nil, err
	}

	records, err := x.feeds.Origins.LookupOrigins(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	ids := make(seen)
	results := make([]*AutonomousSystem, 0, len(records))
	for _, record := range records {
		if !ids.first(record.Identifier) {
			continue
		}
		results = append(results, &AutonomousSystem{
			Identifier:  record.Identifier,
			Name:        record.Name,
			NumericID:   record.NumericID,
			CountryCode: record.CountryCode,
		})
	}

	return results, nil
}

// GeoLocations looks up geospatial locations of identifiers
func (x *Gateway) GeoLocations(ctx context.Context, identifiers []string) ([]*GeoLocation, error) {
	if err := validateIdentifiers(QueryGeoLocations, identifiers); err != nil {
		return nil, err
	}

	records, err := x.feeds.Locations.LookupLocations(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	ids := make(seen)
	results := make([]*GeoLocation, 0, len(records))
	for _, record := range records {
		if !ids.first(record.Identifier) {
			continue
		}
		results = append(results, &GeoLocation{
			Identifier: record.Identifier,
			Latitude:   record.Latitude,
			Longitude:  record.Longitude,
			Country:    record.Country,
			Continent:  record.Continent,
		})
	}

	return results, nil
}

// Blacklists looks up blacklists identifiers are listed on
func (x *Gateway) Blacklists(ctx context.Context, identifiers []string) ([]*Blacklist, error) {
	if err := validateIdentifiers(QueryBlacklists, identifiers); err != nil {
		return nil, err
	}

	records, err := x.feeds.Memberships.LookupMemberships(ctx, identifiers)
	if err != nil {
		return nil, err
	}

	ids := make(seen)
	results := make([]*Blacklist, 0, len(records))
	for _, record := range records {
		if !ids.first(record.Identifier) {
			continue
		}
		tags := record.Tags
		if tags == nil {
			tags = []string{}
		}
		results = append(results, &Blacklist{
			Identifier: record.Identifier,
			Tags:       tags,
		})
	}

	return results, nil
}
