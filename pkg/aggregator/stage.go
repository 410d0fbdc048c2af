package aggregator

import (
	"context"

	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/gateway"
)

// Gateway is the set of queries the aggregator depends on. *gateway.Gateway implements it.
type Gateway interface {
	TopEntities(ctx context.Context) ([]*gateway.TopEntity, error)
	AutonomousSystems(ctx context.Context, identifiers []string) ([]*gateway.AutonomousSystem, error)
	GeoLocations(ctx context.Context, identifiers []string) ([]*gateway.GeoLocation, error)
	Blacklists(ctx context.Context, identifiers []string) ([]*gateway.Blacklist, error)
}

// Stage is one enrichment step of an aggregation run
type Stage int

const (
	// StageOrigin merges autonomous systems into Entity.Origin
	StageOrigin Stage = iota
	// StageLocation merges geo locations into Entity.Location
	StageLocation
	// StageMembership merges blacklists into Entity.Membership
	StageMembership
)

// DefaultStages is the order of enrichment in a run
var DefaultStages = []Stage{StageOrigin, StageLocation, StageMembership}

// StageInitial is the name of the first, non-enrichment stage in snapshots
const StageInitial = "topEntities"

func (x Stage) String() string {
	switch x {
	case StageOrigin:
		return "originInfo"
	case StageLocation:
		return "locationInfo"
	case StageMembership:
		return "membershipInfo"
	default:
		return "unknown"
	}
}

// fetch calls the stage's gateway query and converts results to enrichments
func (x Stage) fetch(ctx context.Context, gw Gateway, identifiers []string) ([]honeybadger.Enrichment, error) {
	var enrichments []honeybadger.Enrichment

	switch x {
	case StageOrigin:
		results, err := gw.AutonomousSystems(ctx, identifiers)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			enrichments = append(enrichments, r)
		}

	case StageLocation:
		results, err := gw.GeoLocations(ctx, identifiers)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			enrichments = append(enrichments, r)
		}

	case StageMembership:
		results, err := gw.Blacklists(ctx, identifiers)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			enrichments = append(enrichments, r)
		}

	default:
		return nil, errUnknownStage(x)
	}

	return enrichments, nil
}
