package gateway

import (
	"context"

	"github.com/m-mizutani/honeybadger/pkg/errors"
)

// Query names
const (
	QueryTopEntities       = "topEntities"
	QueryAutonomousSystems = "autonomousSystems"
	QueryGeoLocations      = "geoLocations"
	QueryBlacklists        = "blacklists"
)

// Request is a named query with its arguments
type Request struct {
	Query       string   `json:"query"`
	Identifiers []string `json:"identifiers,omitempty"`
}

// Response has result of a query. Data is a list of the query's item type.
type Response struct {
	Query string      `json:"query"`
	Data  interface{} `json:"data"`
}

// Queries returns names of available queries
func (x *Gateway) Queries() []string {
	return []string{
		QueryTopEntities,
		QueryAutonomousSystems,
		QueryGeoLocations,
		QueryBlacklists,
	}
}

// Execute dispatches req to the typed query. topEntities ignores identifiers.
func (x *Gateway) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("request is nil").WithKind(errors.ErrValidation)
	}

	var data interface{}
	var err error

	switch req.Query {
	case QueryTopEntities:
		data, err = x.TopEntities(ctx)
	case QueryAutonomousSystems:
		data, err = x.AutonomousSystems(ctx, req.Identifiers)
	case QueryGeoLocations:
		data, err = x.GeoLocations(ctx, req.Identifiers)
	case QueryBlacklists:
		data, err = x.Blacklists(ctx, req.Identifiers)
	default:
		return nil, errors.New("unknown query").WithKind(errors.ErrValidation).With("query", req.Query)
	}

	if err != nil {
		return nil, err
	}

	return &Response{Query: req.Query, Data: data}, nil
}
