package gateway_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/feed"
	"github.com/m-mizutani/honeybadger/pkg/gateway"
	"github.com/m-mizutani/honeybadger/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type topFeed struct {
	observations []*honeybadger.Observation
	err          error
}

func (x *topFeed) TopEntities(ctx context.Context) ([]*honeybadger.Observation, error) {
	return x.observations, x.err
}

type originFeed struct {
	calls   [][]string
	records []*honeybadger.OriginRecord
	err     error
}

func (x *originFeed) LookupOrigins(ctx context.Context, identifiers []string) ([]*honeybadger.OriginRecord, error) {
	x.calls = append(x.calls, identifiers)
	return x.records, x.err
}

func newObservations(n int) []*honeybadger.Observation {
	var observations []*honeybadger.Observation
	for i := 0; i < n; i++ {
		observations = append(observations, &honeybadger.Observation{
			Identifier: fmt.Sprintf("10.0.0.%d", i),
			Count:      int64(1000 - i),
		})
	}
	return observations
}

func TestTopEntitiesCap(t *testing.T) {
	for _, n := range []int{0, 1, 24, 25, 26, 100} {
		t.Run(fmt.Sprintf("%d entries from feed", n), func(t *testing.T) {
			gw := gateway.New(&gateway.Arguments{
				Feeds: &feed.Feeds{TopEntities: &topFeed{observations: newObservations(n)}},
			})

			entities, err := gw.TopEntities(context.Background())
			require.NoError(t, err)

			expected := n
			if expected > gateway.DefaultMaxEntities {
				expected = gateway.DefaultMaxEntities
			}
			require.Equal(t, expected, len(entities))
			for i, entity := range entities {
				assert.Equal(t, fmt.Sprintf("10.0.0.%d", i), entity.Identifier)
				assert.Equal(t, int64(1000-i), entity.ObservationCount)
			}
		})
	}

	t.Run("Custom max", func(t *testing.T) {
		gw := gateway.New(&gateway.Arguments{
			Feeds:       &feed.Feeds{TopEntities: &topFeed{observations: newObservations(10)}},
			MaxEntities: 3,
		})
		entities, err := gw.TopEntities(context.Background())
		require.NoError(t, err)
		require.Equal(t, 3, len(entities))
		assert.Equal(t, "10.0.0.2", entities[2].Identifier)
	})

	t.Run("Feed error passes through", func(t *testing.T) {
		feedErr := errors.New("down").WithKind(errors.ErrUpstream)
		gw := gateway.New(&gateway.Arguments{
			Feeds: &feed.Feeds{TopEntities: &topFeed{err: feedErr}},
		})
		_, err := gw.TopEntities(context.Background())
		assert.Equal(t, feedErr, err)
	})
}

func TestEnrichmentValidation(t *testing.T) {
	origins := &originFeed{}
	gw := gateway.New(&gateway.Arguments{
		Feeds: &feed.Feeds{Origins: origins},
	})

	t.Run("Empty list", func(t *testing.T) {
		_, err := gw.AutonomousSystems(context.Background(), []string{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("Nil list", func(t *testing.T) {
		_, err := gw.AutonomousSystems(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("Empty identifier", func(t *testing.T) {
		_, err := gw.AutonomousSystems(context.Background(), []string{""})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))

		_, err = gw.GeoLocations(context.Background(), []string{"10.1.2.3", ""})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))

		_, err = gw.Blacklists(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	assert.Equal(t, 0, len(origins.calls), "feed must not be called for invalid arguments")
}

func TestAutonomousSystems(t *testing.T) {
	t.Run("Unknown identifier yields empty list", func(t *testing.T) {
		origins := &originFeed{}
		gw := gateway.New(&gateway.Arguments{Feeds: &feed.Feeds{Origins: origins}})

		results, err := gw.AutonomousSystems(context.Background(), []string{"1.2.3.4"})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Equal(t, 0, len(results))
	})

	t.Run("One batched call and first record wins", func(t *testing.T) {
		origins := &originFeed{
			records: []*honeybadger.OriginRecord{
				{Identifier: "10.1.2.3", Name: "ACME", NumericID: 16276, CountryCode: "FR"},
				{Identifier: "10.1.2.3", Name: "Other", NumericID: 1, CountryCode: "JP"},
			},
		}
		gw := gateway.New(&gateway.Arguments{Feeds: &feed.Feeds{Origins: origins}})

		results, err := gw.AutonomousSystems(context.Background(), []string{"10.1.2.3", "10.1.2.4"})
		require.NoError(t, err)
		require.Equal(t, 1, len(origins.calls))
		assert.Equal(t, []string{"10.1.2.3", "10.1.2.4"}, origins.calls[0])

		require.Equal(t, 1, len(results))
		assert.Equal(t, &gateway.AutonomousSystem{
			Identifier:  "10.1.2.3",
			Name:        "ACME",
			NumericID:   16276,
			CountryCode: "FR",
		}, results[0])
	})

	t.Run("Normalization error passes through", func(t *testing.T) {
		feedErr := errors.New("as is missing").WithKind(errors.ErrNormalization)
		gw := gateway.New(&gateway.Arguments{Feeds: &feed.Feeds{Origins: &originFeed{err: feedErr}}})

		_, err := gw.AutonomousSystems(context.Background(), []string{"10.1.2.3"})
		assert.Equal(t, feedErr, err)
	})
}

func TestGatewayWithFixtureFeeds(t *testing.T) {
	gw := gateway.New(&gateway.Arguments{
		Feeds:       feed.NewFixtureFeeds(feed.DirLoader("../feed/testdata")),
		MaxEntities: 2,
	})

	top, err := gw.TopEntities(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, len(top))
	assert.Equal(t, "1.1.1.1", top[0].Identifier)

	geo, err := gw.GeoLocations(context.Background(), []string{"1.1.1.1"})
	require.NoError(t, err)
	require.Equal(t, 1, len(geo))
	assert.Equal(t, "X", geo[0].Country)

	lists, err := gw.Blacklists(context.Background(), []string{"1.1.1.1", "10.1.2.3"})
	require.NoError(t, err)
	require.Equal(t, 2, len(lists))
	assert.Equal(t, []string{}, lists[1].Tags)
}

func TestExecute(t *testing.T) {
	httpClient := &mock.HTTPClient{
		Routes: map[string]*mock.HTTPResponse{
			"https://riskdiscovery.com/": {Code: http.StatusOK, Body: `[{"remote_host": "10.1.2.3", "count": 3}]`},
			"https://api.apility.net/as_batch/": {Code: http.StatusOK, Body: `{"response": [{"ip": "10.1.2.3", "as": {"asn": 1, "name": "a", "country": "JP"}}]}`},
		},
	}
	gw := gateway.New(&gateway.Arguments{
		Feeds: feed.NewLiveFeeds(httpClient, feed.DefaultEndpoints(), &feed.Credentials{}),
	})

	assert.Equal(t, []string{"topEntities", "autonomousSystems", "geoLocations", "blacklists"}, gw.Queries())

	t.Run("topEntities", func(t *testing.T) {
		resp, err := gw.Execute(context.Background(), &gateway.Request{Query: gateway.QueryTopEntities})
		require.NoError(t, err)
		entities, ok := resp.Data.([]*gateway.TopEntity)
		require.True(t, ok)
		require.Equal(t, 1, len(entities))
		assert.Equal(t, int64(3), entities[0].ObservationCount)
	})

	t.Run("autonomousSystems", func(t *testing.T) {
		resp, err := gw.Execute(context.Background(), &gateway.Request{
			Query:       gateway.QueryAutonomousSystems,
			Identifiers: []string{"10.1.2.3"},
		})
		require.NoError(t, err)
		systems, ok := resp.Data.([]*gateway.AutonomousSystem)
		require.True(t, ok)
		require.Equal(t, 1, len(systems))
		assert.Equal(t, "JP", systems[0].CountryCode)
	})

	t.Run("Unknown query", func(t *testing.T) {
		_, err := gw.Execute(context.Background(), &gateway.Request{Query: "honeyBadgers"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("Upstream failure", func(t *testing.T) {
		_, err := gw.Execute(context.Background(), &gateway.Request{
			Query:       gateway.QueryGeoLocations,
			Identifiers: []string{"10.1.2.3"},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUpstream))
	})
}
