package honeybadger_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/honeybadger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type originEnrichment struct {
	id   string
	info honeybadger.OriginInfo
}

func (x *originEnrichment) EntityID() string { return x.id }
func (x *originEnrichment) Apply(entity *honeybadger.Entity) {
	info := x.info
	entity.Origin = &info
}

type locationEnrichment struct {
	id   string
	info honeybadger.LocationInfo
}

func (x *locationEnrichment) EntityID() string { return x.id }
func (x *locationEnrichment) Apply(entity *honeybadger.Entity) {
	info := x.info
	entity.Location = &info
}

func newTestCollection() honeybadger.Collection {
	return honeybadger.NewCollection([]*honeybadger.Observation{
		{Identifier: "10.1.2.3", Count: 5},
		{Identifier: "192.168.0.1", Count: 12},
		{Identifier: "10.1.2.3", Count: 99},
	})
}

func TestNewCollection(t *testing.T) {
	c := newTestCollection()
	require.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"10.1.2.3", "192.168.0.1"}, c.Keys())

	e, ok := c.Get("10.1.2.3")
	require.True(t, ok)
	assert.Equal(t, int64(5), e.ObservationCount)
	assert.Nil(t, e.Origin)
	assert.Nil(t, e.Location)
	assert.Nil(t, e.Membership)

	entities := c.Entities()
	require.Equal(t, 2, len(entities))
	assert.Equal(t, "192.168.0.1", entities[0].Identifier)
}

func TestCollectionMerge(t *testing.T) {
	origins := []honeybadger.Enrichment{
		&originEnrichment{id: "10.1.2.3", info: honeybadger.OriginInfo{Name: "ACME", NumericID: 16276, CountryCode: "FR"}},
		&originEnrichment{id: "172.16.0.1", info: honeybadger.OriginInfo{Name: "stranger"}},
	}

	t.Run("Key set is preserved", func(t *testing.T) {
		c := newTestCollection()
		merged := c.Merge(origins)
		assert.Equal(t, c.Keys(), merged.Keys())
		_, ok := merged.Get("172.16.0.1")
		assert.False(t, ok)
	})

	t.Run("Merge does not modify source collection", func(t *testing.T) {
		c := newTestCollection()
		c.Merge(origins)
		e, ok := c.Get("10.1.2.3")
		require.True(t, ok)
		assert.Nil(t, e.Origin)
	})

	t.Run("Merging twice equals merging once", func(t *testing.T) {
		c := newTestCollection()
		once := c.Merge(origins)
		twice := once.Merge(origins)
		assert.Equal(t, once.Entities(), twice.Entities())
	})

	t.Run("Later stage keeps earlier attribute group", func(t *testing.T) {
		c := newTestCollection().Merge(origins).Merge([]honeybadger.Enrichment{
			&locationEnrichment{id: "10.1.2.3", info: honeybadger.LocationInfo{Country: "X", Continent: "Y"}},
		})

		e, ok := c.Get("10.1.2.3")
		require.True(t, ok)
		require.NotNil(t, e.Origin)
		assert.Equal(t, int64(16276), e.Origin.NumericID)
		require.NotNil(t, e.Location)
		assert.Equal(t, "X", e.Location.Country)
		assert.Equal(t, int64(5), e.ObservationCount)

		other, ok := c.Get("192.168.0.1")
		require.True(t, ok)
		assert.Nil(t, other.Origin)
		assert.Nil(t, other.Location)
	})
}

func TestCollectionJSON(t *testing.T) {
	c := newTestCollection().Merge([]honeybadger.Enrichment{
		&originEnrichment{id: "10.1.2.3", info: honeybadger.OriginInfo{Name: "ACME", NumericID: 16276, CountryCode: "FR"}},
	})

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded honeybadger.Collection
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, c.Entities(), decoded.Entities())

	raw, err = json.Marshal(honeybadger.Collection{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}
