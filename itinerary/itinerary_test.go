package itinerary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/geo"
	"github.com/antigravity/transitcatalog/itinerary"
	"github.com/antigravity/transitcatalog/router"
	"github.com/antigravity/transitcatalog/transitbuild"
)

func buildS2(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	for _, name := range []string{"P", "Q", "R"} {
		require.NoError(t, c.AddStop(name, geo.Coordinates{}))
	}
	require.NoError(t, c.SetDistance("P", "Q", 1000))
	require.NoError(t, c.SetDistance("Q", "R", 1000))
	require.NoError(t, c.AddBus("U", []string{"P", "Q", "P"}, true))
	require.NoError(t, c.AddBus("V", []string{"Q", "R", "Q"}, true))
	return c
}

// S2 — route query with transfer.
func TestBuildRoute_Transfer(t *testing.T) {
	c := buildS2(t)
	settings := transitbuild.Settings{BusWaitTime: 6, BusVelocity: 40}
	g, err := transitbuild.Build(c, settings)
	require.NoError(t, err)
	tbl, err := router.New(g)
	require.NoError(t, err)

	f := itinerary.NewFacade(c, tbl, settings.BusWaitTime)
	it, ok := f.BuildRoute("P", "R")
	require.True(t, ok)

	require.Len(t, it.Items, 4)
	assert.Equal(t, "Wait", it.Items[0].Kind)
	assert.Equal(t, "P", it.Items[0].Stop)
	assert.Equal(t, 6.0, it.Items[0].Time)
	assert.Equal(t, "Ride", it.Items[1].Kind)
	assert.Equal(t, "U", it.Items[1].Bus)
	assert.Equal(t, 1, it.Items[1].SpanCount)
	assert.InDelta(t, 1.5, it.Items[1].Time, 1e-9)
	assert.Equal(t, "Wait", it.Items[2].Kind)
	assert.Equal(t, "Q", it.Items[2].Stop)
	assert.Equal(t, "Ride", it.Items[3].Kind)
	assert.Equal(t, "V", it.Items[3].Bus)

	assert.InDelta(t, 15.0, it.TotalTime, 1e-9)

	var sum float64
	for _, item := range it.Items {
		sum += item.Time
	}
	assert.InDelta(t, it.TotalTime, sum, 1e-9)
}

// S3 — unknown route.
func TestBuildRoute_UnknownStop(t *testing.T) {
	c := buildS2(t)
	settings := transitbuild.Settings{BusWaitTime: 6, BusVelocity: 40}
	g, err := transitbuild.Build(c, settings)
	require.NoError(t, err)
	tbl, err := router.New(g)
	require.NoError(t, err)

	f := itinerary.NewFacade(c, tbl, settings.BusWaitTime)
	_, ok := f.BuildRoute("P", "Z")
	assert.False(t, ok)
}

func TestBuildRoute_SameStop(t *testing.T) {
	c := buildS2(t)
	settings := transitbuild.Settings{BusWaitTime: 6, BusVelocity: 40}
	g, err := transitbuild.Build(c, settings)
	require.NoError(t, err)
	tbl, err := router.New(g)
	require.NoError(t, err)

	f := itinerary.NewFacade(c, tbl, settings.BusWaitTime)
	it, ok := f.BuildRoute("P", "P")
	require.True(t, ok)
	assert.Empty(t, it.Items)
	assert.Equal(t, 0.0, it.TotalTime)
}
