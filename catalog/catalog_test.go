package catalog_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/geo"
)

func mustAddStop(t *testing.T, c *catalog.Catalog, name string, lat, lng float64) {
	t.Helper()
	require.NoError(t, c.AddStop(name, geo.Coordinates{Lat: lat, Lng: lng}))
}

// S1 — linear route, asymmetric distance.
func TestAddBus_NonRoundtripAsymmetricDistance(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 55.611087, 37.20829)
	mustAddStop(t, c, "B", 55.595884, 37.209755)

	require.NoError(t, c.SetDistance("A", "B", 3900))
	require.NoError(t, c.SetDistance("B", "A", 4500))

	require.NoError(t, c.AddBus("X", []string{"A", "B"}, false))

	info, ok := c.BusInfo("X")
	require.True(t, ok)
	assert.Equal(t, 3, info.TotalStopCount)
	assert.Equal(t, 2, info.UniqueStopCount)
	assert.Equal(t, 8400.0, info.RouteLength)
	assert.InDelta(t, 2.48, info.Curvature, 0.01)
}

// spec.md §9: reverse fallback is installed on first insertion only.
func TestSetDistance_ReverseFallbackOnlyOnFirstInsertion(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 0, 0)
	mustAddStop(t, c, "B", 0, 1)

	require.NoError(t, c.SetDistance("A", "B", 100))
	d, err := c.Distance(mustID(t, c, "B"), mustID(t, c, "A"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, d)

	// A later explicit A->B change must not retroactively alter the
	// already-backfilled B->A entry.
	require.NoError(t, c.SetDistance("A", "B", 250))
	d, err = c.Distance(mustID(t, c, "B"), mustID(t, c, "A"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, d)
}

func mustID(t *testing.T, c *catalog.Catalog, name string) int {
	t.Helper()
	s, ok := c.FindStop(name)
	require.True(t, ok)
	return s.ID
}

func TestAddBus_SingleStopHasNaNCurvature(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 0, 0)
	require.NoError(t, c.AddBus("Solo", []string{"A"}, true))

	info, ok := c.BusInfo("Solo")
	require.True(t, ok)
	assert.Equal(t, 1, info.TotalStopCount)
	assert.Equal(t, 1, info.UniqueStopCount)
	assert.Equal(t, 0.0, info.RouteLength)
	assert.True(t, math.IsNaN(info.Curvature))
}

// S5 — a stop with no buses reports an empty (not nil-meaning) list.
func TestBusesAtStop_NoBuses(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "K", 0, 0)

	names, ok := c.BusesAtStop("K")
	require.True(t, ok)
	assert.Empty(t, names)
}

func TestBusesAtStop_UnknownStop(t *testing.T) {
	c := catalog.New()
	_, ok := c.BusesAtStop("Z")
	assert.False(t, ok)
}

func TestBusesAtStop_SortedLexically(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 0, 0)
	mustAddStop(t, c, "B", 0, 1)
	require.NoError(t, c.SetDistance("A", "B", 100))
	require.NoError(t, c.AddBus("Zeta", []string{"A", "B"}, true))
	require.NoError(t, c.AddBus("Alpha", []string{"A", "B"}, true))

	names, ok := c.BusesAtStop("A")
	require.True(t, ok)
	assert.Equal(t, []string{"Alpha", "Zeta"}, names)
}

func TestAddStop_DuplicateName(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 0, 0)
	err := c.AddStop("A", geo.Coordinates{})
	assert.ErrorIs(t, err, catalog.ErrDuplicateName)
}

func TestAddBus_UnknownStop(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 0, 0)
	err := c.AddBus("X", []string{"A", "Z"}, true)
	assert.ErrorIs(t, err, catalog.ErrUnknownStop)
}

func TestDistance_MissingBothDirections(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 0, 0)
	mustAddStop(t, c, "B", 0, 1)
	_, err := c.Distance(mustID(t, c, "A"), mustID(t, c, "B"))
	assert.ErrorIs(t, err, catalog.ErrMissingDistance)
}

// S6 — non-roundtrip terminus: stored sequence is there-and-back.
func TestAddBus_NonRoundtripStoredSequence(t *testing.T) {
	c := catalog.New()
	mustAddStop(t, c, "A", 0, 0)
	mustAddStop(t, c, "B", 0, 1)
	mustAddStop(t, c, "C", 0, 2)
	require.NoError(t, c.SetDistance("A", "B", 100))
	require.NoError(t, c.SetDistance("B", "C", 200))

	require.NoError(t, c.AddBus("W", []string{"A", "B", "C"}, false))

	bus, ok := c.FindBus("W")
	require.True(t, ok)

	a, b, cc := mustID(t, c, "A"), mustID(t, c, "B"), mustID(t, c, "C")
	assert.Equal(t, []int{a, b, cc, b, a}, bus.Stops)
}
