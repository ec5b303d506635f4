package persist_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/geo"
	"github.com/antigravity/transitcatalog/persist"
	"github.com/antigravity/transitcatalog/router"
	"github.com/antigravity/transitcatalog/svgmap"
	"github.com/antigravity/transitcatalog/transitbuild"
)

func buildS2(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	for _, name := range []string{"P", "Q", "R"} {
		require.NoError(t, c.AddStop(name, geo.Coordinates{Lat: 1, Lng: 2}))
	}
	require.NoError(t, c.SetDistance("P", "Q", 1000))
	require.NoError(t, c.SetDistance("Q", "R", 1000))
	require.NoError(t, c.AddBus("U", []string{"P", "Q", "P"}, true))
	require.NoError(t, c.AddBus("V", []string{"Q", "R", "Q"}, true))
	return c
}

func TestSaveLoad_RoundTrips(t *testing.T) {
	c := buildS2(t)
	settings := transitbuild.Settings{BusWaitTime: 6, BusVelocity: 40}
	g, err := transitbuild.Build(c, settings)
	require.NoError(t, err)
	tbl, err := router.New(g)
	require.NoError(t, err)

	render := svgmap.Settings{
		Width: 600, Height: 400,
		ColorPalette:    []svgmap.Color{{Kind: svgmap.ColorNamed, Named: "green"}},
		UnderlayerColor: svgmap.Color{Kind: svgmap.ColorRGBA, R: 255, G: 255, B: 255, A: 0.8},
	}

	path := filepath.Join(t.TempDir(), "base.cbor")
	require.NoError(t, persist.Save(path, c, render, g, tbl))

	bundle, err := persist.Load(path)
	require.NoError(t, err)

	stop, ok := bundle.Catalog.FindStop("P")
	require.True(t, ok)
	assert.Equal(t, 1.0, stop.Coordinates.Lat)

	q, _ := bundle.Catalog.FindStop("Q")
	d, err := bundle.Catalog.Distance(stop.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, d)

	p, _ := bundle.Catalog.FindStop("P")
	r, _ := bundle.Catalog.FindStop("R")
	weight, ok := bundle.Router.Weight(p.ID, r.ID)
	assert.True(t, ok)
	assert.InDelta(t, 15.0, weight, 1e-9)

	assert.Equal(t, "green", bundle.Render.ColorPalette[0].Named)
	assert.Equal(t, svgmap.ColorRGBA, bundle.Render.UnderlayerColor.Kind)
}

func TestLoadLenient_MissingFile(t *testing.T) {
	logger := logrus.New()
	logger.Out = io.Discard

	bundle := persist.LoadLenient(filepath.Join(t.TempDir(), "missing.cbor"), logger)
	assert.Nil(t, bundle)
}
