package svgmap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/geo"
	"github.com/antigravity/transitcatalog/svgmap"
)

func TestColor_String(t *testing.T) {
	cases := []struct {
		name string
		c    svgmap.Color
		want string
	}{
		{"none", svgmap.Color{Kind: svgmap.ColorNone}, "none"},
		{"named", svgmap.Color{Kind: svgmap.ColorNamed, Named: "red"}, "red"},
		{"rgb", svgmap.Color{Kind: svgmap.ColorRGB, R: 1, G: 2, B: 3}, "rgb(1,2,3)"},
		{"rgba", svgmap.Color{Kind: svgmap.ColorRGBA, R: 1, G: 2, B: 3, A: 0.5}, "rgba(1,2,3,0.5)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.c.String())
		})
	}
}

func TestRender_ProducesWellFormedDocument(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.AddStop("P", geo.Coordinates{Lat: 55.0, Lng: 37.0}))
	require.NoError(t, c.AddStop("Q", geo.Coordinates{Lat: 55.1, Lng: 37.2}))
	require.NoError(t, c.SetDistance("P", "Q", 1000))
	require.NoError(t, c.AddBus("U", []string{"P", "Q", "P"}, true))

	settings := svgmap.Settings{
		Width:             600,
		Height:            400,
		Padding:           50,
		LineWidth:         14,
		StopRadius:        5,
		BusLabelFontSize:  20,
		StopLabelFontSize: 20,
		UnderlayerColor:   svgmap.Color{Kind: svgmap.ColorRGBA, R: 255, G: 255, B: 255, A: 0.85},
		UnderlayerWidth:   3,
		ColorPalette:      []svgmap.Color{{Kind: svgmap.ColorNamed, Named: "green"}},
	}

	doc := svgmap.Render(c, settings)
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.True(t, strings.HasSuffix(doc, "</svg>"))
	assert.Contains(t, doc, "<polyline")
	assert.Contains(t, doc, "U")
	assert.Contains(t, doc, "P")
	assert.Contains(t, doc, "Q")

	underlayerRGBA := "rgba(255,255,255,0.85)"
	assert.Contains(t, doc, `stroke="`+underlayerRGBA+`"`)
	assert.Contains(t, doc, `stroke-width="3"`)
	assert.Contains(t, doc, `font-weight="bold"`)
	assert.Contains(t, doc, `fill="green"`)
	assert.Contains(t, doc, `fill="black"`)

	// Roundtrip bus U only gets one label pair (underlayer + colored text),
	// at its first stop.
	assert.Equal(t, 2, strings.Count(doc, `>U</text>`))
}

func TestRender_NonRoundtripBusGetsTerminusLabel(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.AddStop("P", geo.Coordinates{Lat: 55.0, Lng: 37.0}))
	require.NoError(t, c.AddStop("Q", geo.Coordinates{Lat: 55.1, Lng: 37.2}))
	require.NoError(t, c.AddStop("R", geo.Coordinates{Lat: 55.2, Lng: 37.4}))
	require.NoError(t, c.SetDistance("P", "Q", 1000))
	require.NoError(t, c.SetDistance("Q", "R", 1000))
	require.NoError(t, c.AddBus("U", []string{"P", "Q", "R"}, false))

	settings := svgmap.Settings{
		Width: 600, Height: 400, Padding: 50,
		BusLabelFontSize:  20,
		StopLabelFontSize: 20,
		ColorPalette:      []svgmap.Color{{Kind: svgmap.ColorNamed, Named: "green"}},
	}

	doc := svgmap.Render(c, settings)
	// Non-roundtrip bus with a terminus distinct from its first stop gets
	// two label pairs (underlayer+text at each end) — four <text>U</text>
	// occurrences in total.
	assert.Equal(t, 4, strings.Count(doc, `>U</text>`))
}

func TestRender_EscapesTextContent(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.AddStop(`P"<&>`, geo.Coordinates{Lat: 55.0, Lng: 37.0}))

	settings := svgmap.Settings{Width: 600, Height: 400, StopLabelFontSize: 20}
	doc := svgmap.Render(c, settings)
	assert.Contains(t, doc, "&quot;&lt;&amp;&gt;")
	assert.NotContains(t, doc, `P"<&>`)
}

func TestRender_EmptyCatalog(t *testing.T) {
	c := catalog.New()
	doc := svgmap.Render(c, svgmap.Settings{Width: 600, Height: 400, ColorPalette: []svgmap.Color{{Kind: svgmap.ColorNone}}})
	assert.Contains(t, doc, "<svg")
	assert.Contains(t, doc, "</svg>")
}
