// Package svgmap renders a catalog's buses and stops as a 2D vector map.
//
// This is the "external collaborator" spec.md §1 scopes out of the core: a
// sphere-to-plane projection plus an SVG document builder, mechanical and
// algorithmically shallow compared to the routing engine. Grounded on the
// reference implementation's map_renderer.h/.cpp (SphereProjector,
// RenderSettings) and svg.cpp (the `none`/string/rgb/rgba tagged color
// union, rendered as CSS color literals).
package svgmap

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/geo"
)

// ColorKind tags which variant of Color is populated.
type ColorKind int

const (
	// ColorNone renders as the CSS keyword "none".
	ColorNone ColorKind = iota
	// ColorNamed renders as a literal CSS color name (e.g. "red").
	ColorNamed
	// ColorRGB renders as "rgb(r,g,b)".
	ColorRGB
	// ColorRGBA renders as "rgba(r,g,b,a)".
	ColorRGBA
)

// Color is a tagged union over the four color variants the original svg.h
// supports. Exactly the field(s) matching Kind are meaningful.
type Color struct {
	Kind    ColorKind
	Named   string
	R, G, B uint8
	A       float64
}

// String renders the color as a CSS color literal.
func (c Color) String() string {
	switch c.Kind {
	case ColorNone:
		return "none"
	case ColorNamed:
		return c.Named
	case ColorRGB:
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	case ColorRGBA:
		return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, c.A)
	default:
		return "none"
	}
}

// Point is an SVG-space coordinate pair.
type Point struct {
	X, Y float64
}

// Settings mirrors the reference implementation's RenderSettings verbatim:
// every drawing parameter is preserved, including the underlayer color and
// the bus/stop label offsets.
type Settings struct {
	Width            float64
	Height           float64
	Padding          float64
	LineWidth        float64
	StopRadius       float64
	BusLabelFontSize int
	BusLabelOffset   Point
	StopLabelFontSize int
	StopLabelOffset  Point
	UnderlayerColor  Color
	UnderlayerWidth  float64
	ColorPalette     []Color
}

// projector maps geographic coordinates into SVG-space points, matching the
// reference implementation's SphereProjector exactly: the zoom coefficient
// is the smaller of the width- and height-derived scales, and either scale
// is skipped when its corresponding extent is zero.
type projector struct {
	padding   float64
	minLon    float64
	maxLat    float64
	zoomCoeff float64
}

func newProjector(points []geo.Coordinates, maxWidth, maxHeight, padding float64) projector {
	p := projector{padding: padding}
	if len(points) == 0 {
		return p
	}

	minLon, maxLon := points[0].Lng, points[0].Lng
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, pt := range points[1:] {
		minLon = math.Min(minLon, pt.Lng)
		maxLon = math.Max(maxLon, pt.Lng)
		minLat = math.Min(minLat, pt.Lat)
		maxLat = math.Max(maxLat, pt.Lat)
	}
	p.minLon = minLon
	p.maxLat = maxLat

	const epsilon = 1e-6
	var widthZoom, heightZoom float64
	var haveWidthZoom, haveHeightZoom bool
	if math.Abs(maxLon-minLon) > epsilon {
		widthZoom = (maxWidth - 2*padding) / (maxLon - minLon)
		haveWidthZoom = true
	}
	if math.Abs(maxLat-minLat) > epsilon {
		heightZoom = (maxHeight - 2*padding) / (maxLat - minLat)
		haveHeightZoom = true
	}

	switch {
	case haveWidthZoom && haveHeightZoom:
		p.zoomCoeff = math.Min(widthZoom, heightZoom)
	case haveWidthZoom:
		p.zoomCoeff = widthZoom
	case haveHeightZoom:
		p.zoomCoeff = heightZoom
	}

	return p
}

func (p projector) project(c geo.Coordinates) Point {
	return Point{
		X: (c.Lng - p.minLon) * p.zoomCoeff + p.padding,
		Y: (p.maxLat - c.Lat) * p.zoomCoeff + p.padding,
	}
}

// Render draws every bus in c (in name order, matching the reference's
// request_handler.cpp, which always renders the full catalogue regardless of
// which stat-request asked for the map) as an SVG document string.
func Render(c *catalog.Catalog, settings Settings) string {
	buses := sortedBuses(c)

	var points []geo.Coordinates
	for _, stop := range c.Stops() {
		points = append(points, stop.Coordinates)
	}
	proj := newProjector(points, settings.Width, settings.Height, settings.Padding)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n")
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1">` + "\n")

	renderBusLines(&b, c, buses, proj, settings)
	renderBusLabels(&b, c, buses, proj, settings)
	renderStops(&b, c, proj, settings)
	renderStopLabels(&b, c, proj, settings)

	b.WriteString(`</svg>`)

	return b.String()
}

func sortedBuses(c *catalog.Catalog) []catalog.Bus {
	buses := append([]catalog.Bus(nil), c.Buses()...)
	sort.Slice(buses, func(i, j int) bool { return buses[i].Name < buses[j].Name })
	return buses
}

func renderBusLines(b *strings.Builder, c *catalog.Catalog, buses []catalog.Bus, proj projector, s Settings) {
	for i, bus := range buses {
		if len(bus.Stops) == 0 {
			continue
		}
		color := s.ColorPalette[i%len(s.ColorPalette)]
		fmt.Fprintf(b, `  <polyline points="`)
		for j, sid := range bus.Stops {
			p := proj.project(c.StopByID(sid).Coordinates)
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(b, "%g,%g", p.X, p.Y)
		}
		fmt.Fprintf(b, `" fill="none" stroke="%s" stroke-width="%g"/>`+"\n", color, s.LineWidth)
	}
}

// renderBusLabels draws each bus's name at its first stop, in the same
// color as its polyline, preceded by an underlayer copy for legibility
// against the map background. A non-roundtrip bus whose terminus differs
// from its first stop gets a second label pair at the terminus.
func renderBusLabels(b *strings.Builder, c *catalog.Catalog, buses []catalog.Bus, proj projector, s Settings) {
	for i, bus := range buses {
		if len(bus.Stops) == 0 {
			continue
		}
		color := s.ColorPalette[i%len(s.ColorPalette)].String()

		first := proj.project(c.StopByID(bus.Stops[0]).Coordinates)
		renderLabelPair(b, first, s.BusLabelOffset, s.BusLabelFontSize, "Verdana", "bold", s.UnderlayerColor, s.UnderlayerWidth, color, bus.Name)

		if !bus.IsRoundtrip {
			terminus := bus.Stops[(len(bus.Stops)-1)/2]
			if terminus != bus.Stops[0] {
				pos := proj.project(c.StopByID(terminus).Coordinates)
				renderLabelPair(b, pos, s.BusLabelOffset, s.BusLabelFontSize, "Verdana", "bold", s.UnderlayerColor, s.UnderlayerWidth, color, bus.Name)
			}
		}
	}
}

func renderStops(b *strings.Builder, c *catalog.Catalog, proj projector, s Settings) {
	stops := append([]catalog.Stop(nil), c.Stops()...)
	sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })
	for _, stop := range stops {
		p := proj.project(stop.Coordinates)
		fmt.Fprintf(b, `  <circle cx="%g" cy="%g" r="%g" fill="white"/>`+"\n", p.X, p.Y, s.StopRadius)
	}
}

func renderStopLabels(b *strings.Builder, c *catalog.Catalog, proj projector, s Settings) {
	stops := append([]catalog.Stop(nil), c.Stops()...)
	sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })
	for _, stop := range stops {
		p := proj.project(stop.Coordinates)
		renderLabelPair(b, p, s.StopLabelOffset, s.StopLabelFontSize, "Verdana", "", s.UnderlayerColor, s.UnderlayerWidth, "black", stop.Name)
	}
}

// renderLabelPair writes an underlayer <text> (stroked and filled with
// underlayer, for contrast against the map background) followed by the
// actual colored <text>, both at the same position/offset — the same
// two-pass pattern map_renderer.cpp's RenderBusNames/RenderStopNames use.
func renderLabelPair(b *strings.Builder, pos, offset Point, fontSize int, fontFamily, fontWeight string, underlayer Color, underlayerWidth float64, fill, data string) {
	escaped := escapeText(data)

	fmt.Fprintf(b, `  <text x="%g" y="%g" dx="%g" dy="%g" font-size="%d"`, pos.X, pos.Y, offset.X, offset.Y, fontSize)
	writeFontAttrs(b, fontFamily, fontWeight)
	fmt.Fprintf(b, ` fill="%s" stroke="%s" stroke-width="%g" stroke-linecap="round" stroke-linejoin="round">%s</text>`+"\n",
		underlayer, underlayer, underlayerWidth, escaped)

	fmt.Fprintf(b, `  <text x="%g" y="%g" dx="%g" dy="%g" font-size="%d"`, pos.X, pos.Y, offset.X, offset.Y, fontSize)
	writeFontAttrs(b, fontFamily, fontWeight)
	fmt.Fprintf(b, ` fill="%s">%s</text>`+"\n", fill, escaped)
}

func writeFontAttrs(b *strings.Builder, fontFamily, fontWeight string) {
	if fontFamily != "" {
		fmt.Fprintf(b, ` font-family="%s"`, fontFamily)
	}
	if fontWeight != "" {
		fmt.Fprintf(b, ` font-weight="%s"`, fontWeight)
	}
}

// escapeText matches svg.cpp's Text::RenderObject character-by-character
// escaping: quote, angle brackets, apostrophe, and ampersand.
func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("&quot;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\'':
			b.WriteString("&apos;")
		case '&':
			b.WriteString("&amp;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
