// Package persist serializes a built catalog, render settings, transit
// graph, and router table into a single self-describing binary artifact
// and back.
//
// Grounded on the reference implementation's serialization.h/.cpp, which
// bundles exactly these four sections (TransportCatalogue, RenderSettings,
// Graph, RoutesInternalData) behind one Serializer. Protobuf codegen isn't
// available in this environment, so the wire format here is CBOR via
// fxamacker/cbor/v2 — chosen over JSON because, like the reference's
// protobuf choice, it is a compact self-describing binary format rather
// than a text one, and it round-trips Go's numeric types without the
// float-as-string games JSON forces. The flat row-major layout for the
// router table's cells is adapted from matrix/dense.go's backing-slice
// convention.
package persist

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/geo"
	"github.com/antigravity/transitcatalog/router"
	"github.com/antigravity/transitcatalog/svgmap"
	"github.com/antigravity/transitcatalog/tgraph"
)

// ErrOpenFailed indicates the backing file could not be opened for read or write.
var ErrOpenFailed = errors.New("persist: open failed")

// ErrParseFailed indicates the file opened but its contents were not a valid archive.
var ErrParseFailed = errors.New("persist: parse failed")

func persistErrorf(method string, err error) error {
	return fmt.Errorf("persist: %s: %w", method, err)
}

// stopDTO and busDTO mirror catalog.Stop/Bus fields exactly; they
// exist only so the wire format doesn't depend on catalog's internal field
// tags ever matching cbor's expectations.
type stopDTO struct {
	ID   int     `cbor:"1,keyasint"`
	Name string  `cbor:"2,keyasint"`
	Lat  float64 `cbor:"3,keyasint"`
	Lng  float64 `cbor:"4,keyasint"`
}

type busDTO struct {
	ID          int    `cbor:"1,keyasint"`
	Name        string `cbor:"2,keyasint"`
	Stops       []int  `cbor:"3,keyasint"`
	IsRoundtrip bool   `cbor:"4,keyasint"`
}

type distDTO struct {
	From  int     `cbor:"1,keyasint"`
	To    int     `cbor:"2,keyasint"`
	Meter float64 `cbor:"3,keyasint"`
}

type catalogDTO struct {
	Stops     []stopDTO `cbor:"1,keyasint"`
	Buses     []busDTO  `cbor:"2,keyasint"`
	Distances []distDTO `cbor:"3,keyasint"`
}

type colorDTO struct {
	Kind  int     `cbor:"1,keyasint"`
	Named string  `cbor:"2,keyasint,omitempty"`
	R     uint8   `cbor:"3,keyasint,omitempty"`
	G     uint8   `cbor:"4,keyasint,omitempty"`
	B     uint8   `cbor:"5,keyasint,omitempty"`
	A     float64 `cbor:"6,keyasint,omitempty"`
}

type renderSettingsDTO struct {
	Width             float64    `cbor:"1,keyasint"`
	Height            float64    `cbor:"2,keyasint"`
	Padding           float64    `cbor:"3,keyasint"`
	LineWidth         float64    `cbor:"4,keyasint"`
	StopRadius        float64    `cbor:"5,keyasint"`
	BusLabelFontSize  int        `cbor:"6,keyasint"`
	BusLabelOffsetX   float64    `cbor:"7,keyasint"`
	BusLabelOffsetY   float64    `cbor:"8,keyasint"`
	StopLabelFontSize int        `cbor:"9,keyasint"`
	StopLabelOffsetX  float64    `cbor:"10,keyasint"`
	StopLabelOffsetY  float64    `cbor:"11,keyasint"`
	UnderlayerColor   colorDTO   `cbor:"12,keyasint"`
	UnderlayerWidth   float64    `cbor:"13,keyasint"`
	ColorPalette      []colorDTO `cbor:"14,keyasint"`
}

type edgeDTO struct {
	From      int     `cbor:"1,keyasint"`
	To        int     `cbor:"2,keyasint"`
	Weight    float64 `cbor:"3,keyasint"`
	BusID     int     `cbor:"4,keyasint"`
	SpanCount int     `cbor:"5,keyasint"`
}

type graphDTO struct {
	VertexCount int       `cbor:"1,keyasint"`
	Edges       []edgeDTO `cbor:"2,keyasint"`
}

// routerCellDTO is one flattened router.Table cell: the same (weight,
// prevEdge, ok) triple router.Table keeps in memory, adapted to a
// row-major slice the way matrix.Dense backs an r*c grid with one flat
// []float64.
type routerCellDTO struct {
	Weight   float64 `cbor:"1,keyasint"`
	PrevEdge int     `cbor:"2,keyasint"`
	OK       bool    `cbor:"3,keyasint"`
}

type routerDTO struct {
	VertexCount int             `cbor:"1,keyasint"`
	Cells       []routerCellDTO `cbor:"2,keyasint"`
}

// Archive is the complete bundle the reference implementation's Serializer
// writes in one file: catalog, render settings, graph, and router table.
type Archive struct {
	Catalog   catalogDTO        `cbor:"1,keyasint"`
	Render    renderSettingsDTO `cbor:"2,keyasint"`
	Graph     graphDTO          `cbor:"3,keyasint"`
	Router    routerDTO         `cbor:"4,keyasint"`
}

// Bundle is the decoded, reconstructed form of an Archive: live catalog,
// graph, and router objects plus the render settings, ready to answer
// stat-requests.
type Bundle struct {
	Catalog *catalog.Catalog
	Render  svgmap.Settings
	Graph   *tgraph.Graph
	Router  *router.Table
}

// Save writes c, render, g, and tbl to path as a single CBOR archive.
func Save(path string, c *catalog.Catalog, render svgmap.Settings, g *tgraph.Graph, tbl *router.Table) error {
	arc := Archive{
		Catalog: toCatalogDTO(c),
		Render:  toRenderDTO(render),
		Graph:   toGraphDTO(g),
		Router:  toRouterDTO(tbl, g),
	}

	data, err := cbor.Marshal(arc)
	if err != nil {
		return persistErrorf("Save", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistErrorf("Save", fmt.Errorf("%w: %v", ErrOpenFailed, err))
	}

	return nil
}

// Load reads and decodes path into a Bundle.
//
// Failures here are meant to be recovered from leniently by the caller (see
// cmd/transitcat): log the error and fall through to an empty, rebuildable
// state rather than aborting the process, mirroring the reference
// implementation's behavior when a base file is missing or corrupt.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, persistErrorf("Load", fmt.Errorf("%w: %v", ErrOpenFailed, err))
	}

	var arc Archive
	if err := cbor.Unmarshal(data, &arc); err != nil {
		return nil, persistErrorf("Load", fmt.Errorf("%w: %v", ErrParseFailed, err))
	}

	c, err := fromCatalogDTO(arc.Catalog)
	if err != nil {
		return nil, persistErrorf("Load", fmt.Errorf("%w: %v", ErrParseFailed, err))
	}
	g := fromGraphDTO(arc.Graph)
	tbl, err := fromRouterDTO(arc.Router, g)
	if err != nil {
		return nil, persistErrorf("Load", fmt.Errorf("%w: %v", ErrParseFailed, err))
	}

	return &Bundle{
		Catalog: c,
		Render:  fromRenderDTO(arc.Render),
		Graph:   g,
		Router:  tbl,
	}, nil
}

// LoadLenient calls Load and, on any error, logs it via logger and returns
// a nil Bundle instead of propagating — the caller treats a nil Bundle as
// "no base loaded" and answers queries against an empty catalog.
func LoadLenient(path string, logger *logrus.Logger) *Bundle {
	b, err := Load(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("persist: failed to load base, starting empty")
		return nil
	}
	return b
}

func toCatalogDTO(c *catalog.Catalog) catalogDTO {
	var dto catalogDTO
	for _, s := range c.Stops() {
		dto.Stops = append(dto.Stops, stopDTO{ID: s.ID, Name: s.Name, Lat: s.Coordinates.Lat, Lng: s.Coordinates.Lng})
	}
	for _, b := range c.Buses() {
		dto.Buses = append(dto.Buses, busDTO{ID: b.ID, Name: b.Name, Stops: append([]int(nil), b.Stops...), IsRoundtrip: b.IsRoundtrip})
	}
	for from := 0; from < c.StopCount(); from++ {
		for to := 0; to < c.StopCount(); to++ {
			if d, err := c.Distance(from, to); err == nil {
				dto.Distances = append(dto.Distances, distDTO{From: from, To: to, Meter: d})
			}
		}
	}
	return dto
}

func fromCatalogDTO(dto catalogDTO) (*catalog.Catalog, error) {
	c := catalog.New()
	names := make([]string, len(dto.Stops))
	for _, s := range dto.Stops {
		if err := c.AddStop(s.Name, geo.Coordinates{Lat: s.Lat, Lng: s.Lng}); err != nil {
			return nil, err
		}
		names[s.ID] = s.Name
	}
	for _, d := range dto.Distances {
		if err := c.SetDistance(names[d.From], names[d.To], d.Meter); err != nil {
			return nil, err
		}
	}
	for _, b := range dto.Buses {
		stopNames := make([]string, len(b.Stops))
		for i, sid := range b.Stops {
			stopNames[i] = names[sid]
		}
		if !b.IsRoundtrip && len(stopNames) > 1 {
			half := (len(stopNames) + 1) / 2
			stopNames = stopNames[:half]
		}
		if err := c.AddBus(b.Name, stopNames, b.IsRoundtrip); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func toColorDTO(c svgmap.Color) colorDTO {
	return colorDTO{Kind: int(c.Kind), Named: c.Named, R: c.R, G: c.G, B: c.B, A: c.A}
}

func fromColorDTO(dto colorDTO) svgmap.Color {
	return svgmap.Color{Kind: svgmap.ColorKind(dto.Kind), Named: dto.Named, R: dto.R, G: dto.G, B: dto.B, A: dto.A}
}

func toRenderDTO(s svgmap.Settings) renderSettingsDTO {
	palette := make([]colorDTO, len(s.ColorPalette))
	for i, c := range s.ColorPalette {
		palette[i] = toColorDTO(c)
	}
	return renderSettingsDTO{
		Width: s.Width, Height: s.Height, Padding: s.Padding,
		LineWidth: s.LineWidth, StopRadius: s.StopRadius,
		BusLabelFontSize: s.BusLabelFontSize, BusLabelOffsetX: s.BusLabelOffset.X, BusLabelOffsetY: s.BusLabelOffset.Y,
		StopLabelFontSize: s.StopLabelFontSize, StopLabelOffsetX: s.StopLabelOffset.X, StopLabelOffsetY: s.StopLabelOffset.Y,
		UnderlayerColor: toColorDTO(s.UnderlayerColor), UnderlayerWidth: s.UnderlayerWidth,
		ColorPalette: palette,
	}
}

func fromRenderDTO(dto renderSettingsDTO) svgmap.Settings {
	palette := make([]svgmap.Color, len(dto.ColorPalette))
	for i, c := range dto.ColorPalette {
		palette[i] = fromColorDTO(c)
	}
	return svgmap.Settings{
		Width: dto.Width, Height: dto.Height, Padding: dto.Padding,
		LineWidth: dto.LineWidth, StopRadius: dto.StopRadius,
		BusLabelFontSize: dto.BusLabelFontSize, BusLabelOffset: svgmap.Point{X: dto.BusLabelOffsetX, Y: dto.BusLabelOffsetY},
		StopLabelFontSize: dto.StopLabelFontSize, StopLabelOffset: svgmap.Point{X: dto.StopLabelOffsetX, Y: dto.StopLabelOffsetY},
		UnderlayerColor: fromColorDTO(dto.UnderlayerColor), UnderlayerWidth: dto.UnderlayerWidth,
		ColorPalette: palette,
	}
}

func toGraphDTO(g *tgraph.Graph) graphDTO {
	dto := graphDTO{VertexCount: g.VertexCount()}
	for _, e := range g.Edges() {
		dto.Edges = append(dto.Edges, edgeDTO{From: e.From, To: e.To, Weight: e.Weight, BusID: e.BusID, SpanCount: e.SpanCount})
	}
	return dto
}

func fromGraphDTO(dto graphDTO) *tgraph.Graph {
	edges := make([]tgraph.Edge, len(dto.Edges))
	for i, e := range dto.Edges {
		edges[i] = tgraph.Edge{ID: i, From: e.From, To: e.To, Weight: e.Weight, BusID: e.BusID, SpanCount: e.SpanCount}
	}
	return tgraph.FromRaw(dto.VertexCount, edges)
}

func toRouterDTO(tbl *router.Table, g *tgraph.Graph) routerDTO {
	n := g.VertexCount()
	dto := routerDTO{VertexCount: n, Cells: make([]routerCellDTO, 0, n*n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := tbl.CellAt(i, j)
			dto.Cells = append(dto.Cells, routerCellDTO{Weight: c.Weight, PrevEdge: c.PrevEdge, OK: c.OK})
		}
	}
	return dto
}

func fromRouterDTO(dto routerDTO, g *tgraph.Graph) (*router.Table, error) {
	return router.FromCells(g, dto.VertexCount, routerCells(dto.Cells))
}

func routerCells(dto []routerCellDTO) []router.Cell {
	cells := make([]router.Cell, len(dto))
	for i, c := range dto {
		cells[i] = router.Cell{Weight: c.Weight, PrevEdge: c.PrevEdge, OK: c.OK}
	}
	return cells
}
