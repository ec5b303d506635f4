// Package protocol is the external request/response boundary: decoding the
// JSON input envelope (base requests, render/routing/serialization settings,
// stat-requests) and encoding stat-request answers back to JSON.
//
// This is one of the boundary collaborators the core explicitly treats as
// mechanical (grounded on the reference implementation's json_reader.h/.cpp
// and request_handler.h/.cpp, which do the same decode-then-dispatch without
// algorithmic content of their own). encoding/json is used rather than a
// third-party codec: the pack's JSON libraries either require build-time
// code generation this exercise cannot run (mailru/easyjson, seen in
// go-trafiklab's indirect graph) or are read-only parsers unsuited to
// encoding responses (valyala/fastjson, from patrickbr/gtfstidy's indirect
// graph) — see DESIGN.md.
package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/geo"
	"github.com/antigravity/transitcatalog/itinerary"
	"github.com/antigravity/transitcatalog/svgmap"
	"github.com/antigravity/transitcatalog/transitbuild"
)

// StopRequest is a base_requests entry describing a stop.
type StopRequest struct {
	Name       string             `json:"name"`
	Latitude   float64            `json:"latitude"`
	Longitude  float64            `json:"longitude"`
	RoadDists  map[string]float64 `json:"road_distances"`
}

// BusRequest is a base_requests entry describing a bus.
type BusRequest struct {
	Name        string   `json:"name"`
	Stops       []string `json:"stops"`
	IsRoundtrip bool     `json:"is_roundtrip"`
}

// baseRequest is the raw wire shape: a "type" discriminator plus the union
// of both request kinds' fields, matching the reference decoder's
// single-struct-then-branch style.
type baseRequest struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	RoadDists   map[string]float64 `json:"road_distances"`
	Stops       []string           `json:"stops"`
	IsRoundtrip bool               `json:"is_roundtrip"`
}

// RenderSettingsInput is the render_settings envelope field, in the wire's
// flat-array color encoding (reference implementation's json_reader.cpp
// represents a color as either a string or a 3/4-element numeric array).
type RenderSettingsInput struct {
	Width              float64       `json:"width"`
	Height             float64       `json:"height"`
	Padding            float64       `json:"padding"`
	LineWidth          float64       `json:"line_width"`
	StopRadius         float64       `json:"stop_radius"`
	BusLabelFontSize   int           `json:"bus_label_font_size"`
	BusLabelOffset     [2]float64    `json:"bus_label_offset"`
	StopLabelFontSize  int           `json:"stop_label_font_size"`
	StopLabelOffset    [2]float64    `json:"stop_label_offset"`
	UnderlayerColor    json.RawMessage `json:"underlayer_color"`
	UnderlayerWidth    float64       `json:"underlayer_width"`
	ColorPalette       []json.RawMessage `json:"color_palette"`
}

// RoutingSettingsInput is the routing_settings envelope field.
type RoutingSettingsInput struct {
	BusWaitTime float64 `json:"bus_wait_time"`
	BusVelocity float64 `json:"bus_velocity"`
}

// SerializationSettingsInput is the serialization_settings envelope field.
type SerializationSettingsInput struct {
	File string `json:"file"`
}

// StatRequest is one entry of stat_requests: the union of all four kinds,
// discriminated by Type.
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Envelope is the full top-level input document. Every field is optional;
// a missing key simply skips the corresponding build phase.
type Envelope struct {
	BaseRequests           []baseRequest                `json:"base_requests"`
	RenderSettings         *RenderSettingsInput          `json:"render_settings"`
	RoutingSettings        *RoutingSettingsInput         `json:"routing_settings"`
	SerializationSettings  *SerializationSettingsInput   `json:"serialization_settings"`
	StatRequests           []StatRequest                 `json:"stat_requests"`
}

// Decode parses a full input envelope from r.
func Decode(r io.Reader) (Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("protocol: Decode: %w", err)
	}
	return env, nil
}

// ApplyBaseRequests populates c from env's base_requests, stops first (so
// every SetDistance/AddBus name lookup resolves), matching the reference
// decoder's two-pass load order.
func ApplyBaseRequests(c *catalog.Catalog, requests []baseRequest) error {
	for _, r := range requests {
		if r.Type != "Stop" {
			continue
		}
		if err := c.AddStop(r.Name, geo.Coordinates{Lat: r.Latitude, Lng: r.Longitude}); err != nil {
			return err
		}
	}
	for _, r := range requests {
		if r.Type != "Stop" {
			continue
		}
		for toName, meters := range r.RoadDists {
			if err := c.SetDistance(r.Name, toName, meters); err != nil {
				return err
			}
		}
	}
	for _, r := range requests {
		if r.Type != "Bus" {
			continue
		}
		if err := c.AddBus(r.Name, r.Stops, r.IsRoundtrip); err != nil {
			return err
		}
	}
	return nil
}

// RoutingSettings converts the wire routing_settings into transitbuild.Settings.
func RoutingSettings(in *RoutingSettingsInput) transitbuild.Settings {
	if in == nil {
		return transitbuild.Settings{}
	}
	return transitbuild.Settings{BusWaitTime: in.BusWaitTime, BusVelocity: in.BusVelocity}
}

// RenderSettings converts the wire render_settings into svgmap.Settings,
// decoding each color field's string-or-array union.
func RenderSettings(in *RenderSettingsInput) svgmap.Settings {
	if in == nil {
		return svgmap.Settings{}
	}
	palette := make([]svgmap.Color, 0, len(in.ColorPalette))
	for _, raw := range in.ColorPalette {
		palette = append(palette, decodeColor(raw))
	}
	return svgmap.Settings{
		Width: in.Width, Height: in.Height, Padding: in.Padding,
		LineWidth: in.LineWidth, StopRadius: in.StopRadius,
		BusLabelFontSize: in.BusLabelFontSize, BusLabelOffset: svgmap.Point{X: in.BusLabelOffset[0], Y: in.BusLabelOffset[1]},
		StopLabelFontSize: in.StopLabelFontSize, StopLabelOffset: svgmap.Point{X: in.StopLabelOffset[0], Y: in.StopLabelOffset[1]},
		UnderlayerColor: decodeColor(in.UnderlayerColor), UnderlayerWidth: in.UnderlayerWidth,
		ColorPalette: palette,
	}
}

func decodeColor(raw json.RawMessage) svgmap.Color {
	if len(raw) == 0 {
		return svgmap.Color{Kind: svgmap.ColorNone}
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return svgmap.Color{Kind: svgmap.ColorNamed, Named: name}
	}
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err == nil {
		switch len(nums) {
		case 3:
			return svgmap.Color{Kind: svgmap.ColorRGB, R: uint8(nums[0]), G: uint8(nums[1]), B: uint8(nums[2])}
		case 4:
			return svgmap.Color{Kind: svgmap.ColorRGBA, R: uint8(nums[0]), G: uint8(nums[1]), B: uint8(nums[2]), A: nums[3]}
		}
	}
	return svgmap.Color{Kind: svgmap.ColorNone}
}

// Response is one answer to a stat_requests entry. Exactly the fields for
// its kind are populated; json:",omitempty" keeps the wire form minimal.
// Buses is a pointer so omitempty can distinguish "not a Stop response"
// (nil, key omitted) from "Stop response naming no buses" (non-nil empty
// slice, key emitted as []) — per scenario S5 ("Stop with no buses" still
// answers with buses: []), plain omitempty on a slice would drop the key
// entirely since encoding/json treats a zero-length slice as empty
// regardless of nilness.
type Response struct {
	RequestID       int            `json:"request_id"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Buses           *[]string      `json:"buses,omitempty"`
	Curvature       float64        `json:"curvature,omitempty"`
	RouteLength     float64        `json:"route_length,omitempty"`
	StopCount       int            `json:"stop_count,omitempty"`
	UniqueStopCount int            `json:"unique_stop_count,omitempty"`
	Map             string         `json:"map,omitempty"`
	TotalTime       float64        `json:"total_time,omitempty"`
	Items           []ResponseItem `json:"items,omitempty"`
}

// ResponseItem mirrors itinerary.Item on the wire.
type ResponseItem struct {
	Type      string  `json:"type"`
	Stop      string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

const notFound = "not found"

// wireItemType maps an itinerary.Item's Kind ("Wait"/"Ride") to the wire's
// type tag. The reference decoder (json_reader.cpp) emits "Bus" for a ride
// leg, not "Ride" — preserved here so the response shape matches what it
// produces.
func wireItemType(kind string) string {
	if kind == "Ride" {
		return "Bus"
	}
	return kind
}

// Answer dispatches one stat-request against the given catalog/map/route
// facades and returns its response, in input order (callers are expected to
// range over stat_requests and call Answer once per entry).
func Answer(req StatRequest, c *catalog.Catalog, mapSettings svgmap.Settings, facade *itinerary.Facade) Response {
	switch req.Type {
	case "Stop":
		buses, ok := c.BusesAtStop(req.Name)
		if !ok {
			return Response{RequestID: req.ID, ErrorMessage: notFound}
		}
		return Response{RequestID: req.ID, Buses: &buses}

	case "Bus":
		info, ok := c.BusInfo(req.Name)
		if !ok {
			return Response{RequestID: req.ID, ErrorMessage: notFound}
		}
		curvature := info.Curvature
		if math.IsNaN(curvature) {
			curvature = 0
		}
		return Response{
			RequestID: req.ID, Curvature: curvature, RouteLength: info.RouteLength,
			StopCount: info.TotalStopCount, UniqueStopCount: info.UniqueStopCount,
		}

	case "Map":
		return Response{RequestID: req.ID, Map: svgmap.Render(c, mapSettings)}

	case "Route":
		it, ok := facade.BuildRoute(req.From, req.To)
		if !ok {
			return Response{RequestID: req.ID, ErrorMessage: notFound}
		}
		items := make([]ResponseItem, len(it.Items))
		for i, item := range it.Items {
			items[i] = ResponseItem{Type: wireItemType(item.Kind), Stop: item.Stop, Bus: item.Bus, SpanCount: item.SpanCount, Time: item.Time}
		}
		return Response{RequestID: req.ID, TotalTime: it.TotalTime, Items: items}

	default:
		return Response{RequestID: req.ID, ErrorMessage: notFound}
	}
}

// Encode writes responses to w as a JSON array, in order.
func Encode(w io.Writer, responses []Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(responses); err != nil {
		return fmt.Errorf("protocol: Encode: %w", err)
	}
	return nil
}
