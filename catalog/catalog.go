// Package catalog is the in-memory transport catalog: stops, buses, and the
// road/geographic distance tables between them, keyed by stable dense
// integer IDs assigned in insertion order.
//
// Grounded on the reference implementation's TransportCatalogue
// (transport_catalogue.h/.cpp): a stop or bus is never relocated once
// inserted, identity is always by ID, and stop names are resolved to IDs
// once at the boundary rather than carried through the rest of the system.
// Stops, buses, distance tables and totals are keyed by integer ID; only the
// name lookups are keyed by name, and the stop-to-buses index (keyed by stop
// ID) holds bus names.
//
// Error policy follows the rest of this codebase: sentinel errors, wrapped
// with method context via fmt.Errorf("catalog: <Method>: %w", ...), checked
// with errors.Is.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/antigravity/transitcatalog/geo"
)

// Sentinel errors. Mutators return these (wrapped with method context);
// lookups return an absence marker instead, except Distance (see below).
var (
	// ErrDuplicateName indicates a stop or bus name was already registered.
	ErrDuplicateName = errors.New("catalog: duplicate name")
	// ErrUnknownStop indicates a bus referenced a stop name that was never added.
	ErrUnknownStop = errors.New("catalog: unknown stop")
	// ErrMissingDistance indicates neither direction of a road distance is recorded.
	ErrMissingDistance = errors.New("catalog: missing distance")
)

func catalogErrorf(method string, err error) error {
	return fmt.Errorf("catalog: %s: %w", method, err)
}

// Stop is a named geographic point. Identity is ID; Name is unique per
// catalog and never reused.
type Stop struct {
	ID          int
	Name        string
	Coordinates geo.Coordinates
}

// Bus is a named ordered sequence of stop IDs. Stops is the *stored* (full)
// sequence: for a roundtrip bus this is the input as given (last == first);
// for a non-roundtrip bus it is the there-and-back expansion.
type Bus struct {
	ID           int
	Name         string
	Stops        []int
	IsRoundtrip  bool
}

// busTotals is the precomputed (road_length, geo_length) pair for a bus's
// stored sequence, cached at insertion time.
type busTotals struct {
	roadLength float64
	geoLength  float64
}

// BusInfo is the materialized answer to a Bus stat-request.
type BusInfo struct {
	UniqueStopCount int
	TotalStopCount  int
	RouteLength     float64
	// Curvature is RouteLength / geo_length. It is NaN for a single-stop bus
	// (0/0), matching the reference implementation's unguarded division —
	// callers must check math.IsNaN rather than treat it as an error.
	Curvature float64
}

type distKey struct{ from, to int }

// Catalog owns stops and buses; it hands out borrow-only references by ID or
// by name. No entry is ever relocated once inserted. The catalog is meant to
// be built once (AddStop/SetDistance/AddBus calls during the build phase)
// and treated as immutable thereafter — no internal locking is used, per the
// single-threaded, build-once/read-many model this whole system assumes.
type Catalog struct {
	stops       []Stop
	buses       []Bus
	stopByName  map[string]int
	busByName   map[string]int
	roadDist    map[distKey]float64
	geoDist     map[distKey]float64
	stopToBuses map[int]map[string]struct{} // stop id -> set of bus names
	totals      map[int]busTotals           // bus id -> totals
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{
		stopByName:  make(map[string]int),
		busByName:   make(map[string]int),
		roadDist:    make(map[distKey]float64),
		geoDist:     make(map[distKey]float64),
		stopToBuses: make(map[int]map[string]struct{}),
		totals:      make(map[int]busTotals),
	}
}

// AddStop allocates a fresh dense ID and registers a stop. Must be called
// before any bus or SetDistance call referencing name.
//
// Returns ErrDuplicateName if name is already registered.
func (c *Catalog) AddStop(name string, coords geo.Coordinates) error {
	if _, exists := c.stopByName[name]; exists {
		return catalogErrorf("AddStop", ErrDuplicateName)
	}

	id := len(c.stops)
	c.stops = append(c.stops, Stop{ID: id, Name: name, Coordinates: coords})
	c.stopByName[name] = id
	c.stopToBuses[id] = make(map[string]struct{})

	return nil
}

// SetDistance records the directed road distance from fromName to toName.
//
// Idempotent in the exact direction (a later call with the same (from, to)
// simply overwrites it). The reverse direction (to, from) is back-filled
// with the same value only if no reverse entry exists yet — a later,
// explicit SetDistance(to, from, ...) always overrides that fallback, but
// this call never touches an already-explicit reverse entry it didn't just
// create. This mirrors the reference implementation's SetDistance, which
// back-fills the reverse map entry only "if (distances_.find({to,from}) ==
// distances_.end())".
func (c *Catalog) SetDistance(fromName, toName string, meters float64) error {
	from, ok := c.stopByName[fromName]
	if !ok {
		return catalogErrorf("SetDistance", ErrUnknownStop)
	}
	to, ok := c.stopByName[toName]
	if !ok {
		return catalogErrorf("SetDistance", ErrUnknownStop)
	}

	c.roadDist[distKey{from, to}] = meters
	if _, exists := c.roadDist[distKey{to, from}]; !exists {
		c.roadDist[distKey{to, from}] = meters
	}

	return nil
}

// AddBus resolves stopNames to IDs, expands a non-roundtrip sequence to its
// there-and-back stored form, computes geographic distances for every
// adjacent pair, sums road_length/geo_length, and updates the stop-to-buses
// index for every referenced stop.
//
// Returns ErrUnknownStop if any name does not resolve, or ErrDuplicateName
// if the bus name is already registered.
func (c *Catalog) AddBus(name string, stopNames []string, isRoundtrip bool) error {
	if _, exists := c.busByName[name]; exists {
		return catalogErrorf("AddBus", ErrDuplicateName)
	}

	ids := make([]int, len(stopNames))
	for i, sn := range stopNames {
		id, ok := c.stopByName[sn]
		if !ok {
			return catalogErrorf("AddBus", ErrUnknownStop)
		}
		ids[i] = id
	}

	stored := ids
	if !isRoundtrip && len(ids) > 1 {
		stored = make([]int, 0, 2*len(ids)-1)
		stored = append(stored, ids...)
		for i := len(ids) - 2; i >= 0; i-- {
			stored = append(stored, ids[i])
		}
	}

	var road, geoLen float64
	for i := 1; i < len(stored); i++ {
		from, to := stored[i-1], stored[i]
		d, err := c.Distance(from, to)
		if err != nil {
			return catalogErrorf("AddBus", err)
		}
		road += d
		geoLen += geo.Distance(c.stops[from].Coordinates, c.stops[to].Coordinates)
	}

	id := len(c.buses)
	c.buses = append(c.buses, Bus{ID: id, Name: name, Stops: stored, IsRoundtrip: isRoundtrip})
	c.busByName[name] = id
	c.totals[id] = busTotals{roadLength: road, geoLength: geoLen}

	seen := make(map[int]struct{}, len(stored))
	for _, sid := range stored {
		if _, dup := seen[sid]; dup {
			continue
		}
		seen[sid] = struct{}{}
		c.stopToBuses[sid][name] = struct{}{}
	}

	return nil
}

// FindStop resolves a stop name to its Stop, or (Stop{}, false) if unknown.
func (c *Catalog) FindStop(name string) (Stop, bool) {
	id, ok := c.stopByName[name]
	if !ok {
		return Stop{}, false
	}

	return c.stops[id], true
}

// FindBus resolves a bus name to its Bus, or (Bus{}, false) if unknown.
func (c *Catalog) FindBus(name string) (Bus, bool) {
	id, ok := c.busByName[name]
	if !ok {
		return Bus{}, false
	}

	return c.buses[id], true
}

// StopByID returns the stop with the given dense ID. Panics if out of range,
// matching the invariant that callers only ever hold IDs this catalog issued.
func (c *Catalog) StopByID(id int) Stop { return c.stops[id] }

// BusByID returns the bus with the given dense ID.
func (c *Catalog) BusByID(id int) Bus { return c.buses[id] }

// StopCount returns the number of registered stops.
func (c *Catalog) StopCount() int { return len(c.stops) }

// Stops returns every stop, ordered by ID.
func (c *Catalog) Stops() []Stop { return c.stops }

// Buses returns every bus, ordered by ID.
func (c *Catalog) Buses() []Bus { return c.buses }

// BusesAtStop returns, in ascending lexical order, the names of every bus
// passing through the named stop. Returns (nil, false) if the stop is
// unknown; returns (empty slice, true) if the stop exists but no bus visits
// it.
func (c *Catalog) BusesAtStop(name string) ([]string, bool) {
	id, ok := c.stopByName[name]
	if !ok {
		return nil, false
	}

	names := make([]string, 0, len(c.stopToBuses[id]))
	for n := range c.stopToBuses[id] {
		names = append(names, n)
	}
	sort.Strings(names)

	return names, true
}

// Distance returns the road distance from stop ID from to stop ID to,
// preferring the exact directed entry and falling back to the reverse
// entry. Returns ErrMissingDistance if neither direction is recorded.
func (c *Catalog) Distance(from, to int) (float64, error) {
	if d, ok := c.roadDist[distKey{from, to}]; ok {
		return d, nil
	}
	if d, ok := c.roadDist[distKey{to, from}]; ok {
		return d, nil
	}

	return 0, catalogErrorf("Distance", ErrMissingDistance)
}

// BusInfo computes the stat-request answer for a bus name, or
// (BusInfo{}, false) if the name is unknown.
func (c *Catalog) BusInfo(name string) (BusInfo, bool) {
	id, ok := c.busByName[name]
	if !ok {
		return BusInfo{}, false
	}
	bus := c.buses[id]
	totals := c.totals[id]

	unique := make(map[int]struct{}, len(bus.Stops))
	for _, sid := range bus.Stops {
		unique[sid] = struct{}{}
	}

	return BusInfo{
		UniqueStopCount: len(unique),
		TotalStopCount:  len(bus.Stops),
		RouteLength:     totals.roadLength,
		Curvature:       totals.roadLength / totals.geoLength,
	}, true
}
