// Package transitbuild reduces a catalog.Catalog into a tgraph.Graph,
// encoding "ride bus B from stop i to stop j" as a single directed edge
// weighted by wait time plus travel time.
//
// Grounded on the reference implementation's TransportRouter::BuildGraph
// (transport_router.cpp): the same build_part(start, finish) sliding-window
// shape, the same roundtrip-vs-split-at-terminus distinction, and the same
// 0.06 unit-conversion constant. Structured the way lvlath/builder assembles
// graphs from a declarative shape (a functional Settings value consumed by a
// single Build entry point) rather than the reference's private-method style.
package transitbuild

import (
	"fmt"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/tgraph"
)

// Settings configures the wait-time/velocity model used to weight edges.
type Settings struct {
	// BusWaitTime is the constant minutes penalty charged at every boarding.
	BusWaitTime float64
	// BusVelocity is the single average bus speed, in km/h.
	BusVelocity float64
}

// Build constructs the transit graph for every bus in c: one vertex per
// stop (vertex_id == stop_id), and one edge per reachable (board, alight)
// pair along each bus's stored sequence.
//
// Complexity: O(sum over buses of (stored sequence length)^2), the same
// bound as the reference implementation's nested build_part loops.
func Build(c *catalog.Catalog, settings Settings) (*tgraph.Graph, error) {
	g := tgraph.New(c.StopCount())

	for _, bus := range c.Buses() {
		n := len(bus.Stops)
		if n == 0 {
			continue
		}

		if bus.IsRoundtrip {
			if err := buildPart(g, c, bus, settings, 0, n); err != nil {
				return nil, err
			}
			continue
		}

		m := (n + 1) / 2
		if err := buildPart(g, c, bus, settings, 0, m); err != nil {
			return nil, err
		}
		if err := buildPart(g, c, bus, settings, (n-1)/2, n); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// buildPart emits, for every start <= i < j < finish, an edge from
// bus.Stops[i] to bus.Stops[j] weighted by the cumulative road distance
// traveled between them.
func buildPart(g *tgraph.Graph, c *catalog.Catalog, bus catalog.Bus, s Settings, start, finish int) error {
	for i := start; i < finish; i++ {
		var cumulative float64
		for j := i + 1; j < finish; j++ {
			d, err := c.Distance(bus.Stops[j-1], bus.Stops[j])
			if err != nil {
				return fmt.Errorf("transitbuild: bus %q stops %d->%d: %w", bus.Name, bus.Stops[j-1], bus.Stops[j], err)
			}
			cumulative += d

			weight := s.BusWaitTime + cumulative*0.06/s.BusVelocity
			if _, err := g.AddEdge(bus.Stops[i], bus.Stops[j], weight, bus.ID, j-i); err != nil {
				return fmt.Errorf("transitbuild: bus %q: %w", bus.Name, err)
			}
		}
	}

	return nil
}
