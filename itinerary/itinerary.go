// Package itinerary presents a shortest-path query result as an alternating
// sequence of Wait/Ride items — the facade a stat-request handler renders
// directly into a response.
//
// Grounded on the reference implementation's TransportRouter::BuildRoute
// (transport_router.cpp) and graph::Router<Weight>::RouteInfo (router.h):
// resolve names via the catalog, delegate to the router for the edge
// sequence, then decompose each edge's weight back into its wait and ride
// components.
package itinerary

import (
	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/router"
)

// Item is one leg of an itinerary: either a Wait (boarding delay at a stop)
// or a Ride (time spent moving on a bus). Exactly one of Stop or Bus is set,
// matching which kind this item is.
type Item struct {
	// Kind is "Wait" or "Ride".
	Kind string
	// Stop is set for Wait items: the name of the stop waited at.
	Stop string
	// Bus is set for Ride items: the name of the bus ridden.
	Bus string
	// SpanCount is set for Ride items: stops skipped in this ride.
	SpanCount int
	// Time is this item's share of the itinerary's total weight, in minutes.
	Time float64
}

// Itinerary is a fastest-path answer: the alternating Wait/Ride decomposition
// of some shortest path, plus its total weight.
type Itinerary struct {
	TotalTime float64
	Items     []Item
}

// Facade answers Route queries against a fixed catalog and router Table.
type Facade struct {
	catalog     *catalog.Catalog
	table       *router.Table
	busWaitTime float64
}

// NewFacade builds a query facade over an already-built catalog and router
// table, with the bus_wait_time used to decompose each edge's weight back
// into its Wait/Ride components (every edge's weight already includes
// exactly one wait — see transitbuild).
func NewFacade(c *catalog.Catalog, table *router.Table, busWaitTime float64) *Facade {
	return &Facade{catalog: c, table: table, busWaitTime: busWaitTime}
}

// BuildRoute resolves fromName/toName and returns the fastest itinerary
// between them, or (Itinerary{}, false) if either name is unknown or no
// route exists. from == to yields an empty itinerary with zero total time.
func (f *Facade) BuildRoute(fromName, toName string) (Itinerary, bool) {
	from, ok := f.catalog.FindStop(fromName)
	if !ok {
		return Itinerary{}, false
	}
	to, ok := f.catalog.FindStop(toName)
	if !ok {
		return Itinerary{}, false
	}

	if from.ID == to.ID {
		return Itinerary{}, true
	}

	weight, ok := f.table.Weight(from.ID, to.ID)
	if !ok {
		return Itinerary{}, false
	}
	edges, _ := f.table.Path(from.ID, to.ID)

	items := make([]Item, 0, 2*len(edges))
	for _, e := range edges {
		originStop := f.catalog.StopByID(e.From)
		items = append(items, Item{
			Kind: "Wait",
			Stop: originStop.Name,
			Time: f.busWaitTime,
		})
		bus := f.catalog.BusByID(e.BusID)
		items = append(items, Item{
			Kind:      "Ride",
			Bus:       bus.Name,
			SpanCount: e.SpanCount,
			Time:      e.Weight - f.busWaitTime,
		})
	}

	return Itinerary{TotalTime: weight, Items: items}, true
}
