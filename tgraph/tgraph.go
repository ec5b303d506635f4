// Package tgraph is a directed weighted graph keyed by dense integer vertex
// IDs, specialized for the transit router: every edge also carries the bus
// that produced it and the number of stops it skips.
//
// This is a deliberate fork of lvlath/core's Graph: the original is
// string-keyed, mutex-guarded, and supports undirected/multi/loop/mixed
// configuration flags for general-purpose use. tgraph drops all of that in
// favor of the one shape this domain needs — vertex_id == stop_id, built once
// and never mutated concurrently with reads (the catalog is write-once,
// read-many; see the concurrency model this package assumes). What survives
// from core: per-vertex incidence lists ordered by insertion, a monotonic
// edge-ID counter, and the sentinel-error-plus-wrapping convention.
package tgraph

import (
	"errors"
	"fmt"
)

// ErrVertexNotFound indicates an operation referenced a vertex ID outside [0, V).
var ErrVertexNotFound = errors.New("tgraph: vertex not found")

// ErrNegativeWeight indicates an edge was added with weight < 0.
var ErrNegativeWeight = errors.New("tgraph: negative edge weight")

func tgraphErrorf(method string, err error) error {
	return fmt.Errorf("tgraph: %s: %w", method, err)
}

// Edge is a directed connection from From to To, weighted in minutes.
// BusID identifies the bus whose ride produced this edge; SpanCount is the
// number of consecutive stops skipped along that bus between From and To.
type Edge struct {
	ID        int
	From      int
	To        int
	Weight    float64
	BusID     int
	SpanCount int
}

// Graph is a directed weighted graph over dense vertex IDs [0, VertexCount).
// Incidence lists are ordered by insertion, matching the order edges were
// added — this order is load-bearing for persistence (spec.md §4.5: "order
// is significant, edge_ids are references from the routing table").
type Graph struct {
	vertexCount int
	edges       []Edge
	// incident[v] lists, in insertion order, the IDs of edges with From == v.
	incident [][]int
}

// New creates an empty graph over vertices [0, vertexCount).
//
// Complexity: O(vertexCount).
func New(vertexCount int) *Graph {
	return &Graph{
		vertexCount: vertexCount,
		incident:    make([][]int, vertexCount),
	}
}

// VertexCount returns the number of vertices the graph was constructed with.
func (g *Graph) VertexCount() int { return g.vertexCount }

// AddEdge appends a new edge from→to and returns its ID. Edge IDs are
// assigned densely in insertion order, starting at 0.
//
// Returns ErrVertexNotFound if either endpoint is out of range, or
// ErrNegativeWeight if weight < 0.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(from, to int, weight float64, busID, spanCount int) (int, error) {
	if from < 0 || from >= g.vertexCount || to < 0 || to >= g.vertexCount {
		return 0, tgraphErrorf("AddEdge", ErrVertexNotFound)
	}
	if weight < 0 {
		return 0, tgraphErrorf("AddEdge", ErrNegativeWeight)
	}

	id := len(g.edges)
	g.edges = append(g.edges, Edge{
		ID:        id,
		From:      from,
		To:        to,
		Weight:    weight,
		BusID:     busID,
		SpanCount: spanCount,
	})
	g.incident[from] = append(g.incident[from], id)

	return id, nil
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id int) Edge { return g.edges[id] }

// EdgeCount returns the total number of edges added so far.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edges returns the full edge slice in insertion order. The caller must not
// mutate the returned slice's backing array; it is shared with the graph.
func (g *Graph) Edges() []Edge { return g.edges }

// IncidentEdges returns the IDs of edges leaving v, in insertion order.
func (g *Graph) IncidentEdges(v int) []int { return g.incident[v] }

// FromRaw reconstructs a Graph from a previously captured edge list and
// vertex count, as produced by persistence. It re-derives the incidence
// lists by replaying AddEdge semantics' bookkeeping without re-validating
// weights (the source state is trusted to have been valid when it was
// originally built).
//
// Complexity: O(E).
func FromRaw(vertexCount int, edges []Edge) *Graph {
	g := &Graph{
		vertexCount: vertexCount,
		edges:       make([]Edge, len(edges)),
		incident:    make([][]int, vertexCount),
	}
	copy(g.edges, edges)
	for _, e := range g.edges {
		g.incident[e.From] = append(g.incident[e.From], e.ID)
	}

	return g
}
