// Package router precomputes all-pairs shortest paths over a tgraph.Graph and
// reconstructs the edge sequence of any shortest path on demand.
//
// Algorithm: Floyd–Warshall relaxation (O(V^3)), chosen — as
// lvlath/matrix's FloydWarshall is — for a fixed, deterministic k→i→j loop
// order and because the workload (many queries against one small, immutable
// graph) favors an O(1)-per-cell lookup table over re-running a
// single-source algorithm (lvlath/dijkstra) on every query.
//
// Unlike lvlath/matrix's FloydWarshall, which closes a plain distance
// matrix, this router also carries a predecessor edge per cell so that a
// shortest path can be walked back to its edge sequence — the same
// prev-map idiom lvlath/dijkstra uses for single-source reconstruction,
// generalized to all pairs.
package router

import (
	"errors"
	"math"

	"github.com/antigravity/transitcatalog/tgraph"
)

// ErrNegativeWeight is returned by New when the graph contains an edge with
// a negative weight; the algorithm's correctness depends on non-negativity.
var ErrNegativeWeight = errors.New("router: negative edge weight")

// cell holds the shortest known weight from some row vertex to some column
// vertex, plus the last edge on a shortest path achieving that weight.
// A cell with ok == false means "no known path".
type cell struct {
	weight   float64
	prevEdge int // valid only when ok
	ok       bool
}

// Table is a V×V all-pairs shortest-path table, built once and queried many
// times. It holds a read-only reference to the graph it was built from for
// path reconstruction; it never snapshots or copies the graph.
type Table struct {
	graph *tgraph.Graph
	v     int
	cells []cell // row-major, v*v
}

func (t *Table) at(i, j int) cell     { return t.cells[i*t.v+j] }
func (t *Table) set(i, j int, c cell) { t.cells[i*t.v+j] = c }

// Cell is the exported, persistence-facing form of a table cell: a weight,
// the ID of the last edge on some shortest path achieving it, and whether a
// path exists at all.
type Cell struct {
	Weight   float64
	PrevEdge int
	OK       bool
}

// CellAt returns the raw (weight, prevEdge, ok) triple for (i, j), for
// callers — namely persistence — that need the predecessor edge rather
// than just the weight Weight exposes.
func (t *Table) CellAt(i, j int) Cell {
	c := t.at(i, j)
	return Cell{Weight: c.weight, PrevEdge: c.prevEdge, OK: c.ok}
}

// FromCells reconstructs a Table from a previously captured row-major cell
// slice (length must be vertexCount*vertexCount), as produced by
// persistence. It does not re-run the precompute; the source state is
// trusted to already satisfy the all-pairs invariant.
func FromCells(g *tgraph.Graph, vertexCount int, cells []Cell) (*Table, error) {
	t := &Table{graph: g, v: vertexCount, cells: make([]cell, len(cells))}
	for i, c := range cells {
		t.cells[i] = cell{weight: c.Weight, prevEdge: c.PrevEdge, ok: c.OK}
	}
	return t, nil
}

// New runs the all-pairs precompute over g and returns a ready-to-query
// Table. It keeps a reference to g for the lifetime of the Table; g must not
// be mutated afterwards.
//
// Complexity: Time O(V^3), Space O(V^2).
func New(g *tgraph.Graph) (*Table, error) {
	v := g.VertexCount()
	t := &Table{
		graph: g,
		v:     v,
		cells: make([]cell, v*v),
	}

	// Initialization: zero-weight self-loops, then each direct edge if it
	// improves (or first-establishes) the cell it targets.
	for i := 0; i < v; i++ {
		t.set(i, i, cell{weight: 0, ok: true})
	}
	for _, e := range g.Edges() {
		if e.Weight < 0 {
			return nil, ErrNegativeWeight
		}
		cur := t.at(e.From, e.To)
		if !cur.ok || e.Weight < cur.weight {
			t.set(e.From, e.To, cell{weight: e.Weight, prevEdge: e.ID, ok: true})
		}
	}

	// Relaxation: fixed k → i → j loop order for deterministic accumulation,
	// the same order lvlath/matrix's FloydWarshall uses.
	for k := 0; k < v; k++ {
		for i := 0; i < v; i++ {
			ik := t.at(i, k)
			if !ik.ok {
				continue
			}
			for j := 0; j < v; j++ {
				kj := t.at(k, j)
				if !kj.ok {
					continue
				}
				candidate := ik.weight + kj.weight
				ij := t.at(i, j)
				if !ij.ok || candidate < ij.weight {
					// Prefer the k→j predecessor when present (it sits closer
					// to j), else carry the i→k predecessor forward. This
					// preserves the invariant that prevEdge is the final
					// edge on some shortest path from i to j.
					prev := ik.prevEdge
					if kj.ok {
						prev = kj.prevEdge
					}
					t.set(i, j, cell{weight: candidate, prevEdge: prev, ok: true})
				}
			}
		}
	}

	return t, nil
}

// Weight returns the shortest-path weight from s to t and whether a path
// exists at all.
func (t *Table) Weight(s, tgt int) (float64, bool) {
	c := t.at(s, tgt)
	if !c.ok {
		return math.Inf(1), false
	}

	return c.weight, true
}

// Path reconstructs the edge sequence of a shortest path from s to t, walking
// backwards through predecessor edges and reversing the result.
//
// Returns (nil, true) for s == t (an empty path of weight 0), and
// (nil, false) when t is unreachable from s.
//
// Complexity: O(path length).
func (t *Table) Path(s, tgt int) ([]tgraph.Edge, bool) {
	root := t.at(s, tgt)
	if !root.ok {
		return nil, false
	}
	if s == tgt {
		return nil, true
	}

	var edges []tgraph.Edge
	cur := tgt
	for cur != s {
		c := t.at(s, cur)
		e := t.graph.Edge(c.prevEdge)
		edges = append(edges, e)
		cur = e.From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return edges, true
}
