package dag

import (
	"slices"

	"keystone/internal/source"
)

type Edge struct {
	From, To NodeID
}

// Witness is the import statement that justifies an edge.
type Witness struct {
	At     source.Ref
	Module string
}

type Graph struct {
	Index   Index
	Edges   [][]NodeID // Edges[from] = sorted, unique targets
	witness map[Edge]Witness
}

func NewGraph(idx Index) *Graph {
	return &Graph{
		Index:   idx,
		Edges:   make([][]NodeID, idx.Len()),
		witness: make(map[Edge]Witness),
	}
}

// AddEdge records from->to. Of several witnesses the earliest position
// (file, line, column) wins, so the result does not depend on the order in
// which files were scanned.
func (g *Graph) AddEdge(from, to NodeID, w Witness) {
	e := Edge{From: from, To: to}
	prev, ok := g.witness[e]
	if !ok {
		adj := g.Edges[int(from)]
		pos, _ := slices.BinarySearch(adj, to)
		g.Edges[int(from)] = slices.Insert(adj, pos, to)
		g.witness[e] = w
		return
	}
	if w.At.Compare(prev.At) < 0 {
		g.witness[e] = w
	}
}

func (g *Graph) Witness(e Edge) (Witness, bool) {
	w, ok := g.witness[e]
	return w, ok
}

func (g *Graph) HasEdge(from, to NodeID) bool {
	_, ok := g.witness[Edge{From: from, To: to}]
	return ok
}
