package dag

import "slices"

// Cycle is one strongly connected component that contains a cycle.
type Cycle struct {
	Nodes []NodeID // component members, ascending
	Back  Edge     // representative: first back-edge found inside the component
	Path  []NodeID // Back.To ... Back.From along the DFS tree; Back closes it
}

// Cycles finds every cycle component with Tarjan's algorithm. The DFS is
// canonical: roots in ascending id order, adjacency ascending. Within a
// component the first back-edge discovered is its representative, which
// keeps reports stable across runs and iteration orders. A self-edge is a
// one-node cycle.
func Cycles(g *Graph) []Cycle {
	n := len(g.Edges)
	index := make([]int, n)
	low := make([]int, n)
	parent := make([]NodeID, n)
	onStack := make([]bool, n)
	onPath := make([]bool, n) // "серые" вершины текущего пути DFS
	comp := make([]int, n)
	for i := range index {
		index[i] = -1
		comp[i] = -1
	}

	var (
		stack   []NodeID
		comps   [][]NodeID
		backs   []Edge
		counter int
	)
	type frame struct {
		v    NodeID
		next int
	}
	visit := func(v NodeID) {
		index[v], low[v] = counter, counter
		counter++
		stack = append(stack, v)
		onStack[v], onPath[v] = true, true
	}

	for root := range n {
		if index[root] != -1 {
			continue
		}
		visit(NodeID(root))
		frames := []frame{{v: NodeID(root)}}
		for len(frames) > 0 {
			top := len(frames) - 1
			v := frames[top].v
			if frames[top].next < len(g.Edges[v]) {
				w := g.Edges[v][frames[top].next]
				frames[top].next++
				switch {
				case index[w] == -1:
					parent[w] = v
					visit(w)
					frames = append(frames, frame{v: w})
				case onPath[w]:
					backs = append(backs, Edge{From: v, To: w})
					low[v] = min(low[v], index[w])
				case onStack[w]:
					low[v] = min(low[v], index[w])
				}
				continue
			}

			onPath[v] = false
			if low[v] == index[v] {
				id := len(comps)
				var members []NodeID
				for {
					last := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[last] = false
					comp[last] = id
					members = append(members, last)
					if last == v {
						break
					}
				}
				slices.Sort(members)
				comps = append(comps, members)
			}
			frames = frames[:top]
			if top > 0 {
				p := frames[top-1].v
				low[p] = min(low[p], low[v])
			}
		}
	}

	rep := make(map[int]Edge, len(comps))
	for _, e := range backs {
		c := comp[e.From]
		if comp[e.To] != c {
			continue
		}
		if _, ok := rep[c]; !ok {
			rep[c] = e
		}
	}

	var out []Cycle
	for id, members := range comps {
		back, ok := rep[id]
		if !ok {
			continue
		}
		if len(members) == 1 && !g.HasEdge(members[0], members[0]) {
			continue
		}
		path := []NodeID{back.From}
		for cur := back.From; cur != back.To; {
			cur = parent[cur]
			path = append(path, cur)
		}
		slices.Reverse(path)
		out = append(out, Cycle{Nodes: members, Back: back, Path: path})
	}
	slices.SortFunc(out, func(a, b Cycle) int { return int(a.Nodes[0]) - int(b.Nodes[0]) })
	return out
}
