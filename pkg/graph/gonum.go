package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
)

// Export is a gonum view of an AdjacencyGraph. Node IDs index into Keys,
// which are sorted so the same graph always exports the same IDs.
type Export[K comparable] struct {
	Graph *simple.DirectedGraph
	Keys  []K
}

// KeyOf maps a gonum node ID back to the vertex key.
func (e *Export[K]) KeyOf(id int64) (K, bool) {
	if id < 0 || id >= int64(len(e.Keys)) {
		var zero K
		return zero, false
	}
	return e.Keys[id], true
}

// Directed copies the graph into a gonum simple.DirectedGraph so gonum-based
// algorithms can run over it.
func (g *AdjacencyGraph[K, V]) Directed() *Export[K] {
	keys := slices.Clone(g.order)
	slices.Sort(keys)

	ids := make(map[K]int64, len(keys))
	dg := simple.NewDirectedGraph()
	for i, k := range keys {
		ids[k] = int64(i)
		dg.AddNode(simple.Node(i))
	}

	for _, src := range keys {
		for _, dst := range g.adjacency[src] {
			if src == dst {
				// simple graphs reject self loops
				continue
			}
			dg.SetEdge(dg.NewEdge(dg.Node(ids[src]), dg.Node(ids[dst])))
		}
	}

	return &Export[K]{Graph: dg, Keys: keys}
}
