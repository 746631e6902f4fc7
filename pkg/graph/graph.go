package graph

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

var (
	// ErrVertexNotFound is returned when an operation references a vertex
	// that is not part of the graph.
	ErrVertexNotFound = errors.New("graph: vertex not found")

	// ErrInvalidArgument is returned for nil collections or negative sizes.
	ErrInvalidArgument = errors.New("graph: invalid argument")
)

const defaultCapacity = 10

// Keyed is implemented by any vertex type. Two vertices are the same vertex
// when their keys are equal.
type Keyed[K cmp.Ordered] interface {
	Key() K
}

// Labeled vertices are rendered by Readable with their label instead of
// their key.
type Labeled interface {
	Label() string
}

// Edge is a directed, unweighted edge Source -> Destination.
type Edge[V any] struct {
	Source      V
	Destination V
}

// AdjacencyGraph is a directed, unweighted graph stored as a map from vertex
// key to the ordered set of outgoing neighbours. It is not safe for
// concurrent mutation; callers sharing a graph must hold an external lock.
type AdjacencyGraph[K cmp.Ordered, V Keyed[K]] struct {
	vertices   map[K]V
	adjacency  map[K][]K
	order      []K // insertion order of vertices
	edgesCount int
	first      K
	hasFirst   bool
}

// New creates an empty graph with the default capacity.
func New[K cmp.Ordered, V Keyed[K]]() *AdjacencyGraph[K, V] {
	g, _ := NewWithCapacity[K, V](defaultCapacity)
	return g
}

// NewWithCapacity creates an empty graph sized for capacity vertices.
func NewWithCapacity[K cmp.Ordered, V Keyed[K]](capacity int) (*AdjacencyGraph[K, V], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidArgument)
	}
	return &AdjacencyGraph[K, V]{
		vertices:  make(map[K]V, capacity),
		adjacency: make(map[K][]K, capacity),
		order:     make([]K, 0, capacity),
	}, nil
}

// VerticesCount returns the number of vertices.
func (g *AdjacencyGraph[K, V]) VerticesCount() int {
	return len(g.adjacency)
}

// EdgesCount returns the number of edges.
func (g *AdjacencyGraph[K, V]) EdgesCount() int {
	return g.edgesCount
}

// HasVertex reports whether v is part of the graph.
func (g *AdjacencyGraph[K, V]) HasVertex(v V) bool {
	_, ok := g.adjacency[v.Key()]
	return ok
}

// Vertex looks up a vertex by key.
func (g *AdjacencyGraph[K, V]) Vertex(key K) (V, bool) {
	v, ok := g.vertices[key]
	return v, ok
}

// Vertices returns all vertices in insertion order.
func (g *AdjacencyGraph[K, V]) Vertices() []V {
	out := make([]V, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.vertices[k])
	}
	return out
}

// AddVertex inserts v with an empty adjacency set. It returns false if v is
// already present. The first vertex ever inserted into an empty graph becomes
// the default origin of DepthFirstWalk.
func (g *AdjacencyGraph[K, V]) AddVertex(v V) bool {
	if g.HasVertex(v) {
		return false
	}

	key := v.Key()
	if len(g.adjacency) == 0 {
		g.first = key
		g.hasFirst = true
	}

	g.vertices[key] = v
	g.adjacency[key] = nil
	g.order = append(g.order, key)

	return true
}

// AddVertices adds every vertex in vs, skipping those already present.
func (g *AdjacencyGraph[K, V]) AddVertices(vs []V) error {
	if vs == nil {
		return fmt.Errorf("nil vertex collection: %w", ErrInvalidArgument)
	}
	for _, v := range vs {
		g.AddVertex(v)
	}
	return nil
}

// RemoveVertex removes v together with every edge into or out of it.
func (g *AdjacencyGraph[K, V]) RemoveVertex(v V) bool {
	key := v.Key()
	out, ok := g.adjacency[key]
	if !ok {
		return false
	}

	g.edgesCount -= len(out)
	delete(g.adjacency, key)
	delete(g.vertices, key)
	if i := slices.Index(g.order, key); i >= 0 {
		g.order = slices.Delete(g.order, i, i+1)
	}

	for k, adj := range g.adjacency {
		if i := slices.Index(adj, key); i >= 0 {
			g.adjacency[k] = slices.Delete(adj, i, i+1)
			g.edgesCount--
		}
	}

	return true
}

// AddEdge connects src -> dst. It returns false if either endpoint is
// missing or the edge already exists.
func (g *AdjacencyGraph[K, V]) AddEdge(src, dst V) bool {
	if !g.HasVertex(src) || !g.HasVertex(dst) {
		return false
	}
	if g.edgeExists(src.Key(), dst.Key()) {
		return false
	}

	g.adjacency[src.Key()] = append(g.adjacency[src.Key()], dst.Key())
	g.edgesCount++

	return true
}

// RemoveEdge removes src -> dst if it exists.
func (g *AdjacencyGraph[K, V]) RemoveEdge(src, dst V) bool {
	if !g.HasVertex(src) || !g.HasVertex(dst) {
		return false
	}

	adj := g.adjacency[src.Key()]
	i := slices.Index(adj, dst.Key())
	if i < 0 {
		return false
	}

	g.adjacency[src.Key()] = slices.Delete(adj, i, i+1)
	g.edgesCount--

	return true
}

// HasEdge reports whether the edge src -> dst exists.
func (g *AdjacencyGraph[K, V]) HasEdge(src, dst V) bool {
	return g.HasVertex(src) && g.HasVertex(dst) && g.edgeExists(src.Key(), dst.Key())
}

func (g *AdjacencyGraph[K, V]) edgeExists(src, dst K) bool {
	return slices.Contains(g.adjacency[src], dst)
}

// Degree returns the out-degree of v.
func (g *AdjacencyGraph[K, V]) Degree(v V) (int, error) {
	adj, ok := g.adjacency[v.Key()]
	if !ok {
		return 0, fmt.Errorf("degree of %v: %w", v.Key(), ErrVertexNotFound)
	}
	return len(adj), nil
}

// Neighbours returns a copy of v's adjacency set in insertion order.
func (g *AdjacencyGraph[K, V]) Neighbours(v V) ([]V, error) {
	adj, ok := g.adjacency[v.Key()]
	if !ok {
		return nil, fmt.Errorf("neighbours of %v: %w", v.Key(), ErrVertexNotFound)
	}
	out := make([]V, 0, len(adj))
	for _, k := range adj {
		out = append(out, g.vertices[k])
	}
	return out, nil
}

// Edges yields every edge, grouped by source in vertex insertion order.
func (g *AdjacencyGraph[K, V]) Edges() iter.Seq[Edge[V]] {
	return func(yield func(Edge[V]) bool) {
		for _, src := range g.order {
			for _, dst := range g.adjacency[src] {
				if !yield(Edge[V]{Source: g.vertices[src], Destination: g.vertices[dst]}) {
					return
				}
			}
		}
	}
}

// OutgoingEdges yields the edges leaving v in adjacency order.
func (g *AdjacencyGraph[K, V]) OutgoingEdges(v V) (iter.Seq[Edge[V]], error) {
	if !g.HasVertex(v) {
		return nil, fmt.Errorf("outgoing edges of %v: %w", v.Key(), ErrVertexNotFound)
	}

	key := v.Key()
	return func(yield func(Edge[V]) bool) {
		for _, dst := range g.adjacency[key] {
			if !yield(Edge[V]{Source: g.vertices[key], Destination: g.vertices[dst]}) {
				return
			}
		}
	}, nil
}

// IncomingEdges yields the edges entering v. It scans every adjacency set.
func (g *AdjacencyGraph[K, V]) IncomingEdges(v V) (iter.Seq[Edge[V]], error) {
	if !g.HasVertex(v) {
		return nil, fmt.Errorf("incoming edges of %v: %w", v.Key(), ErrVertexNotFound)
	}

	key := v.Key()
	return func(yield func(Edge[V]) bool) {
		for _, src := range g.order {
			if !g.edgeExists(src, key) {
				continue
			}
			if !yield(Edge[V]{Source: g.vertices[src], Destination: g.vertices[key]}) {
				return
			}
		}
	}, nil
}

// Clear removes all vertices and edges.
func (g *AdjacencyGraph[K, V]) Clear() {
	g.edgesCount = 0
	clear(g.adjacency)
	clear(g.vertices)
	g.order = g.order[:0]
	var zero K
	g.first = zero
	g.hasFirst = false
}

// Readable renders one line per vertex, in insertion order:
//
//	key: [n1,n2]
func (g *AdjacencyGraph[K, V]) Readable() string {
	var sb strings.Builder
	for _, k := range g.order {
		sb.WriteString(g.label(k))
		sb.WriteString(": [")
		for i, n := range g.adjacency[k] {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(g.label(n))
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

func (g *AdjacencyGraph[K, V]) label(k K) string {
	if l, ok := any(g.vertices[k]).(Labeled); ok {
		return l.Label()
	}
	return fmt.Sprint(k)
}
