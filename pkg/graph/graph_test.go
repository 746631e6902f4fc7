package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node string

func (n node) Key() string { return string(n) }

func keys(vs []node) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, string(v))
	}
	return out
}

func countEdges(g *AdjacencyGraph[string, node]) int {
	n := 0
	for range g.Edges() {
		n++
	}
	return n
}

// buildTree creates a -> b, a -> c, a -> d, b -> e.
func buildTree(t *testing.T) *AdjacencyGraph[string, node] {
	t.Helper()
	g := New[string, node]()
	require.NoError(t, g.AddVertices([]node{"a", "b", "c", "d", "e"}))
	require.True(t, g.AddEdge("a", "b"))
	require.True(t, g.AddEdge("a", "c"))
	require.True(t, g.AddEdge("a", "d"))
	require.True(t, g.AddEdge("b", "e"))
	return g
}

func TestNewWithCapacityRejectsNegative(t *testing.T) {
	_, err := NewWithCapacity[string, node](-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddVerticesNil(t *testing.T) {
	g := New[string, node]()
	assert.ErrorIs(t, g.AddVertices(nil), ErrInvalidArgument)
}

func TestAddVertexTwice(t *testing.T) {
	g := New[string, node]()
	assert.True(t, g.AddVertex("a"))
	assert.False(t, g.AddVertex("a"))
	assert.Equal(t, 1, g.VerticesCount())
}

func TestAddEdge(t *testing.T) {
	g := New[string, node]()
	g.AddVertex("a")
	g.AddVertex("b")

	assert.False(t, g.AddEdge("a", "missing"), "missing endpoint")
	assert.False(t, g.AddEdge("missing", "a"), "missing endpoint")
	assert.True(t, g.AddEdge("a", "b"))
	assert.False(t, g.AddEdge("a", "b"), "duplicate edge")
	assert.True(t, g.HasEdge("a", "b"))
	assert.False(t, g.HasEdge("b", "a"))
	assert.Equal(t, 1, g.EdgesCount())
}

func TestCounts(t *testing.T) {
	g := buildTree(t)

	assert.Equal(t, 5, g.VerticesCount())
	assert.Equal(t, 4, g.EdgesCount())
	assert.Equal(t, g.EdgesCount(), countEdges(g))
}

func TestOutgoingAndIncomingEdges(t *testing.T) {
	g := buildTree(t)

	outgoing := map[node]int{"a": 3, "b": 1, "c": 0, "d": 0, "e": 0}
	for v, want := range outgoing {
		seq, err := g.OutgoingEdges(v)
		require.NoError(t, err)
		assert.Len(t, slices.Collect(seq), want, "outgoing from %s", v)
	}

	incoming := map[node]int{"a": 0, "b": 1, "c": 1, "d": 1, "e": 1}
	for v, want := range incoming {
		seq, err := g.IncomingEdges(v)
		require.NoError(t, err)
		assert.Len(t, slices.Collect(seq), want, "incoming to %s", v)
	}

	seq, err := g.IncomingEdges("e")
	require.NoError(t, err)
	assert.Equal(t, []Edge[node]{{Source: "b", Destination: "e"}}, slices.Collect(seq))
}

func TestEdgeQueriesOnMissingVertex(t *testing.T) {
	g := buildTree(t)

	_, err := g.OutgoingEdges("x")
	assert.ErrorIs(t, err, ErrVertexNotFound)

	_, err = g.IncomingEdges("x")
	assert.ErrorIs(t, err, ErrVertexNotFound)

	_, err = g.Degree("x")
	assert.ErrorIs(t, err, ErrVertexNotFound)

	_, err = g.Neighbours("x")
	assert.ErrorIs(t, err, ErrVertexNotFound)
}

func TestDegreeDistinguishesAbsentFromEmpty(t *testing.T) {
	g := buildTree(t)

	d, err := g.Degree("c")
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	d, err = g.Degree("a")
	require.NoError(t, err)
	assert.Equal(t, 3, d)
}

func TestRemoveEdge(t *testing.T) {
	g := buildTree(t)

	assert.True(t, g.RemoveEdge("a", "c"))
	assert.False(t, g.RemoveEdge("a", "c"))
	assert.False(t, g.RemoveEdge("a", "x"))
	assert.Equal(t, 3, g.EdgesCount())
	assert.Equal(t, g.EdgesCount(), countEdges(g))
}

func TestRemoveVertexDropsIncidentEdges(t *testing.T) {
	g := buildTree(t)
	require.True(t, g.AddEdge("e", "b"))

	// b: out {e}, in {a, e}
	before := g.EdgesCount()
	assert.True(t, g.RemoveVertex("b"))
	assert.False(t, g.HasVertex("b"))
	assert.Equal(t, before-3, g.EdgesCount())
	assert.Equal(t, g.EdgesCount(), countEdges(g))

	n, err := g.Neighbours("a")
	require.NoError(t, err)
	assert.Equal(t, []node{"c", "d"}, n)

	assert.False(t, g.RemoveVertex("b"))
}

func TestDepthFirstWalkOrder(t *testing.T) {
	g := buildTree(t)

	walk, err := g.DepthFirstWalkFrom("a")
	require.NoError(t, err)
	// siblings are popped last-pushed first
	assert.Equal(t, []string{"a", "d", "c", "b", "e"}, keys(walk))

	walk, err = g.DepthFirstWalk()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d", "c", "b", "e"}, keys(walk))
}

func TestDepthFirstWalkReachableOnly(t *testing.T) {
	g := buildTree(t)
	g.AddVertex("island")

	walk, err := g.DepthFirstWalkFrom("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "e"}, keys(walk))

	walk, err = g.DepthFirstWalkFrom("a")
	require.NoError(t, err)
	assert.NotContains(t, keys(walk), "island")
}

func TestDepthFirstWalkVisitsOnceWithCycle(t *testing.T) {
	g := New[string, node]()
	require.NoError(t, g.AddVertices([]node{"x", "y", "z"}))
	g.AddEdge("x", "y")
	g.AddEdge("y", "z")
	g.AddEdge("z", "x")
	g.AddEdge("x", "z")

	walk, err := g.DepthFirstWalkFrom("y")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, keys(walk))
	assert.Len(t, walk, 3)
}

func TestDepthFirstWalkEmptyAndMissing(t *testing.T) {
	g := New[string, node]()

	walk, err := g.DepthFirstWalk()
	require.NoError(t, err)
	assert.Empty(t, walk)

	g.AddVertex("a")
	_, err = g.DepthFirstWalkFrom("x")
	assert.True(t, errors.Is(err, ErrVertexNotFound))
}

func TestReachable(t *testing.T) {
	g := buildTree(t)

	ok, err := g.Reachable("a", "e")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Reachable("e", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	g := buildTree(t)
	g.Clear()

	assert.Equal(t, 0, g.VerticesCount())
	assert.Equal(t, 0, g.EdgesCount())
	assert.Empty(t, g.Vertices())

	g.AddVertex("z")
	walk, err := g.DepthFirstWalk()
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, keys(walk))
}

func TestReadable(t *testing.T) {
	g := buildTree(t)

	want := "a: [b,c,d]\nb: [e]\nc: []\nd: []\ne: []\n"
	assert.Equal(t, want, g.Readable())
}

type person struct{ key, name string }

func (p person) Key() string   { return p.key }
func (p person) Label() string { return p.name }

func TestReadableUsesLabels(t *testing.T) {
	g := New[string, person]()
	boss, worker := person{"boss", "Boss"}, person{"worker", "Worker"}
	g.AddVertex(boss)
	g.AddVertex(worker)
	g.AddEdge(boss, worker)

	assert.Equal(t, "Boss: [Worker]\nWorker: []\n", g.Readable())
}

func TestDirectedExport(t *testing.T) {
	g := buildTree(t)
	g.AddVertex("loop")
	g.AddEdge("loop", "loop")

	exp := g.Directed()
	assert.Equal(t, 6, exp.Graph.Nodes().Len())
	assert.Equal(t, 4, exp.Graph.Edges().Len(), "self loop is not exported")

	a := int64(slices.Index(exp.Keys, "a"))
	b := int64(slices.Index(exp.Keys, "b"))
	assert.True(t, exp.Graph.HasEdgeFromTo(a, b))

	k, ok := exp.KeyOf(b)
	assert.True(t, ok)
	assert.Equal(t, "b", k)

	_, ok = exp.KeyOf(99)
	assert.False(t, ok)
}
