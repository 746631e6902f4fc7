package cycles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/org-budget/pkg/graph"
	"github.com/ritzau/org-budget/pkg/hierarchy"
)

type name string

func (n name) Key() string { return string(n) }

func TestLoops(t *testing.T) {
	g := graph.New[string, name]()
	for _, k := range []name{"a", "b", "c", "d", "e"} {
		g.AddVertex(k)
	}
	// a -> b -> c -> a is a loop, d -> e is not
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	g.AddEdge("d", "e")

	found := loops(g.Directed())
	require.Len(t, found, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, found[0])
}

func TestLoopsNone(t *testing.T) {
	g := graph.New[string, name]()
	g.AddVertex("a")
	g.AddVertex("b")
	g.AddEdge("a", "b")

	assert.Empty(t, loops(g.Directed()))
}

func TestFindReportingCyclesTree(t *testing.T) {
	h, err := hierarchy.Build([]string{"E1,,100\tE2,E1,50\tE3,E2,10"})
	require.NoError(t, err)

	assert.Empty(t, FindReportingCycles(h))
}

func TestFindReportingCycles(t *testing.T) {
	h, err := hierarchy.Build([]string{"R,,10\tA,C,1\tB,A,1\tC,B,1\tS,S,1"})
	require.NoError(t, err)

	assert.Equal(t, []ReportingCycle{
		{EmployeeIDs: []string{"A", "B", "C"}},
		{EmployeeIDs: []string{"S"}},
	}, FindReportingCycles(h))
}
