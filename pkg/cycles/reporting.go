// Package cycles audits manager claims for reporting loops.
package cycles

import (
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/org-budget/pkg/graph"
	"github.com/ritzau/org-budget/pkg/hierarchy"
)

// ReportingCycle is a set of employees whose manager claims form a loop.
// IDs are sorted.
type ReportingCycle struct {
	EmployeeIDs []string `json:"employeeIds"`
}

// FindReportingCycles looks for loops among all manager claims, including
// the claims the builder refused to link. A self-managed employee is a cycle
// of one.
func FindReportingCycles(h *hierarchy.Hierarchy) []ReportingCycle {
	claims := h.Claims()

	var out []ReportingCycle
	for _, keys := range loops(claims.Directed()) {
		ids := make([]string, 0, len(keys))
		for _, key := range keys {
			if e, ok := claims.Vertex(key); ok {
				ids = append(ids, e.ID)
			}
		}
		slices.Sort(ids)
		out = append(out, ReportingCycle{EmployeeIDs: ids})
	}

	// gonum simple graphs cannot hold self loops
	for _, e := range claims.Vertices() {
		if claims.HasEdge(e, e) {
			out = append(out, ReportingCycle{EmployeeIDs: []string{e.ID}})
		}
	}

	slices.SortFunc(out, func(a, b ReportingCycle) int {
		return slices.Compare(a.EmployeeIDs, b.EmployeeIDs)
	})
	return out
}

// loops returns the keys of every strongly connected component of exp that
// spans more than one vertex.
func loops[K comparable](exp *graph.Export[K]) [][]K {
	var out [][]K
	for _, component := range topo.TarjanSCC(exp.Graph) {
		if len(component) < 2 {
			continue
		}
		keys := make([]K, 0, len(component))
		for _, n := range component {
			if key, ok := exp.KeyOf(n.ID()); ok {
				keys = append(keys, key)
			}
		}
		out = append(out, keys)
	}
	return out
}
