package hierarchy

import (
	"fmt"
	"slices"

	"github.com/ritzau/org-budget/pkg/graph"
)

// Hierarchy is the validated organisation built from records. It is
// read-only after Build returns.
type Hierarchy struct {
	graph       *graph.AdjacencyGraph[string, Employee]
	claims      *graph.AdjacencyGraph[string, Employee]
	index       map[string]Employee
	order       []string
	root        string
	diagnostics []Diagnostic
	fold        func(string) string
}

// Graph returns the manager -> report graph.
func (h *Hierarchy) Graph() *graph.AdjacencyGraph[string, Employee] {
	return h.graph
}

// Claims returns a graph with every manager claim made by an accepted
// record, including the ones rejected while linking.
func (h *Hierarchy) Claims() *graph.AdjacencyGraph[string, Employee] {
	return h.claims
}

// Employee looks up an employee by id.
func (h *Hierarchy) Employee(id string) (Employee, bool) {
	e, ok := h.index[h.fold(id)]
	return e, ok
}

// Root returns the single root, if one was accepted.
func (h *Hierarchy) Root() (Employee, bool) {
	if h.root == "" {
		return Employee{}, false
	}
	return h.index[h.root], true
}

// Employees returns the accepted employees in input order.
func (h *Hierarchy) Employees() []Employee {
	out := make([]Employee, 0, len(h.order))
	for _, k := range h.order {
		out = append(out, h.index[k])
	}
	return out
}

// Len returns the number of accepted employees.
func (h *Hierarchy) Len() int { return len(h.order) }

// Diagnostics returns everything skipped or rejected during Build.
func (h *Hierarchy) Diagnostics() []Diagnostic {
	return slices.Clone(h.diagnostics)
}

// ManagerOf returns the manager linked above id. The second result is false
// for the root, for orphans whose edge was rejected, and for unknown ids.
func (h *Hierarchy) ManagerOf(id string) (Employee, bool) {
	e, ok := h.Employee(id)
	if !ok {
		return Employee{}, false
	}
	incoming, err := h.graph.IncomingEdges(e)
	if err != nil {
		return Employee{}, false
	}
	for edge := range incoming {
		return edge.Source, true
	}
	return Employee{}, false
}

// ReportsOf returns the direct reports of id in input order.
func (h *Hierarchy) ReportsOf(id string) ([]Employee, error) {
	e, ok := h.Employee(id)
	if !ok {
		return nil, fmt.Errorf("reports of %s: %w", id, ErrEmployeeNotFound)
	}
	return h.graph.Neighbours(e)
}

// Readable renders the adjacency structure, one line per employee.
func (h *Hierarchy) Readable() string {
	return h.graph.Readable()
}
