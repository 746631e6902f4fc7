package hierarchy

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/text/cases"

	"github.com/ritzau/org-budget/pkg/graph"
)

var (
	// ErrNilInput is returned by Build when lines is nil.
	ErrNilInput = errors.New("hierarchy: nil input")

	// ErrEmployeeNotFound is returned by queries on an unknown employee id.
	ErrEmployeeNotFound = errors.New("hierarchy: employee not found")
)

// Option configures Build.
type Option func(*options)

type options struct {
	caseInsensitive bool
	sink            DiagnosticSink
}

// WithCaseInsensitiveIDs makes "E1" and "e1" the same employee.
func WithCaseInsensitiveIDs() Option {
	return func(o *options) { o.caseInsensitive = true }
}

// WithDiagnosticSink forwards every diagnostic to sink as it is produced.
// Diagnostics are always collected on the Hierarchy as well.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(o *options) { o.sink = sink }
}

// builder holds the state of a single Build call.
type builder struct {
	h       *Hierarchy
	sink    DiagnosticSink
	origins map[string]record // employee key -> source record
	hasRoot bool
}

// Build reconstructs the hierarchy from raw lines. Bad records and
// conflicting edges are skipped with a diagnostic; only nil input fails.
func Build(lines []string, opts ...Option) (*Hierarchy, error) {
	if lines == nil {
		return nil, ErrNilInput
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fold := func(s string) string { return s }
	if o.caseInsensitive {
		// A Caser is stateful; the fold may later run under concurrent readers.
		fold = func(s string) string { return cases.Fold().String(s) }
	}

	b := &builder{
		h: &Hierarchy{
			graph:  graph.New[string, Employee](),
			claims: graph.New[string, Employee](),
			index:  make(map[string]Employee),
			fold:   fold,
		},
		sink:    o.sink,
		origins: make(map[string]record),
	}

	for i, line := range lines {
		for _, rec := range splitLine(line, i+1) {
			b.addRecord(rec)
		}
	}

	for _, key := range b.h.order {
		b.link(b.h.index[key])
	}

	return b.h, nil
}

func (b *builder) report(kind DiagnosticKind, rec record, employeeID, format string, args ...any) {
	d := Diagnostic{
		Kind:       kind,
		Line:       rec.line,
		Column:     rec.column,
		Record:     rec.raw,
		EmployeeID: employeeID,
		Message:    fmt.Sprintf(format, args...),
	}
	b.h.diagnostics = append(b.h.diagnostics, d)
	if b.sink != nil {
		b.sink(d)
	}
}

// addRecord validates one record and, if accepted, inserts its vertex.
func (b *builder) addRecord(rec record) {
	if rec.id() == "" {
		b.report(KindEmptyID, rec, "", "employee cannot have an empty id, skipping")
		return
	}
	if len(rec.fields) < 3 {
		b.report(KindMalformedRecord, rec, rec.id(), "expected id,managerId,salary, got %d field(s)", len(rec.fields))
		return
	}

	id, managerID := rec.id(), rec.managerID()
	if managerID == "" && b.hasRoot {
		b.report(KindDuplicateRoot, rec, id, "only one root allowed, %s already is", b.h.index[b.h.root].ID)
		return
	}

	salary, err := strconv.ParseInt(rec.salary(), 10, 64)
	if err != nil {
		b.report(KindInvalidSalary, rec, id, "salary %q is not a valid integer", rec.salary())
		return
	}

	key := b.h.fold(id)
	if first, exists := b.h.index[key]; exists {
		b.report(KindDuplicateID, rec, id, "id already used by %s, keeping the first record", first.ID)
		return
	}

	e := Employee{ID: id, ManagerID: managerID, Salary: salary, key: key}
	b.h.index[key] = e
	b.h.order = append(b.h.order, key)
	b.h.graph.AddVertex(e)
	b.h.claims.AddVertex(e)
	b.origins[key] = rec

	if e.IsRoot() {
		b.hasRoot = true
		b.h.root = key
	}
}

// link adds the manager -> e edge unless it would break the tree.
func (b *builder) link(e Employee) {
	if e.IsRoot() {
		return
	}
	rec := b.origins[e.key]

	manager, ok := b.h.index[b.h.fold(e.ManagerID)]
	if !ok {
		b.report(KindUnknownManager, rec, e.ID, "manager %s of %s does not exist", e.ManagerID, e.ID)
		return
	}
	b.h.claims.AddEdge(manager, e)

	incoming, _ := b.h.graph.IncomingEdges(e)
	for edge := range incoming {
		b.report(KindMultipleManagers, rec, e.ID, "employee %s already reports to %s", e.ID, edge.Source.ID)
		return
	}

	// Linking manager -> e closes a loop if the manager is already below e.
	cyclic, _ := b.h.graph.Reachable(e, manager)
	if cyclic {
		b.report(KindCycle, rec, e.ID, "linking %s under %s would create a reporting cycle", e.ID, manager.ID)
		return
	}

	b.h.graph.AddEdge(manager, e)
}
