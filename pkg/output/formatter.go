package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ritzau/org-budget/pkg/budget"
	"github.com/ritzau/org-budget/pkg/cycles"
	"github.com/ritzau/org-budget/pkg/hierarchy"
)

// Report is everything printed for one input file.
type Report struct {
	Input       string                  `json:"input"`
	Root        string                  `json:"root,omitempty"`
	Employees   int                     `json:"employees"`
	Edges       int                     `json:"edges"`
	Budgets     []budget.Line           `json:"budgets"`
	Selected    []budget.Line           `json:"selected,omitempty"`
	Unknown     []string                `json:"unknown,omitempty"` // requested ids not in the hierarchy
	Diagnostics []hierarchy.Diagnostic  `json:"diagnostics"`
	Cycles      []cycles.ReportingCycle `json:"cycles"`
	Adjacency   string                  `json:"adjacency"`
}

// NewReport computes the report for h. When selected is non-empty only those
// budgets are looked up; otherwise every employee's budget is listed.
func NewReport(input string, h *hierarchy.Hierarchy, selected []string) (*Report, error) {
	agg := budget.New(h)
	r := &Report{
		Input:       input,
		Employees:   h.Len(),
		Edges:       h.Graph().EdgesCount(),
		Budgets:     []budget.Line{},
		Diagnostics: h.Diagnostics(),
		Cycles:      cycles.FindReportingCycles(h),
		Adjacency:   h.Readable(),
	}
	if root, ok := h.Root(); ok {
		r.Root = root.ID
	}

	if len(selected) == 0 {
		r.Budgets = agg.All()
		return r, nil
	}

	for _, id := range selected {
		b, err := agg.Breakdown(id)
		if errors.Is(err, hierarchy.ErrEmployeeNotFound) {
			r.Unknown = append(r.Unknown, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		r.Selected = append(r.Selected, budget.Line{ID: b.ManagerID, Budget: b.Total, Headcount: len(b.Employees)})
	}
	return r, nil
}

// PrintReport writes a colourised report to w
func PrintReport(w io.Writer, r *Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(w, "Org Budget - Salary Report")
	bold.Fprintln(w, "==========================")
	fmt.Fprintf(w, "Input: %s\n", r.Input)
	if r.Root != "" {
		fmt.Fprintf(w, "Root: %s\n", r.Root)
	} else {
		red.Fprintln(w, "Root: none")
	}
	fmt.Fprintf(w, "Employees: %d, reporting lines: %d\n", r.Employees, r.Edges)
	fmt.Fprintln(w)

	if r.Selected != nil || r.Unknown != nil {
		bold.Fprintln(w, "BUDGETS:")
		for _, l := range r.Selected {
			cyan.Fprintf(w, "  %-12s", l.ID)
			fmt.Fprintf(w, " %12d  (%d employees)\n", l.Budget, l.Headcount)
		}
		for _, id := range r.Unknown {
			red.Fprintf(w, "  %-12s %12s  (no such employee)\n", id, "-")
		}
		fmt.Fprintln(w)
	} else if len(r.Budgets) > 0 {
		bold.Fprintln(w, "BUDGETS:")
		for _, l := range r.Budgets {
			cyan.Fprintf(w, "  %-12s", l.ID)
			fmt.Fprintf(w, " %12d  (%d employees)\n", l.Budget, l.Headcount)
		}
		fmt.Fprintln(w)
	}

	if len(r.Diagnostics) > 0 {
		yellow.Fprintf(w, "SKIPPED (%d):\n", len(r.Diagnostics))
		for _, d := range r.Diagnostics {
			yellow.Fprintf(w, "  line %d, record %d: ", d.Line, d.Column)
			fmt.Fprintf(w, "[%s] %s\n", d.Kind, d.Message)
		}
		fmt.Fprintln(w)
	}

	if len(r.Cycles) > 0 {
		red.Fprintf(w, "REPORTING CYCLES (%d):\n", len(r.Cycles))
		for i, c := range r.Cycles {
			fmt.Fprintf(w, "  Cycle %d: %v\n", i+1, c.EmployeeIDs)
		}
		fmt.Fprintln(w)
	}

	bold.Fprintln(w, "HIERARCHY:")
	fmt.Fprint(w, r.Adjacency)
	fmt.Fprintln(w)

	if len(r.Diagnostics) == 0 && len(r.Cycles) == 0 {
		green.Fprintln(w, "✓ All records accepted")
	} else {
		yellow.Fprintf(w, "Summary: %d record(s) or edge(s) skipped, %d cycle(s)\n", len(r.Diagnostics), len(r.Cycles))
	}
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
