// Package budget sums salaries over the reporting subtree of a manager.
package budget

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ritzau/org-budget/pkg/hierarchy"
	"github.com/ritzau/org-budget/pkg/logging"
)

// Aggregator answers budget queries against one hierarchy. It only reads.
type Aggregator struct {
	h      *hierarchy.Hierarchy
	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sends lookup failures to logger instead of the package logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// Breakdown is a budget together with the employees it covers, in walk order.
type Breakdown struct {
	ManagerID string               `json:"managerId"`
	Total     int64                `json:"total"`
	Employees []hierarchy.Employee `json:"employees"`
}

// Line is one row of All.
type Line struct {
	ID        string `json:"id"`
	Budget    int64  `json:"budget"`
	Headcount int    `json:"headcount"`
}

// New creates an aggregator over h.
func New(h *hierarchy.Hierarchy, opts ...Option) *Aggregator {
	a := &Aggregator{h: h}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return logging.Logger()
}

// SalaryBudget returns the salary of managerID plus everyone reachable below
// it. An unknown manager is logged and yields 0.
func (a *Aggregator) SalaryBudget(managerID string) int64 {
	total, err := a.Budget(managerID)
	if err != nil {
		a.log().Warn("could not compute salary budget", "manager", managerID, "error", err)
		return 0
	}
	return total
}

// Budget is SalaryBudget with the not-found failure returned to the caller.
func (a *Aggregator) Budget(managerID string) (int64, error) {
	b, err := a.Breakdown(managerID)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// Breakdown walks the subtree under managerID. The manager is always first.
func (a *Aggregator) Breakdown(managerID string) (*Breakdown, error) {
	manager, ok := a.h.Employee(managerID)
	if !ok {
		return nil, fmt.Errorf("budget for %s: %w", managerID, hierarchy.ErrEmployeeNotFound)
	}

	walk, err := a.h.Graph().DepthFirstWalkFrom(manager)
	if err != nil {
		return nil, fmt.Errorf("budget for %s: %w", managerID, err)
	}

	b := &Breakdown{ManagerID: manager.ID, Employees: walk}
	for _, e := range walk {
		b.Total += e.Salary
	}
	return b, nil
}

// All computes the budget of every employee, largest first, ties by id.
func (a *Aggregator) All() []Line {
	employees := a.h.Employees()
	lines := make([]Line, 0, len(employees))
	for _, e := range employees {
		b, err := a.Breakdown(e.ID)
		if err != nil {
			a.log().Error("employee vanished from hierarchy", "employee", e.ID, "error", err)
			continue
		}
		lines = append(lines, Line{ID: e.ID, Budget: b.Total, Headcount: len(b.Employees)})
	}

	slices.SortFunc(lines, func(x, y Line) int {
		if c := cmp.Compare(y.Budget, x.Budget); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return lines
}
