package hierarchy

import "fmt"

// Employee is one accepted record. The zero ManagerID marks the root.
type Employee struct {
	ID        string `json:"id"`
	ManagerID string `json:"managerId,omitempty"`
	Salary    int64  `json:"salary"`

	key string // identity, case-folded when configured
}

// Key implements graph.Keyed.
func (e Employee) Key() string { return e.key }

// Label implements graph.Labeled.
func (e Employee) Label() string { return e.ID }

// IsRoot reports whether the employee has no manager.
func (e Employee) IsRoot() bool { return e.ManagerID == "" }

func (e Employee) String() string {
	if e.IsRoot() {
		return fmt.Sprintf("%s (root, %d)", e.ID, e.Salary)
	}
	return fmt.Sprintf("%s (reports to %s, %d)", e.ID, e.ManagerID, e.Salary)
}
