package hierarchy

import "fmt"

// DiagnosticKind classifies why a record or an edge was rejected.
type DiagnosticKind string

const (
	KindEmptyID          DiagnosticKind = "empty_id"
	KindMalformedRecord  DiagnosticKind = "malformed_record"
	KindDuplicateRoot    DiagnosticKind = "duplicate_root"
	KindInvalidSalary    DiagnosticKind = "invalid_salary"
	KindDuplicateID      DiagnosticKind = "duplicate_id"
	KindUnknownManager   DiagnosticKind = "unknown_manager"
	KindMultipleManagers DiagnosticKind = "multiple_managers"
	KindCycle            DiagnosticKind = "cycle"
)

// Diagnostic describes a skipped record or rejected edge. Line and Column
// are 1-based; Column is the record's position within its line. Edge
// diagnostics carry the position of the employee's record.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Line       int            `json:"line"`
	Column     int            `json:"column"`
	Record     string         `json:"record"`
	EmployeeID string         `json:"employeeId,omitempty"`
	Message    string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d %s: %s", d.Line, d.Column, d.Kind, d.Message)
}

// DiagnosticSink receives diagnostics as they are produced.
type DiagnosticSink func(Diagnostic)
