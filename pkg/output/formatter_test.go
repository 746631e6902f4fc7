package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/org-budget/pkg/hierarchy"
)

func init() {
	color.NoColor = true
}

func build(t *testing.T, lines ...string) *hierarchy.Hierarchy {
	t.Helper()
	h, err := hierarchy.Build(lines)
	require.NoError(t, err)
	return h
}

func TestNewReportAllBudgets(t *testing.T) {
	h := build(t, "E1,,100\tE2,E1,50\tE3,E1,30\tE4,E2,10")

	r, err := NewReport("org.tsv", h, nil)
	require.NoError(t, err)

	assert.Equal(t, "E1", r.Root)
	assert.Equal(t, 4, r.Employees)
	assert.Equal(t, 3, r.Edges)
	require.Len(t, r.Budgets, 4)
	assert.Equal(t, int64(190), r.Budgets[0].Budget)
	assert.Nil(t, r.Selected)
	assert.Empty(t, r.Cycles)
}

func TestNewReportSelected(t *testing.T) {
	h := build(t, "E1,,100\tE2,E1,50\tE3,E1,30\tE4,E2,10")

	r, err := NewReport("org.tsv", h, []string{"E2", "X9"})
	require.NoError(t, err)

	assert.Empty(t, r.Budgets)
	require.Len(t, r.Selected, 1)
	assert.Equal(t, "E2", r.Selected[0].ID)
	assert.Equal(t, int64(60), r.Selected[0].Budget)
	assert.Equal(t, 2, r.Selected[0].Headcount)
	assert.Equal(t, []string{"X9"}, r.Unknown)
}

func TestPrintReport(t *testing.T) {
	h := build(t, "E1,,100\tE2,E1,50\tE3,,10\tE4,E1,abc")

	r, err := NewReport("org.tsv", h, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintReport(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Input: org.tsv")
	assert.Contains(t, out, "Root: E1")
	assert.Contains(t, out, "[duplicate_root]")
	assert.Contains(t, out, "[invalid_salary]")
	assert.Contains(t, out, "E1: [E2]\n")
	assert.Contains(t, out, "Summary: 2 record(s) or edge(s) skipped, 0 cycle(s)")
}

func TestPrintReportClean(t *testing.T) {
	r, err := NewReport("org.tsv", build(t, "E1,,100"), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintReport(&buf, r)
	assert.Contains(t, buf.String(), "All records accepted")
}

func TestWriteJSON(t *testing.T) {
	r, err := NewReport("org.tsv", build(t, "E1,,100\tE2,E1,50"), []string{"E1"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "E1", decoded.Root)
	require.Len(t, decoded.Selected, 1)
	assert.Equal(t, int64(150), decoded.Selected[0].Budget)
}
