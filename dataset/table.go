// Package dataset holds the patient-level table and the operations the
// pipeline performs on it before any model is fit: loading, age
// standardization, cohort-stratified partitioning, and predictor-family
// selection.
package dataset

import (
	"math"
	"sort"

	"github.com/clinsight/readmit/pkg/errors"
)

// Well-known column names of the patient table.
const (
	CohortCol  = "cohort"
	OutcomeCol = "isreadmit30dc"
	AgeCol     = "agyradm"
	AgeStdCol  = "agyradm_s"
	SexCol     = "sex"
)

// Table is a column-oriented patient table: one row per hospital admission,
// numeric columns keyed by name, and a per-row cohort label. Indicator and
// outcome columns are 0/1 valued; every row belongs to exactly one cohort.
type Table struct {
	names  []string
	cols   map[string][]float64
	cohort []string
	nRows  int
}

// NewTable creates an empty table expecting nRows rows per column.
func NewTable(nRows int) *Table {
	return &Table{
		cols:  make(map[string][]float64),
		nRows: nRows,
	}
}

// NumRows returns the number of patient rows.
func (t *Table) NumRows() int { return t.nRows }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Col returns the named column. The returned slice is shared, not copied;
// callers must treat it as read-only.
func (t *Table) Col(name string) ([]float64, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, errors.Newf("readmit: table has no column %q", name)
	}
	return col, nil
}

// AddColumn appends a column. The column length must match the table's row
// count. Re-adding an existing name replaces its values and keeps its order.
func (t *Table) AddColumn(name string, values []float64) error {
	if len(values) != t.nRows {
		return errors.NewDimension("Table.AddColumn", t.nRows, len(values), 0)
	}
	if _, exists := t.cols[name]; !exists {
		t.names = append(t.names, name)
	}
	t.cols[name] = values
	return nil
}

// SetCohorts assigns the per-row cohort labels.
func (t *Table) SetCohorts(labels []string) error {
	if len(labels) != t.nRows {
		return errors.NewDimension("Table.SetCohorts", t.nRows, len(labels), 0)
	}
	t.cohort = labels
	return nil
}

// CohortOf returns the cohort label of row i.
func (t *Table) CohortOf(i int) string { return t.cohort[i] }

// Cohorts returns the distinct cohort labels in sorted order.
func (t *Table) Cohorts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range t.cohort {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// CohortRows returns the row indices belonging to the given cohort, in row
// order.
func (t *Table) CohortRows(cohort string) []int {
	var rows []int
	for i, c := range t.cohort {
		if c == cohort {
			rows = append(rows, i)
		}
	}
	return rows
}

// Select returns a new table holding the given rows of every column, in the
// given order. Column values are copied, so the subset owns its data.
func (t *Table) Select(rows []int) *Table {
	sub := NewTable(len(rows))
	for _, name := range t.names {
		src := t.cols[name]
		vals := make([]float64, len(rows))
		for k, i := range rows {
			vals[k] = src[i]
		}
		// Length matches by construction.
		_ = sub.AddColumn(name, vals)
	}
	if t.cohort != nil {
		labels := make([]string, len(rows))
		for k, i := range rows {
			labels[k] = t.cohort[i]
		}
		sub.cohort = labels
	}
	return sub
}

// StandardizeAge derives agyradm_s from agyradm: zero mean, unit variance,
// computed over the whole table. Runs once before partitioning so train and
// test share the same scale.
func (t *Table) StandardizeAge() error {
	age, err := t.Col(AgeCol)
	if err != nil {
		return err
	}
	if t.nRows == 0 {
		return errors.NewEmptyInput("Table.StandardizeAge", "table")
	}

	var sum float64
	for _, v := range age {
		sum += v
	}
	mean := sum / float64(t.nRows)

	var ss float64
	for _, v := range age {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(t.nRows))
	if std < 1e-8 {
		std = 1.0
	}

	scaled := make([]float64, t.nRows)
	for i, v := range age {
		scaled[i] = (v - mean) / std
	}
	return t.AddColumn(AgeStdCol, scaled)
}

// Validate checks the structural invariants the pipeline depends on: the
// table is non-empty, has cohort labels, and the outcome column is 0/1.
func (t *Table) Validate() error {
	if t.nRows == 0 {
		return errors.NewEmptyInput("Table.Validate", "table")
	}
	if t.cohort == nil {
		return errors.New("readmit: table has no cohort labels")
	}
	outcome, err := t.Col(OutcomeCol)
	if err != nil {
		return err
	}
	for i, v := range outcome {
		if v != 0 && v != 1 {
			return errors.Newf("readmit: outcome at row %d is %g, want 0 or 1", i, v)
		}
	}
	return nil
}
