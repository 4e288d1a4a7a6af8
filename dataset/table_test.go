package dataset

import (
	"math"
	"path/filepath"
	"testing"
)

func buildTable(t *testing.T, nRows int, cohorts []string, cols map[string][]float64) *Table {
	t.Helper()
	tbl := NewTable(nRows)
	for _, name := range []string{OutcomeCol, AgeCol, SexCol} {
		if vals, ok := cols[name]; ok {
			if err := tbl.AddColumn(name, vals); err != nil {
				t.Fatalf("AddColumn(%s) failed: %v", name, err)
			}
			delete(cols, name)
		}
	}
	for name, vals := range cols {
		if err := tbl.AddColumn(name, vals); err != nil {
			t.Fatalf("AddColumn(%s) failed: %v", name, err)
		}
	}
	if err := tbl.SetCohorts(cohorts); err != nil {
		t.Fatalf("SetCohorts failed: %v", err)
	}
	return tbl
}

func TestTable_CohortRows(t *testing.T) {
	tbl := buildTable(t, 5,
		[]string{"A", "B", "A", "B", "A"},
		map[string][]float64{
			OutcomeCol: {0, 1, 0, 1, 1},
			AgeCol:     {60, 70, 80, 65, 75},
			SexCol:     {0, 1, 0, 1, 0},
		})

	rows := tbl.CohortRows("A")
	want := []int{0, 2, 4}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d: expected index %d, got %d", i, want[i], rows[i])
		}
	}

	cohorts := tbl.Cohorts()
	if len(cohorts) != 2 || cohorts[0] != "A" || cohorts[1] != "B" {
		t.Errorf("expected sorted cohorts [A B], got %v", cohorts)
	}
}

func TestTable_StandardizeAge(t *testing.T) {
	tbl := buildTable(t, 4,
		[]string{"A", "A", "A", "A"},
		map[string][]float64{
			OutcomeCol: {0, 0, 1, 1},
			AgeCol:     {50, 60, 70, 80},
			SexCol:     {0, 1, 0, 1},
		})

	if err := tbl.StandardizeAge(); err != nil {
		t.Fatalf("StandardizeAge failed: %v", err)
	}
	scaled, err := tbl.Col(AgeStdCol)
	if err != nil {
		t.Fatalf("missing %s column: %v", AgeStdCol, err)
	}

	var sum, ss float64
	for _, v := range scaled {
		sum += v
	}
	mean := sum / float64(len(scaled))
	for _, v := range scaled {
		ss += (v - mean) * (v - mean)
	}
	variance := ss / float64(len(scaled))

	if math.Abs(mean) > 1e-12 {
		t.Errorf("expected zero mean, got %v", mean)
	}
	if math.Abs(variance-1) > 1e-12 {
		t.Errorf("expected unit variance, got %v", variance)
	}
}

func TestTable_Validate_RejectsNonBinaryOutcome(t *testing.T) {
	tbl := buildTable(t, 2,
		[]string{"A", "A"},
		map[string][]float64{
			OutcomeCol: {0, 2},
			AgeCol:     {50, 60},
			SexCol:     {0, 1},
		})
	if err := tbl.Validate(); err == nil {
		t.Error("expected validation error for non-binary outcome")
	}
}

func TestTable_GobRoundTrip(t *testing.T) {
	tbl := buildTable(t, 3,
		[]string{"A", "B", "A"},
		map[string][]float64{
			OutcomeCol:  {0, 1, 1},
			AgeCol:      {55, 65, 75},
			SexCol:      {1, 0, 1},
			"elix_chf":  {1, 0, 1},
			"elix_diab": {0, 0, 1},
		})

	path := filepath.Join(t.TempDir(), "patients.gob")
	if err := SaveGob(tbl, path); err != nil {
		t.Fatalf("SaveGob failed: %v", err)
	}
	got, err := LoadGob(path)
	if err != nil {
		t.Fatalf("LoadGob failed: %v", err)
	}

	if got.NumRows() != tbl.NumRows() {
		t.Fatalf("row count mismatch: %d vs %d", got.NumRows(), tbl.NumRows())
	}
	for _, name := range tbl.Columns() {
		want, _ := tbl.Col(name)
		have, err := got.Col(name)
		if err != nil {
			t.Fatalf("column %s lost in round trip: %v", name, err)
		}
		for i := range want {
			if want[i] != have[i] {
				t.Errorf("column %s row %d: %v != %v", name, i, have[i], want[i])
			}
		}
	}
	for i := 0; i < tbl.NumRows(); i++ {
		if got.CohortOf(i) != tbl.CohortOf(i) {
			t.Errorf("cohort of row %d lost in round trip", i)
		}
	}
}
