package dataset

import (
	"testing"

	xerrors "github.com/clinsight/readmit/pkg/errors"
)

func familyTable(t *testing.T) *Table {
	t.Helper()
	tbl := buildTable(t, 6,
		[]string{"A", "A", "B", "B", "A", "B"},
		map[string][]float64{
			OutcomeCol:  {0, 1, 0, 1, 1, 0},
			AgeCol:      {55, 60, 65, 70, 75, 80},
			SexCol:      {0, 1, 0, 1, 1, 0},
			"elix_chf":  {1, 0, 0, 1, 1, 0},
			"elix_diab": {0, 1, 0, 0, 1, 1},
			"cd_mi":     {0, 0, 1, 1, 0, 0},
		})
	if err := tbl.StandardizeAge(); err != nil {
		t.Fatalf("StandardizeAge: %v", err)
	}
	return tbl
}

func TestSelectFamily_TermsAndFixed(t *testing.T) {
	tbl := familyTable(t)

	mf, err := SelectFamily(tbl, Elixhauser)
	if err != nil {
		t.Fatalf("SelectFamily failed: %v", err)
	}

	if len(mf.Formula.FamilyTerms) != 2 {
		t.Fatalf("expected 2 elixhauser terms, got %v", mf.Formula.FamilyTerms)
	}
	for _, term := range mf.Formula.FamilyTerms {
		if term != "elix_chf" && term != "elix_diab" {
			t.Errorf("unexpected family term %q", term)
		}
	}
	if mf.Formula.Outcome != OutcomeCol {
		t.Errorf("expected outcome %q, got %q", OutcomeCol, mf.Formula.Outcome)
	}
	if mf.NumFixed() != 3 {
		t.Errorf("expected 3 fixed design columns (intercept, age, sex), got %d", mf.NumFixed())
	}
}

func TestSelectFamily_NoMatchingColumns(t *testing.T) {
	tbl := familyTable(t)

	_, err := SelectFamily(tbl, HCC)
	if err == nil {
		t.Fatal("expected NoMatchingColumns for hcc_ prefix")
	}
	var target *xerrors.NoMatchingColumnsError
	if !xerrors.As(err, &target) {
		t.Fatalf("expected NoMatchingColumnsError, got %v", err)
	}
	if target.Prefix != "hcc_" {
		t.Errorf("expected prefix hcc_, got %q", target.Prefix)
	}
}

func TestModelFrame_CohortFilter(t *testing.T) {
	tbl := familyTable(t)
	mf, err := SelectFamily(tbl, Elixhauser)
	if err != nil {
		t.Fatalf("SelectFamily failed: %v", err)
	}

	sub := mf.Cohort("A")
	if sub.NumRows() != 3 {
		t.Errorf("expected 3 rows in cohort A, got %d", sub.NumRows())
	}
	y, err := sub.Outcome()
	if err != nil {
		t.Fatalf("Outcome failed: %v", err)
	}
	want := []float64{0, 1, 1}
	for i, w := range want {
		if y.AtVec(i) != w {
			t.Errorf("outcome row %d: expected %v, got %v", i, w, y.AtVec(i))
		}
	}
}

func TestModelFrame_Design(t *testing.T) {
	tbl := familyTable(t)
	mf, err := SelectFamily(tbl, Elixhauser)
	if err != nil {
		t.Fatalf("SelectFamily failed: %v", err)
	}

	X, names, err := mf.Design([]string{"elix_chf"})
	if err != nil {
		t.Fatalf("Design failed: %v", err)
	}

	r, c := X.Dims()
	if r != 6 || c != 4 {
		t.Fatalf("expected 6x4 design, got %dx%d", r, c)
	}
	wantNames := []string{"(Intercept)", AgeStdCol, SexCol, "elix_chf"}
	for i, w := range wantNames {
		if names[i] != w {
			t.Errorf("design column %d: expected %q, got %q", i, w, names[i])
		}
	}
	for i := 0; i < r; i++ {
		if X.At(i, 0) != 1 {
			t.Errorf("intercept column must be all ones, row %d is %v", i, X.At(i, 0))
		}
	}
	chf, _ := tbl.Col("elix_chf")
	for i := 0; i < r; i++ {
		if X.At(i, 3) != chf[i] {
			t.Errorf("term column mismatch at row %d", i)
		}
	}
}
