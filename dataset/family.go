package dataset

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/clinsight/readmit/pkg/errors"
)

// Family identifies one comorbidity-index coding system and the column prefix
// its indicator variables carry in the patient table.
type Family struct {
	Name   string
	Prefix string
}

// The three predictor families compared by the pipeline.
var (
	Elixhauser = Family{Name: "elixhauser", Prefix: "elix_"}
	Charlson   = Family{Name: "charlson", Prefix: "cd_"}
	HCC        = Family{Name: "hcc", Prefix: "hcc_"}
)

// Families lists all predictor families in reporting order.
var Families = []Family{Elixhauser, Charlson, HCC}

// FormulaSpec names the outcome, the always-included covariates, and the
// family's candidate terms for one modeling frame.
type FormulaSpec struct {
	Outcome         string
	FixedCovariates []string
	FamilyTerms     []string
}

// ModelFrame is the per-family modeling view of the patient table: outcome,
// fixed covariates (standardized age, sex), and the family's indicator
// columns. All three strategies consume frames; per-cohort sub-frames come
// from Cohort.
type ModelFrame struct {
	Family  Family
	Formula FormulaSpec
	table   *Table
}

// SelectFamily builds the modeling frame for one predictor family. It fails
// with NoMatchingColumns when the family prefix matches no columns of the
// table.
func SelectFamily(tbl *Table, fam Family) (*ModelFrame, error) {
	if tbl == nil || tbl.NumRows() == 0 {
		return nil, errors.NewEmptyInput("dataset.SelectFamily", "patients")
	}

	var terms []string
	for _, name := range tbl.Columns() {
		if strings.HasPrefix(name, fam.Prefix) {
			terms = append(terms, name)
		}
	}
	if len(terms) == 0 {
		return nil, errors.NewNoMatchingColumns(fam.Name, fam.Prefix)
	}

	for _, required := range []string{OutcomeCol, AgeStdCol, SexCol} {
		if !tbl.HasColumn(required) {
			return nil, errors.Newf("readmit: dataset.SelectFamily: table missing column %q", required)
		}
	}

	return &ModelFrame{
		Family: fam,
		Formula: FormulaSpec{
			Outcome:         OutcomeCol,
			FixedCovariates: []string{AgeStdCol, SexCol},
			FamilyTerms:     terms,
		},
		table: tbl,
	}, nil
}

// NumRows returns the number of patient rows in the frame.
func (mf *ModelFrame) NumRows() int { return mf.table.NumRows() }

// Cohorts returns the distinct cohort labels present in the frame.
func (mf *ModelFrame) Cohorts() []string { return mf.table.Cohorts() }

// Cohort returns the sub-frame holding only the given cohort's rows. The
// formula is unchanged; only rows are filtered.
func (mf *ModelFrame) Cohort(id string) *ModelFrame {
	return &ModelFrame{
		Family:  mf.Family,
		Formula: mf.Formula,
		table:   mf.table.Select(mf.table.CohortRows(id)),
	}
}

// WithTable rebinds the frame's formula to another table carrying the same
// columns. Used to apply a frame built on the full table to the train
// partition.
func (mf *ModelFrame) WithTable(tbl *Table) *ModelFrame {
	return &ModelFrame{Family: mf.Family, Formula: mf.Formula, table: tbl}
}

// Outcome returns the outcome column as a vector.
func (mf *ModelFrame) Outcome() (*mat.VecDense, error) {
	col, err := mf.table.Col(mf.Formula.Outcome)
	if err != nil {
		return nil, err
	}
	y := mat.NewVecDense(len(col), nil)
	for i, v := range col {
		y.SetVec(i, v)
	}
	return y, nil
}

// Design builds the design matrix for the given term subset: a leading
// intercept column, the fixed covariates, then the requested family terms in
// order. Returned names parallel the columns.
func (mf *ModelFrame) Design(terms []string) (X *mat.Dense, names []string, err error) {
	n := mf.table.NumRows()
	if n == 0 {
		return nil, nil, errors.NewEmptyInput("ModelFrame.Design", "frame")
	}

	names = append(names, "(Intercept)")
	names = append(names, mf.Formula.FixedCovariates...)
	names = append(names, terms...)

	X = mat.NewDense(n, len(names), nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
	}
	for j, name := range names[1:] {
		col, err := mf.table.Col(name)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < n; i++ {
			X.Set(i, j+1, col[i])
		}
	}
	return X, names, nil
}

// NumFixed returns the number of non-term design columns (intercept plus
// fixed covariates). Penalty factors are zero for exactly these columns.
func (mf *ModelFrame) NumFixed() int {
	return 1 + len(mf.Formula.FixedCovariates)
}
