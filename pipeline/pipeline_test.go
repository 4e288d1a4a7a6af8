package pipeline

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/clinsight/readmit/dataset"
)

// twoCohortTable builds the reference test scenario: cohorts A (100 rows) and
// B (60 rows) with five elixhauser indicator columns, the first two carrying
// real effects.
func twoCohortTable(t *testing.T, seed uint64) *dataset.Table {
	t.Helper()

	n := 160
	rng := rand.New(rand.NewPCG(seed, seed))
	termNames := []string{"elix_chf", "elix_dm", "elix_arrhy", "elix_htn", "elix_obese"}
	coefs := []float64{1.2, 0.9, 0, 0, 0}

	cohorts := make([]string, n)
	for i := range cohorts {
		if i < 100 {
			cohorts[i] = "A"
		} else {
			cohorts[i] = "B"
		}
	}

	terms := make([][]float64, len(termNames))
	for j := range terms {
		terms[j] = make([]float64, n)
		for i := 0; i < n; i++ {
			if rng.Float64() < 0.35 {
				terms[j][i] = 1
			}
		}
	}
	age := make([]float64, n)
	sex := make([]float64, n)
	outcome := make([]float64, n)
	for i := 0; i < n; i++ {
		age[i] = 55 + 12*rng.NormFloat64()
		if rng.Float64() < 0.5 {
			sex[i] = 1
		}
		eta := -0.6 + 0.25*sex[i]
		for j, c := range coefs {
			eta += c * terms[j][i]
		}
		if rng.Float64() < 1/(1+math.Exp(-eta)) {
			outcome[i] = 1
		}
	}

	tbl := dataset.NewTable(n)
	if err := tbl.SetCohorts(cohorts); err != nil {
		t.Fatalf("SetCohorts: %v", err)
	}
	cols := []struct {
		name   string
		values []float64
	}{
		{dataset.OutcomeCol, outcome},
		{dataset.AgeCol, age},
		{dataset.SexCol, sex},
	}
	for _, c := range cols {
		if err := tbl.AddColumn(c.name, c.values); err != nil {
			t.Fatalf("AddColumn(%s): %v", c.name, err)
		}
	}
	for j, name := range termNames {
		if err := tbl.AddColumn(name, terms[j]); err != nil {
			t.Fatalf("AddColumn(%s): %v", name, err)
		}
	}
	return tbl
}

func testRunConfig() Config {
	cfg := DefaultConfig()
	cfg.Families = []string{"elixhauser"}
	cfg.MaxWorkers = 2
	cfg.Selection.LassoFolds = 5
	cfg.Selection.PenaltyCount = 20
	cfg.Selection.ForestTrees = 30
	cfg.Selection.ForestFolds = 3
	return cfg
}

func TestRun_StepwiseScenario(t *testing.T) {
	tbl := twoCohortTable(t, 7)
	rr, err := Run(testRunConfig(), tbl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Cohort-proportional partition: 75 of 100 plus 45 of 60.
	if rr.TrainRows != 120 || rr.TestRows != 40 {
		t.Errorf("partition %d/%d, want 120/40", rr.TrainRows, rr.TestRows)
	}
	if len(rr.Manifest.Units) != 6 {
		t.Fatalf("%d units in manifest, want 6 (3 strategies x 2 cohorts)", len(rr.Manifest.Units))
	}

	res, ok := rr.Results[Unit{Strategy: "stepwise", Family: "elixhauser", Cohort: "A"}]
	if !ok {
		t.Fatalf("stepwise cohort A failed: %v", rr.Manifest.Failed())
	}
	familyTerms := map[string]bool{
		"elix_chf": true, "elix_dm": true, "elix_arrhy": true, "elix_htn": true, "elix_obese": true,
	}
	for _, tr := range res.Terms {
		if !familyTerms[tr.Term] {
			t.Errorf("selected term %q outside the family set", tr.Term)
		}
		if tr.Estimate <= 0 {
			t.Errorf("%s: odds ratio %.3f, want strictly positive", tr.Term, tr.Estimate)
		}
		if tr.Lower > tr.Estimate || tr.Estimate > tr.Upper {
			t.Errorf("%s: point %.3f outside [%.3f, %.3f]", tr.Term, tr.Estimate, tr.Lower, tr.Upper)
		}
	}
}

func TestRun_MissingFamilyFailsItsUnitsOnly(t *testing.T) {
	tbl := twoCohortTable(t, 11)
	cfg := testRunConfig()
	cfg.Families = []string{"elixhauser", "hcc"}

	rr, err := Run(cfg, tbl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// No hcc_ columns exist: every hcc unit is a recorded failure with no
	// downstream result, and elixhauser units are untouched.
	for unit := range rr.Results {
		if unit.Family == "hcc" {
			t.Errorf("unexpected result for missing family: %+v", unit)
		}
	}
	var hccFailures int
	for _, u := range rr.Manifest.Failed() {
		if u.Family == "hcc" {
			hccFailures++
		}
	}
	if hccFailures != 3 {
		t.Errorf("%d hcc failures recorded, want 3 (one per strategy)", hccFailures)
	}
	if len(rr.ByStrategyFamily("stepwise", "elixhauser")) == 0 {
		t.Error("elixhauser units should still have run")
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := testRunConfig()
	cfg.Strategies = []string{"stepwise", "lasso"}

	a, err := Run(cfg, twoCohortTable(t, 7))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(cfg, twoCohortTable(t, 7))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(a.Results) != len(b.Results) {
		t.Fatalf("result counts differ: %d vs %d", len(a.Results), len(b.Results))
	}
	for unit, ra := range a.Results {
		rb, ok := b.Results[unit]
		if !ok {
			t.Fatalf("unit %+v missing from second run", unit)
		}
		if len(ra.Terms) != len(rb.Terms) {
			t.Errorf("%+v: term counts differ", unit)
			continue
		}
		for i := range ra.Terms {
			if ra.Terms[i].Term != rb.Terms[i].Term || ra.Terms[i].Estimate != rb.Terms[i].Estimate {
				t.Errorf("%+v: term %d differs between identical runs", unit, i)
			}
		}
	}
}

func TestRun_EmptyTableIsFatal(t *testing.T) {
	tbl := dataset.NewTable(0)
	if _, err := Run(testRunConfig(), tbl); err == nil {
		t.Fatal("expected fatal error for empty input")
	}
}

func TestExport_WritesTablesAndManifest(t *testing.T) {
	tbl := twoCohortTable(t, 7)
	rr, err := Run(testRunConfig(), tbl)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	dir := t.TempDir()
	if err := Export(dir, rr, map[string]string{"chf": "Congestive heart failure"}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, name := range []string{"stepwise_elixhauser.csv", "lasso_elixhauser.csv", "forest_elixhauser.csv", "manifest.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected export %s: %v", name, err)
		}
	}
	for _, cohort := range []string{"A", "B"} {
		if _, ok := rr.Results[Unit{Strategy: "forest", Family: "elixhauser", Cohort: cohort}]; !ok {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, "rfe_elixhauser_"+cohort+".png")); err != nil {
			t.Errorf("expected RFE plot for cohort %s: %v", cohort, err)
		}
	}
}
