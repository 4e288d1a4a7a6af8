// Package report turns per-unit selection results into the comparison
// artifacts the analysis ships: wide per-cohort tables, flat-file exports,
// a run manifest, and RFE diagnostic plots.
package report

import (
	"sort"
	"strings"

	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/selection"
)

// WideTable is one (strategy, family) comparison table: one row per term,
// one column per cohort. A term absent from a cohort's result carries no
// entry for that cohort (absence is encoded by omission, not by zero).
type WideTable struct {
	Strategy string
	Family   string
	Terms    []string // row labels, sorted
	Cohorts  []string // column labels, sorted

	values map[string]map[string]float64 // term -> cohort -> metric
}

// Value returns the metric for (term, cohort) and whether the term was
// present in that cohort's result.
func (w *WideTable) Value(term, cohort string) (float64, bool) {
	row, ok := w.values[term]
	if !ok {
		return 0, false
	}
	v, ok := row[cohort]
	return v, ok
}

// CleanTerm strips the family prefix and the boolean-level artifact some
// upstream encodings append to indicator names, so "elix_CHFTRUE" reports
// as "CHF". Fixed covariates and already-clean names pass through.
func CleanTerm(term, familyPrefix string) string {
	label := strings.TrimPrefix(term, familyPrefix)
	label = strings.TrimSuffix(label, "TRUE")
	return label
}

// Normalize pivots one family's per-cohort results for a single strategy into
// a wide comparison table. All results must share the strategy and family.
// Row and column order are sorted by label, so identical input sets always
// produce identical tables.
func Normalize(results []*selection.Result, fam dataset.Family) *WideTable {
	w := &WideTable{
		Family: fam.Name,
		values: make(map[string]map[string]float64),
	}
	cohortSet := make(map[string]bool)
	for _, res := range results {
		if res == nil {
			continue
		}
		w.Strategy = res.Strategy
		cohortSet[res.Cohort] = true
		for _, tr := range res.Terms {
			label := CleanTerm(tr.Term, fam.Prefix)
			row, ok := w.values[label]
			if !ok {
				row = make(map[string]float64)
				w.values[label] = row
			}
			row[res.Cohort] = tr.Estimate
		}
	}

	for term := range w.values {
		w.Terms = append(w.Terms, term)
	}
	sort.Strings(w.Terms)
	for cohort := range cohortSet {
		w.Cohorts = append(w.Cohorts, cohort)
	}
	sort.Strings(w.Cohorts)
	return w
}

// ApplyLabels substitutes human-readable labels for term rows where the
// mapping has one, re-sorting rows by the new labels. Unmapped terms keep
// their cleaned names.
func (w *WideTable) ApplyLabels(labels map[string]string) {
	if len(labels) == 0 {
		return
	}
	renamed := make(map[string]map[string]float64, len(w.values))
	terms := make([]string, 0, len(w.Terms))
	for _, term := range w.Terms {
		label := term
		if l, ok := labels[term]; ok {
			label = l
		}
		renamed[label] = w.values[term]
		terms = append(terms, label)
	}
	sort.Strings(terms)
	w.Terms = terms
	w.values = renamed
}

// NeverSelected returns the family terms the lasso shrank to zero in every
// cohort, cleaned of the family prefix and sorted. Terms selected in even
// one cohort are excluded.
func NeverSelected(results []*selection.Result, fam dataset.Family) []string {
	zeroEverywhere := make(map[string]int)
	selectedSomewhere := make(map[string]bool)
	n := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		n++
		for _, z := range res.ZeroTerms {
			zeroEverywhere[z]++
		}
		for _, tr := range res.Terms {
			selectedSomewhere[tr.Term] = true
		}
	}

	var never []string
	for term, count := range zeroEverywhere {
		if count == n && !selectedSomewhere[term] {
			never = append(never, CleanTerm(term, fam.Prefix))
		}
	}
	sort.Strings(never)
	return never
}
