package selection

import (
	"log/slog"

	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/glm"
	"github.com/clinsight/readmit/pkg/errors"
	"github.com/clinsight/readmit/pkg/log"
)

// Stepwise is the forward stepwise strategy: starting from the fixed-covariate
// model, greedily add the family term whose inclusion most lowers AIC, stopping
// when no term improves it or the step budget runs out.
type Stepwise struct{}

// Name implements Strategy.
func (Stepwise) Name() string { return "stepwise" }

// Select runs the greedy AIC search on one cohort's frame.
func (s Stepwise) Select(frame *dataset.ModelFrame, cohort string, cfg Config) (*Result, error) {
	terms := frame.Formula.FamilyTerms
	if len(terms) == 0 {
		return nil, errors.NewInsufficientPredictors(s.Name(), frame.Family.Name)
	}

	y, err := frame.Outcome()
	if err != nil {
		return nil, err
	}
	fitter := glm.NewLogistic()

	// Both bound models must converge before a search is meaningful; a
	// divergent bound fails the whole unit.
	lowerX, lowerNames, err := frame.Design(nil)
	if err != nil {
		return nil, err
	}
	lowerFit, err := fitter.Fit(lowerX, y, lowerNames)
	if err != nil {
		return nil, errors.Wrap(err, "stepwise lower bound model")
	}
	upperX, upperNames, err := frame.Design(terms)
	if err != nil {
		return nil, err
	}
	if _, err := fitter.Fit(upperX, y, upperNames); err != nil {
		return nil, errors.Wrap(err, "stepwise upper bound model")
	}

	maxSteps := cfg.StepwiseMaxSteps
	if maxSteps <= 0 {
		maxSteps = 15
	}

	var included []string
	inModel := make(map[string]bool)
	bestAIC := lowerFit.AIC()
	bestFit := lowerFit

	for step := 0; step < maxSteps; step++ {
		var stepBest *glm.Result
		var stepTerm string
		stepAIC := bestAIC

		// Candidates are scanned in frame order so exact AIC ties resolve to
		// the earliest candidate.
		for _, cand := range terms {
			if inModel[cand] {
				continue
			}
			trial := append(append([]string{}, included...), cand)
			X, names, err := frame.Design(trial)
			if err != nil {
				return nil, err
			}
			fit, err := fitter.Fit(X, y, names)
			if err != nil {
				// A single non-convergent candidate is skipped, not fatal;
				// only the bound models gate the search.
				slog.Debug("stepwise candidate skipped",
					log.CohortKey, cohort, "term", cand, log.ErrAttr(err))
				continue
			}
			if aic := fit.AIC(); aic < stepAIC {
				stepAIC = aic
				stepBest = fit
				stepTerm = cand
			}
		}

		if stepBest == nil {
			break
		}
		included = append(included, stepTerm)
		inModel[stepTerm] = true
		bestAIC = stepAIC
		bestFit = stepBest
	}

	res := &Result{
		Strategy: s.Name(),
		Family:   frame.Family.Name,
		Cohort:   cohort,
	}

	// Report retained family terms only: odds ratio, Wald 95% bounds, p-value.
	or := bestFit.OddsRatios()
	lower, upper := bestFit.ConfInt(0.95)
	pv := bestFit.PValues()
	pos := make(map[string]int, len(bestFit.Names))
	for j, name := range bestFit.Names {
		pos[name] = j
	}
	for _, term := range included {
		j := pos[term]
		res.Terms = append(res.Terms, TermResult{
			Term:     term,
			Estimate: or[j],
			Lower:    lower[j],
			Upper:    upper[j],
			PValue:   pv[j],
			HasCI:    true,
		})
	}
	return res, nil
}
