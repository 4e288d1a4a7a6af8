package selection

import (
	"github.com/clinsight/readmit/core/parallel"
	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/glm"
	"github.com/clinsight/readmit/metrics"
	"github.com/clinsight/readmit/pkg/errors"
)

// Lasso is the cross-validated L1 strategy: k-fold search over a descending
// penalty grid, fixed covariates never penalized, coefficients reported raw.
type Lasso struct{}

// Name implements Strategy.
func (Lasso) Name() string { return "lasso" }

// Select runs the cross-validated penalty search on one cohort's frame.
func (l Lasso) Select(frame *dataset.ModelFrame, cohort string, cfg Config) (*Result, error) {
	terms := frame.Formula.FamilyTerms
	if len(terms) == 0 {
		return nil, errors.NewInsufficientPredictors(l.Name(), frame.Family.Name)
	}

	y, err := frame.Outcome()
	if err != nil {
		return nil, err
	}
	X, names, err := frame.Design(terms)
	if err != nil {
		return nil, err
	}
	n, p := X.Dims()

	// Penalty factors: zero for intercept and fixed covariates, one for
	// every family term.
	penalty := make([]float64, p)
	for j := frame.NumFixed(); j < p; j++ {
		penalty[j] = 1
	}

	folds := KFoldSplit(n, cfg.LassoFolds, cfg.Seed)
	if err := checkFolds(folds, y); err != nil {
		return nil, err
	}

	grid := glm.PenaltyGrid(cfg.PenaltyHi, cfg.PenaltyLo, cfg.PenaltyCount)

	// Held-out deviance per fold per penalty. Folds are independent and run
	// on the shared worker cap; each fold writes only its own row.
	dev := make([][]float64, len(folds))
	foldErrs := make([]error, len(folds))
	workers := cfg.FoldWorkers
	if workers < 1 {
		workers = 1
	}
	parallel.ForEach(len(folds), workers, func(f int) {
		fold := folds[f]
		trainX, trainY := subsetRows(X, y, fold.Train)
		testX, testY := subsetRows(X, y, fold.Test)

		row := make([]float64, len(grid))
		for g, lambda := range grid {
			fit, err := glm.FitPenalized(trainX, trainY, lambda, penalty, names)
			if err != nil {
				foldErrs[f] = errors.Wrapf(err, "fold %d penalty %g", f, lambda)
				return
			}
			d, err := metrics.BinomialDeviance(testY, fit.PredictProba(testX))
			if err != nil {
				foldErrs[f] = err
				return
			}
			row[g] = d
		}
		dev[f] = row
	})
	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}

	// Mean cross-validated deviance; grid is descending, so exact ties keep
	// the larger (more parsimonious) penalty.
	bestG := 0
	bestDev := meanAt(dev, 0)
	for g := 1; g < len(grid); g++ {
		if d := meanAt(dev, g); d < bestDev {
			bestDev = d
			bestG = g
		}
	}

	final, err := glm.FitPenalized(X, y, grid[bestG], penalty, names)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Strategy: l.Name(),
		Family:   frame.Family.Name,
		Cohort:   cohort,
	}
	coefOf := make(map[string]float64, p)
	for j, name := range final.Names {
		coefOf[name] = final.Coef[j]
	}
	for _, term := range terms {
		c := coefOf[term]
		if c != 0 {
			// Raw coefficient, not an odds ratio: shrunk estimates are
			// conventionally reported unexponentiated.
			res.Terms = append(res.Terms, TermResult{Term: term, Estimate: c})
		} else {
			res.ZeroTerms = append(res.ZeroTerms, term)
		}
	}
	return res, nil
}

// meanAt averages column g of a ragged fold-by-penalty matrix.
func meanAt(dev [][]float64, g int) float64 {
	var sum float64
	for _, row := range dev {
		sum += row[g]
	}
	return sum / float64(len(dev))
}
