package selection

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/clinsight/readmit/core/parallel"
	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/forest"
	"github.com/clinsight/readmit/metrics"
	"github.com/clinsight/readmit/pkg/errors"
	"github.com/clinsight/readmit/pkg/log"
)

// ForestRFE is the random-forest strategy: tune the variables-tried-per-split
// parameter by cross-validated kappa, characterize accuracy across nested
// predictor subsets (RFE), and report mean-decrease-in-Gini importance from
// the tuned full-predictor fit.
//
// Unlike the regression strategies this one is handed the full table rather
// than the train partition: its evaluation is internally cross-validated.
type ForestRFE struct{}

// Name implements Strategy.
func (ForestRFE) Name() string { return "forest" }

// Select runs tuning, RFE, and the final importance fit on one cohort.
func (fr ForestRFE) Select(frame *dataset.ModelFrame, cohort string, cfg Config) (*Result, error) {
	terms := frame.Formula.FamilyTerms
	if len(terms) == 0 {
		return nil, errors.NewInsufficientPredictors(fr.Name(), frame.Family.Name)
	}

	y, err := frame.Outcome()
	if err != nil {
		return nil, err
	}
	X, predictors, err := predictorMatrix(frame, terms)
	if err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if n == 0 {
		return nil, errors.NewEmptyInput("forest.Select", "cohort frame")
	}

	folds := KFoldSplit(n, cfg.ForestFolds, cfg.Seed)

	logger := slog.With(
		log.StrategyKey, fr.Name(),
		log.FamilyKey, frame.Family.Name,
		log.CohortKey, cohort,
	)

	// Step 1: tune mtry over the full integer range, maximizing mean kappa.
	logger.Debug("tuning variables tried per split", log.PhaseKey, "tune", log.TermsKey, p)
	tuneKappa := make(map[int]float64, p)
	bestMTry, bestKappa := 1, -2.0
	for mtry := 1; mtry <= p; mtry++ {
		kappa, err := fr.cvScore(X, y, folds, forest.Params{
			NumTrees: cfg.ForestTrees, MTry: mtry, MinLeaf: 5, Seed: cfg.Seed,
		}, cfg.FoldWorkers, metrics.Kappa)
		if err != nil {
			return nil, errors.Wrapf(err, "tuning mtry=%d", mtry)
		}
		tuneKappa[mtry] = kappa
		if kappa > bestKappa {
			bestKappa = kappa
			bestMTry = mtry
		}
	}

	// Step 3 must precede step 2 here: the tuned full fit provides the
	// importance ranking the nested RFE subsets are drawn from.
	tuned := forest.New(forest.Params{
		NumTrees: cfg.ForestTrees, MTry: bestMTry, MinLeaf: 5, Seed: cfg.Seed,
		MaxWorkers: cfg.FoldWorkers,
	})
	if err := tuned.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "tuned full fit")
	}
	importance := tuned.Importance()

	ranking := make([]int, p)
	for j := range ranking {
		ranking[j] = j
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return importance[ranking[a]] > importance[ranking[b]]
	})

	// Step 2: RFE diagnostic curve over nested subset sizes.
	logger.Debug("running recursive feature elimination", log.PhaseKey, "rfe")
	var curve []forest.RFEPoint
	for _, size := range rfeSizes(p) {
		cols := ranking[:size]
		subX := selectColumns(X, cols)
		mtry := bestMTry
		if mtry > size {
			mtry = size
		}
		acc, err := fr.cvScore(subX, y, folds, forest.Params{
			NumTrees: cfg.ForestTrees, MTry: mtry, MinLeaf: 5, Seed: cfg.Seed,
		}, cfg.FoldWorkers, metrics.Accuracy)
		if err != nil {
			return nil, errors.Wrapf(err, "rfe size %d", size)
		}
		curve = append(curve, forest.RFEPoint{Size: size, Accuracy: acc})
	}

	res := &Result{
		Strategy: fr.Name(),
		Family:   frame.Family.Name,
		Cohort:   cohort,
		BestMTry: bestMTry,
		RFECurve: curve,
	}
	// All predictors reported, ranked by score; any cutoff is the caller's.
	for _, j := range ranking {
		res.Terms = append(res.Terms, TermResult{Term: predictors[j], Estimate: importance[j]})
	}

	if cfg.CacheDir != "" {
		bundle := &forest.Bundle{
			Family:     frame.Family.Name,
			Cohort:     cohort,
			BestMTry:   bestMTry,
			TuneKappa:  tuneKappa,
			RFECurve:   curve,
			Importance: make(map[string]float64, p),
		}
		for j, name := range predictors {
			bundle.Importance[name] = importance[j]
		}
		if err := bundle.Save(cfg.CacheDir); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// cvScore fits the forest on each fold's training rows and averages the given
// metric over the held-out rows. Folds run on the shared worker cap; tree
// growth inside each fold fit stays sequential so outer times inner never
// exceeds the cap.
func (ForestRFE) cvScore(X *mat.Dense, y *mat.VecDense, folds []Fold, params forest.Params,
	workers int, score func(yTrue, yPred *mat.VecDense) (float64, error)) (float64, error) {

	scores := make([]float64, len(folds))
	errs := make([]error, len(folds))
	if workers < 1 {
		workers = 1
	}
	parallel.ForEach(len(folds), workers, func(f int) {
		fold := folds[f]
		trainX, trainY := subsetRows(X, y, fold.Train)
		testX, testY := subsetRows(X, y, fold.Test)

		fst := forest.New(params)
		if err := fst.Fit(trainX, trainY); err != nil {
			errs[f] = err
			return
		}
		pred, err := fst.Predict(testX)
		if err != nil {
			errs[f] = err
			return
		}
		s, err := score(testY, pred)
		if err != nil {
			errs[f] = err
			return
		}
		scores[f] = s
	})
	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// predictorMatrix builds the forest design: fixed covariates then family
// terms, no intercept column.
func predictorMatrix(frame *dataset.ModelFrame, terms []string) (*mat.Dense, []string, error) {
	full, names, err := frame.Design(terms)
	if err != nil {
		return nil, nil, err
	}
	n, p := full.Dims()
	X := mat.NewDense(n, p-1, nil)
	for i := 0; i < n; i++ {
		for j := 1; j < p; j++ {
			X.Set(i, j-1, full.At(i, j))
		}
	}
	return X, names[1:], nil
}

// selectColumns copies the given columns into a fresh matrix.
func selectColumns(X *mat.Dense, cols []int) *mat.Dense {
	n, _ := X.Dims()
	out := mat.NewDense(n, len(cols), nil)
	for i := 0; i < n; i++ {
		for k, j := range cols {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out
}

// rfeSizes is the nested subset-size schedule: 1 through 5, then every fifth
// size, always ending at the full predictor count.
func rfeSizes(p int) []int {
	var sizes []int
	for s := 1; s <= 5 && s <= p; s++ {
		sizes = append(sizes, s)
	}
	for s := 10; s < p; s += 5 {
		sizes = append(sizes, s)
	}
	if p > 5 {
		sizes = append(sizes, p)
	}
	return sizes
}
