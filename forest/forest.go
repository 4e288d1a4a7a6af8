// Package forest implements the random-forest estimator used by the
// importance/RFE selection strategy: bootstrap-sampled CART trees with Gini
// splits, a tunable variables-tried-per-split parameter, and accumulated
// mean-decrease-in-Gini importance.
package forest

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/clinsight/readmit/core/model"
	"github.com/clinsight/readmit/core/parallel"
	"github.com/clinsight/readmit/pkg/errors"
)

// Params are the forest hyperparameters. The zero value of MTry means
// sqrt(p), the conventional classification default.
type Params struct {
	NumTrees int
	MTry     int
	MaxDepth int
	MinLeaf  int
	Seed     int64

	// MaxWorkers caps tree-growing parallelism so nested cross-validation
	// does not oversubscribe the machine. Zero means sequential growth.
	MaxWorkers int
}

// withDefaults fills unset parameters.
func (p Params) withDefaults() Params {
	if p.NumTrees == 0 {
		p.NumTrees = 200
	}
	if p.MinLeaf == 0 {
		p.MinLeaf = 1
	}
	return p
}

// Forest is a fitted random-forest classifier.
type Forest struct {
	model.BaseEstimator

	Params     Params
	Trees      []tree
	Gini       []float64 // mean decrease in Gini per feature
	NumFeature int
}

// New creates an unfit forest with the given parameters.
func New(params Params) *Forest {
	return &Forest{Params: params.withDefaults()}
}

// Fit grows the ensemble on X against the 0/1 outcome y. Growth is
// deterministic under Params.Seed: each tree derives its own random stream
// from the seed and its index, so parallel and sequential fits agree.
func (f *Forest) Fit(X *mat.Dense, y *mat.VecDense) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewEmptyInput("forest.Fit", "design matrix")
	}
	if y.Len() != n {
		return errors.NewDimension("forest.Fit", n, y.Len(), 0)
	}

	f.NumFeature = p
	f.Trees = make([]tree, f.Params.NumTrees)
	perTree := make([][]float64, f.Params.NumTrees)

	growOne := func(t int) {
		rng := rand.New(rand.NewPCG(uint64(f.Params.Seed), uint64(t)+1))

		rows := make([]int, n)
		for i := range rows {
			rows[i] = rng.IntN(n)
		}

		g := &treeGrower{
			X:          X,
			y:          y,
			params:     f.Params,
			rng:        rng,
			nTotal:     float64(n),
			importance: make([]float64, p),
		}
		f.Trees[t] = g.grow(rows)
		perTree[t] = g.importance
	}

	if f.Params.MaxWorkers > 1 {
		parallel.ForEach(f.Params.NumTrees, f.Params.MaxWorkers, growOne)
	} else {
		for t := 0; t < f.Params.NumTrees; t++ {
			growOne(t)
		}
	}

	// Average per-tree accumulations after the fact so the result does not
	// depend on goroutine scheduling.
	f.Gini = make([]float64, p)
	for _, imp := range perTree {
		for j, v := range imp {
			f.Gini[j] += v
		}
	}
	for j := range f.Gini {
		f.Gini[j] /= float64(f.Params.NumTrees)
	}

	f.SetFitted()
	return nil
}

// PredictProba returns the ensemble-average positive-class probability for
// each row of X.
func (f *Forest) PredictProba(X *mat.Dense) (*mat.VecDense, error) {
	if !f.IsFitted() {
		return nil, errors.New("readmit: forest is not fitted")
	}
	n, p := X.Dims()
	if p != f.NumFeature {
		return nil, errors.NewDimension("forest.PredictProba", f.NumFeature, p, 1)
	}

	out := mat.NewVecDense(n, nil)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row[j] = X.At(i, j)
		}
		var sum float64
		for t := range f.Trees {
			sum += f.Trees[t].predictProba(row)
		}
		out.SetVec(i, sum/float64(len(f.Trees)))
	}
	return out, nil
}

// Predict returns 0/1 labels at the 0.5 probability threshold.
func (f *Forest) Predict(X *mat.Dense) (*mat.VecDense, error) {
	prob, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(prob.Len(), nil)
	for i := 0; i < prob.Len(); i++ {
		if prob.AtVec(i) >= 0.5 {
			out.SetVec(i, 1)
		}
	}
	return out, nil
}

// Importance returns the mean decrease in Gini per feature. The slice is a
// copy; scores are not normalized and carry no uncertainty interval.
func (f *Forest) Importance() []float64 {
	out := make([]float64, len(f.Gini))
	copy(out, f.Gini)
	return out
}

// DefaultMTry is the conventional classification default of sqrt(p), floored
// at one.
func DefaultMTry(p int) int {
	m := int(math.Sqrt(float64(p)))
	if m < 1 {
		m = 1
	}
	return m
}
