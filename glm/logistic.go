// Package glm implements binomial logistic regression for the selection
// strategies: an IRLS fit with Wald inference and AIC, and an L1-penalized
// variant driven by coordinate descent on the IRLS working response.
package glm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/clinsight/readmit/core/model"
	"github.com/clinsight/readmit/pkg/errors"
)

// Logistic fits a binomial logistic regression by iteratively reweighted
// least squares.
type Logistic struct {
	model.BaseEstimator

	maxIter int
	tol     float64
}

// Option is a functional option for Logistic.
type Option func(*Logistic)

// WithMaxIter sets the IRLS iteration budget.
func WithMaxIter(n int) Option {
	return func(l *Logistic) { l.maxIter = n }
}

// WithTol sets the deviance-change convergence tolerance.
func WithTol(tol float64) Option {
	return func(l *Logistic) { l.tol = tol }
}

// NewLogistic creates a Logistic with glm-style defaults.
func NewLogistic(opts ...Option) *Logistic {
	l := &Logistic{
		maxIter: 50,
		tol:     1e-8,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result holds a fitted logistic regression: coefficients, covariance, and the
// likelihood quantities the selection strategies consume. Results are immutable
// once returned.
type Result struct {
	Names    []string
	Coef     []float64
	LogLike  float64
	Deviance float64
	vcov     *mat.SymDense
}

// sigmoid is the inverse logit link.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Fit runs IRLS on the design matrix X (including any intercept column)
// against the 0/1 outcome y. It fails with FitDivergence when the deviance has
// not stabilized within the iteration budget, and with a wrapped singularity
// error when the weighted normal equations cannot be solved.
func (l *Logistic) Fit(X *mat.Dense, y *mat.VecDense, names []string) (*Result, error) {
	n, p := X.Dims()
	if n == 0 {
		return nil, errors.NewEmptyInput("glm.Fit", "design matrix")
	}
	if y.Len() != n {
		return nil, errors.NewDimension("glm.Fit", n, y.Len(), 0)
	}
	if len(names) != p {
		return nil, errors.NewDimension("glm.Fit", p, len(names), 1)
	}

	coef := make([]float64, p)
	eta := make([]float64, n)
	mu := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)

	const muEps = 1e-10

	xtwx := mat.NewSymDense(p, nil)
	xtwz := make([]float64, p)

	lastDev := math.Inf(1)
	delta := math.Inf(1)
	converged := false

	for iter := 0; iter < l.maxIter; iter++ {
		// Linear predictor and working response.
		for i := 0; i < n; i++ {
			var e float64
			for j := 0; j < p; j++ {
				e += X.At(i, j) * coef[j]
			}
			eta[i] = e
			m := sigmoid(e)
			if m < muEps {
				m = muEps
			} else if m > 1-muEps {
				m = 1 - muEps
			}
			mu[i] = m
			w[i] = m * (1 - m)
			z[i] = e + (y.AtVec(i)-m)/w[i]
		}

		// Weighted normal equations X'WX b = X'Wz.
		for j := 0; j < p; j++ {
			xtwz[j] = 0
			for k := j; k < p; k++ {
				xtwx.SetSym(j, k, 0)
			}
		}
		for i := 0; i < n; i++ {
			wi := w[i]
			for j := 0; j < p; j++ {
				xij := X.At(i, j)
				xtwz[j] += wi * xij * z[i]
				for k := j; k < p; k++ {
					xtwx.SetSym(j, k, xtwx.At(j, k)+wi*xij*X.At(i, k))
				}
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(xtwx); !ok {
			return nil, errors.Wrap(errors.NewFitDivergence("logistic IRLS", iter, delta),
				"weighted information matrix is singular")
		}
		var sol mat.VecDense
		if err := chol.SolveVecTo(&sol, mat.NewVecDense(p, xtwz)); err != nil {
			return nil, errors.Wrap(err, "readmit: glm.Fit: solving normal equations")
		}
		for j := 0; j < p; j++ {
			coef[j] = sol.AtVec(j)
		}

		// Binomial deviance at the updated coefficients.
		dev := deviance(X, y, coef)
		delta = math.Abs(dev - lastDev)
		if delta < l.tol*(math.Abs(dev)+0.1) {
			converged = true
			lastDev = dev
			break
		}
		lastDev = dev
	}

	if !converged {
		return nil, errors.NewFitDivergence("logistic IRLS", l.maxIter, delta)
	}

	// Observed-information covariance at the converged fit.
	for i := 0; i < n; i++ {
		var e float64
		for j := 0; j < p; j++ {
			e += X.At(i, j) * coef[j]
		}
		m := sigmoid(e)
		if m < muEps {
			m = muEps
		} else if m > 1-muEps {
			m = 1 - muEps
		}
		w[i] = m * (1 - m)
	}
	for j := 0; j < p; j++ {
		for k := j; k < p; k++ {
			xtwx.SetSym(j, k, 0)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			for k := j; k < p; k++ {
				xtwx.SetSym(j, k, xtwx.At(j, k)+w[i]*X.At(i, j)*X.At(i, k))
			}
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(xtwx); !ok {
		return nil, errors.NewFitDivergence("logistic IRLS", l.maxIter, delta)
	}
	vcov := mat.NewSymDense(p, nil)
	if err := chol.InverseTo(vcov); err != nil {
		return nil, errors.Wrap(err, "readmit: glm.Fit: inverting information matrix")
	}

	l.SetFitted()
	ll := logLike(X, y, coef)
	outNames := make([]string, p)
	copy(outNames, names)
	return &Result{
		Names:    outNames,
		Coef:     coef,
		LogLike:  ll,
		Deviance: -2 * ll,
		vcov:     vcov,
	}, nil
}

// logLike is the Bernoulli log-likelihood at the given coefficients.
func logLike(X *mat.Dense, y *mat.VecDense, coef []float64) float64 {
	n, p := X.Dims()
	const eps = 1e-15
	var ll float64
	for i := 0; i < n; i++ {
		var e float64
		for j := 0; j < p; j++ {
			e += X.At(i, j) * coef[j]
		}
		m := sigmoid(e)
		if m < eps {
			m = eps
		} else if m > 1-eps {
			m = 1 - eps
		}
		if y.AtVec(i) >= 0.5 {
			ll += math.Log(m)
		} else {
			ll += math.Log(1 - m)
		}
	}
	return ll
}

func deviance(X *mat.Dense, y *mat.VecDense, coef []float64) float64 {
	return -2 * logLike(X, y, coef)
}

// PredictProba returns fitted readmission probabilities for the rows of X.
func (r *Result) PredictProba(X *mat.Dense) *mat.VecDense {
	n, p := X.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		var e float64
		for j := 0; j < p && j < len(r.Coef); j++ {
			e += X.At(i, j) * r.Coef[j]
		}
		out.SetVec(i, sigmoid(e))
	}
	return out
}

// NumParams returns the number of fitted coefficients.
func (r *Result) NumParams() int { return len(r.Coef) }

// AIC returns Akaike's information criterion for the fit.
func (r *Result) AIC() float64 {
	return -2*r.LogLike + 2*float64(len(r.Coef))
}
