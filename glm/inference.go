package glm

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// normcdf is the standard normal CDF.
func normcdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// StdErr returns the Wald standard errors of the coefficients.
func (r *Result) StdErr() []float64 {
	p := len(r.Coef)
	se := make([]float64, p)
	for j := 0; j < p; j++ {
		se[j] = math.Sqrt(r.vcov.At(j, j))
	}
	return se
}

// ZScores returns coefficient z-statistics.
func (r *Result) ZScores() []float64 {
	se := r.StdErr()
	z := make([]float64, len(r.Coef))
	for j, b := range r.Coef {
		z[j] = b / se[j]
	}
	return z
}

// PValues returns two-sided Wald p-values.
func (r *Result) PValues() []float64 {
	z := r.ZScores()
	pv := make([]float64, len(z))
	for j, v := range z {
		pv[j] = 2 * normcdf(-math.Abs(v))
	}
	return pv
}

// OddsRatios returns exponentiated coefficients.
func (r *Result) OddsRatios() []float64 {
	or := make([]float64, len(r.Coef))
	for j, b := range r.Coef {
		or[j] = math.Exp(b)
	}
	return or
}

// ConfInt returns Wald confidence bounds for each coefficient on the
// odds-ratio scale at the given level (0.95 for the reporting contract).
func (r *Result) ConfInt(level float64) (lower, upper []float64) {
	q := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + level/2)
	se := r.StdErr()
	lower = make([]float64, len(r.Coef))
	upper = make([]float64, len(r.Coef))
	for j, b := range r.Coef {
		lower[j] = math.Exp(b - q*se[j])
		upper[j] = math.Exp(b + q*se[j])
	}
	return lower, upper
}
