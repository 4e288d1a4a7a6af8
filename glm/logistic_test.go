package glm

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// simulate draws a logistic outcome from known coefficients.
func simulate(t *testing.T, n int, coef []float64, seed uint64) (*mat.Dense, *mat.VecDense) {
	t.Helper()
	p := len(coef)
	rng := rand.New(rand.NewPCG(seed, seed))

	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j := 1; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		var eta float64
		for j := 0; j < p; j++ {
			eta += X.At(i, j) * coef[j]
		}
		if rng.Float64() < sigmoid(eta) {
			y.SetVec(i, 1)
		}
	}
	return X, y
}

func TestLogistic_InterceptOnly(t *testing.T) {
	// With only an intercept the MLE is logit of the outcome rate.
	n := 200
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		if i < 50 {
			y.SetVec(i, 1)
		}
	}

	res, err := NewLogistic().Fit(X, y, []string{"(Intercept)"})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	want := math.Log(0.25 / 0.75)
	if math.Abs(res.Coef[0]-want) > 1e-6 {
		t.Errorf("intercept: expected %v, got %v", want, res.Coef[0])
	}
}

func TestLogistic_RecoversCoefficients(t *testing.T) {
	trueCoef := []float64{-1.0, 0.8, -0.5}
	X, y := simulate(t, 4000, trueCoef, 11)

	res, err := NewLogistic().Fit(X, y, []string{"(Intercept)", "x1", "x2"})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for j, want := range trueCoef {
		if math.Abs(res.Coef[j]-want) > 0.15 {
			t.Errorf("coef %d: expected near %v, got %v", j, want, res.Coef[j])
		}
	}
}

func TestLogistic_WaldInferenceShape(t *testing.T) {
	X, y := simulate(t, 500, []float64{-0.5, 1.0}, 3)

	res, err := NewLogistic().Fit(X, y, []string{"(Intercept)", "x1"})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	se := res.StdErr()
	pv := res.PValues()
	or := res.OddsRatios()
	lower, upper := res.ConfInt(0.95)

	for j := range res.Coef {
		if se[j] <= 0 {
			t.Errorf("standard error %d must be positive, got %v", j, se[j])
		}
		if pv[j] < 0 || pv[j] > 1 {
			t.Errorf("p-value %d out of [0,1]: %v", j, pv[j])
		}
		if or[j] <= 0 {
			t.Errorf("odds ratio %d must be positive, got %v", j, or[j])
		}
		if !(lower[j] <= or[j] && or[j] <= upper[j]) {
			t.Errorf("CI %d fails lower <= point <= upper: [%v, %v, %v]", j, lower[j], or[j], upper[j])
		}
	}

	// x1 has a strong true effect; its p-value should be clearly significant.
	if pv[1] > 0.01 {
		t.Errorf("expected significant x1, p-value %v", pv[1])
	}
}

func TestLogistic_AICPenalizesParameters(t *testing.T) {
	X, y := simulate(t, 300, []float64{-0.5, 0.9}, 5)

	res, err := NewLogistic().Fit(X, y, []string{"(Intercept)", "x1"})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if math.Abs(res.AIC()-(-2*res.LogLike+4)) > 1e-12 {
		t.Errorf("AIC must be -2*loglike + 2*p, got %v", res.AIC())
	}
}

func TestFitPenalized_HeavyPenaltyKeepsUnpenalized(t *testing.T) {
	X, y := simulate(t, 400, []float64{-0.8, 0.7, 0.4}, 9)
	names := []string{"(Intercept)", "age", "term1"}
	// Intercept and age unpenalized, term1 fully penalized.
	penalty := []float64{0, 0, 1}

	res, err := FitPenalized(X, y, 1e10, penalty, names)
	if err != nil {
		t.Fatalf("FitPenalized failed: %v", err)
	}

	if res.Coef[2] != 0 {
		t.Errorf("penalized term must be zero at extreme penalty, got %v", res.Coef[2])
	}
	if res.Coef[0] == 0 || res.Coef[1] == 0 {
		t.Errorf("unpenalized covariates must be retained: %v", res.Coef)
	}
}

func TestFitPenalized_ZeroPenaltyMatchesMLE(t *testing.T) {
	X, y := simulate(t, 800, []float64{-0.6, 0.8}, 21)
	names := []string{"(Intercept)", "x1"}

	mle, err := NewLogistic().Fit(X, y, names)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pen, err := FitPenalized(X, y, 0, []float64{0, 0}, names)
	if err != nil {
		t.Fatalf("FitPenalized failed: %v", err)
	}

	for j := range mle.Coef {
		if math.Abs(mle.Coef[j]-pen.Coef[j]) > 1e-3 {
			t.Errorf("coef %d: MLE %v vs unpenalized coordinate descent %v", j, mle.Coef[j], pen.Coef[j])
		}
	}
}

func TestPenaltyGrid(t *testing.T) {
	grid := PenaltyGrid(1e10, 1e-2, 100)
	if len(grid) != 100 {
		t.Fatalf("expected 100 penalties, got %d", len(grid))
	}
	if math.Abs(grid[0]-1e10)/1e10 > 1e-9 {
		t.Errorf("grid must start at 1e10, got %v", grid[0])
	}
	if math.Abs(grid[99]-1e-2)/1e-2 > 1e-9 {
		t.Errorf("grid must end at 1e-2, got %v", grid[99])
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] >= grid[i-1] {
			t.Errorf("grid must be strictly descending at %d: %v >= %v", i, grid[i], grid[i-1])
		}
	}
}
