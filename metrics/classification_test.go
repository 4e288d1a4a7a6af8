package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func vec(v ...float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

func TestAccuracy(t *testing.T) {
	yTrue := vec(0, 1, 1, 0, 1)
	yPred := vec(0, 1, 0, 0, 1)

	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if math.Abs(acc-0.8) > 1e-12 {
		t.Errorf("expected accuracy 0.8, got %v", acc)
	}
}

func TestAccuracy_DimensionMismatch(t *testing.T) {
	_, err := Accuracy(vec(0, 1), vec(0, 1, 1))
	if err == nil {
		t.Error("expected dimension error")
	}
}

func TestKappa_PerfectAgreement(t *testing.T) {
	yTrue := vec(0, 1, 0, 1, 1, 0)
	kappa, err := Kappa(yTrue, yTrue)
	if err != nil {
		t.Fatalf("Kappa failed: %v", err)
	}
	if math.Abs(kappa-1.0) > 1e-12 {
		t.Errorf("expected kappa 1 for perfect agreement, got %v", kappa)
	}
}

func TestKappa_ChanceAgreement(t *testing.T) {
	// Predictions independent of truth with matched marginals: kappa near 0.
	yTrue := vec(1, 1, 0, 0)
	yPred := vec(1, 0, 1, 0)
	kappa, err := Kappa(yTrue, yPred)
	if err != nil {
		t.Fatalf("Kappa failed: %v", err)
	}
	if math.Abs(kappa) > 1e-12 {
		t.Errorf("expected kappa 0 for chance agreement, got %v", kappa)
	}
}

func TestKappa_KnownValue(t *testing.T) {
	// n00=4 n01=1 n10=2 n11=3: observed=0.7, expected=0.5, kappa=0.4.
	yTrue := vec(0, 0, 0, 0, 0, 1, 1, 1, 1, 1)
	yPred := vec(0, 0, 0, 0, 1, 0, 0, 1, 1, 1)
	kappa, err := Kappa(yTrue, yPred)
	if err != nil {
		t.Fatalf("Kappa failed: %v", err)
	}
	if math.Abs(kappa-0.4) > 1e-12 {
		t.Errorf("expected kappa 0.4, got %v", kappa)
	}
}

func TestBinomialDeviance_PerfectPrediction(t *testing.T) {
	yTrue := vec(0, 1, 1, 0)
	prob := vec(0, 1, 1, 0)
	dev, err := BinomialDeviance(yTrue, prob)
	if err != nil {
		t.Fatalf("BinomialDeviance failed: %v", err)
	}
	// Clipped at eps, so not exactly zero but vanishingly small.
	if dev > 1e-10 {
		t.Errorf("expected near-zero deviance, got %v", dev)
	}
}

func TestBinomialDeviance_Uninformative(t *testing.T) {
	yTrue := vec(0, 1, 0, 1)
	prob := vec(0.5, 0.5, 0.5, 0.5)
	dev, err := BinomialDeviance(yTrue, prob)
	if err != nil {
		t.Fatalf("BinomialDeviance failed: %v", err)
	}
	want := -2 * math.Log(0.5)
	if math.Abs(dev-want) > 1e-12 {
		t.Errorf("expected deviance %v, got %v", want, dev)
	}
}
