// Package metrics provides the classification metrics used to score
// cross-validation folds: accuracy, Cohen's kappa, and binomial deviance.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/clinsight/readmit/pkg/errors"
)

// Accuracy computes the fraction of exact agreements between two 0/1 label
// vectors.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewEmptyInput("Accuracy", "yTrue")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimension("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Kappa computes Cohen's kappa for two binary 0/1 label vectors: agreement
// beyond what class frequencies alone would produce. Forest hyperparameter
// tuning maximizes this rather than raw accuracy because readmission outcomes
// are imbalanced.
func Kappa(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewEmptyInput("Kappa", "yTrue")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimension("Kappa", n, yPred.Len(), 0)
	}

	// 2x2 contingency counts.
	var n00, n01, n10, n11 float64
	for i := 0; i < n; i++ {
		tr := yTrue.AtVec(i) >= 0.5
		pr := yPred.AtVec(i) >= 0.5
		switch {
		case !tr && !pr:
			n00++
		case !tr && pr:
			n01++
		case tr && !pr:
			n10++
		default:
			n11++
		}
	}

	total := float64(n)
	observed := (n00 + n11) / total
	// Expected agreement under marginal independence.
	pTrue1 := (n10 + n11) / total
	pPred1 := (n01 + n11) / total
	expected := pTrue1*pPred1 + (1-pTrue1)*(1-pPred1)

	if expected == 1 {
		// Both raters constant and identical: perfect but undefined agreement.
		return 0, nil
	}
	return (observed - expected) / (1 - expected), nil
}

// BinomialDeviance computes -2 times the Bernoulli log-likelihood of predicted
// probabilities against 0/1 outcomes, normalized by sample count. Lower is
// better; used to choose the lasso penalty.
func BinomialDeviance(yTrue, prob *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewEmptyInput("BinomialDeviance", "yTrue")
	}
	if prob.Len() != n {
		return 0, errors.NewDimension("BinomialDeviance", n, prob.Len(), 0)
	}

	const eps = 1e-15
	var ll float64
	for i := 0; i < n; i++ {
		p := prob.AtVec(i)
		if p < eps {
			p = eps
		} else if p > 1-eps {
			p = 1 - eps
		}
		if yTrue.AtVec(i) >= 0.5 {
			ll += math.Log(p)
		} else {
			ll += math.Log(1 - p)
		}
	}
	return -2 * ll / float64(n), nil
}
