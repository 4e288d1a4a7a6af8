package selection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/clinsight/readmit/pkg/errors"
)

// Fold is one train/test split of row indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFoldSplit shuffles n row indices under the seed and cuts them into k folds
// of near-equal size. Each row appears in exactly one test set.
func KFoldSplit(n, k int, seed int64) []Fold {
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	folds := make([]Fold, k)
	foldSize := n / k
	remainder := n % k

	current := 0
	for f := 0; f < k; f++ {
		testSize := foldSize
		if f < remainder {
			testSize++
		}
		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])

		inTest := make(map[int]bool, testSize)
		for _, idx := range test {
			inTest[idx] = true
		}
		train := make([]int, 0, n-testSize)
		for _, idx := range indices {
			if !inTest[idx] {
				train = append(train, idx)
			}
		}

		folds[f] = Fold{Train: train, Test: test}
		current += testSize
	}
	return folds
}

// checkFolds verifies every fold's training half has both outcome classes,
// returning DegenerateFold otherwise.
func checkFolds(folds []Fold, y *mat.VecDense) error {
	for f, fold := range folds {
		var pos, neg int
		for _, i := range fold.Train {
			if y.AtVec(i) >= 0.5 {
				pos++
			} else {
				neg++
			}
		}
		if pos == 0 || neg == 0 {
			return errors.NewDegenerateFold(f, pos, neg)
		}
	}
	return nil
}

// subsetRows copies the given rows of X and y into fresh containers.
func subsetRows(X *mat.Dense, y *mat.VecDense, rows []int) (*mat.Dense, *mat.VecDense) {
	_, p := X.Dims()
	subX := mat.NewDense(len(rows), p, nil)
	subY := mat.NewVecDense(len(rows), nil)
	for k, i := range rows {
		for j := 0; j < p; j++ {
			subX.Set(k, j, X.At(i, j))
		}
		subY.SetVec(k, y.AtVec(i))
	}
	return subX, subY
}
