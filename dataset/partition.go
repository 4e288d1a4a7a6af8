package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/clinsight/readmit/pkg/errors"
)

// Partition splits the table into train and test subsets, stratified by
// cohort: within each cohort, trainFraction of the rows are sampled without
// replacement into train and the rest go to test. The split is deterministic
// under the seed; cohorts are visited in sorted label order so identical
// inputs always produce identical row sets.
func Partition(tbl *Table, trainFraction float64, seed int64) (train, test *Table, err error) {
	if tbl == nil || tbl.NumRows() == 0 {
		return nil, nil, errors.NewEmptyInput("dataset.Partition", "patients")
	}
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, errors.NewInvalidFraction("dataset.Partition", trainFraction)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	var trainRows, testRows []int
	for _, cohort := range tbl.Cohorts() {
		rows := tbl.CohortRows(cohort)
		shuffled := make([]int, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		nTrain := int(math.Round(trainFraction * float64(len(shuffled))))
		trainRows = append(trainRows, shuffled[:nTrain]...)
		testRows = append(testRows, shuffled[nTrain:]...)
	}

	return tbl.Select(trainRows), tbl.Select(testRows), nil
}
