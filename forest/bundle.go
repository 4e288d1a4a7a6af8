package forest

import (
	"fmt"
	"path/filepath"

	"github.com/clinsight/readmit/core/model"
)

// RFEPoint is one point of the recursive-feature-elimination diagnostic
// curve: cross-validated accuracy at a nested predictor-subset size.
type RFEPoint struct {
	Size     int
	Accuracy float64
}

// Bundle is the cached intermediate artifact of one forest-strategy unit: the
// tuned hyperparameter, the RFE curve, and the raw importances. It lets the
// reporting stage run without repeating the expensive fitting stage.
type Bundle struct {
	Family     string
	Cohort     string
	BestMTry   int
	TuneKappa  map[int]float64
	RFECurve   []RFEPoint
	Importance map[string]float64
}

// bundlePath keys the artifact by family and cohort.
func bundlePath(dir, family, cohort string) string {
	return filepath.Join(dir, fmt.Sprintf("forest_%s_%s.gob", family, cohort))
}

// Save writes the bundle under dir.
func (b *Bundle) Save(dir string) error {
	return model.Save(b, bundlePath(dir, b.Family, b.Cohort))
}

// LoadBundle reads a previously saved bundle for the given family and cohort.
func LoadBundle(dir, family, cohort string) (*Bundle, error) {
	var b Bundle
	if err := model.Load(&b, bundlePath(dir, family, cohort)); err != nil {
		return nil, err
	}
	return &b, nil
}
