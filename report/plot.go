package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/clinsight/readmit/forest"
	"github.com/clinsight/readmit/pkg/errors"
)

// PlotRFECurve renders one cohort's accuracy-versus-subset-size diagnostic as
// a PNG under dir. The curve is descriptive output only; nothing downstream
// reads it back.
func PlotRFECurve(dir, family, cohort string, curve []forest.RFEPoint) error {
	if len(curve) == 0 {
		return errors.NewEmptyInput("report.PlotRFECurve", "rfe curve")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapIO(err, "report.PlotRFECurve", dir)
	}

	pts := make(plotter.XYs, len(curve))
	for i, pt := range curve {
		pts[i] = plotter.XY{X: float64(pt.Size), Y: pt.Accuracy}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("RFE accuracy: %s / %s", family, cohort)
	p.X.Label.Text = "predictor subset size"
	p.Y.Label.Text = "cross-validated accuracy"

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "report.PlotRFECurve")
	}
	p.Add(line, points)

	path := filepath.Join(dir, fmt.Sprintf("rfe_%s_%s.png", family, cohort))
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.WrapIO(err, "report.PlotRFECurve", path)
	}
	return nil
}
