package pipeline

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/pkg/errors"
	"github.com/clinsight/readmit/pkg/log"
	"github.com/clinsight/readmit/report"
	"github.com/clinsight/readmit/selection"
)

// Export writes every artifact of a finished run under dir: one wide CSV per
// (strategy, family) pair that produced results, a never-selected listing for
// the lasso, RFE diagnostic plots for the forest, and the unit manifest.
// Labels may be nil; when present they relabel term rows.
func Export(dir string, rr *RunResult, labels map[string]string) error {
	strategies := []string{"stepwise", "lasso", "forest"}

	for _, fam := range dataset.Families {
		for _, strategy := range strategies {
			results := rr.ByStrategyFamily(strategy, fam.Name)
			if len(results) == 0 {
				continue
			}
			w := report.Normalize(results, fam)
			w.ApplyLabels(labels)
			if err := report.WriteCSV(dir, w); err != nil {
				return err
			}
			slog.Debug("table exported",
				log.StrategyKey, strategy, log.FamilyKey, fam.Name, log.TermsKey, len(w.Terms))

			switch strategy {
			case "lasso":
				if err := writeNeverSelected(dir, fam, results); err != nil {
					return err
				}
			case "forest":
				if err := plotCurves(dir, fam, results); err != nil {
					return err
				}
			}
		}
	}
	return rr.Manifest.Write(dir)
}

// writeNeverSelected exports the terms the lasso zeroed in every cohort.
func writeNeverSelected(dir string, fam dataset.Family, results []*selection.Result) error {
	never := report.NeverSelected(results, fam)
	if len(never) == 0 {
		return nil
	}
	path := filepath.Join(dir, "never_selected_"+fam.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO(err, "pipeline.Export", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"term"}); err != nil {
		return errors.WrapIO(err, "pipeline.Export", path)
	}
	for _, term := range never {
		if err := cw.Write([]string{term}); err != nil {
			return errors.WrapIO(err, "pipeline.Export", path)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapIO(err, "pipeline.Export", path)
	}
	return nil
}

func plotCurves(dir string, fam dataset.Family, results []*selection.Result) error {
	for _, res := range results {
		if len(res.RFECurve) == 0 {
			continue
		}
		if err := report.PlotRFECurve(dir, fam.Name, res.Cohort, res.RFECurve); err != nil {
			return err
		}
	}
	return nil
}
