// Package pipeline orchestrates the full comparison run: partition the
// patient table, fan (strategy, family, cohort) units of work out to a
// bounded worker pool, collect per-unit results and failures, and hand the
// survivors to the reporting layer.
package pipeline

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/clinsight/readmit/core/parallel"
	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/pkg/errors"
	"github.com/clinsight/readmit/pkg/log"
	"github.com/clinsight/readmit/report"
	"github.com/clinsight/readmit/selection"
)

// Config carries every tunable of a pipeline run. Zero values are filled by
// Normalize; the reference run uses the defaults unchanged.
type Config struct {
	Seed          int64
	TrainFraction float64
	MaxWorkers    int // cap on concurrent (strategy, family, cohort) units

	// Strategies and Families restrict the run when non-empty; empty means
	// all three of each.
	Strategies []string
	Families   []string

	Selection selection.Config
}

// DefaultConfig returns the reference-run configuration: seed 7, 75% train.
func DefaultConfig() Config {
	return Config{
		Seed:          7,
		TrainFraction: 0.75,
		MaxWorkers:    runtime.NumCPU(),
		Selection:     selection.DefaultConfig(),
	}
}

// Normalize fills unset fields with reference defaults and keeps the seed
// consistent between the partitioner and the selection strategies.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if c.TrainFraction == 0 {
		c.TrainFraction = def.TrainFraction
	}
	if c.MaxWorkers < 1 {
		c.MaxWorkers = def.MaxWorkers
	}
	if c.Selection.PenaltyCount == 0 {
		c.Selection = def.Selection
	}
	c.Selection.Seed = c.Seed
	// Units already run concurrently; folds stay sequential inside each unit
	// unless the pool is otherwise idle.
	if c.Selection.FoldWorkers < 1 {
		c.Selection.FoldWorkers = 1
	}
	return c
}

func (c Config) strategies() []selection.Strategy {
	all := []selection.Strategy{selection.Stepwise{}, selection.Lasso{}, selection.ForestRFE{}}
	if len(c.Strategies) == 0 {
		return all
	}
	want := make(map[string]bool, len(c.Strategies))
	for _, s := range c.Strategies {
		want[s] = true
	}
	var out []selection.Strategy
	for _, s := range all {
		if want[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}

func (c Config) families() []dataset.Family {
	if len(c.Families) == 0 {
		return dataset.Families
	}
	want := make(map[string]bool, len(c.Families))
	for _, f := range c.Families {
		want[f] = true
	}
	var out []dataset.Family
	for _, f := range dataset.Families {
		if want[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// Unit identifies one (strategy, family, cohort) result slot.
type Unit struct {
	Strategy string
	Family   string
	Cohort   string
}

// RunResult collects everything a run produced: one slot per unit, written
// exactly once, plus the failure manifest.
type RunResult struct {
	Results  map[Unit]*selection.Result
	Manifest report.Manifest

	// Partition row counts, for the run log.
	TrainRows int
	TestRows  int
}

// unit of work before dispatch: the bound strategy plus the frame it runs on.
type workItem struct {
	unit     Unit
	strategy selection.Strategy
	frame    *dataset.ModelFrame
}

// Run executes the comparison. Partition failures are fatal; any other
// failure is recorded against its unit and siblings continue.
func Run(cfg Config, tbl *dataset.Table) (*RunResult, error) {
	cfg = cfg.Normalize()
	if err := tbl.Validate(); err != nil {
		return nil, err
	}
	if err := tbl.StandardizeAge(); err != nil {
		return nil, err
	}

	train, test, err := dataset.Partition(tbl, cfg.TrainFraction, cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: partition")
	}

	rr := &RunResult{
		Results:   make(map[Unit]*selection.Result),
		TrainRows: train.NumRows(),
		TestRows:  test.NumRows(),
	}
	slog.Info("partitioned patients",
		log.SamplesKey, tbl.NumRows(), "train", rr.TrainRows, "test", rr.TestRows)

	// Build the work list up front. A family whose frame cannot be built
	// fails every unit it would have produced, and nothing downstream runs
	// for it.
	var items []workItem
	for _, fam := range cfg.families() {
		fullFrame, err := dataset.SelectFamily(tbl, fam)
		if err != nil {
			for _, strat := range cfg.strategies() {
				rr.Manifest.Add(strat.Name(), fam.Name, "", err)
			}
			slog.Warn("family skipped", log.FamilyKey, fam.Name, log.ErrAttr(err))
			continue
		}
		trainFrame := fullFrame.WithTable(train)

		for _, strat := range cfg.strategies() {
			// The forest internally cross-validates, so it sees every row;
			// the regression strategies fit on the train partition.
			frame := trainFrame
			if strat.Name() == "forest" {
				frame = fullFrame
			}
			for _, cohort := range fullFrame.Cohorts() {
				items = append(items, workItem{
					unit:     Unit{Strategy: strat.Name(), Family: fam.Name, Cohort: cohort},
					strategy: strat,
					frame:    frame.Cohort(cohort),
				})
			}
		}
	}

	// One slot per unit, written exactly once by its worker.
	results := make([]*selection.Result, len(items))
	unitErrs := make([]error, len(items))
	parallel.ForEach(len(items), cfg.MaxWorkers, func(i int) {
		item := items[i]
		began := time.Now()
		unitErrs[i] = errors.SafeExecute(unitName(item.unit), func() error {
			res, err := item.strategy.Select(item.frame, item.unit.Cohort, cfg.Selection)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
		logger := slog.With(
			log.StrategyKey, item.unit.Strategy,
			log.FamilyKey, item.unit.Family,
			log.CohortKey, item.unit.Cohort,
			log.DurationMsKey, time.Since(began).Milliseconds(),
		)
		if unitErrs[i] != nil {
			logger.Warn("unit failed", log.ErrAttr(unitErrs[i]))
		} else {
			logger.Info("unit complete", log.TermsKey, len(results[i].Terms))
		}
	})

	for i, item := range items {
		rr.Manifest.Add(item.unit.Strategy, item.unit.Family, item.unit.Cohort, unitErrs[i])
		if unitErrs[i] == nil {
			rr.Results[item.unit] = results[i]
		}
	}
	return rr, nil
}

func unitName(u Unit) string {
	return fmt.Sprintf("%s/%s/%s", u.Strategy, u.Family, u.Cohort)
}

// ByStrategyFamily groups the successful results of one (strategy, family)
// pair, ordered by cohort via the map iteration of the caller's choosing.
func (rr *RunResult) ByStrategyFamily(strategy, family string) []*selection.Result {
	var out []*selection.Result
	for unit, res := range rr.Results {
		if unit.Strategy == strategy && unit.Family == family {
			out = append(out, res)
		}
	}
	return out
}
