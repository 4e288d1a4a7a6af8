// Command readmit runs the readmission model-selection comparison: load the
// patient table, fit the three strategies per family per cohort, and export
// the comparison tables.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/clinsight/readmit/dataset"
	"github.com/clinsight/readmit/pipeline"
	"github.com/clinsight/readmit/pkg/log"
)

func main() {
	var (
		input      = flag.String("input", "", "patient table (.csv or .gob)")
		labelsPath = flag.String("labels", "", "optional delimited file mapping indicator codes to labels")
		outDir     = flag.String("out", "out", "output directory for exported tables")
		cacheDir   = flag.String("cache", "", "optional directory for cached forest bundles")
		strategies = flag.String("strategies", "", "comma-separated subset of stepwise,lasso,forest (default all)")
		families   = flag.String("families", "", "comma-separated subset of elixhauser,charlson,hcc (default all)")
		seed       = flag.Int64("seed", 7, "random seed")
		trainFrac  = flag.Float64("train-fraction", 0.75, "per-cohort train fraction")
		workers    = flag.Int("workers", 0, "worker cap for concurrent units (default NumCPU)")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()
	log.Setup(*logLevel)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "readmit: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*input, *labelsPath, *outDir, *cacheDir, *strategies, *families, *seed, *trainFrac, *workers); err != nil {
		slog.Error("run failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(input, labelsPath, outDir, cacheDir, strategies, families string, seed int64, trainFrac float64, workers int) error {
	tbl, err := loadTable(input)
	if err != nil {
		return err
	}
	slog.Info("patient table loaded", "path", input, log.SamplesKey, tbl.NumRows())

	var labels map[string]string
	if labelsPath != "" {
		labels, err = dataset.LoadLabels(labelsPath)
		if err != nil {
			return err
		}
	}

	cfg := pipeline.DefaultConfig()
	cfg.Seed = seed
	cfg.TrainFraction = trainFrac
	if workers > 0 {
		cfg.MaxWorkers = workers
	}
	cfg.Strategies = splitList(strategies)
	cfg.Families = splitList(families)
	cfg.Selection.CacheDir = cacheDir

	rr, err := pipeline.Run(cfg, tbl)
	if err != nil {
		return err
	}
	if failed := rr.Manifest.Failed(); len(failed) > 0 {
		slog.Warn("some units failed", "failed", len(failed), "total", len(rr.Manifest.Units))
	}
	return pipeline.Export(outDir, rr, labels)
}

func loadTable(path string) (*dataset.Table, error) {
	if strings.HasSuffix(path, ".gob") {
		return dataset.LoadGob(path)
	}
	return dataset.LoadCSV(path)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
