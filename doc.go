// Package readmit implements a model-selection pipeline for 30-day hospital
// readmission, comparing comorbidity-index predictor families (Elixhauser,
// Charlson, HCC) across patient cohorts.
//
// Three selection strategies are run per cohort and per family and reduced to
// a common reporting schema:
//
//   - Forward stepwise logistic regression (AIC-guided greedy search)
//   - Cross-validated L1-penalized (lasso) logistic regression
//   - Random-forest importance with recursive feature elimination
//
// # Layout
//
// The pipeline is assembled from small packages:
//
//	dataset       patient table, stratified partitioning, family selection
//	glm           binomial logistic regression (IRLS, Wald inference, L1 variant)
//	forest        random-forest estimator and cached fit bundles
//	selection     the three selection strategies behind one interface
//	metrics       classification metrics (accuracy, kappa, deviance)
//	report        result normalization, flat-file export, RFE diagnostics
//	pipeline      cross-strategy orchestration over a bounded worker pool
//	cmd/readmit   command-line entry point
//
// Support packages:
//
//	core/model    estimator state tracking and gob persistence
//	core/parallel bounded parallel execution helpers
//	pkg/errors    structured errors built on cockroachdb/errors
//	pkg/log       slog-based structured logging with stack-trace extraction
//
// # Quick start
//
//	tbl, err := dataset.LoadCSV("patients.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := pipeline.Run(pipeline.DefaultConfig(), tbl)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := pipeline.Export("out", res, nil); err != nil {
//	    log.Fatal(err)
//	}
package readmit
