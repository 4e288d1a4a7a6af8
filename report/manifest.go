package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"

	"github.com/clinsight/readmit/pkg/errors"
)

// UnitStatus records the outcome of one (strategy, family, cohort) unit of
// work. Failed units stay in the manifest so partial runs are auditable.
type UnitStatus struct {
	Strategy string
	Family   string
	Cohort   string
	OK       bool
	Message  string // failure reason, empty on success
}

// Manifest is the run-level ledger of unit outcomes.
type Manifest struct {
	Units []UnitStatus
}

// Add appends one unit outcome.
func (m *Manifest) Add(strategy, family, cohort string, err error) {
	status := UnitStatus{Strategy: strategy, Family: family, Cohort: cohort, OK: err == nil}
	if err != nil {
		status.Message = err.Error()
	}
	m.Units = append(m.Units, status)
}

// Failed returns the failed units.
func (m *Manifest) Failed() []UnitStatus {
	var failed []UnitStatus
	for _, u := range m.Units {
		if !u.OK {
			failed = append(failed, u)
		}
	}
	return failed
}

// Write exports the manifest as manifest.csv in the output directory, sorted
// by (strategy, family, cohort) so repeated runs diff cleanly.
func (m *Manifest) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapIO(err, "report.Manifest.Write", dir)
	}
	path := filepath.Join(dir, "manifest.csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO(err, "report.Manifest.Write", path)
	}
	defer f.Close()

	units := append([]UnitStatus{}, m.Units...)
	sort.Slice(units, func(a, b int) bool {
		if units[a].Strategy != units[b].Strategy {
			return units[a].Strategy < units[b].Strategy
		}
		if units[a].Family != units[b].Family {
			return units[a].Family < units[b].Family
		}
		return units[a].Cohort < units[b].Cohort
	})

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"strategy", "family", "cohort", "status", "message"}); err != nil {
		return errors.WrapIO(err, "report.Manifest.Write", path)
	}
	for _, u := range units {
		status := "ok"
		if !u.OK {
			status = "failed"
		}
		if err := cw.Write([]string{u.Strategy, u.Family, u.Cohort, status, u.Message}); err != nil {
			return errors.WrapIO(err, "report.Manifest.Write", path)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapIO(err, "report.Manifest.Write", path)
	}
	return nil
}
