package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/clinsight/readmit/pkg/errors"
)

// Regression estimates export at four decimal places, importance scores at
// three. Both are fixed by the downstream tooling that reads the files.
const (
	regressionDecimals = 4
	importanceDecimals = 3
)

func decimalsFor(strategy string) int {
	if strategy == "forest" {
		return importanceDecimals
	}
	return regressionDecimals
}

// ExportPath is the flat-file name for one (strategy, family) table.
func ExportPath(dir, strategy, family string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", strategy, family))
}

// WriteCSV writes the wide table as one delimited file: a term column, then
// one column per cohort. Cells for terms absent from a cohort are left empty.
func WriteCSV(dir string, w *WideTable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapIO(err, "report.WriteCSV", dir)
	}
	path := ExportPath(dir, w.Strategy, w.Family)
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO(err, "report.WriteCSV", path)
	}
	defer f.Close()

	dec := decimalsFor(w.Strategy)
	cw := csv.NewWriter(f)
	header := append([]string{"term"}, w.Cohorts...)
	if err := cw.Write(header); err != nil {
		return errors.WrapIO(err, "report.WriteCSV", path)
	}
	for _, term := range w.Terms {
		record := make([]string, 0, len(header))
		record = append(record, term)
		for _, cohort := range w.Cohorts {
			if v, ok := w.Value(term, cohort); ok {
				record = append(record, strconv.FormatFloat(v, 'f', dec, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := cw.Write(record); err != nil {
			return errors.WrapIO(err, "report.WriteCSV", path)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapIO(err, "report.WriteCSV", path)
	}
	return nil
}

// ReadCSV reads an exported wide table back. Strategy and family come from
// the caller since the file carries only data, not provenance.
func ReadCSV(path, strategy, family string) (*WideTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO(err, "report.ReadCSV", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.WrapIO(err, "report.ReadCSV", path)
	}
	if len(records) == 0 {
		return nil, errors.NewEmptyInput("report.ReadCSV", path)
	}

	w := &WideTable{
		Strategy: strategy,
		Family:   family,
		Cohorts:  records[0][1:],
		values:   make(map[string]map[string]float64),
	}
	for _, record := range records[1:] {
		term := record[0]
		w.Terms = append(w.Terms, term)
		row := make(map[string]float64)
		for c, cell := range record[1:] {
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "report.ReadCSV: %s term %q cohort %q", path, term, w.Cohorts[c])
			}
			row[w.Cohorts[c]] = v
		}
		w.values[term] = row
	}
	return w, nil
}
