package dataset

import (
	"encoding/csv"
	"encoding/gob"
	"os"
	"strconv"
	"strings"

	"github.com/clinsight/readmit/pkg/errors"
)

// tableGob is the serialized form of a Table for the gob input bundle.
type tableGob struct {
	Names  []string
	Cols   [][]float64
	Cohort []string
}

// LoadCSV reads the patient-level table from a CSV file. The header names the
// columns; the cohort column is kept as string labels and every other column
// must parse as a float.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO(err, "dataset.LoadCSV", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapIO(err, "dataset.LoadCSV: parse", path)
	}
	if len(records) < 2 {
		return nil, errors.NewEmptyInput("dataset.LoadCSV", path)
	}

	header := records[0]
	rows := records[1:]
	cohortIdx := -1
	for j, name := range header {
		if name == CohortCol {
			cohortIdx = j
		}
	}

	tbl := NewTable(len(rows))
	for j, name := range header {
		if j == cohortIdx {
			continue
		}
		vals := make([]float64, len(rows))
		for i, rec := range rows {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "readmit: dataset.LoadCSV: row %d column %q", i+1, name)
			}
			vals[i] = v
		}
		if err := tbl.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}

	if cohortIdx >= 0 {
		labels := make([]string, len(rows))
		for i, rec := range rows {
			labels[i] = strings.TrimSpace(rec[cohortIdx])
		}
		if err := tbl.SetCohorts(labels); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// LoadGob reads a table previously written by SaveGob.
func LoadGob(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO(err, "dataset.LoadGob", path)
	}
	defer f.Close()

	var tg tableGob
	if err := gob.NewDecoder(f).Decode(&tg); err != nil {
		return nil, errors.WrapIO(err, "dataset.LoadGob: decode", path)
	}
	if len(tg.Cohort) == 0 {
		return nil, errors.NewEmptyInput("dataset.LoadGob", path)
	}

	tbl := NewTable(len(tg.Cohort))
	for j, name := range tg.Names {
		if err := tbl.AddColumn(name, tg.Cols[j]); err != nil {
			return nil, err
		}
	}
	if err := tbl.SetCohorts(tg.Cohort); err != nil {
		return nil, err
	}
	return tbl, nil
}

// SaveGob writes the table as a gob bundle.
func SaveGob(tbl *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO(err, "dataset.SaveGob", path)
	}
	defer f.Close()

	tg := tableGob{Names: tbl.Columns(), Cohort: make([]string, tbl.NumRows())}
	for i := 0; i < tbl.NumRows(); i++ {
		tg.Cohort[i] = tbl.CohortOf(i)
	}
	for _, name := range tg.Names {
		col, err := tbl.Col(name)
		if err != nil {
			return err
		}
		tg.Cols = append(tg.Cols, col)
	}
	if err := gob.NewEncoder(f).Encode(&tg); err != nil {
		return errors.WrapIO(err, "dataset.SaveGob: encode", path)
	}
	return nil
}

// LoadLabels reads a delimited code-to-label mapping used only by the
// reporting layer. Accepts tab- or comma-separated lines; lines with fewer
// than two fields are skipped.
func LoadLabels(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO(err, "dataset.LoadLabels", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapIO(err, "dataset.LoadLabels: parse", path)
	}

	labels := make(map[string]string)
	for _, rec := range records {
		if len(rec) == 1 && strings.Contains(rec[0], ",") {
			rec = strings.SplitN(rec[0], ",", 2)
		}
		if len(rec) < 2 {
			continue
		}
		code := strings.TrimSpace(rec[0])
		label := strings.TrimSpace(rec[1])
		if code != "" {
			labels[code] = label
		}
	}
	return labels, nil
}
