package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/clinsight/readmit/pkg/errors"
)

// Save gob-encodes v to the given path. Used for the per-family cached fit
// bundles so the reporting stage can run without refitting.
func Save(v interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.WrapIO(err, "model.Save", filename)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(v); err != nil {
		return errors.WrapIO(err, "model.Save: encode", filename)
	}
	return nil
}

// Load gob-decodes the file at path into v, which must be a pointer.
func Load(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.WrapIO(err, "model.Load", filename)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(v); err != nil {
		return errors.WrapIO(err, "model.Load: decode", filename)
	}
	return nil
}

// SaveTo gob-encodes v to an arbitrary writer.
func SaveTo(v interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrap(err, "model.SaveTo: encode")
	}
	return nil
}

// LoadFrom gob-decodes from an arbitrary reader into v.
func LoadFrom(v interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "model.LoadFrom: decode")
	}
	return nil
}
