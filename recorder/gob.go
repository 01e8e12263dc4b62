package recorder

import (
	"compress/zlib"
	"encoding/gob"
	"fmt"
	"os"

	aero "github.com/esimov/ascii-aero/aero-solver"
)

// Export writes st to filename as a zlib compressed gob.
func Export(filename string, st aero.State) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	zw := zlib.NewWriter(file)
	if err := gob.NewEncoder(zw).Encode(st); err != nil {
		zw.Close()
		os.Remove(filename)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		os.Remove(filename)
		return err
	}
	return nil
}

// Import reads a snapshot written by Export.
func Import(filename string) (aero.State, error) {
	var st aero.State

	file, err := os.Open(filename)
	if err != nil {
		return st, err
	}
	defer file.Close()

	zr, err := zlib.NewReader(file)
	if err != nil {
		return st, fmt.Errorf("reading snapshot %s: %w", filename, err)
	}
	defer zr.Close()

	if err := gob.NewDecoder(zr).Decode(&st); err != nil {
		return st, fmt.Errorf("decoding snapshot %s: %w", filename, err)
	}
	return st, nil
}
