// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset loads attribution benchmarks from disk and fetches them
// from a benchmark mirror. A benchmark directory holds an ordered molecule
// list (molecules.csv), optional ground-truth attributions
// (attributions.yaml), and model importance dumps (importances.jsonl)
// produced by the explain stage.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/bbwen/molexplain/pkg/types"
)

const (
	// MoleculesFile lists the evaluation molecules, one SMILES per row.
	MoleculesFile = "molecules.csv"

	// TruthFile holds ground-truth attributions, binary or pair-shaped.
	TruthFile = "attributions.yaml"

	// ImportancesFile is the default name for model importance dumps.
	ImportancesFile = "importances.jsonl"
)

// Dataset is one benchmark on disk: the ordered molecule list and, when the
// benchmark ships them, ground-truth attributions. Molecule order is the
// evaluation order every downstream consumer indexes by.
type Dataset struct {
	Name   string
	Dir    string
	SMILES []string
	Truth  *types.GroundTruth
}

// Load reads a benchmark directory. A missing ground-truth file is not an
// error: visualization needs no labels.
func Load(dir string) (*Dataset, error) {
	smiles, err := readMolecules(filepath.Join(dir, MoleculesFile))
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Name:   filepath.Base(dir),
		Dir:    dir,
		SMILES: smiles,
	}

	truthPath := filepath.Join(dir, TruthFile)
	data, err := os.ReadFile(truthPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ds, nil
		}
		return nil, fmt.Errorf("reading ground truth %s: %w", truthPath, err)
	}

	var truth types.GroundTruth
	if err := yaml.Unmarshal(data, &truth); err != nil {
		return nil, fmt.Errorf("parsing ground truth %s: %w", truthPath, err)
	}
	ds.Truth = &truth
	return ds, nil
}

// readMolecules parses the molecule CSV. The header row names the columns;
// the smiles column (any case) supplies the ordered list.
func readMolecules(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening molecule list %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading molecule list header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "smiles") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("molecule list %s has no smiles column (header: %v)", path, header)
	}

	var smiles []string
	for line := 2; ; line++ {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading molecule list row %d: %w", line, err)
		}
		if col >= len(row) {
			return nil, fmt.Errorf("molecule list row %d has %d columns, smiles is column %d", line, len(row), col+1)
		}
		s := strings.TrimSpace(row[col])
		if s == "" {
			return nil, fmt.Errorf("molecule list row %d has an empty smiles value", line)
		}
		smiles = append(smiles, s)
	}
	if len(smiles) == 0 {
		return nil, fmt.Errorf("molecule list %s is empty", path)
	}
	return smiles, nil
}

// LoadImportances reads a JSONL importance dump in file order, one record
// per molecule.
func LoadImportances(path string) ([]types.ImportanceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening importances %s: %w", path, err)
	}
	defer f.Close()

	var records []types.ImportanceRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec types.ImportanceRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("parsing importances %s line %d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading importances %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("importances %s contain no records", path)
	}
	return records, nil
}

// WriteImportances writes records as JSONL, one record per line.
func WriteImportances(path string, records []types.ImportanceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating importances %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding importance record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing importances %s: %w", path, err)
	}
	return nil
}

// List returns the names of benchmarks under dataDir, detected by the
// presence of a molecule list.
func List(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading data directory %s: %w", dataDir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dataDir, e.Name(), MoleculesFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
