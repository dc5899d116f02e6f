// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package explain assembles the attribution pipeline: raw model importance
// dumps in, per-atom normalized importances, metric reports, and highlight
// documents out.
package explain

import (
	"fmt"

	"github.com/bbwen/molexplain/internal/attribution"
	"github.com/bbwen/molexplain/internal/chem"
	"github.com/bbwen/molexplain/internal/render"
	"github.com/bbwen/molexplain/pkg/types"
)

// PrepareAttributions turns raw importance records into one atom importance
// vector per molecule: the SMILES is parsed for bond topology, per-channel
// entries collapse to their last channel, and bond importances fold onto the
// endpoint atoms. Records must line up one-to-one with the molecule list.
func PrepareAttributions(smiles []string, records []types.ImportanceRecord) ([]*types.Molecule, [][]float64, error) {
	if len(records) != len(smiles) {
		return nil, nil, fmt.Errorf("%w: %d molecules, %d importance records",
			attribution.ErrShapeMismatch, len(smiles), len(records))
	}

	mols := make([]*types.Molecule, len(smiles))
	vectors := make([][]float64, len(smiles))
	for i, s := range smiles {
		mol, err := chem.FromSMILES(s)
		if err != nil {
			return nil, nil, fmt.Errorf("molecule %d (%q): %w", i, s, err)
		}

		atoms := attribution.CollapseChannels(records[i].Atoms)
		if len(atoms) != mol.NumAtoms() {
			return nil, nil, fmt.Errorf("%w: molecule %d (%q) has %d atoms, record has %d importances",
				attribution.ErrShapeMismatch, i, s, mol.NumAtoms(), len(atoms))
		}

		folded, err := attribution.FoldBonds(atoms, mol.BondPairs(), attribution.CollapseChannels(records[i].Bonds))
		if err != nil {
			return nil, nil, fmt.Errorf("molecule %d (%q): %w", i, s, err)
		}

		mols[i] = mol
		vectors[i] = folded
	}
	return mols, vectors, nil
}

// Normalize rescales the folded vectors with the configured pooled strategy.
func Normalize(vectors [][]float64, cfg types.EvaluateConfig) ([][]float64, error) {
	strategy, err := attribution.ParseNormalizer(cfg.Normalizer)
	if err != nil {
		return nil, err
	}
	return attribution.NormalizeAll(vectors, strategy, cfg.PositiveOnly)
}

// atomTruth resolves per-atom ground truth against the evaluation molecule
// list by structure, assembling truth vectors in evaluation order. Ground
// truth for a structure absent from the list is an error.
func atomTruth(smiles []string, labeled []types.AtomLabels) ([][]float64, error) {
	byStructure := make(map[string][]float64, len(labeled))
	for _, a := range labeled {
		if _, ok := byStructure[a.SMILES]; !ok {
			byStructure[a.SMILES] = a.Labels
		}
	}

	truth := make([][]float64, len(smiles))
	for i, s := range smiles {
		labels, ok := byStructure[s]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no ground truth", attribution.ErrMoleculeNotFound, s)
		}
		truth[i] = labels
	}
	return truth, nil
}

// Evaluate scores normalized importances against the benchmark's ground
// truth. Pair-shaped truth takes the cliff path; per-atom binary truth is
// scored with a threshold search when search is set, or at the fixed 0.5
// cut otherwise.
func Evaluate(smiles []string, norm [][]float64, truth *types.GroundTruth, search bool) (types.MetricReport, error) {
	if truth == nil {
		return types.MetricReport{}, fmt.Errorf("benchmark has no ground truth to evaluate against")
	}

	if truth.IsCliff() {
		return attribution.ScoreCliffs(smiles, norm, truth.Pairs)
	}

	atoms, err := atomTruth(smiles, truth.Atoms)
	if err != nil {
		return types.MetricReport{}, err
	}
	if search {
		return attribution.ScoreThreshold(atoms, norm)
	}
	return attribution.ScoreBinary(atoms, norm)
}

// Highlights builds one highlight document per molecule from its normalized
// importance vector.
func Highlights(mols []*types.Molecule, norm [][]float64, cfg types.VisualizeConfig) ([]render.Highlight, error) {
	if len(mols) != len(norm) {
		return nil, fmt.Errorf("%w: %d molecules, %d importance vectors",
			attribution.ErrShapeMismatch, len(mols), len(norm))
	}
	docs := make([]render.Highlight, len(mols))
	for i, mol := range mols {
		docs[i] = render.BuildHighlight(i, mol, norm[i], cfg)
	}
	return docs, nil
}
