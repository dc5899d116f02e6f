// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns normalized atom importances into highlight documents
// and draws them through a container-based molecule renderer.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/bbwen/molexplain/pkg/types"
)

// Color is an RGB triple with channels in [0,1], the form molecule drawing
// toolkits take for highlight colors. It marshals as a 3-element array.
type Color struct {
	R, G, B float64
}

// MarshalJSON writes [r, g, b].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{c.R, c.G, c.B})
}

// UnmarshalJSON reads [r, g, b].
func (c *Color) UnmarshalJSON(data []byte) error {
	var arr [3]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("color is not a [r,g,b] triple: %w", err)
	}
	c.R, c.G, c.B = arr[0], arr[1], arr[2]
	return nil
}

var (
	// GreenCol and RedCol are the two highlight colors.
	GreenCol = Color{R: 0, G: 1, B: 0}
	RedCol   = Color{R: 1, G: 0, B: 0}
)

// AtomColors assigns a highlight color per atom from its importance vector.
// Atoms with |v| <= eps stay uncolored and are absent from the map. Atoms
// with v < -eps receive a three-decimal note carrying the raw value; they
// currently share RedCol with the positive branch, so the note is what
// distinguishes the sign in a rendering.
//
// Pure and deterministic: identical inputs produce identical mappings.
func AtomColors(imp []float64, eps float64) (map[int]Color, map[int]string) {
	atomCol := make(map[int]Color)
	notes := make(map[int]string)

	for idx, v := range imp {
		if v > eps {
			atomCol[idx] = RedCol
		}
		if v < -eps {
			atomCol[idx] = RedCol
			notes[idx] = fmt.Sprintf("%.3f", v)
		}
	}
	return atomCol, notes
}

// BondColors colors a bond only when both endpoint atoms carry the same
// color; the bond receives that shared color. Bonds with zero, one, or two
// differently-colored endpoints stay uncolored.
func BondColors(atomCol map[int]Color, bonds []types.Bond) map[int]Color {
	bondCol := make(map[int]Color)
	for idx, b := range bonds {
		ca, okA := atomCol[b.A]
		cb, okB := atomCol[b.B]
		if okA && okB && ca == cb {
			bondCol[idx] = ca
		}
	}
	return bondCol
}

// AtomRadii returns the per-atom highlight radius, a fixed 0.1 scaled by
// visFactor for every atom.
func AtomRadii(atomCount int, visFactor float64) map[int]float64 {
	radii := make(map[int]float64, atomCount)
	for i := 0; i < atomCount; i++ {
		radii[i] = 0.1 * visFactor
	}
	return radii
}

// Highlight is the document handed to a renderer: one molecule with its
// highlight colors, notes, and radii.
type Highlight struct {
	Index      int               `json:"index"`
	SMILES     string            `json:"smiles"`
	AtomColors map[int]Color     `json:"atom_colors"`
	AtomNotes  map[int]string    `json:"atom_notes,omitempty"`
	AtomRadii  map[int]float64   `json:"atom_radii"`
	BondColors map[int]Color     `json:"bond_colors"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
}

// BuildHighlight derives the full highlight document for one molecule from
// its normalized importance vector.
func BuildHighlight(idx int, mol *types.Molecule, imp []float64, cfg types.VisualizeConfig) Highlight {
	atomCol, notes := AtomColors(imp, cfg.Eps)
	return Highlight{
		Index:      idx,
		SMILES:     mol.SMILES,
		AtomColors: atomCol,
		AtomNotes:  notes,
		AtomRadii:  AtomRadii(mol.NumAtoms(), cfg.VisFactor),
		BondColors: BondColors(atomCol, mol.BondPairs()),
		Width:      cfg.ImgWidth,
		Height:     cfg.ImgHeight,
	}
}
