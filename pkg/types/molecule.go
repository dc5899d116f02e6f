// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model: molecules, attribution vectors,
// ground-truth records, metric reports, and stage configuration.
package types

// Bond is an edge between two atoms. Bonds are index-aligned with a
// molecule's bond importance vector.
type Bond struct {
	A int `json:"a" yaml:"a"`
	B int `json:"b" yaml:"b"`
}

// Molecule is the connectivity view of a parsed structure: how many atoms it
// has and which pairs are bonded. Atom and bond indices follow the order of
// appearance in the source SMILES string.
type Molecule struct {
	SMILES    string `json:"smiles" yaml:"smiles"`
	AtomCount int    `json:"atom_count" yaml:"atom_count"`
	Bonds     []Bond `json:"bonds" yaml:"bonds"`
}

// NumAtoms returns the number of atoms.
func (m *Molecule) NumAtoms() int { return m.AtomCount }

// BondPairs returns the ordered bond list.
func (m *Molecule) BondPairs() []Bond { return m.Bonds }
