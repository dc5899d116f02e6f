// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chem resolves SMILES structure strings to atom counts and ordered
// bond lists. It parses connectivity only: bond orders, aromaticity, charges,
// and isotopes are recognized but not interpreted, since attribution scoring
// needs the molecular graph, not the chemistry.
package chem

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/bbwen/molexplain/pkg/types"
)

// SMILES needs its own token rules: a default lexer would fold runs of
// organic-subset atoms ("CC") into a single identifier. Two-letter symbols
// (Cl, Br) must come before the single-letter class.
var smilesLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "BracketAtom", Pattern: `\[[^\[\]]+\]`},
	{Name: "Organic", Pattern: `Cl|Br|[BCNOPSFIbcnops]`},
	{Name: "Ring2", Pattern: `%[0-9][0-9]`},
	{Name: "Digit", Pattern: `[0-9]`},
	{Name: "BondSym", Pattern: `[-=#:$/\\]`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
})

type smilesAST struct {
	Fragments []*fragmentAST `parser:"@@ ( Dot @@ )*"`
}

type fragmentAST struct {
	First *atomAST   `parser:"@@"`
	Units []*unitAST `parser:"@@*"`
}

type unitAST struct {
	Branch *branchAST `parser:"  @@"`
	Atom   *linkAST   `parser:"| @@"`
}

type branchAST struct {
	Bond  string       `parser:"LParen @BondSym?"`
	Chain *fragmentAST `parser:"@@ RParen"`
}

type linkAST struct {
	Bond string   `parser:"@BondSym?"`
	Atom *atomAST `parser:"@@"`
}

type atomAST struct {
	Bracket string     `parser:"( @BracketAtom"`
	Organic string     `parser:"| @Organic )"`
	Rings   []*ringAST `parser:"@@*"`
}

type ringAST struct {
	Bond  string `parser:"@BondSym?"`
	Label string `parser:"( @Digit | @Ring2 )"`
}

// Lookahead 2: after an atom, a bond symbol alone does not decide between a
// ring closure ("C-1") and a chained atom ("C-C").
var smilesParser = participle.MustBuild[smilesAST](
	participle.Lexer(smilesLexer),
	participle.UseLookahead(2),
)

// molBuilder accumulates atoms and bonds while walking the parse tree.
// Ring-closure labels are paired across the walk and freed on closure so
// labels can be reused, as SMILES allows.
type molBuilder struct {
	atomCount int
	bonds     []types.Bond
	open      map[string]int // ring label → atom index awaiting its partner
}

func (b *molBuilder) walk(f *fragmentAST, from int) error {
	cur, err := b.placeAtom(f.First, from)
	if err != nil {
		return err
	}
	for _, u := range f.Units {
		switch {
		case u.Branch != nil:
			if err := b.walk(u.Branch.Chain, cur); err != nil {
				return err
			}
		case u.Atom != nil:
			cur, err = b.placeAtom(u.Atom.Atom, cur)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *molBuilder) placeAtom(a *atomAST, from int) (int, error) {
	idx := b.atomCount
	b.atomCount++

	if from >= 0 {
		b.bonds = append(b.bonds, types.Bond{A: from, B: idx})
	}

	for _, r := range a.Rings {
		label := strings.TrimPrefix(r.Label, "%")
		partner, ok := b.open[label]
		if !ok {
			b.open[label] = idx
			continue
		}
		if partner == idx {
			return 0, fmt.Errorf("ring bond %s closes on its own atom", label)
		}
		b.bonds = append(b.bonds, types.Bond{A: partner, B: idx})
		delete(b.open, label)
	}

	return idx, nil
}

// FromSMILES parses a SMILES string and returns its connectivity. Atom
// indices follow order of appearance; bond indices follow the order bonds
// are completed during the walk, ring closures at the closing atom.
func FromSMILES(s string) (*types.Molecule, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("empty SMILES string")
	}

	ast, err := smilesParser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing SMILES %q: %w", s, err)
	}

	b := &molBuilder{open: make(map[string]int)}
	for _, f := range ast.Fragments {
		if err := b.walk(f, -1); err != nil {
			return nil, fmt.Errorf("building molecule from %q: %w", s, err)
		}
	}

	if len(b.open) > 0 {
		labels := make([]string, 0, len(b.open))
		for l := range b.open {
			labels = append(labels, l)
		}
		return nil, fmt.Errorf("unclosed ring bond(s) %v in %q", labels, s)
	}

	return &types.Molecule{
		SMILES:    s,
		AtomCount: b.atomCount,
		Bonds:     b.bonds,
	}, nil
}
