// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package attribution implements the numeric core of attribution evaluation:
// folding bond importances onto atoms, rescaling pooled importance
// distributions, and scoring predicted attributions against ground truth.
package attribution

import (
	"fmt"

	"github.com/bbwen/molexplain/pkg/types"
)

// FoldBonds returns a new atom importance vector where each bond's importance
// is split evenly between its endpoint atoms. The input vectors are never
// mutated. A nil bond importance vector returns a copy of atoms unchanged.
//
// Total mass is conserved: the output sums to sum(atoms) + sum(bondImp).
func FoldBonds(atoms []float64, bonds []types.Bond, bondImp []float64) ([]float64, error) {
	out := append([]float64(nil), atoms...)
	if bondImp == nil {
		return out, nil
	}

	if len(bonds) != len(bondImp) {
		return nil, fmt.Errorf("%w: %d bonds, %d bond importances", ErrShapeMismatch, len(bonds), len(bondImp))
	}

	for i, b := range bonds {
		if b.A < 0 || b.A >= len(out) || b.B < 0 || b.B >= len(out) {
			return nil, fmt.Errorf("%w: bond %d joins atoms (%d, %d), molecule has %d atoms",
				ErrShapeMismatch, i, b.A, b.B, len(out))
		}
		out[b.A] += bondImp[i] / 2
		out[b.B] += bondImp[i] / 2
	}

	return out, nil
}

// CollapseChannels reduces a per-channel importance vector to scalars using
// the last channel of each entry. Returns nil for nil input so absent bond
// importances stay absent.
func CollapseChannels(entries []types.Channels) []float64 {
	if entries == nil {
		return nil
	}
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Last()
	}
	return out
}
