// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package attribution

import (
	"errors"
	"math"
	"testing"

	"github.com/bbwen/molexplain/pkg/types"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFoldBondsSplitsEvenly(t *testing.T) {
	// 3-atom chain: bond (0,1) carries 0.2, bond (1,2) carries 0.4.
	atoms := []float64{0, 0, 0}
	bonds := []types.Bond{{A: 0, B: 1}, {A: 1, B: 2}}
	bondImp := []float64{0.2, 0.4}

	got, err := FoldBonds(atoms, bonds, bondImp)
	if err != nil {
		t.Fatalf("FoldBonds: %v", err)
	}

	want := []float64{0.1, 0.3, 0.2}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("atom %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestFoldBondsConservesMass(t *testing.T) {
	atoms := []float64{0.3, -0.1, 0.7, 0.0}
	bonds := []types.Bond{{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 3}, {A: 0, B: 3}}
	bondImp := []float64{0.5, -0.2, 1.1, 0.05}

	got, err := FoldBonds(atoms, bonds, bondImp)
	if err != nil {
		t.Fatalf("FoldBonds: %v", err)
	}

	var before, after float64
	for _, v := range atoms {
		before += v
	}
	for _, v := range bondImp {
		before += v
	}
	for _, v := range got {
		after += v
	}
	if !approx(before, after) {
		t.Errorf("total mass = %g, want %g", after, before)
	}
}

func TestFoldBondsNilBondImportance(t *testing.T) {
	atoms := []float64{0.1, 0.2}
	got, err := FoldBonds(atoms, []types.Bond{{A: 0, B: 1}}, nil)
	if err != nil {
		t.Fatalf("FoldBonds: %v", err)
	}
	if !approx(got[0], 0.1) || !approx(got[1], 0.2) {
		t.Errorf("got %v, want input unchanged", got)
	}

	// The result is a copy, not the input's backing array.
	got[0] = 99
	if atoms[0] != 0.1 {
		t.Error("FoldBonds aliased the input vector")
	}
}

func TestFoldBondsShapeMismatch(t *testing.T) {
	_, err := FoldBonds([]float64{0, 0}, []types.Bond{{A: 0, B: 1}}, []float64{0.1, 0.2})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("err = %v, want ErrShapeMismatch", err)
	}

	_, err = FoldBonds([]float64{0, 0}, []types.Bond{{A: 0, B: 5}}, []float64{0.1})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("out-of-range bond: err = %v, want ErrShapeMismatch", err)
	}
}

func TestCollapseChannels(t *testing.T) {
	got := CollapseChannels([]types.Channels{{0.1}, {0.2, 0.9}, {}})
	want := []float64{0.1, 0.9, 0}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("entry %d = %g, want %g", i, got[i], want[i])
		}
	}

	if CollapseChannels(nil) != nil {
		t.Error("nil input should stay nil")
	}
}
