// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package attribution

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer selects the pooled rescaling strategy.
type Normalizer int

const (
	// MinMax rescales linearly so the pooled minimum maps to 0 and the
	// pooled maximum to 1.
	MinMax Normalizer = iota

	// Quantile maps each value to its quantile rank within the pooled
	// distribution: monotonic, approximately uniform on [0,1].
	Quantile
)

// String returns the config name of the strategy.
func (n Normalizer) String() string {
	switch n {
	case MinMax:
		return "minmax"
	case Quantile:
		return "quantile"
	}
	return fmt.Sprintf("normalizer(%d)", int(n))
}

// ParseNormalizer maps a config name to a strategy. The framework-native
// scaler class names are accepted as aliases.
func ParseNormalizer(name string) (Normalizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "minmax", "min-max", "minmaxscaler":
		return MinMax, nil
	case "quantile", "quantiletransformer":
		return Quantile, nil
	}
	return 0, fmt.Errorf("%w: %q (want minmax or quantile)", ErrUnknownNormalizer, name)
}

// DistributionFit is the fitted-transform capability: Fit sees the pooled
// values once, Transform then rescales any value against that fit.
type DistributionFit interface {
	Fit(values []float64) error
	Transform(v float64) float64
}

// NewFit returns a fresh, unfitted transform for the strategy.
func (n Normalizer) NewFit() DistributionFit {
	if n == Quantile {
		return &quantileFit{}
	}
	return &minMaxFit{}
}

// minMaxFit is the linear rescale (x - min) / (max - min).
type minMaxFit struct {
	min, max float64
}

func (f *minMaxFit) Fit(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: no values to fit", ErrDegenerateDistribution)
	}
	f.min, f.max = values[0], values[0]
	for _, v := range values[1:] {
		if v < f.min {
			f.min = v
		}
		if v > f.max {
			f.max = v
		}
	}
	if f.max == f.min {
		return fmt.Errorf("%w: all %d pooled values equal %g", ErrDegenerateDistribution, len(values), f.min)
	}
	return nil
}

func (f *minMaxFit) Transform(v float64) float64 {
	return (v - f.min) / (f.max - f.min)
}

// quantileFit maps a value to its interpolated rank in the sorted pool.
// Values outside the pooled range clamp to 0 or 1.
type quantileFit struct {
	sorted []float64
}

func (f *quantileFit) Fit(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: no values to fit", ErrDegenerateDistribution)
	}
	f.sorted = append([]float64(nil), values...)
	sort.Float64s(f.sorted)
	return nil
}

func (f *quantileFit) Transform(v float64) float64 {
	n := len(f.sorted)
	if n == 1 {
		if v < f.sorted[0] {
			return 0
		}
		return 1
	}
	if v <= f.sorted[0] {
		return 0
	}
	if v >= f.sorted[n-1] {
		return 1
	}

	// First reference ≥ v; interpolate between it and its predecessor.
	i := sort.SearchFloat64s(f.sorted, v)
	lo, hi := f.sorted[i-1], f.sorted[i]
	frac := float64(i-1) + (v-lo)/(hi-lo)
	return frac / float64(n-1)
}

// NormalizeAll fits a single transform across the pooled values of every
// vector and returns each vector rescaled with it. Vector count, per-vector
// lengths, and value order are preserved.
//
// The fit must see the union of all vectors before any vector is
// transformed; fitting per vector would break comparability across
// molecules. With positiveOnly the transform is fitted on the positive
// pooled values only, but every value is still transformed.
func NormalizeAll(vectors [][]float64, strategy Normalizer, positiveOnly bool) ([][]float64, error) {
	var pool []float64
	for _, vec := range vectors {
		for _, v := range vec {
			if positiveOnly && v <= 0 {
				continue
			}
			pool = append(pool, v)
		}
	}

	fit := strategy.NewFit()
	if err := fit.Fit(pool); err != nil {
		return nil, fmt.Errorf("fitting %s over %d molecules: %w", strategy, len(vectors), err)
	}

	out := make([][]float64, len(vectors))
	for i, vec := range vectors {
		normed := make([]float64, len(vec))
		for j, v := range vec {
			normed[j] = fit.Transform(v)
		}
		out[i] = normed
	}
	return out, nil
}
