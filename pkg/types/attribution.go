// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// Channels is one entry of an importance vector. Model frameworks dump either
// a scalar per atom/bond or one score per output channel; both decode into
// Channels, and Last collapses the per-channel form to a scalar.
type Channels []float64

// UnmarshalJSON accepts either a bare number or an array of numbers.
func (c *Channels) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*c = Channels{scalar}
		return nil
	}
	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return fmt.Errorf("importance entry is neither a number nor an array: %w", err)
	}
	*c = Channels(vec)
	return nil
}

// MarshalJSON writes the scalar form when there is a single channel.
func (c Channels) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]float64(c))
}

// Last returns the final channel, the scalar importance value.
// Zero-channel entries score 0.
func (c Channels) Last() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1]
}

// ImportanceRecord is one line of a model importance dump (JSONL, one record
// per molecule in evaluation order). Bonds may be absent when the attribution
// method scores atoms only.
type ImportanceRecord struct {
	Index  int        `json:"index"`
	SMILES string     `json:"smiles,omitempty"`
	Atoms  []Channels `json:"atoms"`
	Bonds  []Channels `json:"bonds,omitempty"`
}

// AtomLabels is per-atom binary ground truth for one molecule.
type AtomLabels struct {
	SMILES string    `json:"smiles" yaml:"smiles"`
	Labels []float64 `json:"labels" yaml:"labels"`
}

// CliffPair is comparative ground truth for an activity-cliff pair: two
// structurally similar molecules with signed (-1, 0, +1) per-atom
// attributions.
type CliffPair struct {
	SMILES1      string    `json:"smiles_1" yaml:"smiles_1"`
	SMILES2      string    `json:"smiles_2" yaml:"smiles_2"`
	Attribution1 []float64 `json:"attribution_1" yaml:"attribution_1"`
	Attribution2 []float64 `json:"attribution_2" yaml:"attribution_2"`
}

// GroundTruth holds whichever ground-truth shape a benchmark ships: per-atom
// binary labels, or cliff pairs. Exactly one of the two lists is populated.
type GroundTruth struct {
	Atoms []AtomLabels `json:"atoms,omitempty" yaml:"atoms,omitempty"`
	Pairs []CliffPair  `json:"pairs,omitempty" yaml:"pairs,omitempty"`
}

// IsCliff reports whether the ground truth is pair-shaped.
func (g *GroundTruth) IsCliff() bool { return len(g.Pairs) > 0 }

// Metric is a single named score.
type Metric struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// NoThreshold is the sentinel threshold reported when no threshold search
// applies (binary-mode scoring).
const NoThreshold = -1

// MetricReport is an ordered metric-name → score mapping plus the decision
// threshold that produced the binarized scores (NoThreshold when none).
type MetricReport struct {
	Metrics   []Metric `json:"metrics" yaml:"metrics"`
	Threshold float64  `json:"threshold" yaml:"threshold"`
}

// Add appends a named score, preserving insertion order.
func (r *MetricReport) Add(name string, value float64) {
	r.Metrics = append(r.Metrics, Metric{Name: name, Value: value})
}

// Get returns the named score, or false when the report has no such metric.
func (r *MetricReport) Get(name string) (float64, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}
