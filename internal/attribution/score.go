// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package attribution

import (
	"fmt"
	"math"
	"sort"

	"github.com/bbwen/molexplain/pkg/types"
)

// Metric names as they appear in reports and the results store.
const (
	MetricAUROC = "ATT AUROC"
	MetricF1    = "ATT F1"
	MetricACC   = "ATT ACC"
)

// thresholdGrid is the spacing of the threshold search over (0, 1).
const thresholdGrid = 0.01

// signedClasses are the cliff-mode attribution classes.
var signedClasses = []float64{-1, 0, 1}

// NaNMean returns the mean of xs ignoring NaN entries. Molecules whose
// metric is undefined are excluded from the average rather than counted as
// zero. When every entry is NaN the mean itself is NaN.
func NaNMean(xs []float64) float64 {
	var sum float64
	var n int
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// BinarizeAt cuts a continuous vector at t: v > t maps to 1, else 0.
func BinarizeAt(vec []float64, t float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		if v > t {
			out[i] = 1
		}
	}
	return out
}

// BinarizeSigned cuts a continuous vector three ways: v > t maps to 1,
// v < -t maps to -1, else 0.
func BinarizeSigned(vec []float64, t float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		switch {
		case v > t:
			out[i] = 1
		case v < -t:
			out[i] = -1
		}
	}
	return out
}

// sameClass compares class labels stored as floats.
func sameClass(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// f1Binary is the binary F1 with positive class 1. NaN when no positives
// exist in either truth or prediction (the score is undefined, not zero).
func f1Binary(truth, pred []float64) float64 {
	var tp, fp, fn float64
	for i := range truth {
		tpos := truth[i] > 0.5
		ppos := pred[i] > 0.5
		switch {
		case tpos && ppos:
			tp++
		case !tpos && ppos:
			fp++
		case tpos && !ppos:
			fn++
		}
	}
	denom := 2*tp + fp + fn
	if denom == 0 {
		return math.NaN()
	}
	return 2 * tp / denom
}

// f1Macro averages one-vs-rest F1 over classes, excluding classes absent
// from both truth and prediction.
func f1Macro(truth, pred []float64, classes []float64) float64 {
	perClass := make([]float64, len(classes))
	for ci, c := range classes {
		var tp, fp, fn float64
		for i := range truth {
			tpos := sameClass(truth[i], c)
			ppos := sameClass(pred[i], c)
			switch {
			case tpos && ppos:
				tp++
			case !tpos && ppos:
				fp++
			case tpos && !ppos:
				fn++
			}
		}
		denom := 2*tp + fp + fn
		if denom == 0 {
			perClass[ci] = math.NaN()
		} else {
			perClass[ci] = 2 * tp / denom
		}
	}
	return NaNMean(perClass)
}

// accuracy is the exact-match fraction.
func accuracy(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return math.NaN()
	}
	var hits int
	for i := range truth {
		if sameClass(truth[i], pred[i]) {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// AUROC computes the area under the ROC curve from continuous scores against
// binary ground truth, via the rank-sum identity with average ranks for
// ties. NaN when the truth contains a single class.
func AUROC(truth, scores []float64) float64 {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		// 1-based average rank across the tie group [i, j).
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var rankSum float64
	var pos, neg int
	for i := range truth {
		if truth[i] > 0.5 {
			pos++
			rankSum += ranks[i]
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return math.NaN()
	}
	return (rankSum - float64(pos)*float64(pos+1)/2) / (float64(pos) * float64(neg))
}

// validatePairs checks that truth and predicted collections agree in
// molecule count and per-molecule vector length.
func validatePairs(truth, pred [][]float64) error {
	if len(truth) != len(pred) {
		return fmt.Errorf("%w: %d ground-truth molecules, %d predicted", ErrShapeMismatch, len(truth), len(pred))
	}
	for i := range truth {
		if len(truth[i]) != len(pred[i]) {
			return fmt.Errorf("%w: molecule %d has %d ground-truth atoms, %d predicted",
				ErrShapeMismatch, i, len(truth[i]), len(pred[i]))
		}
	}
	return nil
}

// OptimalThreshold grid-searches (0, 1) in 0.01 steps for the cut that
// maximizes the NaN-excluding mean of per-molecule F1. The search pools
// every molecule at each candidate; the winner is a single scalar applied
// uniformly. Ties keep the first (lowest) threshold. With signed, candidates
// binarize three ways at ±t and score macro F1 over the signed classes.
func OptimalThreshold(truth, pred [][]float64, signed bool) float64 {
	best := thresholdGrid
	bestScore := math.Inf(-1)

	perMol := make([]float64, len(pred))
	for step := 1; float64(step)*thresholdGrid < 1; step++ {
		t := float64(step) * thresholdGrid
		for i := range pred {
			if signed {
				perMol[i] = f1Macro(truth[i], BinarizeSigned(pred[i], t), signedClasses)
			} else {
				perMol[i] = f1Binary(truth[i], BinarizeAt(pred[i], t))
			}
		}
		if score := NaNMean(perMol); score > bestScore {
			bestScore = score
			best = t
		}
	}
	return best
}

// ScoreBinary scores predictions against binary ground truth directly,
// without threshold search; the reported threshold is the NoThreshold
// sentinel. Continuous predictions are cut at 0.5; already-binary vectors
// pass through that cut unchanged.
func ScoreBinary(truth, pred [][]float64) (types.MetricReport, error) {
	if err := validatePairs(truth, pred); err != nil {
		return types.MetricReport{}, err
	}

	f1s := make([]float64, len(pred))
	accs := make([]float64, len(pred))
	for i := range pred {
		bin := BinarizeAt(pred[i], 0.5)
		f1s[i] = f1Binary(truth[i], bin)
		accs[i] = accuracy(truth[i], bin)
	}

	var report types.MetricReport
	report.Add(MetricF1, NaNMean(f1s))
	report.Add(MetricACC, NaNMean(accs))
	report.Threshold = types.NoThreshold
	return report, nil
}

// ScoreThreshold searches for the optimal decision threshold, binarizes
// every prediction with it, and reports AUROC (on the continuous scores),
// F1, and accuracy (on the binarized scores), each averaged across molecules
// with NaN exclusion.
func ScoreThreshold(truth, pred [][]float64) (types.MetricReport, error) {
	if err := validatePairs(truth, pred); err != nil {
		return types.MetricReport{}, err
	}

	t := OptimalThreshold(truth, pred, false)

	aurocs := make([]float64, len(pred))
	f1s := make([]float64, len(pred))
	accs := make([]float64, len(pred))
	for i := range pred {
		aurocs[i] = AUROC(truth[i], pred[i])
		bin := BinarizeAt(pred[i], t)
		f1s[i] = f1Binary(truth[i], bin)
		accs[i] = accuracy(truth[i], bin)
	}

	var report types.MetricReport
	report.Add(MetricAUROC, NaNMean(aurocs))
	report.Add(MetricF1, NaNMean(f1s))
	report.Add(MetricACC, NaNMean(accs))
	report.Threshold = t
	return report, nil
}

// AlignCliffPairs resolves each pair record against the evaluation molecule
// list by exact structure match and assembles flattened ground-truth and
// predicted collections in pair order, first member then second. A pair
// referencing a structure absent from the list is an error, never a skip.
func AlignCliffPairs(smiles []string, pred [][]float64, pairs []types.CliffPair) (truth, aligned [][]float64, err error) {
	index := make(map[string]int, len(smiles))
	for i, s := range smiles {
		if _, ok := index[s]; !ok {
			index[s] = i
		}
	}

	for _, p := range pairs {
		for _, half := range []struct {
			smiles string
			labels []float64
		}{
			{p.SMILES1, p.Attribution1},
			{p.SMILES2, p.Attribution2},
		} {
			i, ok := index[half.smiles]
			if !ok {
				return nil, nil, fmt.Errorf("%w: %q", ErrMoleculeNotFound, half.smiles)
			}
			aligned = append(aligned, pred[i])
			truth = append(truth, half.labels)
		}
	}
	return truth, aligned, nil
}

// ScoreCliffs scores signed pair-shaped ground truth. The threshold search
// runs three-way over ±t and is reported; the final binarization uses the
// fixed ±0.5 rule. F1 is macro-averaged over the signed classes.
func ScoreCliffs(smiles []string, pred [][]float64, pairs []types.CliffPair) (types.MetricReport, error) {
	truth, aligned, err := AlignCliffPairs(smiles, pred, pairs)
	if err != nil {
		return types.MetricReport{}, err
	}
	if err := validatePairs(truth, aligned); err != nil {
		return types.MetricReport{}, err
	}

	t := OptimalThreshold(truth, aligned, true)

	f1s := make([]float64, len(aligned))
	accs := make([]float64, len(aligned))
	for i := range aligned {
		bin := BinarizeSigned(aligned[i], 0.5)
		f1s[i] = f1Macro(truth[i], bin, signedClasses)
		accs[i] = accuracy(truth[i], bin)
	}

	var report types.MetricReport
	report.Add(MetricF1, NaNMean(f1s))
	report.Add(MetricACC, NaNMean(accs))
	report.Threshold = t
	return report, nil
}
