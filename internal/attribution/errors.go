// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package attribution

import "errors"

// The error kinds scoring can surface. All of them mean the caller violated
// the evaluation contract; none are retryable.
var (
	// ErrShapeMismatch reports index-aligned vectors of unequal length.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrMoleculeNotFound reports a pair record referencing a structure
	// absent from the evaluation set.
	ErrMoleculeNotFound = errors.New("molecule not found in evaluation set")

	// ErrDegenerateDistribution reports a pooled distribution a transform
	// cannot be fitted on (empty, or zero range for min-max).
	ErrDegenerateDistribution = errors.New("degenerate pooled distribution")

	// ErrUnknownNormalizer reports an unrecognized strategy name.
	ErrUnknownNormalizer = errors.New("unknown normalizer")
)
