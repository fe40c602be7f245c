package stabsel

import (
	"errors"
	"fmt"
)

// Domain errors for stability analysis.
var (
	// ErrDimensionMismatch indicates X, y or the predictor names disagree on size.
	ErrDimensionMismatch = errors.New("stabsel: dimension mismatch between X, y and predictors")

	// ErrTooFewReplicates indicates fewer than two selection rows.
	ErrTooFewReplicates = errors.New("stabsel: at least two replicates required")

	// ErrTooFewSamples indicates too few rows to draw half-sample subsamples.
	ErrTooFewSamples = errors.New("stabsel: too few samples to subsample")

	// ErrNoPredictors indicates a design or selection matrix without columns.
	ErrNoPredictors = errors.New("stabsel: no predictor columns")

	// ErrBadAlpha indicates a significance level outside (0, 1).
	ErrBadAlpha = errors.New("stabsel: alpha must lie in (0, 1)")

	// ErrBadThreshold indicates a frequency cutoff outside [0, 1].
	ErrBadThreshold = errors.New("stabsel: threshold must lie in [0, 1]")

	// ErrDegenerateSelection indicates a uniform selection pattern (all
	// entries selected or none), for which stability is undefined.
	ErrDegenerateSelection = errors.New("stabsel: degenerate selection (uniform matrix)")

	// ErrEmptyPath indicates the fitter produced no candidate penalties.
	ErrEmptyPath = errors.New("stabsel: empty candidate set")

	// ErrPathOrder indicates candidate penalties that are not strictly decreasing.
	ErrPathOrder = errors.New("stabsel: candidate penalties must be strictly decreasing")
)

// FitError wraps a fitter failure with the penalty and replicate that
// produced it.
type FitError struct {
	Lambda    float64
	Replicate int
	Wrapped   error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("stabsel: fit failed at lambda=%.6g replicate %d: %v", e.Lambda, e.Replicate, e.Wrapped)
}

func (e *FitError) Unwrap() error {
	return e.Wrapped
}
