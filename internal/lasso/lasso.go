package lasso

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimensionMismatch indicates X and y disagree on the sample count.
	ErrDimensionMismatch = errors.New("lasso: X and y have different numbers of samples")

	// ErrNoConvergence indicates coordinate descent exhausted its
	// iteration budget before the weight updates fell below tolerance.
	ErrNoConvergence = errors.New("lasso: coordinate descent did not converge")

	// ErrBadFolds indicates a cross-validation fold count below two or
	// above the sample count.
	ErrBadFolds = errors.New("lasso: fold count must lie in [2, samples]")
)

// Config holds the training parameters shared by all fits.
type Config struct {
	MaxIter        int     // coordinate descent sweep budget per fit
	Tol            float64 // convergence tolerance on the largest weight update
	NLambda        int     // candidate penalties on the path
	LambdaMinRatio float64 // smallest penalty as a fraction of lambda_max; 0 picks by shape
	Seed           int64   // fold shuffling
}

func DefaultConfig() Config {
	return Config{
		MaxIter: 1000,
		Tol:     1e-4,
		NLambda: 100,
		Seed:    1,
	}
}

// Lasso fits L1-penalized linear regression by cyclic coordinate
// descent on standardized features, minimizing
//
//	(1/2n)·||y - Xw||² + lambda·||w||₁
//
// The intercept is handled by centering and never penalized.
type Lasso struct {
	cfg Config
}

func New(cfg Config) *Lasso {
	return &Lasso{cfg: cfg}
}

// Support fits at a single fixed penalty and reports which predictors
// received nonzero coefficients. Zero status is invariant under the
// feature scaling, so the weights are never denormalized here.
func (l *Lasso) Support(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
	n, p := X.Dims()
	if len(y) != n {
		return nil, ErrDimensionMismatch
	}

	Xs := mat.DenseCopyOf(X)
	standardize(Xs)
	yc := make([]float64, n)
	copy(yc, y)
	center(yc)

	w := make([]float64, p)
	if err := l.descend(Xs, yc, lambda, w); err != nil {
		return nil, err
	}

	support := make([]bool, p)
	for j, wj := range w {
		support[j] = wj != 0
	}
	return support, nil
}

// descend runs cyclic coordinate descent at one penalty on
// pre-standardized data, warm-starting from w and leaving the solution
// in it. Soft-thresholding produces exact zeros, so the support needs
// no epsilon.
func (l *Lasso) descend(X *mat.Dense, y []float64, lambda float64, w []float64) error {
	n, p := X.Dims()
	nf := float64(n)

	// Residual r = y - Xw for the warm start.
	r := make([]float64, n)
	copy(r, y)
	for j := 0; j < p; j++ {
		if w[j] != 0 {
			addColScaled(r, X, j, -w[j])
		}
	}

	// Per-column (1/n)·||x_j||²; zero for constant columns, which
	// then stay out of the model.
	xtx := make([]float64, p)
	for j := 0; j < p; j++ {
		s := 0.0
		for i := 0; i < n; i++ {
			v := X.At(i, j)
			s += v * v
		}
		xtx[j] = s / nf
	}

	for iter := 0; iter < l.cfg.MaxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if xtx[j] == 0 {
				w[j] = 0
				continue
			}

			old := w[j]
			rho := old * xtx[j]
			for i := 0; i < n; i++ {
				rho += X.At(i, j) * r[i] / nf
			}

			next := softThreshold(rho, lambda) / xtx[j]
			if next != old {
				addColScaled(r, X, j, old-next)
				w[j] = next
			}
			if delta := math.Abs(next - old); delta > maxDelta {
				maxDelta = delta
			}
		}

		if maxDelta < l.cfg.Tol {
			for _, wj := range w {
				if math.IsNaN(wj) || math.IsInf(wj, 0) {
					return ErrNoConvergence
				}
			}
			return nil
		}
	}
	return ErrNoConvergence
}

// softThreshold is the proximal operator of the L1 penalty.
func softThreshold(z, lambda float64) float64 {
	switch {
	case z > lambda:
		return z - lambda
	case z < -lambda:
		return z + lambda
	default:
		return 0
	}
}

// standardize centers each column and scales it to unit sample
// standard deviation, in place. Near-constant columns keep scale 1 so
// the centered zeros pass through unchanged.
func standardize(X *mat.Dense) (means, stds []float64) {
	n, p := X.Dims()
	means = make([]float64, p)
	stds = make([]float64, p)

	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)

		means[j] = floats.Sum(col) / float64(n)
		variance := 0.0
		for i := range col {
			col[i] -= means[j]
			variance += col[i] * col[i]
		}

		stds[j] = math.Sqrt(variance / float64(n-1))
		if stds[j] < 1e-8 {
			stds[j] = 1
		} else {
			for i := range col {
				col[i] /= stds[j]
			}
		}
		X.SetCol(j, col)
	}
	return means, stds
}

// center subtracts the mean in place and returns it.
func center(y []float64) float64 {
	mean := floats.Sum(y) / float64(len(y))
	floats.AddConst(-mean, y)
	return mean
}

// addColScaled adds alpha times column j of X to dst.
func addColScaled(dst []float64, X *mat.Dense, j int, alpha float64) {
	for i := range dst {
		dst[i] += alpha * X.At(i, j)
	}
}

// denormalize maps standardized-scale weights back to the original
// feature scale and returns the matching intercept.
func denormalize(w, means, stds []float64, yMean float64) (orig []float64, intercept float64) {
	orig = make([]float64, len(w))
	dot := 0.0
	for j := range w {
		orig[j] = w[j] / stds[j]
		dot += orig[j] * means[j]
	}
	return orig, yMean - dot
}
