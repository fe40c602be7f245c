package stabsel

import (
	"context"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Build obtains the candidate path from the fitter, then fills one
// selection matrix per penalty from Replicates half-sample refits.
// Subsamples are drawn without replacement with rows and responses
// paired. Every (penalty, replicate) task seeds its own random stream
// from the top-level seed and the task index, so a fixed seed
// reproduces the matrices for any worker count.
//
// Any fitter failure aborts the build; no partial result is returned.
func Build(ctx context.Context, fitter Fitter, X *mat.Dense, y []float64, predictors []string, cfg Config) (*Result, error) {
	n, p := X.Dims()
	if err := validate(n, p, len(y), predictors, cfg); err != nil {
		return nil, err
	}
	if predictors == nil {
		predictors = defaultNames(p)
	}

	path, err := fitter.Path(X, y, cfg.Folds)
	if err != nil {
		return nil, err
	}
	if len(path.Lambdas) == 0 {
		return nil, ErrEmptyPath
	}
	for i := 1; i < len(path.Lambdas); i++ {
		if path.Lambdas[i] >= path.Lambdas[i-1] {
			return nil, ErrPathOrder
		}
	}

	half := n / 2
	matrices := make([]*SelectionMatrix, len(path.Lambdas))
	for l := range matrices {
		matrices[l] = NewSelectionMatrix(predictors, cfg.Replicates)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	total := len(path.Lambdas) * cfg.Replicates
	errs := make([]error, total)
	tasks := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				l := idx / cfg.Replicates
				b := idx % cfg.Replicates
				lambda := path.Lambdas[l]

				rng := rand.New(rand.NewSource(cfg.Seed + int64(idx)))
				xs, ys := subsample(X, y, half, rng)

				support, err := fitter.Support(xs, ys, lambda)
				if err != nil {
					errs[idx] = &FitError{Lambda: lambda, Replicate: b, Wrapped: err}
					continue
				}
				if len(support) != p {
					errs[idx] = &FitError{Lambda: lambda, Replicate: b, Wrapped: ErrDimensionMismatch}
					continue
				}
				matrices[l].SetRow(b, support)
			}
		}()
	}

feed:
	for idx := 0; idx < total; idx++ {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- idx:
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Path:       path,
		Predictors: predictors,
		Matrices:   matrices,
		Seed:       cfg.Seed,
	}, nil
}

func validate(n, p, ny int, predictors []string, cfg Config) error {
	if n != ny {
		return ErrDimensionMismatch
	}
	if p < 1 {
		return ErrNoPredictors
	}
	if predictors != nil && len(predictors) != p {
		return ErrDimensionMismatch
	}
	if cfg.Replicates < 2 {
		return ErrTooFewReplicates
	}
	if n < 4 {
		return ErrTooFewSamples
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return ErrBadAlpha
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return ErrBadThreshold
	}
	return nil
}

// subsample draws size rows of X and y without replacement, keeping
// row i of X paired with y[i].
func subsample(X *mat.Dense, y []float64, size int, rng *rand.Rand) (*mat.Dense, []float64) {
	_, p := X.Dims()
	idx := rng.Perm(len(y))[:size]

	xs := mat.NewDense(size, p, nil)
	ys := make([]float64, size)
	for k, i := range idx {
		xs.SetRow(k, mat.Row(nil, i, X))
		ys[k] = y[i]
	}
	return xs, ys
}
