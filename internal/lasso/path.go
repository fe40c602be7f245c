package lasso

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/stabkit/stabsel/internal/stabsel"
)

// Path computes the candidate penalty grid on the full data and scores
// it by k-fold cross-validation. LambdaMin minimizes the mean held-out
// squared error; Lambda1SE is the largest penalty whose mean error
// stays within one standard error of that minimum.
func (l *Lasso) Path(X *mat.Dense, y []float64, folds int) (stabsel.PenaltyPath, error) {
	n, _ := X.Dims()
	if len(y) != n {
		return stabsel.PenaltyPath{}, ErrDimensionMismatch
	}
	if folds < 2 || folds > n {
		return stabsel.PenaltyPath{}, ErrBadFolds
	}

	lambdas := l.grid(X, y)

	// Held-out squared errors pooled per lambda across folds.
	mse := make([][]float64, len(lambdas))
	for i := range mse {
		mse[i] = make([]float64, folds)
	}

	perm := rand.New(rand.NewSource(l.cfg.Seed)).Perm(n)
	for f := 0; f < folds; f++ {
		lo := f * n / folds
		hi := (f + 1) * n / folds
		test := perm[lo:hi]
		train := make([]int, 0, n-len(test))
		train = append(train, perm[:lo]...)
		train = append(train, perm[hi:]...)

		if err := l.foldErrors(X, y, train, test, lambdas, mse, f); err != nil {
			return stabsel.PenaltyPath{}, err
		}
	}

	mean := make([]float64, len(lambdas))
	stderr := make([]float64, len(lambdas))
	for i := range lambdas {
		m := 0.0
		for _, e := range mse[i] {
			m += e
		}
		m /= float64(folds)
		mean[i] = m

		ss := 0.0
		for _, e := range mse[i] {
			ss += (e - m) * (e - m)
		}
		stderr[i] = math.Sqrt(ss/float64(folds-1)) / math.Sqrt(float64(folds))
	}

	best := 0
	for i := range mean {
		if mean[i] < mean[best] {
			best = i
		}
	}

	// Largest penalty within one standard error of the minimum; the
	// grid is decreasing, so the first qualifying index wins.
	oneSE := best
	for i := 0; i <= best; i++ {
		if mean[i] <= mean[best]+stderr[best] {
			oneSE = i
			break
		}
	}

	return stabsel.PenaltyPath{
		Lambdas:   lambdas,
		LambdaMin: lambdas[best],
		Lambda1SE: lambdas[oneSE],
	}, nil
}

// foldErrors fits the whole path on one training fold, warm-starting
// down the grid, and records the held-out MSE per lambda.
func (l *Lasso) foldErrors(X *mat.Dense, y []float64, train, test []int, lambdas []float64, mse [][]float64, fold int) error {
	_, p := X.Dims()

	Xt := mat.NewDense(len(train), p, nil)
	yt := make([]float64, len(train))
	for k, i := range train {
		Xt.SetRow(k, mat.Row(nil, i, X))
		yt[k] = y[i]
	}

	means, stds := standardize(Xt)
	yMean := center(yt)

	w := make([]float64, p)
	for li, lambda := range lambdas {
		if err := l.descend(Xt, yt, lambda, w); err != nil {
			return err
		}

		orig, intercept := denormalize(w, means, stds, yMean)
		sum := 0.0
		for _, i := range test {
			pred := intercept
			for j := 0; j < p; j++ {
				pred += X.At(i, j) * orig[j]
			}
			diff := y[i] - pred
			sum += diff * diff
		}
		mse[li][fold] = sum / float64(len(test))
	}
	return nil
}

// grid builds the log-spaced candidate set from lambda_max, the
// smallest penalty that zeroes every coefficient on the full data.
func (l *Lasso) grid(X *mat.Dense, y []float64) []float64 {
	n, p := X.Dims()

	Xs := mat.DenseCopyOf(X)
	standardize(Xs)
	yc := make([]float64, n)
	copy(yc, y)
	center(yc)

	lambdaMax := 0.0
	for j := 0; j < p; j++ {
		dot := 0.0
		for i := 0; i < n; i++ {
			dot += Xs.At(i, j) * yc[i]
		}
		if abs := math.Abs(dot) / float64(n); abs > lambdaMax {
			lambdaMax = abs
		}
	}
	if lambdaMax == 0 {
		lambdaMax = 1e-3
	}

	ratio := l.cfg.LambdaMinRatio
	if ratio <= 0 {
		if n > p {
			ratio = 1e-3
		} else {
			ratio = 1e-2
		}
	}

	k := l.cfg.NLambda
	if k < 2 {
		k = 2
	}
	lambdas := make([]float64, k)
	logRatio := math.Log(ratio)
	for i := range lambdas {
		lambdas[i] = lambdaMax * math.Exp(float64(i)/float64(k-1)*logRatio)
	}
	return lambdas
}
