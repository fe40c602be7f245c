package stabsel

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

type stubFitter struct {
	path    PenaltyPath
	pathErr error
	support func(X *mat.Dense, y []float64, lambda float64) ([]bool, error)
}

func (f *stubFitter) Path(X *mat.Dense, y []float64, folds int) (PenaltyPath, error) {
	if f.pathErr != nil {
		return PenaltyPath{}, f.pathErr
	}
	return f.path, nil
}

func (f *stubFitter) Support(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
	return f.support(X, y, lambda)
}

func testData(n, p int) (*mat.Dense, []float64) {
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, float64(i*p+j))
		}
		y[i] = float64(i) * 10
	}
	return X, y
}

func TestBuildShape(t *testing.T) {
	X, y := testData(10, 3)
	fit := &stubFitter{
		path: PenaltyPath{Lambdas: []float64{3, 2, 1}, LambdaMin: 2, Lambda1SE: 3},
		support: func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
			if lambda >= 2 {
				return []bool{true, false, false}, nil
			}
			return []bool{true, true, false}, nil
		},
	}

	cfg := DefaultConfig()
	cfg.Replicates = 5

	res, err := Build(context.Background(), fit, X, y, []string{"a", "b", "c"}, cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(res.Matrices) != 3 {
		t.Fatalf("expected 3 matrices, got %d", len(res.Matrices))
	}
	for l, m := range res.Matrices {
		if m.Rows() != 5 || m.Cols() != 3 {
			t.Errorf("matrix %d: expected 5x3, got %dx%d", l, m.Rows(), m.Cols())
		}
	}

	// Penalties 3 and 2 select only the first predictor, penalty 1 the
	// first two.
	if res.Matrices[0].At(0, 0) != 1 || res.Matrices[0].At(0, 1) != 0 {
		t.Errorf("unexpected support at the largest penalty")
	}
	if res.Matrices[2].At(4, 1) != 1 {
		t.Errorf("expected second predictor selected at the smallest penalty")
	}

	if res.Path.LambdaMin != 2 || res.Path.Lambda1SE != 3 {
		t.Errorf("path references not carried through: %+v", res.Path)
	}
}

func TestBuildDefaultNames(t *testing.T) {
	X, y := testData(8, 2)
	fit := &stubFitter{
		path: PenaltyPath{Lambdas: []float64{1}},
		support: func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
			return []bool{true, false}, nil
		},
	}

	cfg := DefaultConfig()
	cfg.Replicates = 2

	res, err := Build(context.Background(), fit, X, y, nil, cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if res.Predictors[0] != "x0" || res.Predictors[1] != "x1" {
		t.Errorf("expected generated names x0, x1, got %v", res.Predictors)
	}
}

func TestBuildDeterministic(t *testing.T) {
	X, y := testData(12, 2)

	// Support depends on the subsample so the random draw matters.
	fit := &stubFitter{
		path: PenaltyPath{Lambdas: []float64{2, 1}},
		support: func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
			sum := 0.0
			for _, v := range y {
				sum += v
			}
			return []bool{sum > 300, sum <= 300}, nil
		},
	}

	cfg := DefaultConfig()
	cfg.Replicates = 8
	cfg.Seed = 99

	run := func(workers int) *Result {
		c := cfg
		c.Workers = workers
		res, err := Build(context.Background(), fit, X, y, nil, c)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		return res
	}

	a := run(4)
	b := run(4)
	single := run(1)

	for l := range a.Matrices {
		for i := 0; i < a.Matrices[l].Rows(); i++ {
			for j := 0; j < a.Matrices[l].Cols(); j++ {
				if a.Matrices[l].At(i, j) != b.Matrices[l].At(i, j) {
					t.Fatalf("same seed produced different matrices at (%d,%d,%d)", l, i, j)
				}
				if a.Matrices[l].At(i, j) != single.Matrices[l].At(i, j) {
					t.Fatalf("worker count changed matrices at (%d,%d,%d)", l, i, j)
				}
			}
		}
	}
}

func TestBuildFitFailure(t *testing.T) {
	X, y := testData(10, 2)
	cause := errors.New("lasso: no convergence")

	fit := &stubFitter{
		path: PenaltyPath{Lambdas: []float64{2, 1}},
		support: func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
			if lambda == 1 {
				return nil, cause
			}
			return []bool{true, false}, nil
		},
	}

	cfg := DefaultConfig()
	cfg.Replicates = 3

	res, err := Build(context.Background(), fit, X, y, nil, cfg)
	if res != nil {
		t.Error("expected no partial result on fit failure")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}

	var fe *FitError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FitError, got %T", err)
	}
	if fe.Lambda != 1 {
		t.Errorf("expected failing lambda 1, got %g", fe.Lambda)
	}
}

func TestBuildSupportLengthMismatch(t *testing.T) {
	X, y := testData(10, 3)
	fit := &stubFitter{
		path: PenaltyPath{Lambdas: []float64{1}},
		support: func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
			return []bool{true}, nil
		},
	}

	cfg := DefaultConfig()
	cfg.Replicates = 2

	_, err := Build(context.Background(), fit, X, y, nil, cfg)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for short support, got %v", err)
	}
}

func TestBuildValidation(t *testing.T) {
	X, y := testData(10, 2)
	fit := &stubFitter{
		path: PenaltyPath{Lambdas: []float64{1}},
		support: func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
			return []bool{true, false}, nil
		},
	}

	tests := []struct {
		name   string
		mutate func(cfg *Config, y *[]float64, names *[]string)
		want   error
	}{
		{"y mismatch", func(cfg *Config, y *[]float64, names *[]string) { *y = (*y)[:5] }, ErrDimensionMismatch},
		{"names mismatch", func(cfg *Config, y *[]float64, names *[]string) { *names = []string{"a"} }, ErrDimensionMismatch},
		{"one replicate", func(cfg *Config, y *[]float64, names *[]string) { cfg.Replicates = 1 }, ErrTooFewReplicates},
		{"alpha zero", func(cfg *Config, y *[]float64, names *[]string) { cfg.Alpha = 0 }, ErrBadAlpha},
		{"alpha one", func(cfg *Config, y *[]float64, names *[]string) { cfg.Alpha = 1 }, ErrBadAlpha},
		{"threshold high", func(cfg *Config, y *[]float64, names *[]string) { cfg.Threshold = 1.5 }, ErrBadThreshold},
		{"threshold negative", func(cfg *Config, y *[]float64, names *[]string) { cfg.Threshold = -0.1 }, ErrBadThreshold},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		yy := append([]float64(nil), y...)
		var names []string
		tt.mutate(&cfg, &yy, &names)

		_, err := Build(context.Background(), fit, X, yy, names, cfg)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	smallX, smallY := testData(3, 2)
	if _, err := Build(context.Background(), fit, smallX, smallY, nil, DefaultConfig()); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples for 3 rows, got %v", err)
	}
}

func TestBuildPathErrors(t *testing.T) {
	X, y := testData(10, 2)
	cfg := DefaultConfig()
	cfg.Replicates = 2

	support := func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
		return []bool{true, false}, nil
	}

	empty := &stubFitter{path: PenaltyPath{}, support: support}
	if _, err := Build(context.Background(), empty, X, y, nil, cfg); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}

	increasing := &stubFitter{path: PenaltyPath{Lambdas: []float64{1, 2}}, support: support}
	if _, err := Build(context.Background(), increasing, X, y, nil, cfg); !errors.Is(err, ErrPathOrder) {
		t.Errorf("expected ErrPathOrder for increasing penalties, got %v", err)
	}

	flat := &stubFitter{path: PenaltyPath{Lambdas: []float64{2, 2}}, support: support}
	if _, err := Build(context.Background(), flat, X, y, nil, cfg); !errors.Is(err, ErrPathOrder) {
		t.Errorf("expected ErrPathOrder for repeated penalties, got %v", err)
	}

	pathErr := errors.New("lasso: cv failed")
	failing := &stubFitter{pathErr: pathErr, support: support}
	if _, err := Build(context.Background(), failing, X, y, nil, cfg); !errors.Is(err, pathErr) {
		t.Errorf("expected path error to propagate, got %v", err)
	}
}

func TestBuildCanceled(t *testing.T) {
	X, y := testData(10, 2)
	fit := &stubFitter{
		path: PenaltyPath{Lambdas: []float64{2, 1}},
		support: func(X *mat.Dense, y []float64, lambda float64) ([]bool, error) {
			return []bool{true, false}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Replicates = 50

	_, err := Build(ctx, fit, X, y, nil, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSubsamplePairing(t *testing.T) {
	n := 10
	X := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y[i] = float64(i) * 10
	}

	rng := rand.New(rand.NewSource(7))
	xs, ys := subsample(X, y, n/2, rng)

	rows, _ := xs.Dims()
	if rows != n/2 || len(ys) != n/2 {
		t.Fatalf("expected %d rows, got %d and %d responses", n/2, rows, len(ys))
	}

	seen := make(map[float64]bool)
	for k := 0; k < rows; k++ {
		v := xs.At(k, 0)
		if ys[k] != v*10 {
			t.Errorf("row %d: response %g not paired with row value %g", k, ys[k], v)
		}
		if seen[v] {
			t.Errorf("row value %g drawn twice", v)
		}
		seen[v] = true
	}
}
