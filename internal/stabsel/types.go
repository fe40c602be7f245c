package stabsel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SelectionMatrix records which predictors were selected on each
// subsample. Rows are replicates, columns follow the predictor order
// of the design matrix, entries are 0 or 1.
type SelectionMatrix struct {
	Predictors []string
	rows       int
	cols       int
	data       []float64
}

func NewSelectionMatrix(predictors []string, rows int) *SelectionMatrix {
	return &SelectionMatrix{
		Predictors: predictors,
		rows:       rows,
		cols:       len(predictors),
		data:       make([]float64, rows*len(predictors)),
	}
}

func (m *SelectionMatrix) Rows() int { return m.rows }
func (m *SelectionMatrix) Cols() int { return m.cols }

func (m *SelectionMatrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// SetRow writes one replicate's support vector.
func (m *SelectionMatrix) SetRow(i int, support []bool) {
	for j, sel := range support {
		if sel {
			m.data[i*m.cols+j] = 1
		} else {
			m.data[i*m.cols+j] = 0
		}
	}
}

// Prefix returns a view of the first k rows sharing the same storage.
func (m *SelectionMatrix) Prefix(k int) *SelectionMatrix {
	return &SelectionMatrix{
		Predictors: m.Predictors,
		rows:       k,
		cols:       m.cols,
		data:       m.data[:k*m.cols],
	}
}

// Frequencies returns the per-predictor selection rate over all rows.
func (m *SelectionMatrix) Frequencies() []float64 {
	freqs := make([]float64, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			freqs[j] += m.data[i*m.cols+j]
		}
	}
	for j := range freqs {
		freqs[j] /= float64(m.rows)
	}
	return freqs
}

// PenaltyPath is the cross-validated candidate set. Lambdas are
// strictly decreasing. LambdaMin minimizes the cross-validation error
// and Lambda1SE is the largest penalty within one standard error of
// that minimum.
type PenaltyPath struct {
	Lambdas   []float64
	LambdaMin float64
	Lambda1SE float64
}

// Fitter is the penalized regression collaborator. Path fits the
// cross-validated candidate set on the full data. Support refits at a
// fixed penalty on a subsample and reports which predictors received
// nonzero coefficients; the intercept is never part of the support.
type Fitter interface {
	Path(X *mat.Dense, y []float64, folds int) (PenaltyPath, error)
	Support(X *mat.Dense, y []float64, lambda float64) ([]bool, error)
}

// Config controls one stability analysis build.
type Config struct {
	Replicates int     // subsamples fitted per penalty
	Folds      int     // cross-validation folds for the candidate path
	Alpha      float64 // confidence interval significance level
	Threshold  float64 // selection frequency cutoff for reporting
	Seed       int64
	Workers    int
}

func DefaultConfig() Config {
	return Config{
		Replicates: 100,
		Folds:      10,
		Alpha:      0.05,
		Threshold:  0.5,
		Seed:       1,
		Workers:    4,
	}
}

// Result holds the matrices for every candidate penalty of one build.
type Result struct {
	Path       PenaltyPath
	Predictors []string
	Matrices   []*SelectionMatrix
	Seed       int64
}

func defaultNames(p int) []string {
	names := make([]string, p)
	for j := range names {
		names[j] = fmt.Sprintf("x%d", j)
	}
	return names
}
