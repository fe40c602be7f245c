package stabsel

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stability is a point estimate with its asymptotic confidence interval.
type Stability struct {
	Estimate float64
	Variance float64
	Lower    float64
	Upper    float64
}

// Estimate scores a selection matrix with the Nogueira-Sechidis-Brown
// stability measure and a normal-approximation confidence interval at
// level 1-alpha.
//
// The score compares the observed per-predictor selection variance
// against a random selector with the same average support size. 1
// means perfectly repeatable selection, values near 0 mean selection
// no better than chance. The estimate is not clamped, so small
// excursions outside [0, 1] are possible and meaningful.
//
// A matrix whose entries are all zero or all one has no defined score
// and yields [ErrDegenerateSelection].
func Estimate(m *SelectionMatrix, alpha float64) (Stability, error) {
	if m.Rows() < 2 {
		return Stability{}, ErrTooFewReplicates
	}
	if m.Cols() < 1 {
		return Stability{}, ErrNoPredictors
	}
	if alpha <= 0 || alpha >= 1 {
		return Stability{}, ErrBadAlpha
	}

	rows, cols := m.Rows(), m.Cols()
	M := float64(rows)
	d := float64(cols)

	// Column selection rates. Counting ones exactly avoids a float
	// comparison for the degenerate check.
	freqs := make([]float64, cols)
	ones := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if m.At(i, j) != 0 {
				freqs[j]++
				ones++
			}
		}
	}
	if ones == 0 || ones == rows*cols {
		return Stability{}, ErrDegenerateSelection
	}
	for j := range freqs {
		freqs[j] /= M
	}

	kbar := floats.Sum(freqs)
	vRand := (kbar / d) * (1 - kbar/d)

	colVar := 0.0
	for _, pf := range freqs {
		colVar += pf * (1 - pf)
	}
	colVar /= d

	est := 1 - (M/(M-1))*colVar/vRand

	// Influence function per row, then a two-pass variance.
	phis := make([]float64, rows)
	for i := 0; i < rows; i++ {
		ki := 0.0
		inner := 0.0
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			ki += v
			inner += v * freqs[j]
		}
		phis[i] = (1 / vRand) * (inner/d - ki*kbar/(d*d) -
			(est/2)*(2*kbar*ki/(d*d) - ki/d - kbar/d + 1))
	}

	phiBar := stat.Mean(phis, nil)
	ss := 0.0
	for _, phi := range phis {
		dev := phi - phiBar
		ss += dev * dev
	}
	variance := 4 / (M * M) * ss

	half := distuv.UnitNormal.Quantile(1-alpha/2) * math.Sqrt(variance)

	return Stability{
		Estimate: est,
		Variance: variance,
		Lower:    est - half,
		Upper:    est + half,
	}, nil
}
