package stabsel

import (
	"errors"
	"math"
	"sort"
)

// TrajectoryPoint is the stability estimate after the first k
// replicates of the chosen matrix.
type TrajectoryPoint struct {
	Replicates int
	Stability  float64
	Lower      float64
	Upper      float64
}

// Frequency pairs a predictor with its selection rate.
type Frequency struct {
	Predictor string
	Value     float64
}

// ConvergenceCurve tracks the estimate at the reference penalty as
// replicates accumulate, with the predictors whose final selection
// rate cleared the threshold.
type ConvergenceCurve struct {
	Lambda     float64
	Rule       Rule
	Trajectory []TrajectoryPoint
	Selected   []Frequency
}

// NewConvergenceCurve re-estimates stability on growing row prefixes
// of the matrix at the reference penalty. The trajectory runs from two
// replicates to the full count, one point per prefix; degenerate
// prefixes become NaN points rather than aborting. Selected lists the
// predictors whose frequency over all rows is strictly greater than
// threshold, highest first.
func NewConvergenceCurve(res *Result, alpha, threshold float64) (*ConvergenceCurve, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, ErrBadAlpha
	}
	if threshold < 0 || threshold > 1 {
		return nil, ErrBadThreshold
	}

	stabilities := make([]float64, len(res.Matrices))
	for i, m := range res.Matrices {
		st, err := Estimate(m, alpha)
		if errors.Is(err, ErrDegenerateSelection) {
			stabilities[i] = math.NaN()
			continue
		}
		if err != nil {
			return nil, err
		}
		stabilities[i] = st.Estimate
	}

	chosen, rule, err := ReferencePenalty(res.Path.Lambdas, stabilities)
	if err != nil {
		return nil, err
	}
	m := res.Matrices[chosen]

	traj := make([]TrajectoryPoint, 0, m.Rows()-1)
	for k := 2; k <= m.Rows(); k++ {
		st, err := Estimate(m.Prefix(k), alpha)
		if errors.Is(err, ErrDegenerateSelection) {
			nan := math.NaN()
			traj = append(traj, TrajectoryPoint{Replicates: k, Stability: nan, Lower: nan, Upper: nan})
			continue
		}
		if err != nil {
			return nil, err
		}
		traj = append(traj, TrajectoryPoint{Replicates: k, Stability: st.Estimate, Lower: st.Lower, Upper: st.Upper})
	}

	freqs := m.Frequencies()
	selected := make([]Frequency, 0)
	for j, f := range freqs {
		if f > threshold {
			selected = append(selected, Frequency{Predictor: res.Predictors[j], Value: f})
		}
	}
	sort.Slice(selected, func(a, b int) bool {
		if selected[a].Value != selected[b].Value {
			return selected[a].Value > selected[b].Value
		}
		return selected[a].Predictor < selected[b].Predictor
	})

	return &ConvergenceCurve{
		Lambda:     res.Path.Lambdas[chosen],
		Rule:       rule,
		Trajectory: traj,
		Selected:   selected,
	}, nil
}
