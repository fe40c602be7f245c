package stabsel

import (
	"errors"
	"math"
)

// CurvePoint is one candidate penalty's stability estimate. Degenerate
// penalties carry NaN values and the Degenerate flag so consumers can
// tell an undefined score from a low one.
type CurvePoint struct {
	Lambda     float64
	Stability  float64
	Lower      float64
	Upper      float64
	Degenerate bool
}

// RegularizationCurve maps the candidate set to stability estimates,
// annotated with the cross-validation and stability reference
// penalties.
type RegularizationCurve struct {
	Points       []CurvePoint
	LambdaMin    float64
	Lambda1SE    float64
	LambdaStable float64
	Rule         Rule
}

// NewRegularizationCurve estimates stability for every candidate
// penalty of a build result and applies the reference rule. Penalties
// whose matrix is degenerate become NaN points and are skipped by the
// rule; any other estimator failure aborts the curve.
func NewRegularizationCurve(res *Result, alpha float64) (*RegularizationCurve, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, ErrBadAlpha
	}

	points := make([]CurvePoint, len(res.Matrices))
	stabilities := make([]float64, len(res.Matrices))
	for i, m := range res.Matrices {
		lambda := res.Path.Lambdas[i]
		st, err := Estimate(m, alpha)
		if errors.Is(err, ErrDegenerateSelection) {
			nan := math.NaN()
			points[i] = CurvePoint{Lambda: lambda, Stability: nan, Lower: nan, Upper: nan, Degenerate: true}
			stabilities[i] = nan
			continue
		}
		if err != nil {
			return nil, err
		}
		points[i] = CurvePoint{Lambda: lambda, Stability: st.Estimate, Lower: st.Lower, Upper: st.Upper}
		stabilities[i] = st.Estimate
	}

	chosen, rule, err := ReferencePenalty(res.Path.Lambdas, stabilities)
	if err != nil {
		return nil, err
	}

	return &RegularizationCurve{
		Points:       points,
		LambdaMin:    res.Path.LambdaMin,
		Lambda1SE:    res.Path.Lambda1SE,
		LambdaStable: res.Path.Lambdas[chosen],
		Rule:         rule,
	}, nil
}

// Stabilities returns the stability series in candidate order.
func (c *RegularizationCurve) Stabilities() []float64 {
	s := make([]float64, len(c.Points))
	for i, pt := range c.Points {
		s[i] = pt.Stability
	}
	return s
}
