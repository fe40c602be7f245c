package stabsel

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Rule names the reference rule that chose the stable penalty.
type Rule string

const (
	RuleStable    Rule = "stable"
	RuleStable1SD Rule = "stable.1sd"
)

// stableCutoff is the score a penalty must exceed for the plain
// "stable" rule to apply. Ties at the cutoff do not qualify.
const stableCutoff = 0.75

// ReferencePenalty picks the reference penalty from a stability series
// over the candidate set and reports which rule fired. NaN entries
// mark degenerate penalties; they are skipped, never propagated.
//
// When any score exceeds the cutoff the rule is [RuleStable]: the
// index of the smallest penalty value whose score exceeds it.
// Otherwise the rule is [RuleStable1SD]: among indices whose score is
// within one sample standard deviation of the maximum, the largest.
// With a strictly decreasing candidate set both rules favor the
// smallest qualifying penalty.
func ReferencePenalty(lambdas, stabilities []float64) (int, Rule, error) {
	if len(lambdas) == 0 || len(lambdas) != len(stabilities) {
		return 0, "", ErrDimensionMismatch
	}

	finite := make([]float64, 0, len(stabilities))
	for _, s := range stabilities {
		if !math.IsNaN(s) {
			finite = append(finite, s)
		}
	}
	if len(finite) == 0 {
		return 0, "", ErrDegenerateSelection
	}

	max := finite[0]
	for _, s := range finite[1:] {
		if s > max {
			max = s
		}
	}

	if max > stableCutoff {
		best := -1
		for i, s := range stabilities {
			if math.IsNaN(s) || s <= stableCutoff {
				continue
			}
			if best == -1 || lambdas[i] < lambdas[best] {
				best = i
			}
		}
		return best, RuleStable, nil
	}

	sd := 0.0
	if len(finite) > 1 {
		sd = stat.StdDev(finite, nil)
	}
	cut := max - sd

	last := -1
	for i, s := range stabilities {
		if !math.IsNaN(s) && s >= cut {
			last = i
		}
	}
	return last, RuleStable1SD, nil
}
