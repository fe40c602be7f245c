package export

import (
	"math"
	"strings"
	"testing"

	"github.com/stabkit/stabsel/internal/stabsel"
)

func TestRegularizationSVG(t *testing.T) {
	nan := math.NaN()
	curve := &stabsel.RegularizationCurve{
		Points: []stabsel.CurvePoint{
			{Lambda: 2, Stability: nan, Lower: nan, Upper: nan, Degenerate: true},
			{Lambda: 1, Stability: 0.8, Lower: 0.7, Upper: 0.9},
			{Lambda: 0.5, Stability: 0.6, Lower: 0.5, Upper: 0.7},
			{Lambda: 0.25, Stability: 0.4, Lower: 0.3, Upper: 0.5},
		},
		LambdaMin:    0.5,
		Lambda1SE:    1,
		LambdaStable: 1,
		Rule:         stabsel.RuleStable,
	}

	svg := RegularizationSVG(curve, 640, 360)
	if svg == "" {
		t.Fatal("expected non-empty SVG")
	}
	for _, want := range []string{"<svg", "</svg>", "stroke-dasharray", ">stable<", ">min<", ">1se<", "log10(lambda)"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, "NaN") {
		t.Error("degenerate point leaked into the SVG")
	}
}

func TestConvergenceSVG(t *testing.T) {
	traj := []stabsel.TrajectoryPoint{
		{Replicates: 2, Stability: 0.5, Lower: 0.1, Upper: 0.9},
		{Replicates: 3, Stability: math.NaN()},
		{Replicates: 4, Stability: 0.7, Lower: 0.5, Upper: 0.9},
		{Replicates: 5, Stability: 0.72, Lower: 0.6, Upper: 0.84},
	}

	svg := ConvergenceSVG(traj, 640, 360)
	if svg == "" {
		t.Fatal("expected non-empty SVG")
	}
	if !strings.Contains(svg, "fill-opacity") {
		t.Error("expected a confidence band")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN point leaked into the SVG")
	}
}

func TestSVGTooFewPoints(t *testing.T) {
	traj := []stabsel.TrajectoryPoint{{Replicates: 2, Stability: 0.5}}
	if svg := ConvergenceSVG(traj, 640, 360); svg != "" {
		t.Error("expected empty output for a single point")
	}
}
