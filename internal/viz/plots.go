// Package viz renders analysis results for the terminal: asciigraph
// curves, lipgloss-styled summaries, and an interactive convergence
// replay.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/stabkit/stabsel/internal/stabsel"
)

// RegularizationPlot renders stability against the candidate penalties.
// Candidates run left to right from the strongest penalty, the same
// order as the path; degenerate penalties appear as gaps.
func RegularizationPlot(curve *stabsel.RegularizationCurve, width, height int) string {
	data := make([]float64, len(curve.Points))
	for i, pt := range curve.Points {
		data[i] = pt.Stability
	}

	first := curve.Points[0].Lambda
	last := curve.Points[len(curve.Points)-1].Lambda
	caption := fmt.Sprintf("stability by penalty (lambda %.4g .. %.4g)", first, last)

	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
	return graphStyle.Render(graph)
}

// ConvergencePlot renders the trajectory with its confidence band as
// three series: lower bound, estimate, upper bound.
func ConvergencePlot(traj []stabsel.TrajectoryPoint, width, height int) string {
	lower := make([]float64, len(traj))
	est := make([]float64, len(traj))
	upper := make([]float64, len(traj))
	for i, pt := range traj {
		lower[i] = pt.Lower
		est[i] = pt.Stability
		upper[i] = pt.Upper
	}

	graph := asciigraph.PlotMany([][]float64{lower, est, upper},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("stability by replicate count (band = confidence interval)"),
	)
	return graphStyle.Render(graph)
}

// ReferenceSummary lists the three reference penalties with the rule
// that chose the stable one.
func ReferenceSummary(curve *stabsel.RegularizationCurve) string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("REFERENCE PENALTIES") + "\n")
	sb.WriteString(MetricLabel.Render("lambda.min") + MetricValue.Render(fmt.Sprintf("%.6g", curve.LambdaMin)) + "\n")
	sb.WriteString(MetricLabel.Render("lambda.1se") + MetricValue.Render(fmt.Sprintf("%.6g", curve.Lambda1SE)) + "\n")
	sb.WriteString(MetricLabel.Render("lambda."+string(curve.Rule)) + RefStyle.Render(fmt.Sprintf("%.6g", curve.LambdaStable)) + "\n")
	return sb.String()
}

// FrequencyTable renders the predictors that cleared the reporting
// threshold, highest selection rate first.
func FrequencyTable(freqs []stabsel.Frequency, threshold float64) string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("SELECTED PREDICTORS (frequency > %.2f)", threshold)) + "\n")

	if len(freqs) == 0 {
		sb.WriteString(Subtle.Render("none") + "\n")
		return sb.String()
	}

	nameWidth := 0
	for _, f := range freqs {
		if len(f.Predictor) > nameWidth {
			nameWidth = len(f.Predictor)
		}
	}

	for _, f := range freqs {
		sb.WriteString(fmt.Sprintf("%-*s  %s %5.1f%%\n",
			nameWidth, f.Predictor, FrequencyBar(f.Value, 20), f.Value*100))
	}
	return sb.String()
}

// lastFinite returns the most recent non-NaN trajectory point up to
// and including index k.
func lastFinite(traj []stabsel.TrajectoryPoint, k int) (stabsel.TrajectoryPoint, bool) {
	for i := k; i >= 0; i-- {
		if !math.IsNaN(traj[i].Stability) {
			return traj[i], true
		}
	}
	return stabsel.TrajectoryPoint{}, false
}
