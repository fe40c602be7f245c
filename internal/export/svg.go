// Package export renders stored curves as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/stabkit/stabsel/internal/stabsel"
)

type xy struct{ x, y float64 }

type refLine struct {
	x     float64
	label string
	color string
}

// RegularizationSVG draws the stability-versus-penalty curve with its
// confidence band and dashed reference penalties. The penalty axis is
// log10, matching how the candidate grid is spaced.
func RegularizationSVG(curve *stabsel.RegularizationCurve, width, height int) string {
	est := make([]xy, 0, len(curve.Points))
	lower := make([]xy, 0, len(curve.Points))
	upper := make([]xy, 0, len(curve.Points))
	for _, pt := range curve.Points {
		if pt.Degenerate || math.IsNaN(pt.Stability) {
			continue
		}
		x := math.Log10(pt.Lambda)
		est = append(est, xy{x, pt.Stability})
		lower = append(lower, xy{x, pt.Lower})
		upper = append(upper, xy{x, pt.Upper})
	}

	refs := []refLine{
		{math.Log10(curve.LambdaMin), "min", "#ffaa00"},
		{math.Log10(curve.Lambda1SE), "1se", "#00ccff"},
		{math.Log10(curve.LambdaStable), string(curve.Rule), "#00ff88"},
	}

	return chart(est, lower, upper, refs, width, height, "log10(lambda)")
}

// ConvergenceSVG draws the stability trajectory against the replicate
// count with its confidence band.
func ConvergenceSVG(traj []stabsel.TrajectoryPoint, width, height int) string {
	est := make([]xy, 0, len(traj))
	lower := make([]xy, 0, len(traj))
	upper := make([]xy, 0, len(traj))
	for _, pt := range traj {
		if math.IsNaN(pt.Stability) {
			continue
		}
		x := float64(pt.Replicates)
		est = append(est, xy{x, pt.Stability})
		lower = append(lower, xy{x, pt.Lower})
		upper = append(upper, xy{x, pt.Upper})
	}
	return chart(est, lower, upper, nil, width, height, "replicates")
}

func chart(est, lower, upper []xy, refs []refLine, width, height int, caption string) string {
	if len(est) < 2 {
		return ""
	}

	minX, maxX := est[0].x, est[0].x
	minY, maxY := est[0].y, est[0].y
	expand := func(pts []xy) {
		for _, p := range pts {
			minX = math.Min(minX, p.x)
			maxX = math.Max(maxX, p.x)
			minY = math.Min(minY, p.y)
			maxY = math.Max(maxY, p.y)
		}
	}
	expand(est)
	expand(lower)
	expand(upper)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	px := func(p xy) (float64, float64) {
		x := (p.x - minX) / rangeX * float64(width)
		y := float64(height) - (p.y-minY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// Confidence band: upper bound forward, lower bound back.
	if len(lower) == len(est) && len(upper) == len(est) {
		sb.WriteString(`<path fill="#00ff88" fill-opacity="0.15" stroke="none" d="M`)
		for i, p := range upper {
			x, y := px(p)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		for i := len(lower) - 1; i >= 0; i-- {
			x, y := px(lower[i])
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
		sb.WriteString("Z\"/>\n")
	}

	sb.WriteString(`<path fill="none" stroke="#00ff88" stroke-width="1.5" d="M`)
	for i, p := range est {
		x, y := px(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	for _, ref := range refs {
		if math.IsNaN(ref.x) || math.IsInf(ref.x, 0) {
			continue
		}
		x, _ := px(xy{ref.x, 0})
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="%s" stroke-width="1" stroke-dasharray="4,3"/>
<text x="%.1f" y="12" fill="%s" font-size="10" font-family="monospace">%s</text>
`, x, x, height, ref.color, x+3, ref.color, ref.label))
	}

	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="#888899" font-size="11" font-family="monospace" text-anchor="middle">%s</text>
</svg>`, width/2, height-4, caption))
	return sb.String()
}
