// Package plot renders sample dilution curves for visual QC review.
package plot

import (
	"io"
	"math"

	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/hts-serology/plaqueassay"
)

// SampleCurve renders one sample's observed points, fitted curve (when a
// model was fitted), and the 50% threshold line as a PNG. The x axis is
// log10 fold-dilution, matching how the assay range spans several orders of
// magnitude.
func SampleCurve(s *plaqueassay.Sample, ladder plaqueassay.DilutionLadder, w io.Writer) error {
	obsX := make([]float64, len(s.Data))
	obsY := make([]float64, len(s.Data))
	for i, obs := range s.Data {
		obsX[i] = math.Log10(1 / obs.Dilution)
		obsY[i] = obs.PercentageInfected
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "observed",
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5},
			XValues: obsX,
			YValues: obsY,
		},
		chart.ContinuousSeries{
			Name: "threshold",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("999999"),
				StrokeDashArray: []float64{5, 5},
			},
			XValues: []float64{math.Log10(float64(ladder[0])) - 0.2, math.Log10(float64(ladder[3])) + 0.2},
			YValues: []float64{plaqueassay.DefaultThreshold, plaqueassay.DefaultThreshold},
		},
	}

	if p := s.Result.ModelParams; p != nil {
		xMin, xMax := ladder.GridBounds()
		grid := plaqueassay.ConcentrationGrid(xMin, xMax)
		fitted := plaqueassay.EvalDoseResponse4(grid, *p)
		curveX := make([]float64, len(grid))
		for i, x := range grid {
			curveX[i] = math.Log10(1 / x)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "4-param dose-response",
			XValues: curveX,
			YValues: fitted,
		})
	}

	graph := chart.Chart{
		Title:  s.Name,
		Width:  800,
		Height: 480,
		XAxis:  chart.XAxis{Name: "fold dilution (log10)"},
		YAxis:  chart.YAxis{Name: "percentage infected"},
		Series: series,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return pfx.Err(err)
	}
	return nil
}
