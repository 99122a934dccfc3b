// Package plot renders the score-versus-season-total correlation charts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MikeSquared-Agency/Playground/internal/rankings"
)

var ErrNoData = errors.New("plot has no data points")

const (
	DataSeriesName = "Data Points"
	FitSeriesName  = "Best Fit Line"
	ScoreLabel     = "Ranking Score"

	Width  = 720
	Height = 420
)

var (
	dataColor = drawing.Color{R: 75, G: 192, B: 192, A: 255}
	fitColor  = drawing.Color{R: 255, G: 99, B: 132, A: 255}
)

// Plot is one scatter chart of team scores against a season total, with the
// backend's least-squares line drawn across the data.
type Plot struct {
	Key       string
	Title     string
	Subtitle  string
	XLabel    string
	YLabel    string
	X         []float64
	Y         []float64
	Teams     []string
	Slope     float64
	Intercept float64
}

// Point is one team on the chart.
type Point struct {
	X      float64
	Y      float64
	Team   string
	XLabel string
	YLabel string
}

// Label returns the detail lines shown for a hovered point.
func (p Point) Label() []string {
	return []string{
		fmt.Sprintf("%s: %.2f", p.XLabel, p.X),
		fmt.Sprintf("%s: %.4f", p.YLabel, p.Y),
		"Team: " + p.Team,
	}
}

func (p Plot) Points() []Point {
	n := min(len(p.X), len(p.Y))
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		pt := Point{X: p.X[i], Y: p.Y[i], XLabel: p.XLabel, YLabel: p.YLabel}
		if i < len(p.Teams) {
			pt.Team = p.Teams[i]
		}
		out[i] = pt
	}
	return out
}

// FitLine evaluates the fitted line at the smallest and largest x.
func (p Plot) FitLine() (x0, y0, x1, y1 float64) {
	x0, x1 = bounds(p.X)
	return x0, p.at(x0), x1, p.at(x1)
}

func (p Plot) at(x float64) float64 { return p.Slope*x + p.Intercept }

// YRange is the data range padded by a tenth of its span. The fit line does
// not widen the axis.
func (p Plot) YRange() (float64, float64) {
	return padded(p.Y)
}

// XRange pads the x data the same way so single-valued data still has width.
func (p Plot) XRange() (float64, float64) {
	return padded(p.X)
}

func (p Plot) RenderSVG(w io.Writer) error {
	if len(p.X) == 0 || len(p.X) != len(p.Y) {
		return ErrNoData
	}

	x0, y0, x1, y1 := p.FitLine()
	xMin, xMax := p.XRange()
	yMin, yMax := p.YRange()

	ch := chart.Chart{
		Title:  p.Title,
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  p.XLabel,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  p.YLabel,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    DataSeriesName,
				XValues: p.X,
				YValues: p.Y,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    5,
					DotColor:    dataColor,
				},
			},
			chart.ContinuousSeries{
				Name:    FitSeriesName,
				XValues: []float64{x0, x1},
				YValues: []float64{y0, y1},
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: fitColor,
				},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %s: %w", p.Key, err)
	}
	return nil
}

// Correlations builds one plot per season total present in resp, each
// against the ranking scores.
func Correlations(resp *rankings.PowerRankingsResponse) []Plot {
	if resp == nil {
		return nil
	}
	var out []Plot
	for _, c := range resp.Correlations() {
		out = append(out, Plot{
			Key:       c.Key,
			Title:     fmt.Sprintf("%q Correlation", c.Label),
			Subtitle:  "R ² = " + strconv.FormatFloat(c.Fit.R2(), 'f', -1, 64),
			XLabel:    c.Label,
			YLabel:    ScoreLabel,
			X:         c.Values,
			Y:         resp.Scores,
			Teams:     resp.Teams,
			Slope:     c.Fit.Slope(),
			Intercept: c.Fit.Intercept(),
		})
	}
	return out
}

func bounds(vs []float64) (lo, hi float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func padded(vs []float64) (float64, float64) {
	lo, hi := bounds(vs)
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
	}
	return lo - pad, hi + pad
}
