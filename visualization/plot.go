// Package visualization renders benchmark results as bar charts.
package visualization

import (
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/modelbench/modelbench/pkg/errors"
	"github.com/modelbench/modelbench/pkg/log"
	"github.com/modelbench/modelbench/training"
)

// PlotResults writes a grouped bar chart of the given metrics to path, one
// group per model in alphabetical order. An empty metricNames plots
// accuracy alone. NaN scores are drawn as zero-height bars.
func PlotResults(results training.Results, metricNames []string, path string) error {
	if len(results) == 0 {
		return errors.New("no results to plot")
	}
	if len(metricNames) == 0 {
		metricNames = []string{"accuracy"}
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	p := plot.New()
	p.Title.Text = "Model Comparison"
	p.Y.Label.Text = "Score"
	p.Y.Min = 0
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1
	p.X.Tick.Label.YAlign = -0.5
	p.Legend.Top = true

	barWidth := vg.Points(60 / float64(len(metricNames)+1))
	offset := -barWidth * vg.Length(len(metricNames)-1) / 2

	for mi, metric := range metricNames {
		values := make(plotter.Values, len(names))
		for i, name := range names {
			v, ok := results[name][metric]
			if !ok {
				return errors.Newf("metric %q missing for model %q", metric, name)
			}
			if math.IsNaN(v) {
				v = 0
			}
			values[i] = v
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return errors.Wrapf(err, "building bars for %s", metric)
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(mi)
		bars.Offset = offset + barWidth*vg.Length(mi)
		p.Add(bars)
		p.Legend.Add(metric, bars)
	}

	width := vg.Points(float64(len(names)) * 70)
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving chart to %s", path)
	}

	log.L().Info().Str("path", path).Int("models", len(names)).Msg("wrote comparison chart")
	return nil
}
