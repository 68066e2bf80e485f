package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jakechorley/nurse-rota/pkg/core/ga"
)

// Plot formats understood by PlotConvergence
const (
	FormatPNG  = "png"
	FormatHTML = "html"
)

var (
	runColor  = color.RGBA{R: 31, G: 119, B: 180, A: 77}
	meanColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PlotTitle is the title of an instance's convergence chart
func PlotTitle(instanceName string) string {
	return fmt.Sprintf("GA convergence - instance %s", instanceName)
}

// PlotFileName is the convergence chart file for the given format
func PlotFileName(instanceName, format string) string {
	return fmt.Sprintf("convergence_ga_%s.%s", instanceName, format)
}

// PlotConvergence writes one chart per format into dir and returns the written paths
func PlotConvergence(dir, instanceName string, result *ga.ExperimentResult, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, format := range formats {
		path := filepath.Join(dir, PlotFileName(instanceName, format))

		var err error
		switch format {
		case FormatPNG:
			err = PlotConvergencePNG(path, instanceName, result)
		case FormatHTML:
			err = PlotConvergenceHTML(path, instanceName, result)
		default:
			err = fmt.Errorf("unknown plot format %q", format)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// PlotConvergencePNG draws every run's best-cost history in a light colour and the
// mean over runs in red
func PlotConvergencePNG(path, instanceName string, result *ga.ExperimentResult) error {
	if len(result.Runs) == 0 {
		return fmt.Errorf("no runs to plot for instance %s", instanceName)
	}

	p := plot.New()
	p.Title.Text = PlotTitle(instanceName)
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Total cost"
	p.Add(plotter.NewGrid())

	for i, rec := range result.Runs {
		line, err := plotter.NewLine(historyXYs(rec.History))
		if err != nil {
			return fmt.Errorf("failed to plot run %d: %w", i+1, err)
		}
		line.Color = runColor
		p.Add(line)
		if i == 0 {
			p.Legend.Add("Run 1", line)
		}
	}

	mean, err := plotter.NewLine(historyXYs(result.MeanHistory()))
	if err != nil {
		return fmt.Errorf("failed to plot mean history: %w", err)
	}
	mean.Color = meanColor
	mean.Width = vg.Points(2)
	p.Add(mean)
	p.Legend.Add("Mean of runs", mean)
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// PlotConvergenceHTML renders the same chart as an interactive HTML page
func PlotConvergenceHTML(path, instanceName string, result *ga.ExperimentResult) error {
	if len(result.Runs) == 0 {
		return fmt.Errorf("no runs to plot for instance %s", instanceName)
	}

	mean := result.MeanHistory()
	generations := make([]string, len(mean))
	for i := range generations {
		generations[i] = strconv.Itoa(i)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: PlotTitle(instanceName),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Generation",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Total cost",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	line.SetXAxis(generations)
	for i, rec := range result.Runs {
		line.AddSeries(fmt.Sprintf("Run %d", i+1), lineData(rec.History[:len(mean)]),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "rgba(31, 119, 180, 0.3)"}))
	}
	line.AddSeries("Mean of runs", lineData(mean),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "rgb(214, 39, 40)", Width: 2}))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}

func historyXYs(history []float64) plotter.XYs {
	pts := make(plotter.XYs, len(history))
	for gen, cost := range history {
		pts[gen].X = float64(gen)
		pts[gen].Y = cost
	}
	return pts
}

func lineData(history []float64) []opts.LineData {
	data := make([]opts.LineData, len(history))
	for i, cost := range history {
		data[i] = opts.LineData{Value: cost}
	}
	return data
}
