package reporter

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/tantalor93/dnsrank/pkg/dnsbench"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func plotAverageLatency(file string, ranked []*dnsbench.ServerStats) {
	if len(ranked) == 0 {
		// nothing to plot
		return
	}
	values := make(plotter.Values, 0, len(ranked))
	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		values = append(values, r.AvgMs)
		names = append(names, r.Label)
	}

	p := plot.New()
	p.Title.Text = "Average latency"
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -0.9
	p.Y.Label.Text = "Latency (ms)"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}

	bar, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to plot average latency.", err)
		return
	}
	bar.Color = color.RGBA{R: 90, G: 155, B: 212, A: 255}
	p.Add(bar)

	if err := p.Save(vg.Length(len(ranked))*vg.Inch/2+4*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func plotBoxPlotLatency(file string, ranked []*dnsbench.ServerStats) {
	if len(ranked) == 0 {
		// nothing to plot
		return
	}
	p := plot.New()
	p.Title.Text = "Latencies distribution"
	p.Y.Label.Text = "Latencies (ms)"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}

	colors := plotutil.SoftColors
	names := make([]string, 0, len(ranked))
	for i, r := range ranked {
		boxplot, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(r.Latencies))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to plot latencies of", r.Label, err)
			return
		}
		boxplot.FillColor = colors[i%len(colors)]
		p.Add(boxplot)
		names = append(names, r.Label)
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -0.9

	if err := p.Save(vg.Length(len(ranked))*vg.Inch/2+4*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func plotHistogramLatency(file string, latencies []float64) {
	if len(latencies) == 0 {
		// nothing to plot
		return
	}
	values := plotter.Values(latencies)
	p := plot.New()
	p.Title.Text = "Latencies distribution"

	hist, err := plotter.NewHist(values, numBins(values))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to plot latency histogram.", err)
		return
	}
	p.X.Label.Text = "Latencies (ms)"
	p.X.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	p.Y.Label.Text = "Number of lookups"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	hist.FillColor = color.RGBA{R: 175, G: 238, B: 238, A: 255}
	p.Add(hist)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

// numBins calculates number of bins for histogram.
func numBins(values plotter.Values) int {
	n := float64(len(values))

	// small dataset
	if n < 100 {
		sqrt := math.Sqrt(n)
		return int(math.Max(1, math.Min(15, sqrt)))
	}

	// medium dataset - use Rice's rule
	if n < 1000 {
		rice := 2 * math.Cbrt(n)
		return int(math.Min(30, rice))
	}

	// large dataset - use Doane's rule
	skewness := stat.Skew(values, nil)
	sigmaG := math.Sqrt(6 * (n - 2) / ((n + 1) * (n + 3)))
	doane := 1 + math.Log2(n) + math.Log2(1+math.Abs(skewness)/sigmaG)
	return int(math.Min(50, doane))
}
