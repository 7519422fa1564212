package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/tantalor93/dnsrank/pkg/dnsbench"
)

// Options controls how the results are reported.
type Options struct {
	// JSON reports raw results as JSON array, bypassing the ranking.
	JSON bool
	// Distribution prints latency distribution of all successful lookups.
	Distribution bool
	// PlotDir is a directory where graphs are exported, no graphs are exported when empty.
	PlotDir string
	// PlotFormat is a format of the graphs, like png or svg.
	PlotFormat string
}

type reportParameters struct {
	outputWriter   io.Writer
	ranked         []*dnsbench.ServerStats
	failed         []*dnsbench.ServerStats
	totals         Totals
	recommendation Recommendation
	distribution   bool
}

type reportPrinter interface {
	print(params reportParameters) error
}

// Recommendation compares the fastest server with the fastest of the current servers.
type Recommendation struct {
	Best *dnsbench.ServerStats
	// Current is the best ranked current server, nil when no current server has succeeded.
	Current *dnsbench.ServerStats
	// CurrentRank is a 1-based rank of Current.
	CurrentRank int
	// ImprovementPercent is the relative speedup of switching from Current to Best.
	ImprovementPercent float64
}

// CurrentIsFastest reports whether the current server is already ranked first.
func (r Recommendation) CurrentIsFastest() bool {
	return r.Current != nil && r.CurrentRank == 1
}

// PrintReport prints the ranked results, or raw results as JSON, and exports graphs if configured.
func PrintReport(w io.Writer, results []*dnsbench.ServerStats, opts Options) error {
	if opts.JSON {
		j := jsonReporter{}
		return j.print(w, results)
	}
	if len(results) == 0 {
		return nil
	}

	ranked, failed := Rank(results)
	totals := Merge(ranked)

	if len(opts.PlotDir) != 0 {
		if err := plotResults(opts, ranked, totals); err != nil {
			return fmt.Errorf("unable to plot results: %w", err)
		}
	}

	params := reportParameters{
		outputWriter:   w,
		ranked:         ranked,
		failed:         failed,
		totals:         totals,
		recommendation: Recommend(ranked),
		distribution:   opts.Distribution,
	}
	s := standardReporter{}
	return s.print(params)
}

// Rank splits results into servers with at least one successful lookup, sorted by average latency,
// and servers where every lookup failed. Servers with equal average keep their original order.
func Rank(results []*dnsbench.ServerStats) (ranked, failed []*dnsbench.ServerStats) {
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		} else {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AvgMs < ranked[j].AvgMs
	})
	return ranked, failed
}

// Recommend picks the fastest of the ranked servers and compares it with the best ranked current server.
func Recommend(ranked []*dnsbench.ServerStats) Recommendation {
	if len(ranked) == 0 {
		return Recommendation{}
	}
	rec := Recommendation{Best: ranked[0]}
	for i, r := range ranked {
		if !r.IsCurrent() {
			continue
		}
		rec.Current = r
		rec.CurrentRank = i + 1
		if i > 0 {
			rec.ImprovementPercent = (r.AvgMs - rec.Best.AvgMs) / r.AvgMs * 100
		}
		break
	}
	return rec
}

func plotResults(opts Options, ranked []*dnsbench.ServerStats, totals Totals) error {
	if err := directoryExists(opts.PlotDir); err != nil {
		return err
	}

	format := opts.PlotFormat
	if format == "" {
		format = dnsbench.DefaultPlotFormat
	}

	now := time.Now().Format(time.RFC3339)
	dir := fmt.Sprintf("%s/graphs-%s", opts.PlotDir, now)
	if err := os.Mkdir(dir, os.ModePerm); err != nil {
		return err
	}
	plotAverageLatency(fileName(dir, "average-latency-barchart", format), ranked)
	plotBoxPlotLatency(fileName(dir, "latency-boxplot", format), ranked)
	plotHistogramLatency(fileName(dir, "latency-histogram", format), totals.Latencies)
	return nil
}

func directoryExists(plotDir string) error {
	stat, err := os.Stat(plotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' path does not point to an existing directory", plotDir)
		}
		return err
	} else if !stat.IsDir() {
		return fmt.Errorf("'%s' is not a path to a directory", plotDir)
	}
	return nil
}

func fileName(dir, name, format string) string {
	return dir + "/" + name + "." + format
}
