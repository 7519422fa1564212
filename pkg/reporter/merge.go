package reporter

import (
	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/tantalor93/dnsrank/pkg/dnsbench"
)

// Totals represents merged latencies of all benchmarked servers.
type Totals struct {
	Hist      *hdrhistogram.Histogram
	Latencies []float64
	Lookups   int
	Successes int
}

// Merge takes stats of the benchmarked servers and merges their successful latencies.
func Merge(results []*dnsbench.ServerStats) Totals {
	highest := (dnsbench.DefaultProbeTimeout * 10).Nanoseconds()
	for _, r := range results {
		if r.Hist != nil {
			highest = max(highest, r.Hist.HighestTrackableValue())
		}
	}
	totals := Totals{
		Hist: hdrhistogram.New(1, highest, 3),
	}
	for _, r := range results {
		if r.Hist != nil {
			totals.Hist.Merge(r.Hist)
		}
		totals.Latencies = append(totals.Latencies, r.Latencies...)
		totals.Lookups += r.Total()
		totals.Successes += r.SuccessCount
	}
	return totals
}
