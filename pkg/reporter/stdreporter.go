package reporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/dnsrank/pkg/dnsbench"
	"github.com/tantalor93/dnsrank/pkg/printutils"
)

const (
	separatorWidth = 80
	maxLabelWidth  = 24
)

type standardReporter struct{}

func (s *standardReporter) print(params reportParameters) error {
	w := params.outputWriter
	separator := strings.Repeat("=", separatorWidth)

	printutils.NeutralFprintf(w, "\n%s\nDNS BENCHMARK RESULTS\n%s\n", separator, separator)

	if len(params.ranked) > 0 {
		printRanking(w, params.ranked)
	}

	if len(params.failed) > 0 {
		printutils.ErrFprintf(w, "\nFailed DNS servers:\n")
		for _, r := range params.failed {
			printutils.ErrFprintf(w, "  ✗ %s - %d/%d queries failed\n", r.Label, r.FailureCount, r.Total())
		}
	}

	printRecommendation(w, params.recommendation)

	if params.distribution {
		if tc := params.totals.Hist.TotalCount(); tc > 1 {
			printutils.NeutralFprintf(w, "\nDNS distribution, %s datapoints\n", printutils.HighlightSprint(tc))
			printBars(w, params.totals.Hist.Distribution())
		}
	}
	return nil
}

func printRanking(w io.Writer, ranked []*dnsbench.ServerStats) {
	lines := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		label := r.Label
		if len(label) > maxLabelWidth {
			label = label[:maxLabelWidth]
		}
		lines = append(lines, []string{
			strconv.Itoa(i + 1),
			label,
			fmt.Sprintf("%.1f%%", r.SuccessRatePercent),
			formatMs(r.AvgMs),
			formatMs(r.MinMs),
			formatMs(r.MaxMs),
			formatMs(r.MedianMs),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "DNS Server", "Success", "Avg", "Min", "Max", "Median"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(lines)
	table.Render()
}

func printRecommendation(w io.Writer, rec Recommendation) {
	if rec.Best == nil {
		return
	}
	printutils.SuccessFprintf(w, "\nBest performing DNS server:\n")
	printutils.NeutralFprintf(w, "   %s (%s)\n", rec.Best.Label, rec.Best.Address)
	printutils.NeutralFprintf(w, "   Average: %s, Success: %s\n",
		printutils.HighlightSprint(formatMs(rec.Best.AvgMs)),
		printutils.HighlightSprintf("%.1f%%", rec.Best.SuccessRatePercent))

	switch {
	case rec.Current == nil:
	case rec.CurrentIsFastest():
		printutils.SuccessFprintf(w, "\nYour current DNS is already the fastest!\n")
	default:
		printutils.NeutralFprintf(w, "\nYour current DNS ranks #%d\n", rec.CurrentRank)
		printutils.NeutralFprintf(w, "   Switching to %s could improve speed by %s\n",
			rec.Best.Label, printutils.HighlightSprintf("%.1f%%", rec.ImprovementPercent))
	}
}

func formatMs(ms float64) string {
	return fmt.Sprintf("%.1fms", ms)
}

func printBars(w io.Writer, bars []hdrhistogram.Bar) {
	counts := make([]int64, 0, len(bars))
	lines := make([][]string, 0, len(bars))
	var max int64

	for _, b := range bars {
		if b.Count == 0 {
			continue
		}
		if b.Count > max {
			max = b.Count
		}

		line := make([]string, 3)
		lines = append(lines, line)
		counts = append(counts, b.Count)

		line[0] = roundDuration(time.Duration(b.To/2 + b.From/2)).String()
		line[2] = strconv.FormatInt(b.Count, 10)
	}

	for i, l := range lines {
		l[1] = makeBar(counts[i], max)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Latency", "", "Count"})
	table.SetBorder(false)
	table.AppendBulk(lines)
	table.Render()
}

func makeBar(c int64, max int64) string {
	if c == 0 {
		return ""
	}
	t := int((43 * float64(c) / float64(max)) + 0.5)
	return strings.Repeat(printutils.HighlightSprint("▄"), t)
}

func roundDuration(dur time.Duration) time.Duration {
	switch {
	case dur > time.Second:
		return dur.Round(10 * time.Millisecond)
	case dur > time.Millisecond:
		return dur.Round(100 * time.Microsecond)
	default:
		return dur.Round(time.Microsecond)
	}
}
