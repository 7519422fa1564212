package reporter_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/dnsrank/pkg/dnsbench"
	"github.com/tantalor93/dnsrank/pkg/reporter"
)

func stats(label, address string, latencies ...float64) *dnsbench.ServerStats {
	st := &dnsbench.ServerStats{
		ServerEntry:  dnsbench.ServerEntry{Label: label, Address: address},
		SuccessCount: len(latencies),
		Latencies:    latencies,
		Hist:         hdrhistogram.New(1, (30 * time.Second).Nanoseconds(), 3),
	}
	if len(latencies) == 0 {
		inf := math.Inf(1)
		st.AvgMs, st.MinMs, st.MaxMs, st.MedianMs, st.P95Ms = inf, inf, inf, inf, inf
		return st
	}
	st.SuccessRatePercent = 100
	st.MinMs, st.MaxMs = latencies[0], latencies[0]
	var sum float64
	for _, l := range latencies {
		sum += l
		st.MinMs = math.Min(st.MinMs, l)
		st.MaxMs = math.Max(st.MaxMs, l)
		_ = st.Hist.RecordValue(int64(l * float64(time.Millisecond)))
	}
	st.AvgMs = sum / float64(len(latencies))
	st.MedianMs = st.AvgMs
	st.P95Ms = st.MaxMs
	return st
}

func failedStats(label, address string, failures int) *dnsbench.ServerStats {
	st := stats(label, address)
	st.FailureCount = failures
	return st
}

func readResource(name string) string {
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		panic(err)
	}
	return string(b)
}

func TestRank(t *testing.T) {
	a := stats("A", "192.0.2.1", 50)
	b := stats("B", "192.0.2.2", 10)
	c := stats("C", "192.0.2.3", 30)
	d := failedStats("D", "192.0.2.4", 3)
	e := stats("E", "192.0.2.5", 30)

	ranked, failed := reporter.Rank([]*dnsbench.ServerStats{a, d, b, c, e})

	assert.Equal(t, []*dnsbench.ServerStats{b, c, e, a}, ranked)
	assert.Equal(t, []*dnsbench.ServerStats{d}, failed)
}

func TestRank_allFailed(t *testing.T) {
	ranked, failed := reporter.Rank([]*dnsbench.ServerStats{failedStats("A", "192.0.2.1", 2)})

	assert.Empty(t, ranked)
	assert.Len(t, failed, 1)
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name            string
		ranked          []*dnsbench.ServerStats
		wantBest        string
		wantCurrent     string
		wantRank        int
		wantImprovement float64
		wantFastest     bool
	}{
		{
			name: "current is slower",
			ranked: []*dnsbench.ServerStats{
				stats("Cloudflare", "1.1.1.1", 50),
				stats("Current-10.0.0.1", "10.0.0.1", 100),
			},
			wantBest:        "Cloudflare",
			wantCurrent:     "Current-10.0.0.1",
			wantRank:        2,
			wantImprovement: 50,
		},
		{
			name: "current is the fastest",
			ranked: []*dnsbench.ServerStats{
				stats("Current-10.0.0.1", "10.0.0.1", 5),
				stats("Cloudflare", "1.1.1.1", 50),
			},
			wantBest:    "Current-10.0.0.1",
			wantCurrent: "Current-10.0.0.1",
			wantRank:    1,
			wantFastest: true,
		},
		{
			name: "best ranked current server is compared",
			ranked: []*dnsbench.ServerStats{
				stats("Google", "8.8.8.8", 20),
				stats("Current-10.0.0.2", "10.0.0.2", 40),
				stats("Current-10.0.0.1", "10.0.0.1", 80),
			},
			wantBest:        "Google",
			wantCurrent:     "Current-10.0.0.2",
			wantRank:        2,
			wantImprovement: 50,
		},
		{
			name: "no current server",
			ranked: []*dnsbench.ServerStats{
				stats("Google", "8.8.8.8", 20),
			},
			wantBest: "Google",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := reporter.Recommend(tt.ranked)

			require.NotNil(t, rec.Best)
			assert.Equal(t, tt.wantBest, rec.Best.Label)
			if tt.wantCurrent == "" {
				assert.Nil(t, rec.Current)
			} else {
				require.NotNil(t, rec.Current)
				assert.Equal(t, tt.wantCurrent, rec.Current.Label)
			}
			assert.Equal(t, tt.wantRank, rec.CurrentRank)
			assert.InDelta(t, tt.wantImprovement, rec.ImprovementPercent, 0.001)
			assert.Equal(t, tt.wantFastest, rec.CurrentIsFastest())
		})
	}
}

func TestRecommend_empty(t *testing.T) {
	rec := reporter.Recommend(nil)

	assert.Nil(t, rec.Best)
	assert.False(t, rec.CurrentIsFastest())
}

func TestMerge(t *testing.T) {
	a := stats("A", "192.0.2.1", 10, 20)
	b := stats("B", "192.0.2.2", 30)
	b.FailureCount = 1

	totals := reporter.Merge([]*dnsbench.ServerStats{a, b})

	assert.Equal(t, []float64{10, 20, 30}, totals.Latencies)
	assert.EqualValues(t, 3, totals.Hist.TotalCount())
	assert.Equal(t, 4, totals.Lookups)
	assert.Equal(t, 3, totals.Successes)
}

func TestMerge_longLatencies(t *testing.T) {
	a := stats("A", "192.0.2.1", 10)
	b := stats("B", "192.0.2.2")
	b.SuccessCount = 1
	b.Latencies = []float64{45000}
	b.Hist = hdrhistogram.New(1, (10 * time.Minute).Nanoseconds(), 3)
	require.NoError(t, b.Hist.RecordValue((45 * time.Second).Nanoseconds()))

	totals := reporter.Merge([]*dnsbench.ServerStats{a, b})

	assert.EqualValues(t, 2, totals.Hist.TotalCount())
	assert.InDelta(t, 45*time.Second, totals.Hist.Max(), float64(50*time.Millisecond))
}

func Test_PrintReport(t *testing.T) {
	buffer := bytes.Buffer{}
	results := []*dnsbench.ServerStats{
		stats("Current-10.0.0.1", "10.0.0.1", 100),
		failedStats("Google", "8.8.8.8", 24),
		stats("Cloudflare", "1.1.1.1", 50),
	}

	err := reporter.PrintReport(&buffer, results, reporter.Options{})

	require.NoError(t, err)
	out := buffer.String()
	assert.Contains(t, out, strings.Repeat("=", 80)+"\nDNS BENCHMARK RESULTS\n")
	assert.Contains(t, out, "DNS SERVER")
	assert.Contains(t, out, "50.0ms")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "Failed DNS servers:\n  ✗ Google - 24/24 queries failed\n")
	assert.Contains(t, out, "Best performing DNS server:\n   Cloudflare (1.1.1.1)\n")
	assert.Contains(t, out, "Your current DNS ranks #2\n")
	assert.Contains(t, out, "Switching to Cloudflare could improve speed by 50.0%\n")
	assert.NotContains(t, out, "DNS distribution")
	assert.Less(t, strings.Index(out, "Cloudflare"), strings.Index(out, "Current-10.0.0.1"))
}

func Test_PrintReport_currentFastest(t *testing.T) {
	buffer := bytes.Buffer{}
	results := []*dnsbench.ServerStats{
		stats("Current-10.0.0.1", "10.0.0.1", 5),
		stats("Cloudflare", "1.1.1.1", 50),
	}

	err := reporter.PrintReport(&buffer, results, reporter.Options{})

	require.NoError(t, err)
	assert.Contains(t, buffer.String(), "Your current DNS is already the fastest!")
	assert.NotContains(t, buffer.String(), "Switching to")
}

func Test_PrintReport_allFailed(t *testing.T) {
	buffer := bytes.Buffer{}
	results := []*dnsbench.ServerStats{failedStats("Google", "8.8.8.8", 2)}

	err := reporter.PrintReport(&buffer, results, reporter.Options{})

	require.NoError(t, err)
	assert.Contains(t, buffer.String(), "  ✗ Google - 2/2 queries failed")
	assert.NotContains(t, buffer.String(), "Best performing DNS server")
}

func Test_PrintReport_distribution(t *testing.T) {
	buffer := bytes.Buffer{}
	results := []*dnsbench.ServerStats{stats("Cloudflare", "1.1.1.1", 10, 12, 50)}

	err := reporter.PrintReport(&buffer, results, reporter.Options{Distribution: true})

	require.NoError(t, err)
	assert.Contains(t, buffer.String(), "DNS distribution, 3 datapoints")
	assert.Contains(t, buffer.String(), "LATENCY")
}

func Test_PrintReport_empty(t *testing.T) {
	buffer := bytes.Buffer{}

	err := reporter.PrintReport(&buffer, nil, reporter.Options{})

	require.NoError(t, err)
	assert.Empty(t, buffer.String())
}

func Test_PrintReport_json(t *testing.T) {
	buffer := bytes.Buffer{}
	current := stats("Current-10.0.0.1", "10.0.0.1", 10, 20, 30)
	current.FailureCount = 1
	current.SuccessRatePercent = 100 * 23.0 / 24
	cloudflare := stats("Cloudflare", "1.1.1.1", 5.5, 10.25, 15.25, 10.333333)
	cloudflare.AvgMs = 10.333333
	cloudflare.MedianMs = 10.124

	err := reporter.PrintReport(&buffer, []*dnsbench.ServerStats{current, failedStats("Google", "8.8.8.8", 4), cloudflare},
		reporter.Options{JSON: true})

	require.NoError(t, err)
	assert.Equal(t, readResource("jsonReport"), buffer.String())
}

func Test_PrintReport_json_empty(t *testing.T) {
	buffer := bytes.Buffer{}

	err := reporter.PrintReport(&buffer, nil, reporter.Options{JSON: true})

	require.NoError(t, err)
	assert.Equal(t, "[]\n", buffer.String())
}

func Test_PrintReport_plot(t *testing.T) {
	dir := t.TempDir()
	results := []*dnsbench.ServerStats{
		stats("Cloudflare", "1.1.1.1", 10, 12, 14, 9),
		stats("Google", "8.8.8.8", 20, 22, 25, 30),
		failedStats("Quad9", "9.9.9.9", 4),
	}

	err := reporter.PrintReport(&bytes.Buffer{}, results, reporter.Options{PlotDir: dir, PlotFormat: "svg"})

	require.NoError(t, err)
	graphs, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	assert.True(t, strings.HasPrefix(graphs[0].Name(), "graphs-"))

	files, err := os.ReadDir(filepath.Join(dir, graphs[0].Name()))
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	assert.ElementsMatch(t, []string{"average-latency-barchart.svg", "latency-boxplot.svg", "latency-histogram.svg"}, names)
}

func Test_PrintReport_plot_missingDir(t *testing.T) {
	results := []*dnsbench.ServerStats{stats("Cloudflare", "1.1.1.1", 10)}

	err := reporter.PrintReport(&bytes.Buffer{}, results,
		reporter.Options{PlotDir: filepath.Join(t.TempDir(), "missing"), PlotFormat: "png"})

	require.Error(t, err)
}
