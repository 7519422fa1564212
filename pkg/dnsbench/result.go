package dnsbench

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/montanaflynn/stats"
)

// ServerEntry is a DNS server scheduled for benchmarking.
type ServerEntry struct {
	// Label is a human-readable name of the server, like "Cloudflare" or "Current-1.1.1.1".
	Label string
	// Address is an IPv4 or IPv6 literal of the server.
	Address string
}

// IsCurrent reports whether the entry was discovered from the host configuration.
func (e ServerEntry) IsCurrent() bool {
	return strings.HasPrefix(e.Label, currentLabelPrefix)
}

func currentServer(address string) ServerEntry {
	return ServerEntry{Label: currentLabelPrefix + address, Address: address}
}

func customServer(address string) ServerEntry {
	return ServerEntry{Label: customLabelPrefix + address, Address: address}
}

// ProbeResult is a result of a single lookup of one domain against one server.
type ProbeResult struct {
	Domain    string
	Succeeded bool
	// Elapsed is meaningful only when Succeeded is true.
	Elapsed time.Duration
	Err     error
}

// ElapsedMillis returns elapsed time in milliseconds, failed probes report +Inf.
func (p ProbeResult) ElapsedMillis() float64 {
	if !p.Succeeded {
		return math.Inf(1)
	}
	return float64(p.Elapsed) / float64(time.Millisecond)
}

// ServerStats is a summary of benchmark of a single server.
// Latency fields are +Inf when no lookup succeeded.
type ServerStats struct {
	ServerEntry

	SuccessCount       int
	FailureCount       int
	SuccessRatePercent float64

	AvgMs    float64
	MinMs    float64
	MaxMs    float64
	MedianMs float64
	P95Ms    float64

	// Latencies of successful lookups in milliseconds, in completion order.
	Latencies []float64
	// Hist records latencies of successful lookups in nanoseconds.
	Hist *hdrhistogram.Histogram
}

// Total returns number of lookups issued against the server.
func (s *ServerStats) Total() int {
	return s.SuccessCount + s.FailureCount
}

// Failed reports whether no lookup against the server succeeded.
func (s *ServerStats) Failed() bool {
	return math.IsInf(s.AvgMs, 1)
}

// newHistogram creates histogram able to track latencies up to ten times the probe timeout.
func newHistogram(timeout time.Duration) *hdrhistogram.Histogram {
	timeout = max(timeout, DefaultProbeTimeout)
	return hdrhistogram.New(time.Microsecond.Nanoseconds(), timeout.Nanoseconds()*10, 3)
}

// computeStats summarizes probe results of a server, totalDomains is the number of attempted lookups
// and timeout is the probe timeout the results were measured with.
func computeStats(server ServerEntry, results []ProbeResult, totalDomains int, timeout time.Duration) *ServerStats {
	st := &ServerStats{
		ServerEntry: server,
		Hist:        newHistogram(timeout),
	}

	var samples stats.Float64Data
	for _, r := range results {
		if !r.Succeeded {
			st.FailureCount++
			continue
		}
		st.SuccessCount++
		samples = append(samples, r.ElapsedMillis())
		if err := st.Hist.RecordValue(r.Elapsed.Nanoseconds()); err != nil {
			slog.Debug("latency out of histogram range", "server", server.Label, "duration", r.Elapsed, "err", err)
		}
	}
	// lookups that never reported back count as failures
	if missing := totalDomains - len(results); missing > 0 {
		st.FailureCount += missing
	}
	st.Latencies = samples

	if totalDomains > 0 {
		st.SuccessRatePercent = 100 * float64(st.SuccessCount) / float64(totalDomains)
	}

	if len(samples) == 0 {
		inf := math.Inf(1)
		st.AvgMs, st.MinMs, st.MaxMs, st.MedianMs, st.P95Ms = inf, inf, inf, inf, inf
		return st
	}

	// errors are returned only for empty input, which is handled above
	st.AvgMs, _ = samples.Mean()
	st.MinMs, _ = samples.Min()
	st.MaxMs, _ = samples.Max()
	st.MedianMs, _ = samples.Median()
	st.P95Ms, _ = samples.Percentile(95)
	return st
}
