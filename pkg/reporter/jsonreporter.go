package reporter

import (
	"encoding/json"
	"io"
	"math"

	"github.com/tantalor93/dnsrank/pkg/dnsbench"
)

type jsonReporter struct{}

// jsonResult latency fields are null for servers without any successful lookup, JSON has no infinity.
type jsonResult struct {
	Name              string   `json:"name"`
	Server            string   `json:"server"`
	SuccessRate       float64  `json:"successRate"`
	SuccessfulQueries int      `json:"successfulQueries"`
	FailedQueries     int      `json:"failedQueries"`
	AvgMs             *float64 `json:"avgMs"`
	MinMs             *float64 `json:"minMs"`
	MaxMs             *float64 `json:"maxMs"`
	MedianMs          *float64 `json:"medianMs"`
	P95Ms             *float64 `json:"p95Ms"`
}

func (s *jsonReporter) print(w io.Writer, results []*dnsbench.ServerStats) error {
	res := make([]jsonResult, 0, len(results))
	for _, r := range results {
		res = append(res, jsonResult{
			Name:              r.Label,
			Server:            r.Address,
			SuccessRate:       r.SuccessRatePercent,
			SuccessfulQueries: r.SuccessCount,
			FailedQueries:     r.FailureCount,
			AvgMs:             finite(r.AvgMs),
			MinMs:             finite(r.MinMs),
			MaxMs:             finite(r.MaxMs),
			MedianMs:          finite(r.MedianMs),
			P95Ms:             finite(r.P95Ms),
		})
	}
	return json.NewEncoder(w).Encode(res)
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
