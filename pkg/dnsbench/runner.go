package dnsbench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/tantalor93/dnsrank/pkg/printutils"
)

// Runner builds the list of servers to test and benchmarks them one after another.
type Runner struct {
	// TestCurrent enables testing of the servers configured on the host.
	TestCurrent bool
	// TestPublic enables testing of the well-known public servers.
	TestPublic bool
	// Top3Only limits the public servers to Top3Servers.
	Top3Only bool
	// CustomServers are user supplied server addresses, invalid ones are skipped with a warning.
	CustomServers []string

	// Benchmark is used for each server. When its Executor is not set, it is selected by SelectExecutor.
	Benchmark Benchmark

	// Discoverer finds current servers, NewDiscoverer is used when nil.
	Discoverer *Discoverer
	// LookPath locates the lookup tools, exec.LookPath is used when nil.
	LookPath func(string) (string, error)

	// Writer is where the progress and warnings are printed, os.Stdout is used when nil.
	Writer io.Writer
	// Silent disables printing to Writer, warnings are then only logged.
	Silent bool
	// Verbose replaces the progress bar by a line per tested server.
	Verbose bool

	Logger *slog.Logger
}

// Run benchmarks all servers and returns their stats in the order the servers were listed.
// Failing servers are skipped. When the context is canceled, the stats collected so far are returned.
// Error is returned only when no lookup executor is available.
func (r *Runner) Run(ctx context.Context) ([]*ServerStats, error) {
	bench := r.Benchmark
	if bench.Executor == nil {
		executor, err := SelectExecutor(r.LookPath)
		if err != nil {
			return nil, err
		}
		bench.Executor = executor
	}
	if bench.Logger == nil {
		bench.Logger = r.Logger
	}
	logger := loggerOrDefault(r.Logger)

	r.printf("=== DNS Benchmark ===\n")
	if !r.Verbose {
		r.printf("(Use --verbose for detailed query results)\n")
	}

	servers := r.Servers(ctx)
	if len(servers) == 0 {
		r.warnf("No DNS servers to test!\n")
		return nil, nil
	}

	r.printf("\nTesting %s DNS servers with %s domains using %s\n",
		printutils.HighlightSprint(len(servers)), printutils.HighlightSprint(len(bench.domains())),
		printutils.HighlightSprint(bench.Executor.Name()))

	var bar *progressbar.ProgressBar
	if !r.Silent && !r.Verbose {
		bar = progressbar.NewOptions(len(servers),
			progressbar.OptionSetWriter(r.writer()),
			progressbar.OptionSetDescription("Progress"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
		)
	}

	results := make([]*ServerStats, 0, len(servers))
	for _, s := range servers {
		if ctx.Err() != nil {
			break
		}
		if r.Verbose {
			r.printf("\nTesting %s (%s)...\n", s.Label, s.Address)
		}

		st, err := bench.Run(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			skippedServersTotalMetrics.Inc()
			logger.Warn("failed to benchmark server, skipping", "server", s.Label, "err", err)
		} else {
			results = append(results, st)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if ctx.Err() != nil {
		r.warnf("\nBenchmark interrupted!\n")
	} else if bar != nil {
		_ = bar.Finish()
		r.printf(" Done!\n")
	}
	return results, nil
}

// Servers returns the servers to test, in order: current servers, valid custom servers, public servers.
func (r *Runner) Servers(ctx context.Context) []ServerEntry {
	var servers []ServerEntry

	if r.TestCurrent {
		discoverer := r.Discoverer
		if discoverer == nil {
			discoverer = NewDiscoverer(r.Logger)
		}
		current := discoverer.Discover(ctx)
		if len(current) > 0 {
			r.printf("\nCurrent DNS servers detected:\n")
			for i, s := range current {
				r.printf("  %d. %s\n", i+1, printutils.HighlightSprint(s))
				servers = append(servers, currentServer(s))
			}
		} else {
			r.warnf("\nWarning: Could not detect current DNS servers\n")
			r.printf("(This is normal if you're using localhost DNS like 127.0.0.53)\n")
		}
	}

	for _, s := range r.CustomServers {
		if !IsValidAddress(s) {
			r.warnf("Warning: Invalid IP address '%s' - skipping\n", s)
			continue
		}
		servers = append(servers, customServer(s))
	}

	if r.TestPublic {
		if r.Top3Only {
			servers = append(servers, Top3Servers...)
		} else {
			servers = append(servers, PublicServers...)
		}
	}
	return servers
}

func (r *Runner) writer() io.Writer {
	if r.Writer == nil {
		return os.Stdout
	}
	return r.Writer
}

func (r *Runner) printf(format string, a ...interface{}) {
	if r.Silent {
		return
	}
	printutils.NeutralFprintf(r.writer(), format, a...)
}

func (r *Runner) warnf(format string, a ...interface{}) {
	if r.Silent {
		loggerOrDefault(r.Logger).Warn(strings.TrimSpace(fmt.Sprintf(format, a...)))
		return
	}
	printutils.ErrFprintf(r.writer(), format, a...)
}
