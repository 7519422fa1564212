package dnsbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/ratelimit"
)

// ErrInvalidAddress is returned when a server address is neither IPv4 nor IPv6 literal.
var ErrInvalidAddress = errors.New("invalid IP address")

// Benchmark measures lookup latency of a single DNS server over a set of domains.
type Benchmark struct {
	// Executor performs the lookups.
	Executor LookupExecutor

	// Domains resolved against the server, DefaultTestDomains are used when empty.
	Domains []string

	// Concurrency is a number of lookups in flight against the server, DefaultConcurrency is used when zero.
	Concurrency int

	// Timeout bounds a single lookup, DefaultProbeTimeout is used when zero.
	Timeout time.Duration

	// RateLimit is a maximum number of lookups per second issued against the server, 0 means unlimited.
	RateLimit int

	// RequestLogEnabled enables logging of every lookup using the standard logger.
	RequestLogEnabled bool

	Logger *slog.Logger
}

// Probe resolves domain against server, every failure is converted to an unsuccessful ProbeResult.
func (b *Benchmark) Probe(ctx context.Context, domain, server string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	start := time.Now()
	err := b.Executor.Lookup(ctx, domain, server)
	res := ProbeResult{
		Domain:    domain,
		Succeeded: err == nil,
		Elapsed:   time.Since(start),
		Err:       err,
	}

	executor := b.Executor.Name()
	if res.Succeeded {
		probeDurationMetrics.WithLabelValues(executor).Observe(res.Elapsed.Seconds())
		probesTotalMetrics.WithLabelValues(executor, probeResultSuccess).Inc()
	} else {
		probesTotalMetrics.WithLabelValues(executor, probeResultFailure).Inc()
	}
	if b.RequestLogEnabled {
		logRequest(executor, server, res)
	}
	return res
}

// Run resolves every domain against the server and summarizes the results.
// If the context is canceled, partial results are discarded and the context error is returned.
func (b *Benchmark) Run(ctx context.Context, server ServerEntry) (*ServerStats, error) {
	if b.Executor == nil {
		return nil, errors.New("no lookup executor configured")
	}
	if !IsValidAddress(server.Address) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidAddress, server.Address)
	}
	logger := loggerOrDefault(b.Logger)
	domains := b.domains()

	var limit ratelimit.Limiter
	if b.RateLimit > 0 {
		limit = ratelimit.New(b.RateLimit)
	}

	var (
		mu       sync.Mutex
		results  = make([]ProbeResult, 0, len(domains))
		panicErr error
		wg       sync.WaitGroup
	)
	workCh := make(chan string)

	worker := func() {
		defer wg.Done()
		for domain := range workCh {
			if limit != nil {
				limit.Take()
			}
			res, err := b.safeProbe(ctx, domain, server.Address)
			mu.Lock()
			if err != nil {
				if panicErr == nil {
					panicErr = err
				}
			} else {
				results = append(results, res)
			}
			mu.Unlock()

			if res.Succeeded {
				logger.Debug("lookup succeeded", "server", server.Label, "domain", domain,
					"duration", res.Elapsed.Round(100*time.Microsecond))
			} else if err == nil {
				logger.Debug("lookup failed", "server", server.Label, "domain", domain, "err", res.Err)
			}
		}
	}

	workers := min(b.concurrency(), len(domains))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

feed:
	for _, d := range domains {
		select {
		case <-ctx.Done():
			break feed
		case workCh <- d:
		}
	}
	close(workCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if panicErr != nil {
		return nil, panicErr
	}
	return computeStats(server, results, len(domains), b.timeout()), nil
}

func (b *Benchmark) safeProbe(ctx context.Context, domain, server string) (res ProbeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lookup of '%s' panicked: %v", domain, r)
		}
	}()
	return b.Probe(ctx, domain, server), nil
}

func (b *Benchmark) domains() []string {
	if len(b.Domains) == 0 {
		return DefaultTestDomains
	}
	return b.Domains
}

func (b *Benchmark) concurrency() int {
	if b.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return b.Concurrency
}

func (b *Benchmark) timeout() time.Duration {
	if b.Timeout <= 0 {
		return DefaultProbeTimeout
	}
	return b.Timeout
}
