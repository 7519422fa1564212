package dnsbench

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// statusSectionLookahead is how many lines after a DNS servers header are scanned for more addresses.
const statusSectionLookahead = 9

// DiscoverySource is a single source of the DNS servers configured on the host.
// Fetch obtains the raw text of the source, Extract picks candidate addresses out of it.
type DiscoverySource interface {
	Name() string
	Fetch(ctx context.Context) (string, error)
	Extract(raw string) []string
}

// Discoverer gathers addresses of DNS servers currently configured on the host.
type Discoverer struct {
	Sources []DiscoverySource
	// Timeout bounds each source, DefaultDiscoveryTimeout is used when zero.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewDiscoverer creates Discoverer using the default sources of the platform.
func NewDiscoverer(logger *slog.Logger) *Discoverer {
	return &Discoverer{Sources: DefaultSources(), Logger: logger}
}

// Discover returns unique non-loopback server addresses in the order they were found.
// Failing sources are skipped, so the result may be empty, for example when the host uses a local stub resolver.
func (d *Discoverer) Discover(ctx context.Context) []string {
	logger := loggerOrDefault(d.Logger)
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}

	var servers []string
	seen := make(map[string]struct{})
	for _, src := range d.Sources {
		if ctx.Err() != nil {
			break
		}
		srcCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := src.Fetch(srcCtx)
		cancel()
		if err != nil {
			logger.Debug("discovery source failed", "source", src.Name(), "err", err)
			continue
		}

		for _, candidate := range src.Extract(raw) {
			if !IsValidAddress(candidate) || IsLoopback(candidate) {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			seen[candidate] = struct{}{}
			servers = append(servers, candidate)
			logger.Debug("discovered DNS server", "source", src.Name(), "server", candidate)
		}
	}
	return servers
}

// ResolvConfSource reads nameserver directives of the resolver configuration file.
type ResolvConfSource struct {
	// Path of the file, DefaultResolvConfPath is used when empty.
	Path string
}

// Name returns name of the source.
func (s *ResolvConfSource) Name() string {
	return s.path()
}

// Fetch reads the configuration file.
func (s *ResolvConfSource) Fetch(_ context.Context) (string, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Extract returns the second token of each nameserver line.
func (s *ResolvConfSource) Extract(raw string) []string {
	conf, err := dns.ClientConfigFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	return conf.Servers
}

func (s *ResolvConfSource) path() string {
	if s.Path == "" {
		return DefaultResolvConfPath
	}
	return s.Path
}

// StatusCommandSource scrapes the human-oriented status report of systemd-resolved.
// Commands are tried in order until one of them succeeds.
type StatusCommandSource struct {
	Commands [][]string
	Run      CommandRunner
}

// NewResolvedStatusSource creates StatusCommandSource trying systemd-resolve and then resolvectl.
func NewResolvedStatusSource() *StatusCommandSource {
	return &StatusCommandSource{
		Commands: [][]string{
			{"systemd-resolve", "--status"},
			{"resolvectl", "status"},
		},
	}
}

// Name returns name of the source.
func (s *StatusCommandSource) Name() string {
	names := make([]string, 0, len(s.Commands))
	for _, c := range s.Commands {
		names = append(names, strings.Join(c, " "))
	}
	return strings.Join(names, " | ")
}

// Fetch returns output of the first command that succeeds.
func (s *StatusCommandSource) Fetch(ctx context.Context) (string, error) {
	var errs []error
	for _, c := range s.Commands {
		if len(c) == 0 {
			continue
		}
		out, err := runner(s.Run)(ctx, c[0], c[1:]...)
		if err == nil {
			return string(out), nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", errors.New("no status command configured")
	}
	return "", fmt.Errorf("status commands failed: %w", errors.Join(errs...))
}

// Extract returns addresses following "DNS Servers:" headers, both on the header line itself
// and on the continuation lines below it, until a line of another section.
func (s *StatusCommandSource) Extract(raw string) []string {
	lines := strings.Split(raw, "\n")
	var candidates []string
	for i, line := range lines {
		if !strings.Contains(line, "DNS Servers:") && !strings.Contains(line, "DNS Server:") {
			continue
		}
		_, rest, _ := strings.Cut(line, ":")
		candidates = append(candidates, strings.Fields(rest)...)

		for j := i + 1; j < len(lines) && j <= i+statusSectionLookahead; j++ {
			fields := strings.Fields(lines[j])
			if len(fields) == 0 {
				continue
			}
			if IsValidAddress(fields[0]) {
				candidates = append(candidates, fields...)
				continue
			}
			// "key: value" or "key=value" lines start a new section, other lines are skipped
			if strings.ContainsAny(lines[j], ":=") {
				break
			}
		}
	}
	return candidates
}

// NetworkManagerSource scrapes `nmcli dev show` output for IP4.DNS and IP6.DNS properties.
type NetworkManagerSource struct {
	Run CommandRunner
}

// Name returns name of the source.
func (s *NetworkManagerSource) Name() string {
	return "nmcli dev show"
}

// Fetch runs nmcli.
func (s *NetworkManagerSource) Fetch(ctx context.Context) (string, error) {
	out, err := runner(s.Run)(ctx, "nmcli", "dev", "show")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Extract returns values of the DNS properties.
func (s *NetworkManagerSource) Extract(raw string) []string {
	var candidates []string
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "IP4.DNS") && !strings.Contains(line, "IP6.DNS") {
			continue
		}
		if _, value, ok := strings.Cut(line, ":"); ok {
			candidates = append(candidates, strings.TrimSpace(value))
		}
	}
	return candidates
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
