//go:build windows

package dnsbench

import (
	"context"
	"regexp"
)

var nslookupAddressPattern = regexp.MustCompile(`Address:\s+([^\s]+)`)

// DefaultSources returns discovery sources of the DNS servers configured on the host.
// Windows has no resolver configuration file, the default server reported by nslookup is used instead.
func DefaultSources() []DiscoverySource {
	return []DiscoverySource{&nslookupServerSource{}}
}

type nslookupServerSource struct {
	Run CommandRunner
}

func (s *nslookupServerSource) Name() string {
	return nslookupCommand
}

func (s *nslookupServerSource) Fetch(ctx context.Context) (string, error) {
	out, err := runner(s.Run)(ctx, nslookupCommand)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *nslookupServerSource) Extract(raw string) []string {
	matches := nslookupAddressPattern.FindStringSubmatch(raw)
	if len(matches) != 2 {
		return nil
	}
	return []string{matches[1]}
}
