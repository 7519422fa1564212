//go:build unix

package dnsbench

// DefaultSources returns discovery sources of the DNS servers configured on the host.
// The resolver configuration file is read first, followed by systemd-resolved and NetworkManager status reports.
func DefaultSources() []DiscoverySource {
	return []DiscoverySource{
		&ResolvConfSource{},
		NewResolvedStatusSource(),
		&NetworkManagerSource{},
	}
}
