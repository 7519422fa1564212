package dnsbench

import (
	"time"
)

const (
	// DefaultConcurrency is a default number of concurrent lookups issued against a single server.
	DefaultConcurrency = 3

	// DefaultProbeTimeout is a default timeout of a single lookup.
	DefaultProbeTimeout = 3 * time.Second

	// DefaultLookupToolTimeout is a timeout passed to the external lookup tools (dig, nslookup).
	DefaultLookupToolTimeout = 2 * time.Second

	// DefaultDiscoveryTimeout is a default timeout of a single discovery source.
	DefaultDiscoveryTimeout = 5 * time.Second

	// DefaultPort is a default port of plain DNS servers.
	DefaultPort = "53"

	// DefaultSecurePort is a default port of DoT and DoQ servers.
	DefaultSecurePort = "853"

	// DefaultRequestLogPath is a default path to the file, where the probes will be logged.
	DefaultRequestLogPath = "requests.log"

	// DefaultPlotFormat is a default format for plots.
	DefaultPlotFormat = "png"

	// DefaultResolvConfPath is a default location of the system resolver configuration.
	DefaultResolvConfPath = "/etc/resolv.conf"
)

const (
	currentLabelPrefix = "Current-"
	customLabelPrefix  = "Custom-"
)

// DefaultTestDomains are popular domains resolved against every tested server.
var DefaultTestDomains = []string{
	"google.com", "facebook.com", "youtube.com", "amazon.com",
	"wikipedia.org", "twitter.com", "instagram.com", "linkedin.com",
	"github.com", "stackoverflow.com", "reddit.com", "netflix.com",
	"apple.com", "microsoft.com", "cloudflare.com", "baidu.com",
	"yahoo.com", "ebay.com", "cnn.com", "bbc.com",
	"spotify.com", "zoom.us", "adobe.com", "oracle.com",
}

// PublicServers is the full set of well-known public resolvers.
var PublicServers = []ServerEntry{
	{Label: "Cloudflare", Address: "1.1.1.1"},
	{Label: "Cloudflare-2", Address: "1.0.0.1"},
	{Label: "Google", Address: "8.8.8.8"},
	{Label: "Google-2", Address: "8.8.4.4"},
	{Label: "Quad9", Address: "9.9.9.9"},
	{Label: "Quad9-2", Address: "149.112.112.112"},
	{Label: "OpenDNS", Address: "208.67.222.222"},
	{Label: "OpenDNS-2", Address: "208.67.220.220"},
	{Label: "Level3", Address: "4.2.2.1"},
	{Label: "Level3-2", Address: "4.2.2.2"},
}

// Top3Servers is a curated subset of PublicServers used for quick comparative runs.
var Top3Servers = []ServerEntry{
	{Label: "Cloudflare", Address: "1.1.1.1"},
	{Label: "Google", Address: "8.8.8.8"},
	{Label: "Quad9", Address: "9.9.9.9"},
}
