package dnsbench

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

var (
	ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	// intentionally loose, compressed forms and zones are not fully validated
	ipv6Pattern = regexp.MustCompile(`^([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}$`)
)

// IsValidAddress reports whether s looks like an IPv4 or IPv6 address literal.
// IPv4 addresses are validated strictly, IPv6 addresses only by their colon separated grouping.
func IsValidAddress(s string) bool {
	if ipv4Pattern.MatchString(s) {
		for _, part := range strings.Split(s, ".") {
			octet, err := strconv.Atoi(part)
			if err != nil || octet > 255 {
				return false
			}
		}
		return true
	}
	return ipv6Pattern.MatchString(s)
}

// IsLoopback reports whether address belongs to 127.0.0.0/8 or is the IPv6 loopback.
func IsLoopback(address string) bool {
	if strings.HasPrefix(address, "127.") {
		return true
	}
	ip, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	return ip.IsLoopback()
}
