package ipintel

import (
	"net/netip"
	"strings"
)

// Address space that must never appear as a public client address.
var bogonCIDRs = []string{
	"0.0.0.0/8", "10.0.0.0/8", "100.64.0.0/10", "127.0.0.0/8",
	"169.254.0.0/16", "172.16.0.0/12", "192.0.0.0/24", "192.0.2.0/24",
	"192.168.0.0/16", "198.18.0.0/15", "198.51.100.0/24", "203.0.113.0/24",
	"224.0.0.0/4", "240.0.0.0/4",
	"::/128", "::1/128", "fc00::/7", "fe80::/10", "2001:db8::/32", "ff00::/8",
}

var bogonNets []netip.Prefix

func init() {
	for _, cidr := range bogonCIDRs {
		bogonNets = append(bogonNets, netip.MustParsePrefix(cidr))
	}
}

// IsBogon reports whether ip is reserved, private or documentation space.
// Unparseable input is not a bogon.
func IsBogon(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range bogonNets {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
