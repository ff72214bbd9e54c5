// Package leak classifies addresses a browser exposes outside the main
// connection: WebRTC ICE candidates, DNS resolvers and IPv6.
package leak

import (
	"net/netip"
	"strings"
)

// Ranges a WebRTC host candidate may legitimately carry.
var localCIDRs = []string{
	"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "127.0.0.0/8",
	"::1/128", "fc00::/7", "fe80::/10",
}

// Carrier-grade NAT space. A resolver here is the access provider's own.
var cgnatCIDRs = []string{"100.64.0.0/10"}

var (
	localNets []netip.Prefix
	cgnatNets []netip.Prefix
	linkLocal = netip.MustParsePrefix("fe80::/10")
)

func init() {
	for _, cidr := range localCIDRs {
		localNets = append(localNets, netip.MustParsePrefix(cidr))
	}
	for _, cidr := range cgnatCIDRs {
		cgnatNets = append(cgnatNets, netip.MustParsePrefix(cidr))
	}
}

func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// Zoned link-local addresses ("fe80::1%en0") show up in ICE candidates and
// never match a prefix unless the zone is dropped.
func inAny(addr netip.Addr, nets []netip.Prefix) bool {
	for _, prefix := range nets {
		if prefix.Contains(addr.WithZone("")) {
			return true
		}
	}
	return false
}

// IsPrivate reports whether ip is loopback or private-use space.
// Unparseable input is not private.
func IsPrivate(ip string) bool {
	addr, ok := parseAddr(ip)
	return ok && inAny(addr, localNets)
}
