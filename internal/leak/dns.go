package leak

import (
	"net/netip"

	"github.com/browserscan/trustscore/internal/model"
)

// Public resolvers that encrypt or at least do not belong to the access ISP.
var secureResolverCIDRs = []string{
	// Cloudflare
	"1.1.1.1/32", "1.0.0.1/32", "1.1.1.2/32", "1.0.0.2/32", "2606:4700:4700::/48",
	// Google
	"8.8.8.8/32", "8.8.4.4/32", "2001:4860:4860::/48",
	// Quad9
	"9.9.9.9/32", "149.112.112.112/32", "2620:fe::/48",
	// OpenDNS
	"208.67.222.0/24", "208.67.220.0/24", "2620:119::/32",
	// AdGuard
	"94.140.14.0/24", "94.140.15.0/24",
	// NextDNS
	"45.90.28.0/24", "45.90.30.0/24",
	// Control D
	"76.76.2.0/24", "76.76.10.0/24",
	// CleanBrowsing
	"185.228.168.0/24", "185.228.169.0/24",
}

var secureResolverNets []netip.Prefix

func init() {
	for _, cidr := range secureResolverCIDRs {
		secureResolverNets = append(secureResolverNets, netip.MustParsePrefix(cidr))
	}
}

// DNSResult classifies the resolvers seen answering the session's lookups.
type DNSResult struct {
	Status      model.Status `json:"status"`
	IsSecureDNS bool         `json:"is_secure_dns"`
	IsISPDNS    bool         `json:"is_isp_dns"`
}

// ClassifyDNS returns WARN when any resolver sits in private or CGNAT space,
// the usual sign of an ISP-assigned resolver answering despite a tunnel.
// Unknown public resolvers are SAFE to avoid flagging legitimate setups.
//
// IsSecureDNS needs every reported server on the allowlist; an entry that
// does not parse as an address matches nothing.
func ClassifyDNS(serverIPs []string) DNSResult {
	var parsed []netip.Addr
	for _, s := range serverIPs {
		if addr, ok := parseAddr(s); ok {
			parsed = append(parsed, addr)
		}
	}
	if len(parsed) == 0 {
		return DNSResult{Status: model.StatusUnknown}
	}

	allSecure := len(parsed) == len(serverIPs)
	for _, addr := range parsed {
		if inAny(addr, localNets) || inAny(addr, cgnatNets) {
			return DNSResult{Status: model.StatusWarn, IsISPDNS: true}
		}
		if !inAny(addr, secureResolverNets) {
			allSecure = false
		}
	}

	return DNSResult{Status: model.StatusSafe, IsSecureDNS: allSecure}
}

// Telemetry converts the result to the scoring input.
func (r DNSResult) Telemetry(servers []string) *model.DNSTelemetry {
	return &model.DNSTelemetry{Status: r.Status, Servers: servers}
}
