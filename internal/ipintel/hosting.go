package ipintel

import "net/netip"

// Address blocks of the large cloud and VPS providers. They back the hosting
// signal when no Anonymous-IP database is configured.
var hostingBlocks = map[string][]string{
	"AWS": {
		"3.0.0.0/8", "13.0.0.0/8", "18.0.0.0/8", "52.0.0.0/8", "54.0.0.0/8", "99.0.0.0/8",
	},
	"Google Cloud": {
		"34.64.0.0/10", "35.184.0.0/13", "104.154.0.0/15", "104.196.0.0/14",
	},
	"Azure": {
		"20.0.0.0/8", "40.64.0.0/10", "52.224.0.0/11",
	},
	"DigitalOcean": {
		"64.225.0.0/16", "68.183.0.0/16", "104.131.0.0/16", "134.209.0.0/16",
		"138.68.0.0/16", "139.59.0.0/16", "142.93.0.0/16", "157.245.0.0/16",
		"159.65.0.0/16", "159.89.0.0/16", "161.35.0.0/16", "164.90.0.0/16",
		"165.22.0.0/16", "165.227.0.0/16", "167.71.0.0/16", "167.99.0.0/16",
		"178.128.0.0/16", "188.166.0.0/16", "206.189.0.0/16",
	},
	"Linode": {
		"45.33.0.0/16", "45.56.0.0/16", "45.79.0.0/16", "50.116.0.0/16",
		"139.162.0.0/16", "172.104.0.0/15",
	},
	"Vultr": {
		"45.32.0.0/16", "45.63.0.0/16", "45.76.0.0/16", "45.77.0.0/16",
		"108.61.0.0/16", "140.82.0.0/16", "144.202.0.0/16", "149.28.0.0/16",
	},
	"Hetzner": {
		"5.9.0.0/16", "46.4.0.0/14", "78.46.0.0/15", "88.99.0.0/16",
		"95.216.0.0/14", "116.202.0.0/15", "135.181.0.0/16", "136.243.0.0/16",
		"138.201.0.0/16", "144.76.0.0/16", "148.251.0.0/16", "157.90.0.0/16",
		"159.69.0.0/16", "168.119.0.0/16", "176.9.0.0/16", "188.40.0.0/16",
	},
	"OVH": {
		"51.38.0.0/16", "51.68.0.0/16", "51.75.0.0/16", "51.77.0.0/16",
		"51.89.0.0/16", "54.36.0.0/16", "54.37.0.0/16", "54.38.0.0/16",
		"91.134.0.0/16", "92.222.0.0/16", "137.74.0.0/16", "139.99.0.0/16",
		"144.217.0.0/16", "145.239.0.0/16", "147.135.0.0/16", "149.56.0.0/16",
		"151.80.0.0/16", "158.69.0.0/16", "164.132.0.0/16", "167.114.0.0/16",
		"176.31.0.0/16", "178.32.0.0/15", "188.165.0.0/16", "192.99.0.0/16",
	},
}

type hostingPrefix struct {
	prefix   netip.Prefix
	provider string
}

var hostingPrefixes []hostingPrefix

func init() {
	for provider, cidrs := range hostingBlocks {
		for _, cidr := range cidrs {
			hostingPrefixes = append(hostingPrefixes, hostingPrefix{netip.MustParsePrefix(cidr), provider})
		}
	}
}

// HostingProvider returns the provider whose address block contains ip.
// Blocks overlap (OVH inside 54.0.0.0/8), so the longest prefix wins.
func HostingProvider(ip string) (string, bool) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "", false
	}
	addr = addr.Unmap()

	best := -1
	var provider string
	for _, hp := range hostingPrefixes {
		if hp.prefix.Bits() > best && hp.prefix.Contains(addr) {
			best = hp.prefix.Bits()
			provider = hp.provider
		}
	}
	return provider, best >= 0
}

// Signals returns the privacy signals with the hosting flag also set when the
// address falls in a known provider block.
func (i Intel) Signals() PrivacySignals {
	s := i.Privacy
	if !s.Hosting {
		_, s.Hosting = HostingProvider(i.IP)
	}
	return s
}
