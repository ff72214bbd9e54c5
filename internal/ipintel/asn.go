package ipintel

import (
	"strconv"
	"strings"
)

// Cloud, CDN and hosting networks. Traffic from these is rarely a person
// sitting at a browser.
var datacenterASNs = map[uint]string{
	16509:  "Amazon.com",
	14618:  "Amazon AES",
	15169:  "Google",
	396982: "Google Cloud",
	8075:   "Microsoft Azure",
	14061:  "DigitalOcean",
	24940:  "Hetzner Online",
	16276:  "OVH",
	20473:  "Choopa (Vultr)",
	63949:  "Akamai (Linode)",
	13335:  "Cloudflare",
	54113:  "Fastly",
	31898:  "Oracle Cloud",
	45102:  "Alibaba Cloud",
	132203: "Tencent Cloud",
	12876:  "Scaleway",
}

// Networks that carry most of the Tor exit capacity.
var torExitASNs = map[uint]string{
	60729:  "Stiftung Erneuerbare Freiheit",
	205100: "F3 Netze",
	53667:  "FranTech Solutions",
	4224:   "The Calyx Institute",
	208323: "Foundation for Applied Privacy",
	210558: "1337 Services",
}

// parseASN accepts "AS16509", "as16509", "16509" and the "AS16509 Amazon.com"
// form most lookup services return.
func parseASN(asn string) (uint, bool) {
	fields := strings.Fields(asn)
	if len(fields) == 0 {
		return 0, false
	}
	token := strings.ToUpper(fields[0])
	token = strings.TrimPrefix(token, "AS")
	n, err := strconv.ParseUint(token, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// IsDatacenterASN reports whether asn belongs to a known cloud or hosting provider.
func IsDatacenterASN(asn string) bool {
	n, ok := parseASN(asn)
	if !ok {
		return false
	}
	_, found := datacenterASNs[n]
	return found
}

// IsTorExitASN reports whether asn is one of the large Tor exit operators.
func IsTorExitASN(asn string) bool {
	n, ok := parseASN(asn)
	if !ok {
		return false
	}
	_, found := torExitASNs[n]
	return found
}

// ProviderName returns the table name for a known ASN, or "".
func ProviderName(asn string) string {
	n, ok := parseASN(asn)
	if !ok {
		return ""
	}
	if name, ok := datacenterASNs[n]; ok {
		return name
	}
	return torExitASNs[n]
}
