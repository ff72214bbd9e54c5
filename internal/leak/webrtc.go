package leak

import "github.com/browserscan/trustscore/internal/model"

// WebRTCResult partitions the ICE candidate addresses gathered by the browser.
// LocalIPs and PublicIPs together hold every input exactly once, in input
// order; LeakedIPs is a subset of PublicIPs.
type WebRTCResult struct {
	Status    model.Status `json:"status"`
	LocalIPs  []string     `json:"local_ips"`
	PublicIPs []string     `json:"public_ips"`
	LeakedIPs []string     `json:"leaked_ips"`
}

// ClassifyWebRTC flags every public candidate address that differs from the
// address the session connected from. That is a leak whether or not the
// session is behind a VPN. Candidates that are not IP literals (mDNS
// "<uuid>.local" names) are public but can never leak.
func ClassifyWebRTC(candidateIPs []string, knownPublicIP string) WebRTCResult {
	res := WebRTCResult{
		Status:    model.StatusSafe,
		LocalIPs:  []string{},
		PublicIPs: []string{},
		LeakedIPs: []string{},
	}

	known, knownOK := parseAddr(knownPublicIP)

	for _, candidate := range candidateIPs {
		addr, ok := parseAddr(candidate)
		if ok && inAny(addr, localNets) {
			res.LocalIPs = append(res.LocalIPs, candidate)
			continue
		}
		res.PublicIPs = append(res.PublicIPs, candidate)

		if !ok {
			continue
		}
		if knownOK && addr.WithZone("") == known.WithZone("") {
			continue
		}
		res.LeakedIPs = append(res.LeakedIPs, candidate)
	}

	if len(res.LeakedIPs) > 0 {
		res.Status = model.StatusLeak
	}
	return res
}

// Telemetry converts the result to the scoring input. region is whatever the
// caller resolved for the first leaked address and may be empty.
func (r WebRTCResult) Telemetry(region string) *model.WebRTCTelemetry {
	t := &model.WebRTCTelemetry{Status: r.Status}
	if len(r.LeakedIPs) > 0 {
		t.IP = r.LeakedIPs[0]
		t.Region = region
	}
	return t
}
