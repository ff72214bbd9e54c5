// Package ipintel turns IP-intelligence lookups into a fraud score and risk flags.
package ipintel

import "github.com/browserscan/trustscore/internal/model"

// PrivacySignals are the anonymizer flags reported by the lookup provider.
type PrivacySignals struct {
	Proxy   bool `json:"proxy"`
	VPN     bool `json:"vpn"`
	Tor     bool `json:"tor"`
	Hosting bool `json:"hosting"`
}

// IPClassification is the result of ClassifyIP.
type IPClassification struct {
	IsProxy    bool `json:"is_proxy"`
	IsVPN      bool `json:"is_vpn"`
	IsTor      bool `json:"is_tor"`
	IsHosting  bool `json:"is_hosting"`
	FraudScore int  `json:"fraud_score"`
}

// Risk returns the part of the classification the scoring engine consumes.
func (c IPClassification) Risk() *model.NetworkRisk {
	return &model.NetworkRisk{
		IsProxy:    c.IsProxy,
		IsVPN:      c.IsVPN,
		IsTor:      c.IsTor,
		FraudScore: c.FraudScore,
	}
}

const (
	torScore     = 90
	proxyScore   = 70
	vpnScore     = 30
	hostingScore = 50
	bogonScore   = 99
	torASNFloor  = 85
	maxScore     = 99
)

// ClassifyIP computes the fraud score for an address from its ASN and privacy
// signals. Only the strongest anonymizer signal contributes to the base score.
func ClassifyIP(asn string, signals PrivacySignals, isBogon bool) IPClassification {
	hosting := signals.Hosting || IsDatacenterASN(asn)

	score := 0
	switch {
	case signals.Tor:
		score += torScore
	case signals.Proxy:
		score += proxyScore
	case signals.VPN:
		score += vpnScore
	case hosting:
		score += hostingScore
	}

	if isBogon {
		score = bogonScore
	}
	if IsTorExitASN(asn) {
		score = max(score, torASNFloor)
	}

	return IPClassification{
		IsProxy:    signals.Proxy,
		IsVPN:      signals.VPN,
		IsTor:      signals.Tor,
		IsHosting:  hosting,
		FraudScore: min(maxScore, score),
	}
}
