// Package report wires one incoming scan through the classifiers, the
// consistency checks and the scoring engine, and persists the result.
package report

import (
	"time"

	"github.com/browserscan/trustscore/internal/automation"
	"github.com/browserscan/trustscore/internal/ipintel"
	"github.com/browserscan/trustscore/internal/leak"
	"github.com/browserscan/trustscore/internal/model"
	"github.com/browserscan/trustscore/internal/useragent"
)

// ClientSignals is the fingerprint payload posted by the browser collector.
type ClientSignals struct {
	Timezone           string             `json:"timezone"`
	Languages          []string           `json:"languages"`
	WebGLRenderer      string             `json:"webgl_renderer"`
	WebRTCCandidateIPs []string           `json:"webrtc_candidate_ips"`
	DNSServers         []string           `json:"dns_servers"`
	IPv6Address        *string            `json:"ipv6_address"`
	Automation         automation.Signals `json:"automation"`
}

// Request is one scan as seen by the HTTP layer.
type Request struct {
	ClientIP  string
	UserAgent string
	Protocols model.ProtocolFingerprints
	Client    ClientSignals
	OpenPorts []int
}

// Report is the stored outcome of a scan.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	IP               string                   `json:"ip"`
	Intel            ipintel.Intel            `json:"intel"`
	IPClassification ipintel.IPClassification `json:"ip_classification"`
	UserAgent        useragent.Info           `json:"user_agent"`

	Network     model.NetworkEvidence     `json:"network"`
	Consistency model.ConsistencyEvidence `json:"consistency"`
	WebRTC      leak.WebRTCResult         `json:"webrtc"`
	DNS         leak.DNSResult            `json:"dns"`
	OpenPorts   []int                     `json:"open_ports"`
	Automation  automation.Result         `json:"automation"`

	Score model.ScoreCard `json:"score"`
}
