package model

// Status is the outcome of a single consistency or leak check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarn    Status = "WARN"
	StatusFail    Status = "FAIL"
	StatusUnknown Status = "UNKNOWN"

	StatusSafe Status = "SAFE"
	StatusLeak Status = "LEAK"
)

// Severity orders statuses for scoring. UNKNOWN ranks with PASS so that
// uncertain data never costs points.
func (s Status) Severity() int {
	switch s {
	case StatusFail, StatusLeak:
		return 2
	case StatusWarn:
		return 1
	default:
		return 0
	}
}

// NetworkRisk is the scored subset of the IP classification.
type NetworkRisk struct {
	IsProxy    bool `json:"is_proxy"`
	IsVPN      bool `json:"is_vpn"`
	IsTor      bool `json:"is_tor"`
	FraudScore int  `json:"fraud_score"`
}

// ProtocolFingerprints are carried through to the report but never scored.
type ProtocolFingerprints struct {
	TLSJA3      string `json:"tls_ja3,omitempty"`
	TLSVersion  string `json:"tls_version,omitempty"`
	HTTPVersion string `json:"http_version,omitempty"`
	TCPOSGuess  string `json:"tcp_os_guess,omitempty"`
}

type WebRTCTelemetry struct {
	Status Status `json:"status"`
	IP     string `json:"ip,omitempty"`
	Region string `json:"region,omitempty"`
}

type DNSTelemetry struct {
	Status  Status   `json:"status"`
	Servers []string `json:"servers,omitempty"`
}

type IPv6Telemetry struct {
	Status  Status `json:"status"`
	Address string `json:"address,omitempty"`
	Leaked  bool   `json:"leaked"`
}

// LeakTelemetry groups the leak classifier outputs for one session.
type LeakTelemetry struct {
	WebRTC *WebRTCTelemetry `json:"webrtc,omitempty"`
	DNS    *DNSTelemetry    `json:"dns,omitempty"`
	IPv6   *IPv6Telemetry   `json:"ipv6,omitempty"`
}

// NetworkEvidence is the network half of the scoring input. Any field may be nil.
type NetworkEvidence struct {
	Risk      *NetworkRisk          `json:"risk,omitempty"`
	Protocols *ProtocolFingerprints `json:"protocols,omitempty"`
	Leaks     *LeakTelemetry        `json:"leaks,omitempty"`
}

// ConsistencyCheck is the result of one comparator.
type ConsistencyCheck struct {
	Status   Status `json:"status"`
	Evidence string `json:"evidence"`
}

// ConsistencyEvidence holds the three comparator results. Any field may be nil.
type ConsistencyEvidence struct {
	Timezone *ConsistencyCheck `json:"timezone_check,omitempty"`
	Language *ConsistencyCheck `json:"language_check,omitempty"`
	OS       *ConsistencyCheck `json:"os_check,omitempty"`
}
