package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/browserscan/trustscore/internal/model"
)

// Deduction codes.
const (
	CodeIPRisk       = "IP_RISK"
	CodeVPN          = "VPN_DETECTED"
	CodeWebRTCLeak   = "WEBRTC_LEAK"
	CodeDNSLeak      = "DNS_LEAK"
	CodeTZMismatch   = "TZ_MISMATCH"
	CodeOSMismatch   = "OS_MISMATCH"
	CodeLangMismatch = "LANG_MISMATCH"
	CodeLangWarn     = "LANG_WARN"
	CodeOpenPorts    = "OPEN_PORTS"
	CodeBotDetected  = "BOT_DETECTED"
)

// highFraudScore is the fraud score above which an IP is treated as risky
// on its own.
const highFraudScore = 75

// Ports whose exposure suggests a server or a remote-controlled machine
// rather than a personal browser: SSH, RDP, VNC.
var criticalPorts = []int{22, 3389, 5900}

// Evidence is everything one scoring pass sees. Any field may be nil.
type Evidence struct {
	Network     *model.NetworkEvidence
	Consistency *model.ConsistencyEvidence
	OpenPorts   []int
}

// Rule is one row of the deduction table. Build is only called when Applies
// returned true.
type Rule struct {
	Code    string
	Applies func(ev *Evidence) bool
	Build   func(ev *Evidence) model.ScoreDeduction
}

// The order matters: it is the order deductions appear on the card.
var rules = []Rule{
	{
		Code:    CodeIPRisk,
		Applies: func(ev *Evidence) bool { return highRisk(ev.risk()) },
		Build: func(ev *Evidence) model.ScoreDeduction {
			r := ev.risk()
			var desc string
			switch {
			case r.IsTor:
				desc = "Tor exit node detected"
			case r.IsProxy:
				desc = "Proxy connection detected"
			default:
				desc = fmt.Sprintf("High IP fraud score (%d)", r.FraudScore)
			}
			return model.ScoreDeduction{Code: CodeIPRisk, Score: -20, Desc: desc}
		},
	},
	{
		Code: CodeVPN,
		Applies: func(ev *Evidence) bool {
			r := ev.risk()
			return r != nil && r.IsVPN && !highRisk(r)
		},
		Build: fixed(CodeVPN, -10, "VPN connection detected"),
	},
	{
		Code: CodeWebRTCLeak,
		Applies: func(ev *Evidence) bool {
			l := ev.leaks()
			return l != nil && l.WebRTC != nil && l.WebRTC.Status == model.StatusLeak
		},
		Build: func(ev *Evidence) model.ScoreDeduction {
			d := model.ScoreDeduction{Code: CodeWebRTCLeak, Score: -25, Desc: "WebRTC exposes an IP address different from the connection"}
			if ip := ev.leaks().WebRTC.IP; ip != "" {
				d.Desc += " (" + ip + ")"
			}
			return d
		},
	},
	{
		Code: CodeDNSLeak,
		Applies: func(ev *Evidence) bool {
			l := ev.leaks()
			return l != nil && l.DNS != nil && l.DNS.Status == model.StatusLeak
		},
		Build: fixed(CodeDNSLeak, -10, "DNS queries resolved outside the tunnel"),
	},
	{
		Code:    CodeTZMismatch,
		Applies: func(ev *Evidence) bool { return statusOf(ev.consistency().timezone()) == model.StatusFail },
		Build:   fixed(CodeTZMismatch, -15, "System timezone does not match IP location"),
	},
	{
		Code:    CodeOSMismatch,
		Applies: func(ev *Evidence) bool { return statusOf(ev.consistency().os()) == model.StatusFail },
		Build:   fixed(CodeOSMismatch, -15, "User-Agent OS is inconsistent with the WebGL renderer"),
	},
	{
		Code:    CodeLangMismatch,
		Applies: func(ev *Evidence) bool { return statusOf(ev.consistency().language()) == model.StatusFail },
		Build:   fixed(CodeLangMismatch, -5, "Browser language does not match IP country"),
	},
	{
		Code:    CodeLangWarn,
		Applies: func(ev *Evidence) bool { return statusOf(ev.consistency().language()) == model.StatusWarn },
		Build:   fixed(CodeLangWarn, -2, "Browser language only partially matches IP country"),
	},
	{
		Code:    CodeOpenPorts,
		Applies: func(ev *Evidence) bool { return len(openCritical(ev.OpenPorts)) > 0 },
		Build: func(ev *Evidence) model.ScoreDeduction {
			open := openCritical(ev.OpenPorts)
			parts := make([]string, len(open))
			for i, p := range open {
				parts[i] = fmt.Sprint(p)
			}
			return model.ScoreDeduction{
				Code:  CodeOpenPorts,
				Score: -10,
				Desc:  "Critical ports open: " + strings.Join(parts, ", "),
			}
		},
	},
}

// Rules returns a copy of the deduction table in evaluation order.
func Rules() []Rule {
	return slices.Clone(rules)
}

func fixed(code string, score int, desc string) func(*Evidence) model.ScoreDeduction {
	return func(*Evidence) model.ScoreDeduction {
		return model.ScoreDeduction{Code: code, Score: score, Desc: desc}
	}
}

func highRisk(r *model.NetworkRisk) bool {
	return r != nil && (r.FraudScore > highFraudScore || r.IsProxy || r.IsTor)
}

// openCritical returns the critical ports present in open, in the order
// first reported, without duplicates.
func openCritical(open []int) []int {
	var out []int
	for _, p := range open {
		if slices.Contains(criticalPorts, p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func (ev *Evidence) risk() *model.NetworkRisk {
	if ev.Network == nil {
		return nil
	}
	return ev.Network.Risk
}

func (ev *Evidence) leaks() *model.LeakTelemetry {
	if ev.Network == nil {
		return nil
	}
	return ev.Network.Leaks
}

type consistencyView struct{ c *model.ConsistencyEvidence }

func (ev *Evidence) consistency() consistencyView { return consistencyView{ev.Consistency} }

func (v consistencyView) timezone() *model.ConsistencyCheck {
	if v.c == nil {
		return nil
	}
	return v.c.Timezone
}

func (v consistencyView) language() *model.ConsistencyCheck {
	if v.c == nil {
		return nil
	}
	return v.c.Language
}

func (v consistencyView) os() *model.ConsistencyCheck {
	if v.c == nil {
		return nil
	}
	return v.c.OS
}

func statusOf(c *model.ConsistencyCheck) model.Status {
	if c == nil {
		return model.StatusUnknown
	}
	return c.Status
}
