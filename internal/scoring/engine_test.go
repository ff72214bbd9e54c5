package scoring_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browserscan/trustscore/internal/model"
	"github.com/browserscan/trustscore/internal/scoring"
)

func check(s model.Status) *model.ConsistencyCheck {
	return &model.ConsistencyCheck{Status: s, Evidence: "test"}
}

func codes(card model.ScoreCard) []string {
	out := make([]string, 0, len(card.Deductions))
	for _, d := range card.Deductions {
		out = append(out, d.Code)
	}
	return out
}

func sum(card model.ScoreCard) int {
	total := 0
	for _, d := range card.Deductions {
		total += d.Score
	}
	return total
}

func TestComputeScore_NothingProvided(t *testing.T) {
	card := scoring.ComputeScore(nil, nil, nil)

	assert.Equal(t, 100, card.Total)
	assert.Equal(t, "A+", card.Grade)
	assert.Equal(t, "Low Risk", card.Verdict)
	assert.NotNil(t, card.Deductions)
	assert.Empty(t, card.Deductions)
}

func TestComputeScore_EmptySections(t *testing.T) {
	card := scoring.ComputeScore(
		&model.NetworkEvidence{Leaks: &model.LeakTelemetry{}},
		&model.ConsistencyEvidence{},
		[]int{},
	)
	assert.Equal(t, 100, card.Total)
	assert.Empty(t, card.Deductions)
}

func TestComputeScore_TimezoneAndOSFail(t *testing.T) {
	card := scoring.ComputeScore(nil, &model.ConsistencyEvidence{
		Timezone: check(model.StatusFail),
		OS:       check(model.StatusFail),
	}, nil)

	require.Len(t, card.Deductions, 2)
	assert.Equal(t, scoring.CodeTZMismatch, card.Deductions[0].Code)
	assert.Equal(t, -15, card.Deductions[0].Score)
	assert.Equal(t, scoring.CodeOSMismatch, card.Deductions[1].Code)
	assert.Equal(t, -15, card.Deductions[1].Score)
	assert.Equal(t, 70, card.Total)
	assert.Equal(t, "B-", card.Grade)
	assert.Equal(t, "Moderate Risk", card.Verdict)
}

func TestComputeScore_ProxyAndWebRTCLeak(t *testing.T) {
	card := scoring.ComputeScore(&model.NetworkEvidence{
		Risk:  &model.NetworkRisk{FraudScore: 85, IsProxy: true},
		Leaks: &model.LeakTelemetry{WebRTC: &model.WebRTCTelemetry{Status: model.StatusLeak}},
	}, nil, nil)

	assert.Equal(t, []string{scoring.CodeIPRisk, scoring.CodeWebRTCLeak}, codes(card))
	assert.Equal(t, -20, card.Deductions[0].Score)
	assert.Equal(t, -25, card.Deductions[1].Score)
	assert.Equal(t, 55, card.Total)
	assert.Equal(t, "C-", card.Grade)
	assert.Equal(t, "Elevated Risk", card.Verdict)
}

func TestComputeScore_IPRiskDescriptionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		risk model.NetworkRisk
		desc string
	}{
		{"tor first", model.NetworkRisk{IsTor: true, IsProxy: true, FraudScore: 99}, "Tor exit node detected"},
		{"proxy second", model.NetworkRisk{IsProxy: true, FraudScore: 99}, "Proxy connection detected"},
		{"fraud score last", model.NetworkRisk{FraudScore: 76}, "High IP fraud score (76)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk := tt.risk
			card := scoring.ComputeScore(&model.NetworkEvidence{Risk: &risk}, nil, nil)
			require.Len(t, card.Deductions, 1)
			assert.Equal(t, scoring.CodeIPRisk, card.Deductions[0].Code)
			assert.Equal(t, tt.desc, card.Deductions[0].Desc)
			assert.Equal(t, 80, card.Total)
		})
	}
}

func TestComputeScore_FraudScoreBoundary(t *testing.T) {
	card := scoring.ComputeScore(&model.NetworkEvidence{Risk: &model.NetworkRisk{FraudScore: 75}}, nil, nil)
	assert.Empty(t, card.Deductions)
}

func TestComputeScore_VPNOnly(t *testing.T) {
	card := scoring.ComputeScore(&model.NetworkEvidence{Risk: &model.NetworkRisk{IsVPN: true, FraudScore: 30}}, nil, nil)

	assert.Equal(t, []string{scoring.CodeVPN}, codes(card))
	assert.Equal(t, 90, card.Total)
	assert.Equal(t, "A", card.Grade)
}

func TestComputeScore_IPBranchesAreExclusive(t *testing.T) {
	for _, risk := range []model.NetworkRisk{
		{IsVPN: true, IsProxy: true},
		{IsVPN: true, IsTor: true},
		{IsVPN: true, FraudScore: 90},
		{IsVPN: true},
	} {
		risk := risk
		card := scoring.ComputeScore(&model.NetworkEvidence{Risk: &risk}, nil, nil)
		got := codes(card)
		assert.False(t, slices.Contains(got, scoring.CodeIPRisk) && slices.Contains(got, scoring.CodeVPN), got)
		assert.Len(t, got, 1)
	}
}

func TestComputeScore_LanguageBranchesAreExclusive(t *testing.T) {
	fail := scoring.ComputeScore(nil, &model.ConsistencyEvidence{Language: check(model.StatusFail)}, nil)
	assert.Equal(t, []string{scoring.CodeLangMismatch}, codes(fail))
	assert.Equal(t, 95, fail.Total)

	warn := scoring.ComputeScore(nil, &model.ConsistencyEvidence{Language: check(model.StatusWarn)}, nil)
	assert.Equal(t, []string{scoring.CodeLangWarn}, codes(warn))
	assert.Equal(t, 98, warn.Total)
}

func TestComputeScore_WarnAndUnknownNeverCostTimezoneOrOS(t *testing.T) {
	for _, s := range []model.Status{model.StatusPass, model.StatusWarn, model.StatusUnknown} {
		card := scoring.ComputeScore(nil, &model.ConsistencyEvidence{
			Timezone: check(s),
			OS:       check(s),
		}, nil)
		assert.Equal(t, 100, card.Total, s)
	}

	unknownLang := scoring.ComputeScore(nil, &model.ConsistencyEvidence{Language: check(model.StatusUnknown)}, nil)
	assert.Equal(t, 100, unknownLang.Total)
}

func TestComputeScore_DNSLeakRule(t *testing.T) {
	leaking := scoring.ComputeScore(&model.NetworkEvidence{
		Leaks: &model.LeakTelemetry{DNS: &model.DNSTelemetry{Status: model.StatusLeak}},
	}, nil, nil)
	assert.Equal(t, []string{scoring.CodeDNSLeak}, codes(leaking))
	assert.Equal(t, 90, leaking.Total)

	// The DNS classifier reports ISP resolvers as WARN, which is not deducted.
	warn := scoring.ComputeScore(&model.NetworkEvidence{
		Leaks: &model.LeakTelemetry{DNS: &model.DNSTelemetry{Status: model.StatusWarn}},
	}, nil, nil)
	assert.Empty(t, warn.Deductions)
}

func TestComputeScore_IPv6IsInformational(t *testing.T) {
	card := scoring.ComputeScore(&model.NetworkEvidence{
		Leaks: &model.LeakTelemetry{IPv6: &model.IPv6Telemetry{Status: model.StatusSafe, Leaked: true}},
	}, nil, nil)
	assert.Equal(t, 100, card.Total)
}

func TestComputeScore_OpenPorts(t *testing.T) {
	card := scoring.ComputeScore(nil, nil, []int{80, 3389, 443, 22, 3389})

	require.Len(t, card.Deductions, 1)
	assert.Equal(t, scoring.CodeOpenPorts, card.Deductions[0].Code)
	assert.Equal(t, -10, card.Deductions[0].Score)
	assert.Equal(t, "Critical ports open: 3389, 22", card.Deductions[0].Desc)

	benign := scoring.ComputeScore(nil, nil, []int{80, 443, 8080})
	assert.Empty(t, benign.Deductions)
}

func TestComputeScore_WebRTCDescriptionCarriesIP(t *testing.T) {
	card := scoring.ComputeScore(&model.NetworkEvidence{
		Leaks: &model.LeakTelemetry{WebRTC: &model.WebRTCTelemetry{Status: model.StatusLeak, IP: "198.51.100.9"}},
	}, nil, nil)
	require.Len(t, card.Deductions, 1)
	assert.Contains(t, card.Deductions[0].Desc, "198.51.100.9")
}

// everything triggers every rule that can fire together.
func everything() (*model.NetworkEvidence, *model.ConsistencyEvidence, []int) {
	return &model.NetworkEvidence{
			Risk: &model.NetworkRisk{IsTor: true, FraudScore: 99},
			Leaks: &model.LeakTelemetry{
				WebRTC: &model.WebRTCTelemetry{Status: model.StatusLeak},
				DNS:    &model.DNSTelemetry{Status: model.StatusLeak},
			},
		}, &model.ConsistencyEvidence{
			Timezone: check(model.StatusFail),
			OS:       check(model.StatusFail),
			Language: check(model.StatusFail),
		}, []int{22, 5900}
}

func TestComputeScore_DeductionsInRuleOrder(t *testing.T) {
	card := scoring.ComputeScore(everything())

	assert.Equal(t, []string{
		scoring.CodeIPRisk, scoring.CodeWebRTCLeak, scoring.CodeDNSLeak,
		scoring.CodeTZMismatch, scoring.CodeOSMismatch, scoring.CodeLangMismatch,
		scoring.CodeOpenPorts,
	}, codes(card))
	assert.Equal(t, 0, card.Total)
	assert.Equal(t, "F", card.Grade)
	assert.Equal(t, "High Risk", card.Verdict)
	assert.Equal(t, -100, sum(card))
}

func TestComputeScore_Deterministic(t *testing.T) {
	n, c, p := everything()
	first := scoring.ComputeScore(n, c, p)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, scoring.ComputeScore(n, c, p))
	}
}

func TestComputeScore_TotalIsClampedSum(t *testing.T) {
	n, c, p := everything()
	card := scoring.ComputeScore(n, c, p)
	card = scoring.ApplyBotPenalty(card, "webdriver")

	assert.Less(t, 100+sum(card), 0)
	assert.Equal(t, 0, card.Total)
}

func TestComputeScore_Monotonic(t *testing.T) {
	// Add the rules' triggers one at a time; the total never rises.
	network := &model.NetworkEvidence{Leaks: &model.LeakTelemetry{}}
	consistency := &model.ConsistencyEvidence{}
	var ports []int

	steps := []func(){
		func() { network.Risk = &model.NetworkRisk{IsVPN: true} },
		func() { network.Risk = &model.NetworkRisk{IsVPN: true, IsProxy: true} },
		func() { network.Leaks.WebRTC = &model.WebRTCTelemetry{Status: model.StatusLeak} },
		func() { network.Leaks.DNS = &model.DNSTelemetry{Status: model.StatusLeak} },
		func() { consistency.Language = check(model.StatusWarn) },
		func() { consistency.Language = check(model.StatusFail) },
		func() { consistency.Timezone = check(model.StatusFail) },
		func() { consistency.OS = check(model.StatusFail) },
		func() { ports = []int{22} },
	}

	prev := scoring.ComputeScore(network, consistency, ports)
	for i, step := range steps {
		step()
		next := scoring.ComputeScore(network, consistency, ports)
		assert.LessOrEqual(t, next.Total, prev.Total, "step %d", i)
		assert.Equal(t, max(0, min(100, 100+sum(next))), next.Total, "step %d", i)
		prev = next
	}
}

func TestRules_Order(t *testing.T) {
	var got []string
	for _, r := range scoring.Rules() {
		got = append(got, r.Code)
	}
	assert.Equal(t, []string{
		scoring.CodeIPRisk, scoring.CodeVPN, scoring.CodeWebRTCLeak, scoring.CodeDNSLeak,
		scoring.CodeTZMismatch, scoring.CodeOSMismatch, scoring.CodeLangMismatch,
		scoring.CodeLangWarn, scoring.CodeOpenPorts,
	}, got)
}

func TestRules_ReturnsCopy(t *testing.T) {
	r := scoring.Rules()
	r[0] = scoring.Rule{}
	assert.Equal(t, scoring.CodeIPRisk, scoring.Rules()[0].Code)
}
