// Package scoring folds classified evidence into a 0-100 trust score.
//
// Every session starts at 100. Each rule in the deduction table that applies
// subtracts a fixed number of points; the total is clamped to [0, 100] and
// mapped to a letter grade and a verdict. The engine is a pure function of
// its input.
package scoring

import "github.com/browserscan/trustscore/internal/model"

const perfectScore = 100

// ComputeScore evaluates the deduction table against the evidence. Missing
// sections contribute no deductions.
func ComputeScore(network *model.NetworkEvidence, consistency *model.ConsistencyEvidence, openPorts []int) model.ScoreCard {
	return Score(&Evidence{Network: network, Consistency: consistency, OpenPorts: openPorts})
}

// Score is ComputeScore over a prepared Evidence value.
func Score(ev *Evidence) model.ScoreCard {
	if ev == nil {
		ev = &Evidence{}
	}

	deductions := make([]model.ScoreDeduction, 0, len(rules))
	for _, rule := range rules {
		if rule.Applies(ev) {
			deductions = append(deductions, rule.Build(ev))
		}
	}

	return newCard(total(deductions), deductions)
}

func total(deductions []model.ScoreDeduction) int {
	sum := perfectScore
	for _, d := range deductions {
		sum += d.Score
	}
	return clamp(sum)
}

func clamp(score int) int {
	return max(0, min(perfectScore, score))
}

func newCard(total int, deductions []model.ScoreDeduction) model.ScoreCard {
	return model.ScoreCard{
		Total:      total,
		Grade:      Grade(total),
		Verdict:    Verdict(total),
		Deductions: deductions,
	}
}
