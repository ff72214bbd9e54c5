package scoring

import (
	"slices"

	"github.com/browserscan/trustscore/internal/model"
)

const botPenalty = 30

// ApplyBotPenalty amends an already computed card when automation markers
// were found outside the regular evidence set. The input card is left
// untouched. Callers apply it at most once per report; a second call
// deducts again.
func ApplyBotPenalty(card model.ScoreCard, evidence string) model.ScoreCard {
	if evidence == "" {
		evidence = "Automation markers detected"
	}

	deductions := slices.Clone(card.Deductions)
	deductions = append(deductions, model.ScoreDeduction{
		Code:  CodeBotDetected,
		Score: -botPenalty,
		Desc:  evidence,
	})

	return newCard(clamp(card.Total-botPenalty), deductions)
}
