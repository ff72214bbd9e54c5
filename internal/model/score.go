package model

// ScoreDeduction is one triggered rule. Score is always negative.
type ScoreDeduction struct {
	Code  string `json:"code"`
	Score int    `json:"score"`
	Desc  string `json:"desc"`
}

// ScoreCard is the verdict for one session.
type ScoreCard struct {
	Total      int              `json:"total"`
	Grade      string           `json:"grade"`
	Verdict    string           `json:"verdict"`
	Deductions []ScoreDeduction `json:"deductions"`
}
