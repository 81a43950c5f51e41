package models

import "fmt"

// RiskProfile shapes the final-analysis prompt: the model is told which
// side of the risk/return trade-off the portfolio owner prefers.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskBalanced     RiskProfile = "balanced"
	RiskAggressive   RiskProfile = "aggressive"
)

func ParseRiskProfile(s string) (RiskProfile, error) {
	rp := RiskProfile(s)
	if s == "" {
		return RiskBalanced, nil
	}
	if err := rp.Validate(); err != nil {
		return "", err
	}
	return rp, nil
}

func (r RiskProfile) Validate() error {
	switch r {
	case RiskConservative, RiskBalanced, RiskAggressive:
		return nil
	}
	return fmt.Errorf("unknown risk profile %q (want conservative, balanced or aggressive)", string(r))
}

// PromptHint is appended to the final recommendation prompt.
func (r RiskProfile) PromptHint() string {
	switch r {
	case RiskConservative:
		return "Профиль инвестора: консервативный, приоритет — сохранение капитала"
	case RiskAggressive:
		return "Профиль инвестора: агрессивный, допустим повышенный риск ради роста"
	default:
		return "Профиль инвестора: сбалансированный"
	}
}
