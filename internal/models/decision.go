package models

import (
	"fmt"
	"strings"
)

// Recommendation is the categorical verdict extracted from the final
// analysis text. Values are the Russian tokens the model is prompted with.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "КУПИТЬ"
	RecommendationHold Recommendation = "ДЕРЖАТЬ"
	RecommendationSell Recommendation = "ПРОДАВАТЬ"
)

// ExtractRecommendation reads the categorical verdict out of free-form
// analysis text. КУПИТЬ wins when both verdict tokens appear; text with
// neither token reads as ДЕРЖАТЬ.
func ExtractRecommendation(text string) Recommendation {
	if strings.Contains(text, string(RecommendationBuy)) {
		return RecommendationBuy
	}
	if strings.Contains(text, string(RecommendationSell)) {
		return RecommendationSell
	}
	return RecommendationHold
}

// AnalysisResult is the immutable per-ticker outcome of one pipeline run.
// AnalysisData keeps every intermediate stage text for audit and display.
type AnalysisResult struct {
	Ticker         string            `json:"ticker"`
	Recommendation Recommendation    `json:"recommendation"`
	Confidence     float64           `json:"confidence"`
	AnalysisData   map[string]string `json:"analysis_data"`
}

// NewAnalysisResult validates confidence at construction. Everything else
// about a result is trusted input from the pipeline.
func NewAnalysisResult(ticker string, rec Recommendation, confidence float64, data map[string]string) (*AnalysisResult, error) {
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence must be between 0 and 1, got %v", confidence)
	}
	if rec == "" {
		rec = RecommendationHold
	}
	if data == nil {
		data = map[string]string{}
	}
	return &AnalysisResult{
		Ticker:         ticker,
		Recommendation: rec,
		Confidence:     confidence,
		AnalysisData:   data,
	}, nil
}
