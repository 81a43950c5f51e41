package models

import "testing"

func TestExtractRecommendation(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Recommendation
	}{
		{"buy", "Рекомендация: КУПИТЬ. Сильная отчетность.", RecommendationBuy},
		{"sell", "Рекомендация: ПРОДАВАТЬ. Падение выручки.", RecommendationSell},
		{"hold", "Рекомендация: ДЕРЖАТЬ. Без явных сигналов.", RecommendationHold},
		{"buy wins over sell", "КУПИТЬ сейчас, ПРОДАВАТЬ позже", RecommendationBuy},
		{"no verdict token", "Ошибка финального анализа", RecommendationHold},
		{"empty", "", RecommendationHold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractRecommendation(tc.text); got != tc.want {
				t.Errorf("ExtractRecommendation(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestNewAnalysisResultValidatesConfidence(t *testing.T) {
	if _, err := NewAnalysisResult("SBER", RecommendationBuy, 1.2, nil); err == nil {
		t.Error("confidence above 1 must be rejected")
	}
	if _, err := NewAnalysisResult("SBER", RecommendationBuy, -0.1, nil); err == nil {
		t.Error("negative confidence must be rejected")
	}

	res, err := NewAnalysisResult("SBER", "", 0.8, nil)
	if err != nil {
		t.Fatalf("NewAnalysisResult: %v", err)
	}
	if res.Recommendation != RecommendationHold {
		t.Errorf("empty recommendation must default to ДЕРЖАТЬ, got %q", res.Recommendation)
	}
	if res.AnalysisData == nil {
		t.Error("analysis data must never be nil")
	}
}
