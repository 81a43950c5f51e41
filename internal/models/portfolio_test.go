package models

import (
	"strings"
	"testing"
)

func TestNewPositionNormalizesTicker(t *testing.T) {
	pos, err := NewPosition("sber", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Ticker != "SBER" {
		t.Errorf("ticker not uppercased: got %q", pos.Ticker)
	}
	if pos.Quantity != 100 {
		t.Errorf("quantity changed: got %d", pos.Quantity)
	}
}

func TestNewPositionRejectsShortTicker(t *testing.T) {
	for _, ticker := range []string{"", "A", "AB"} {
		if _, err := NewPosition(ticker, 10); err == nil {
			t.Errorf("ticker %q: expected validation error", ticker)
		} else if !strings.Contains(err.Error(), "at least 3 characters") {
			t.Errorf("ticker %q: unexpected error text %q", ticker, err)
		}
	}
}

func TestNewPositionQuantityBounds(t *testing.T) {
	if _, err := NewPosition("SBER", 0); err != nil {
		t.Errorf("zero quantity must be allowed: %v", err)
	}
	if _, err := NewPosition("SBER", -10); err == nil {
		t.Error("negative quantity must be rejected")
	} else if !strings.Contains(err.Error(), "non-negative") {
		t.Errorf("unexpected error text %q", err)
	}
}

func TestNewPortfolioFromMap(t *testing.T) {
	p, err := NewPortfolioFromMap(map[string]float64{"sber": 100, "GAZP": 50}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(p.Positions))
	}
	if _, ok := p.GetPosition("SBER"); !ok {
		t.Error("SBER not found after case folding")
	}
	if p.RiskProfile != RiskBalanced {
		t.Errorf("default risk profile: got %q", p.RiskProfile)
	}
}

func TestNewPortfolioFromMapCashKey(t *testing.T) {
	p, err := NewPortfolioFromMap(map[string]float64{"SBER": 100, "RUB": 1000}, RiskBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Positions) != 1 {
		t.Fatalf("RUB must not become a position, got %d positions", len(p.Positions))
	}
	if p.CashRUB != 1000 {
		t.Errorf("cash: got %v, want 1000", p.CashRUB)
	}
}

func TestNewPortfolioFromMapRejectsFractionalQuantity(t *testing.T) {
	if _, err := NewPortfolioFromMap(map[string]float64{"SBER": 10.5}, ""); err == nil {
		t.Error("fractional quantity must be rejected")
	}
}

func TestNewPortfolioFromMapEmpty(t *testing.T) {
	p, err := NewPortfolioFromMap(map[string]float64{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Positions) != 0 || p.CashRUB != 0 {
		t.Errorf("empty map must give an empty portfolio, got %+v", p)
	}
}

func TestNewPortfolioRejectsDuplicates(t *testing.T) {
	a, _ := NewPosition("SBER", 1)
	b, _ := NewPosition("sber", 2)
	if _, err := NewPortfolio([]Position{a, b}, 0, ""); err == nil {
		t.Error("duplicate tickers must be rejected")
	}
}

func TestNewPortfolioRejectsNegativeCash(t *testing.T) {
	if _, err := NewPortfolio(nil, -1, ""); err == nil {
		t.Error("negative cash must be rejected")
	}
}

func TestParseRiskProfile(t *testing.T) {
	cases := []struct {
		in      string
		want    RiskProfile
		wantErr bool
	}{
		{"", RiskBalanced, false},
		{"conservative", RiskConservative, false},
		{"balanced", RiskBalanced, false},
		{"aggressive", RiskAggressive, false},
		{"yolo", "", true},
	}
	for _, c := range cases {
		got, err := ParseRiskProfile(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseRiskProfile(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRiskProfile(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseRiskProfile(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewAnalysisResultConfidenceBounds(t *testing.T) {
	for _, conf := range []float64{0, 0.5, 1} {
		if _, err := NewAnalysisResult("SBER", RecommendationBuy, conf, nil); err != nil {
			t.Errorf("confidence %v must be accepted: %v", conf, err)
		}
	}
	for _, conf := range []float64{-0.1, 1.1, 2} {
		if _, err := NewAnalysisResult("SBER", RecommendationBuy, conf, nil); err == nil {
			t.Errorf("confidence %v must be rejected", conf)
		}
	}
}

func TestNewAnalysisResultDefaults(t *testing.T) {
	r, err := NewAnalysisResult("SBER", "", 0.5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Recommendation != RecommendationHold {
		t.Errorf("default recommendation: got %q, want %q", r.Recommendation, RecommendationHold)
	}
	if r.AnalysisData == nil {
		t.Error("analysis data must never be nil")
	}
}

func TestStateMerge(t *testing.T) {
	st := NewAnalysisState("SBER", 10)
	mood := "растущий рынок"
	st.Merge(&StageUpdate{MarketNews: &mood})
	st.Merge(&StageUpdate{News: []string{"новость"}})
	st.Merge(nil)

	if st.MarketNews != mood {
		t.Errorf("market news not merged: %q", st.MarketNews)
	}
	if len(st.News) != 1 {
		t.Errorf("news not merged: %v", st.News)
	}
	// Empty-but-set news list replaces the previous one.
	st.Merge(&StageUpdate{News: []string{}})
	if len(st.News) != 0 {
		t.Errorf("empty news update must clear the list, got %v", st.News)
	}
	// Unrelated updates leave other fields alone.
	if st.MarketNews != mood {
		t.Errorf("market news clobbered by unrelated merge: %q", st.MarketNews)
	}
}
