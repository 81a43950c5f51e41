package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CashKey is the portfolio-map key that carries the cash balance instead
// of a position. It also keys the residual entry of a rebalancing plan.
const CashKey = "RUB"

// Position is one portfolio holding. Constructed only through NewPosition,
// never mutated afterwards.
type Position struct {
	Ticker   string `json:"ticker"`
	Quantity int    `json:"quantity"`
}

func NewPosition(ticker string, quantity int) (Position, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if len(ticker) < 3 {
		return Position{}, fmt.Errorf("ticker %q: ticker must be at least 3 characters", ticker)
	}
	if quantity < 0 {
		return Position{}, fmt.Errorf("ticker %s: quantity must be non-negative, got %d", ticker, quantity)
	}
	return Position{Ticker: ticker, Quantity: quantity}, nil
}

// Portfolio is built once per run and read-only afterwards. The allocator
// projects cash changes into a new plan without touching the original.
type Portfolio struct {
	Positions   []Position  `json:"positions"`
	CashRUB     float64     `json:"cash_rub"`
	RiskProfile RiskProfile `json:"risk_profile"`
}

// NewPortfolio validates positions for ticker uniqueness and the cash
// balance for non-negativity.
func NewPortfolio(positions []Position, cashRUB float64, risk RiskProfile) (*Portfolio, error) {
	if cashRUB < 0 {
		return nil, fmt.Errorf("cash balance must be non-negative, got %v", cashRUB)
	}
	if risk == "" {
		risk = RiskBalanced
	} else if err := risk.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(positions))
	for _, p := range positions {
		if seen[p.Ticker] {
			return nil, fmt.Errorf("duplicate ticker %s in portfolio", p.Ticker)
		}
		seen[p.Ticker] = true
	}
	return &Portfolio{Positions: positions, CashRUB: cashRUB, RiskProfile: risk}, nil
}

// NewPortfolioFromMap builds a portfolio from the external JSON mapping of
// ticker to quantity. The CashKey entry is the cash balance, not a position.
// Quantities must be whole numbers; ticker keys are normalized by NewPosition.
func NewPortfolioFromMap(data map[string]float64, risk RiskProfile) (*Portfolio, error) {
	positions := make([]Position, 0, len(data))
	cash := 0.0

	tickers := make([]string, 0, len(data))
	for k := range data {
		tickers = append(tickers, k)
	}
	sort.Strings(tickers)

	for _, k := range tickers {
		v := data[k]
		if strings.EqualFold(strings.TrimSpace(k), CashKey) {
			cash = v
			continue
		}
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("ticker %s: quantity must be a whole number, got %v", k, v)
		}
		pos, err := NewPosition(k, int(v))
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return NewPortfolio(positions, cash, risk)
}

// GetPosition looks a holding up by ticker.
func (p *Portfolio) GetPosition(ticker string) (Position, bool) {
	ticker = strings.ToUpper(ticker)
	for _, pos := range p.Positions {
		if pos.Ticker == ticker {
			return pos, true
		}
	}
	return Position{}, false
}

// Tickers returns the held tickers in portfolio order.
func (p *Portfolio) Tickers() []string {
	out := make([]string, 0, len(p.Positions))
	for _, pos := range p.Positions {
		out = append(out, pos.Ticker)
	}
	return out
}
