package rebalance

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dyike/MoexGo/internal/models"
)

// Broker fee on every trade and tax on realized gains. Sell proceeds are
// price*qty*(1-fee)*(1-tax); buy cost is price*qty*(1+fee).
var (
	feeRate = decimal.NewFromFloat(0.0006)
	taxRate = decimal.NewFromFloat(0.15)
	one     = decimal.NewFromInt(1)
)

// Fixed action texts. Reports and tests match on these exactly.
const (
	ActionHold       = "Держать"
	ActionNoPosition = "Позиция отсутствует"
	ActionNoPrice    = "Цена недоступна"
	ActionNoFunds    = "Недостаточно средств"
)

// PriceSource resolves the live price used to size sells and buys.
// dataflows.PriceSource implementations satisfy it.
type PriceSource interface {
	LastPrice(ctx context.Context, ticker string) (float64, error)
}

// Allocator converts per-ticker recommendations into a priced action plan
// under the portfolio's cash constraint.
type Allocator struct {
	prices PriceSource
}

func NewAllocator(prices PriceSource) *Allocator {
	return &Allocator{prices: prices}
}

// Allocate builds the plan in strict two-phase order: every sell is
// realized first, so freed cash funds the buys. The buy phase splits the
// pool evenly across all buy candidates once, up front; a candidate whose
// buy fails does not refund its share to the others. Each ticker gets
// exactly one action, plus a residual cash entry keyed by models.CashKey.
func (a *Allocator) Allocate(ctx context.Context, results map[string]*models.AnalysisResult, portfolio *models.Portfolio) map[string]string {
	plan := make(map[string]string, len(results)+1)
	pool := decimal.NewFromFloat(portfolio.CashRUB)

	tickers := make([]string, 0, len(results))
	for t := range results {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var buys []string
	for _, t := range tickers {
		switch results[t].Recommendation {
		case models.RecommendationSell:
			action, proceeds := a.sell(ctx, t, portfolio)
			plan[t] = action
			pool = pool.Add(proceeds)
		case models.RecommendationBuy:
			buys = append(buys, t)
		}
	}

	if len(buys) > 0 {
		share := pool.Div(decimal.NewFromInt(int64(len(buys))))
		for _, t := range buys {
			action, spent := a.buy(ctx, t, share)
			plan[t] = action
			pool = pool.Sub(spent)
		}
	}

	for _, t := range tickers {
		if _, resolved := plan[t]; !resolved {
			plan[t] = ActionHold
		}
	}

	plan[models.CashKey] = fmt.Sprintf("Остаток %s", pool.Round(0))
	return plan
}

// sell liquidates the entire held quantity and returns the after-fee,
// after-tax proceeds to add to the pool.
func (a *Allocator) sell(ctx context.Context, ticker string, portfolio *models.Portfolio) (string, decimal.Decimal) {
	pos, held := portfolio.GetPosition(ticker)
	if !held || pos.Quantity == 0 {
		return ActionNoPosition, decimal.Zero
	}

	price, err := a.prices.LastPrice(ctx, ticker)
	if err != nil {
		log.Printf("[Rebalance] %s: price unavailable for sell: %v", ticker, err)
		return ActionNoPrice, decimal.Zero
	}

	qty := decimal.NewFromInt(int64(pos.Quantity))
	proceeds := decimal.NewFromFloat(price).Mul(qty).Mul(one.Sub(feeRate))
	afterTax := proceeds.Mul(one.Sub(taxRate))
	return fmt.Sprintf("Продать %d", pos.Quantity), afterTax
}

// buy sizes the largest whole-share purchase the candidate's share of the
// pool affords, fee included, and returns the true cost spent.
func (a *Allocator) buy(ctx context.Context, ticker string, share decimal.Decimal) (string, decimal.Decimal) {
	price, err := a.prices.LastPrice(ctx, ticker)
	if err != nil {
		log.Printf("[Rebalance] %s: price unavailable for buy: %v", ticker, err)
		return ActionNoPrice, decimal.Zero
	}

	unitCost := decimal.NewFromFloat(price).Mul(one.Add(feeRate))
	qty := share.Div(unitCost).Floor()
	if qty.IsZero() {
		return ActionNoFunds, decimal.Zero
	}
	return fmt.Sprintf("Купить %s", qty), qty.Mul(unitCost)
}

// PortfolioValue prices every position and sums the market value. A failed
// lookup is logged and contributes nothing; cash is not included.
func PortfolioValue(ctx context.Context, prices PriceSource, portfolio *models.Portfolio) float64 {
	total := 0.0
	for _, pos := range portfolio.Positions {
		price, err := prices.LastPrice(ctx, pos.Ticker)
		if err != nil {
			log.Printf("[Rebalance] Price for %s unavailable: %v", pos.Ticker, err)
			continue
		}
		total += price * float64(pos.Quantity)
	}
	return total
}
