package dataflows

import (
	"context"
	"fmt"
	"log"

	"github.com/piquette/finance-go/quote"
)

// PriceSource resolves the current trade price for one ticker.
// Implementations may fail per ticker; callers decide how to degrade.
type PriceSource interface {
	LastPrice(ctx context.Context, ticker string) (float64, error)
}

// PriceFunc adapts a plain function to PriceSource.
type PriceFunc func(ctx context.Context, ticker string) (float64, error)

func (f PriceFunc) LastPrice(ctx context.Context, ticker string) (float64, error) {
	return f(ctx, ticker)
}

// YahooSource quotes MOEX tickers through Yahoo Finance, where they are
// listed under a ".ME" suffix. Used as a fallback when ISS reports no
// trade price.
type YahooSource struct{}

func (YahooSource) LastPrice(_ context.Context, ticker string) (float64, error) {
	q, err := quote.Get(ticker + ".ME")
	if err != nil {
		return 0, fmt.Errorf("failed to get Yahoo quote for %s: %w", ticker, err)
	}
	if q == nil || q.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("no Yahoo price for %s", ticker)
	}
	return q.RegularMarketPrice, nil
}

// ChainSource tries each source in order and returns the first price.
type ChainSource []PriceSource

func (cs ChainSource) LastPrice(ctx context.Context, ticker string) (float64, error) {
	var lastErr error
	for _, src := range cs {
		price, err := src.LastPrice(ctx, ticker)
		if err == nil {
			return price, nil
		}
		lastErr = err
		log.Printf("[Quotes] %s: source %T failed: %v", ticker, src, err)
	}
	if lastErr == nil {
		return 0, fmt.Errorf("price unavailable for %s: no sources configured", ticker)
	}
	return 0, fmt.Errorf("price unavailable for %s: %w", ticker, lastErr)
}
