package dataflows

import (
	"context"
	"errors"
	"fmt"

	lpconfig "github.com/longportapp/openapi-go/config"
	lpquote "github.com/longportapp/openapi-go/quote"

	"github.com/dyike/MoexGo/internal/config"
)

// LongportSource quotes cross-listed instruments through the Longport
// OpenAPI. Symbols are passed through as configured (Longport uses its
// own market suffixes). Wire it into a ChainSource only when
// config.LongportEnabled() reports credentials.
type LongportSource struct {
	quoteCtx *lpquote.QuoteContext
}

func NewLongportSource(cfg *config.Config) (*LongportSource, error) {
	if !cfg.LongportEnabled() {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteCtx, err := lpquote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportSource{quoteCtx: quoteCtx}, nil
}

// LastPrice returns the close of the most recent daily candlestick.
func (ls *LongportSource) LastPrice(ctx context.Context, symbol string) (float64, error) {
	if ls.quoteCtx == nil {
		return 0, errors.New("quote context is nil")
	}

	sticks, err := ls.quoteCtx.Candlesticks(ctx, symbol, lpquote.PeriodDay, 1, lpquote.AdjustTypeNo)
	if err != nil {
		return 0, fmt.Errorf("failed to get Longport candlesticks for %s: %w", symbol, err)
	}
	if len(sticks) == 0 {
		return 0, fmt.Errorf("no Longport candlesticks for %s", symbol)
	}

	last := sticks[len(sticks)-1]
	if last == nil || last.Close == nil {
		return 0, fmt.Errorf("no Longport close price for %s", symbol)
	}
	return last.Close.InexactFloat64(), nil
}
