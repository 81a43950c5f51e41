package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/dyike/MoexGo/consts"
	"github.com/dyike/MoexGo/internal/cache"
	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/monitor"
	"github.com/dyike/MoexGo/internal/resilience"
)

const moexBaseURL = "https://iss.moex.com"

// MoexClient reads trading history and quotes from the MOEX ISS API
// (stock engine, TQBR board).
type MoexClient struct {
	http     *resty.Client
	history  *cache.Cache[[]Candle]
	monitor  *monitor.Monitor
	retryCfg *resilience.RetryConfig
}

// NewMoexClient creates a MOEX ISS client. The history cache keeps the
// ticker/window responses for the configured TTL so concurrent pipeline
// runs do not hammer ISS for the same series.
func NewMoexClient(cfg *config.Config, mon *monitor.Monitor) *MoexClient {
	client := newHTTPClient(cfg.APITimeout)
	client.SetBaseURL(moexBaseURL)

	return &MoexClient{
		http:     client,
		history:  cache.New[[]Candle](cfg.CacheTTL, cfg.CacheEnabled),
		monitor:  mon,
		retryCfg: &resilience.RetryConfig{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
	}
}

// issTable is the column/row layout ISS uses for every response block.
type issTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

func (t *issTable) index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// GetTickerHistory returns daily candles for the ticker over the lookback
// window, oldest first. An empty window is reported as ErrNoMarketData.
func (mc *MoexClient) GetTickerHistory(ctx context.Context, ticker string, lookbackDays int) ([]Candle, error) {
	key := fmt.Sprintf("%s-%d", ticker, lookbackDays)
	if cached, ok := mc.history.Get(key); ok {
		log.Printf("[MOEX] %s: using cached history (%d candles)", ticker, len(cached))
		return cached, nil
	}

	till := time.Now()
	from := till.AddDate(0, 0, -lookbackDays)

	var candles []Candle
	err := resilience.Call(mc.retryCfg, mc.monitor, consts.OpMoexData, func() error {
		var err error
		candles, err = mc.fetchHistory(ctx, ticker, from, till)
		return err
	})
	if err != nil {
		return nil, err
	}

	mc.history.Set(key, candles)
	return candles, nil
}

func (mc *MoexClient) fetchHistory(ctx context.Context, ticker string, from, till time.Time) ([]Candle, error) {
	var candles []Candle
	start := 0
	for {
		page, fetched, total, err := mc.fetchHistoryPage(ctx, ticker, from, till, start)
		if err != nil {
			return nil, err
		}
		candles = append(candles, page...)
		start += fetched
		if fetched == 0 || start >= total {
			break
		}
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s has no trades between %s and %s",
			ErrNoMarketData, ticker, from.Format("2006-01-02"), till.Format("2006-01-02"))
	}
	return candles, nil
}

// fetchHistoryPage loads one ISS page. ISS paginates history via the
// start offset and reports the overall row count in history.cursor.
func (mc *MoexClient) fetchHistoryPage(ctx context.Context, ticker string, from, till time.Time, start int) ([]Candle, int, int, error) {
	resp, err := mc.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"iss.meta":        "off",
			"history.columns": "TRADEDATE,CLOSE,VOLUME,VALUE",
			"from":            from.Format("2006-01-02"),
			"till":            till.Format("2006-01-02"),
			"start":           strconv.Itoa(start),
		}).
		Get(fmt.Sprintf("/iss/history/engines/stock/markets/shares/boards/TQBR/securities/%s.json", ticker))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to fetch MOEX history for %s: %w", ticker, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, 0, 0, err
	}

	var payload struct {
		History issTable `json:"history"`
		Cursor  issTable `json:"history.cursor"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to parse MOEX history for %s: %w", ticker, err)
	}

	dateIdx := payload.History.index("TRADEDATE")
	closeIdx := payload.History.index("CLOSE")
	volumeIdx := payload.History.index("VOLUME")
	valueIdx := payload.History.index("VALUE")
	if dateIdx < 0 || closeIdx < 0 {
		return nil, 0, 0, fmt.Errorf("MOEX history for %s is missing expected columns", ticker)
	}

	candles := make([]Candle, 0, len(payload.History.Data))
	for _, row := range payload.History.Data {
		if c, ok := parseCandleRow(row, dateIdx, closeIdx, volumeIdx, valueIdx); ok {
			candles = append(candles, c)
		}
	}

	fetched := len(payload.History.Data)
	total := start + fetched
	if idx := payload.Cursor.index("TOTAL"); idx >= 0 && len(payload.Cursor.Data) > 0 && len(payload.Cursor.Data[0]) > idx {
		if v, ok := asFloat(payload.Cursor.Data[0][idx]); ok {
			total = int(v)
		}
	}
	return candles, fetched, total, nil
}

// parseCandleRow converts one ISS data row. Rows without a close price
// (sessions with no trades) are dropped.
func parseCandleRow(row []any, dateIdx, closeIdx, volumeIdx, valueIdx int) (Candle, bool) {
	if len(row) <= dateIdx || len(row) <= closeIdx {
		return Candle{}, false
	}

	dateStr, ok := row[dateIdx].(string)
	if !ok {
		return Candle{}, false
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return Candle{}, false
	}

	closePrice, ok := asFloat(row[closeIdx])
	if !ok {
		return Candle{}, false
	}

	c := Candle{Date: date, Close: decimal.NewFromFloat(closePrice)}
	if volumeIdx >= 0 && len(row) > volumeIdx {
		if v, ok := asFloat(row[volumeIdx]); ok {
			c.Volume = int64(v)
		}
	}
	if valueIdx >= 0 && len(row) > valueIdx {
		if v, ok := asFloat(row[valueIdx]); ok {
			c.Value = decimal.NewFromFloat(v)
		}
	}
	return c, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// GetLastPrice returns the most recent trade price for the ticker from
// the ISS marketdata block.
func (mc *MoexClient) GetLastPrice(ctx context.Context, ticker string) (float64, error) {
	var price float64
	err := resilience.Call(mc.retryCfg, mc.monitor, consts.OpMoexPrice, func() error {
		resp, err := mc.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"iss.meta":           "off",
				"iss.only":           "marketdata",
				"marketdata.columns": "SECID,LAST",
			}).
			Get(fmt.Sprintf("/iss/engines/stock/markets/shares/boards/TQBR/securities/%s.json", ticker))
		if err != nil {
			return fmt.Errorf("failed to fetch MOEX quote for %s: %w", ticker, err)
		}
		if err := checkStatus(resp); err != nil {
			return err
		}

		var payload struct {
			MarketData issTable `json:"marketdata"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return fmt.Errorf("failed to parse MOEX quote for %s: %w", ticker, err)
		}

		lastIdx := payload.MarketData.index("LAST")
		if lastIdx < 0 {
			return fmt.Errorf("no quote for %s on TQBR", ticker)
		}
		for _, row := range payload.MarketData.Data {
			if len(row) <= lastIdx {
				continue
			}
			if v, ok := asFloat(row[lastIdx]); ok && v > 0 {
				price = v
				return nil
			}
		}
		return fmt.Errorf("no trade price for %s on TQBR", ticker)
	})
	return price, err
}

// LastPrice implements PriceSource.
func (mc *MoexClient) LastPrice(ctx context.Context, ticker string) (float64, error) {
	return mc.GetLastPrice(ctx, ticker)
}
