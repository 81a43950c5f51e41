package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/MoexGo/consts"
	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/monitor"
	"github.com/dyike/MoexGo/internal/resilience"
)

const pulseBaseURL = "https://www.tinkoff.ru/api/invest-gw/social/v1"

// PulseClient reads ticker discussion posts from the Tinkoff Pulse feed.
type PulseClient struct {
	http     *resty.Client
	monitor  *monitor.Monitor
	retryCfg *resilience.RetryConfig
	maxItems int
}

func NewPulseClient(cfg *config.Config, mon *monitor.Monitor) *PulseClient {
	client := newHTTPClient(cfg.APITimeout)
	client.SetBaseURL(pulseBaseURL)

	return &PulseClient{
		http:     client,
		monitor:  mon,
		retryCfg: &resilience.RetryConfig{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
		maxItems: cfg.MaxNewsItems,
	}
}

// tickerPattern matches exchange-style ticker mentions inside post text.
var tickerPattern = regexp.MustCompile(`\b[A-Z]{3,4}\b`)

// mentionsOnlyTicker reports whether every ticker-like token in text is
// the given ticker. Posts discussing several instruments at once are
// noise for single-ticker analysis.
func mentionsOnlyTicker(text, ticker string) bool {
	found := tickerPattern.FindAllString(text, -1)
	if len(found) == 0 {
		return false
	}
	for _, t := range found {
		if t != ticker {
			return false
		}
	}
	return true
}

type pulseResponse struct {
	Payload struct {
		Items []struct {
			Content struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"items"`
	} `json:"payload"`
}

// GetTickerNews returns post texts that mention only the given ticker,
// newest first as served by the feed, capped at the configured maximum.
// An empty slice is a normal outcome.
func (pc *PulseClient) GetTickerNews(ctx context.Context, ticker string) ([]string, error) {
	var texts []string
	err := resilience.Call(pc.retryCfg, pc.monitor, consts.OpTickerNews, func() error {
		resp, err := pc.http.R().
			SetContext(ctx).
			Get(fmt.Sprintf("/post/instrument/%s", ticker))
		if err != nil {
			return fmt.Errorf("failed to fetch Pulse posts for %s: %w", ticker, err)
		}
		if err := checkStatus(resp); err != nil {
			return err
		}

		var payload pulseResponse
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return fmt.Errorf("failed to parse Pulse posts for %s: %w", ticker, err)
		}

		texts = texts[:0]
		for _, item := range payload.Payload.Items {
			text := item.Content.Text
			if text == "" || !mentionsOnlyTicker(text, ticker) {
				continue
			}
			texts = append(texts, text)
			if len(texts) >= pc.maxItems {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return texts, nil
}
