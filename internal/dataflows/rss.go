package dataflows

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/MoexGo/consts"
	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/monitor"
	"github.com/dyike/MoexGo/internal/resilience"
)

const (
	lentaFeedURL = "https://lenta.ru/rss/news"

	// maxFeedScan caps how many feed entries are examined per fetch.
	maxFeedScan = 100
)

// RSSClient pulls market-wide headlines from the lenta.ru news feed.
type RSSClient struct {
	http         *resty.Client
	monitor      *monitor.Monitor
	retryCfg     *resilience.RetryConfig
	feedURL      string
	lookbackDays int
	maxItems     int
}

func NewRSSClient(cfg *config.Config, mon *monitor.Monitor) *RSSClient {
	return &RSSClient{
		http:         newHTTPClient(cfg.APITimeout),
		monitor:      mon,
		retryCfg:     &resilience.RetryConfig{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
		feedURL:      lentaFeedURL,
		lookbackDays: cfg.NewsDaysLookback,
		maxItems:     cfg.MaxNewsItems,
	}
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// GetMarketNews returns "title: summary" lines for feed entries newer
// than the lookback window, capped at the configured maximum. Entries
// with unparsable dates are skipped, not fatal.
func (rc *RSSClient) GetMarketNews(ctx context.Context) ([]string, error) {
	var news []string
	err := resilience.Call(rc.retryCfg, rc.monitor, consts.OpMarketNews, func() error {
		resp, err := rc.http.R().SetContext(ctx).Get(rc.feedURL)
		if err != nil {
			return fmt.Errorf("failed to fetch market news feed: %w", err)
		}
		if err := checkStatus(resp); err != nil {
			return err
		}

		var feed rssFeed
		if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
			return fmt.Errorf("failed to parse market news feed: %w", err)
		}

		items := feed.Channel.Items
		if len(items) > maxFeedScan {
			items = items[:maxFeedScan]
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -rc.lookbackDays)

		news = news[:0]
		for _, item := range items {
			published, err := time.Parse(time.RFC1123Z, item.PubDate)
			if err != nil {
				log.Printf("[RSS] skipping entry with date %q: %v", item.PubDate, err)
				continue
			}
			if !published.After(cutoff) {
				continue
			}
			news = append(news, fmt.Sprintf("%s: %s", item.Title, item.Description))
			if len(news) >= rc.maxItems {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return news, nil
}
