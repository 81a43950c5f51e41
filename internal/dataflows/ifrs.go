package dataflows

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/MoexGo/consts"
	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/monitor"
	"github.com/dyike/MoexGo/internal/resilience"
)

const smartLabBaseURL = "https://smart-lab.ru"

// IfrsClient scrapes annual IFRS financials from smart-lab.ru.
type IfrsClient struct {
	http      *resty.Client
	monitor   *monitor.Monitor
	retryCfg  *resilience.RetryConfig
	maxLength int
}

func NewIfrsClient(cfg *config.Config, mon *monitor.Monitor) *IfrsClient {
	client := newHTTPClient(cfg.APITimeout)
	client.SetBaseURL(smartLabBaseURL)

	return &IfrsClient{
		http:      client,
		monitor:   mon,
		retryCfg:  &resilience.RetryConfig{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay},
		maxLength: cfg.MaxIfrsContentLength,
	}
}

// GetReport returns the ticker's IFRS financials as tab-separated table
// text, truncated to the configured maximum. A page without a financials
// table yields the fixed ReportNotFound text; that outcome is data, not
// an error.
func (ic *IfrsClient) GetReport(ctx context.Context, ticker string) (string, error) {
	var report string
	err := resilience.Call(ic.retryCfg, ic.monitor, consts.OpIfrsReport, func() error {
		resp, err := ic.http.R().
			SetContext(ctx).
			Get(fmt.Sprintf("/q/%s/f/y/", ticker))
		if err != nil {
			return fmt.Errorf("failed to fetch IFRS page for %s: %w", ticker, err)
		}
		if err := checkStatus(resp); err != nil {
			return err
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
		if err != nil {
			return fmt.Errorf("failed to parse IFRS page for %s: %w", ticker, err)
		}

		table := doc.Find("table").First()
		if table.Length() == 0 {
			log.Printf("[IFRS] no financials table for %s", ticker)
			report = ReportNotFound
			return nil
		}

		var rows []string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, "\t"))
			}
		})

		report = TruncateText(strings.Join(rows, "\n"), ic.maxLength)
		return nil
	})
	if err != nil {
		return "", err
	}
	return report, nil
}
