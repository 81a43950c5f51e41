package dataflows

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/MoexGo/internal/resilience"
)

const userAgent = "Mozilla/5.0 (compatible; MoexGo/1.0)"

// newHTTPClient builds the resty client shared shape for every external
// service. Retries are deliberately left to the resilience layer, so the
// transport itself never retries.
func newHTTPClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("User-Agent", userAgent)
	return client
}

// checkStatus classifies a non-200 response: server-side failures and
// throttling are transient (worth a retry), everything else is permanent.
func checkStatus(resp *resty.Response) error {
	code := resp.StatusCode()
	switch {
	case code == 200:
		return nil
	case code >= 500 || code == 429:
		return resilience.Transient(fmt.Errorf("API error %d: %s", code, resp.String()))
	default:
		return fmt.Errorf("API error %d: %s", code, resp.String())
	}
}
