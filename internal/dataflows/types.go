package dataflows

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoMarketData is returned when MOEX has no trading history for the
// requested ticker and window. Callers must treat it as a hard failure,
// never as an empty success.
var ErrNoMarketData = errors.New("no market data available")

// ReportNotFound is the fixed text returned when smart-lab has no IFRS
// table for a ticker. It is a data outcome, not an error: downstream
// analysis passes it through instead of calling the AI.
const ReportNotFound = "Отчетность МСФО не найдена"

// IsReportMissing reports whether an IFRS payload is the "not found"
// outcome rather than real report text.
func IsReportMissing(report string) bool {
	return strings.Contains(report, "не найдена")
}

// Candle is one daily trading record from MOEX ISS history.
type Candle struct {
	Date   time.Time       `json:"date"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
	Value  decimal.Decimal `json:"value"`
}

// FormatCandles renders candles as the plain-text table fed to analysis
// prompts, one row per trading day, mirroring the ISS column names.
func FormatCandles(candles []Candle) string {
	var b strings.Builder
	b.WriteString("TRADEDATE CLOSE VOLUME VALUE\n")
	for _, c := range candles {
		fmt.Fprintf(&b, "%s %s %d %s\n",
			c.Date.Format("2006-01-02"), c.Close.String(), c.Volume, c.Value.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

// RecentCandles returns the last n candles (all of them when fewer exist).
func RecentCandles(candles []Candle, n int) []Candle {
	if n <= 0 || len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

// TruncateText shortens text to at most maxLen characters, marking the
// cut with an ellipsis. Counts runes so multi-byte Cyrillic text is
// never split mid-character.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
