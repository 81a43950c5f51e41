package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dyike/MoexGo/internal/models"
)

// Summary aggregates one run for the report header.
type Summary struct {
	TotalPositions      int     `json:"total_positions"`
	BuyCount            int     `json:"buy_recommendations"`
	SellCount           int     `json:"sell_recommendations"`
	HoldCount           int     `json:"hold_recommendations"`
	AverageConfidence   float64 `json:"average_confidence"`
	HighConfidenceCount int     `json:"high_confidence_count"`
	PortfolioAction     string  `json:"portfolio_action"`
	CashRUB             float64 `json:"cash_rub"`
}

// BuildPortfolioSummary tallies recommendations and derives the
// portfolio-level action line.
func BuildPortfolioSummary(results map[string]*models.AnalysisResult, portfolio *models.Portfolio) Summary {
	s := Summary{TotalPositions: len(results), CashRUB: portfolio.CashRUB}
	if len(results) == 0 {
		s.PortfolioAction = "Нет данных для анализа"
		return s
	}

	totalConfidence := 0.0
	for _, res := range results {
		switch res.Recommendation {
		case models.RecommendationBuy:
			s.BuyCount++
		case models.RecommendationSell:
			s.SellCount++
		default:
			s.HoldCount++
		}
		totalConfidence += res.Confidence
		if res.Confidence >= 0.8 {
			s.HighConfidenceCount++
		}
	}
	s.AverageConfidence = totalConfidence / float64(len(results))

	switch {
	case s.SellCount > s.TotalPositions/2:
		s.PortfolioAction = "Рассмотрите снижение рисков"
	case s.BuyCount > s.TotalPositions/2:
		s.PortfolioAction = "Хорошие возможности для роста"
	default:
		s.PortfolioAction = "Сбалансированный подход"
	}
	return s
}

// Writer saves run reports under Dir.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// WriteAnalysisReport renders the combined analysis and performance report
// and saves it named by the run timestamp. Returns the written path.
func (w *Writer) WriteAnalysisReport(portfolio *models.Portfolio, results map[string]*models.AnalysisResult, plan map[string]string, summary Summary, performance string) (string, error) {
	content := RenderMarkdown(portfolio, results, plan, summary, performance)

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := fmt.Sprintf("portfolio_analysis_%s.md", time.Now().Format("20060102_150405"))
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// RenderMarkdown lays the report out: summary, actions table, per-ticker
// verdicts, performance. The actions table covers every plan entry, so a
// planned ticker appears even when its analysis entry is missing.
func RenderMarkdown(portfolio *models.Portfolio, results map[string]*models.AnalysisResult, plan map[string]string, summary Summary, performance string) string {
	var b strings.Builder

	b.WriteString("# Анализ портфеля\n\n")
	fmt.Fprintf(&b, "Дата: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("## Сводка\n\n")
	fmt.Fprintf(&b, "- Позиций: %d\n", summary.TotalPositions)
	fmt.Fprintf(&b, "- КУПИТЬ: %d, ПРОДАВАТЬ: %d, ДЕРЖАТЬ: %d\n", summary.BuyCount, summary.SellCount, summary.HoldCount)
	fmt.Fprintf(&b, "- Средняя уверенность: %.2f\n", summary.AverageConfidence)
	fmt.Fprintf(&b, "- Свободные средства: %.2f %s\n", summary.CashRUB, models.CashKey)
	fmt.Fprintf(&b, "- Вывод: %s\n\n", summary.PortfolioAction)

	b.WriteString("## Действия\n\n")
	b.WriteString("| Тикер | Количество | Рекомендация | Уверенность | Действие |\n")
	b.WriteString("|-------|------------|--------------|-------------|----------|\n")
	for _, ticker := range planTickers(plan) {
		quantity, recommendation, confidence := "", "", ""
		if pos, held := portfolio.GetPosition(ticker); held {
			quantity = fmt.Sprintf("%d", pos.Quantity)
		}
		if res, analyzed := results[ticker]; analyzed {
			recommendation = string(res.Recommendation)
			confidence = fmt.Sprintf("%.2f", res.Confidence)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", ticker, quantity, recommendation, confidence, plan[ticker])
	}
	b.WriteString("\n")

	if len(results) > 0 {
		b.WriteString("## Детали анализа\n\n")
		tickers := make([]string, 0, len(results))
		for t := range results {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		for _, t := range tickers {
			res := results[t]
			fmt.Fprintf(&b, "### %s\n\n", t)
			if errText, failed := res.AnalysisData["error"]; failed {
				fmt.Fprintf(&b, "Ошибка: %s\n\n", errText)
				continue
			}
			fmt.Fprintf(&b, "%s\n\n", res.AnalysisData["final_decision"])
		}
	}

	if performance != "" {
		b.WriteString("## Производительность\n\n")
		b.WriteString(performance)
		if !strings.HasSuffix(performance, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// planTickers orders the plan's keys with the cash residual last.
func planTickers(plan map[string]string) []string {
	tickers := make([]string, 0, len(plan))
	for t := range plan {
		if t != models.CashKey {
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)
	if _, ok := plan[models.CashKey]; ok {
		tickers = append(tickers, models.CashKey)
	}
	return tickers
}
