package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/MoexGo/internal/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(80)

	buyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	sellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	holdStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
)

// RenderResults formats the per-ticker analysis outcomes, sorted by ticker.
func RenderResults(results map[string]*models.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("Решения по портфелю\n\n")

	for _, ticker := range sortedKeys(results) {
		res := results[ticker]
		b.WriteString(fmt.Sprintf("%s: %s (%s)\n",
			headerStyle.Render(ticker),
			styleFor(res.Recommendation).Render(string(res.Recommendation)),
			ConfidenceText(res.Confidence),
		))
		if errText, failed := res.AnalysisData["error"]; failed {
			b.WriteString(fmt.Sprintf("  Ошибка: %s\n", truncateString(errText, 100)))
			continue
		}
		if decision := res.AnalysisData["final_decision"]; decision != "" {
			b.WriteString(fmt.Sprintf("  %s\n", truncateString(decision, 200)))
		}
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderPlan formats the rebalancing actions with the cash residual last.
func RenderPlan(plan map[string]string) string {
	var b strings.Builder
	b.WriteString("План ребалансировки\n\n")

	tickers := make([]string, 0, len(plan))
	for t := range plan {
		if t != models.CashKey {
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		b.WriteString(fmt.Sprintf("%s: %s\n", headerStyle.Render(t), styleForAction(plan[t]).Render(plan[t])))
	}
	if residual, ok := plan[models.CashKey]; ok {
		b.WriteString(fmt.Sprintf("%s: %s\n", headerStyle.Render(models.CashKey), residual))
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderPerformance wraps the monitor's report in a panel.
func RenderPerformance(report string) string {
	return panelStyle.Render(strings.TrimRight(report, "\n"))
}

// ConfidenceText maps a confidence level onto its report wording.
func ConfidenceText(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "Высокая уверенность"
	case confidence >= 0.6:
		return "Средняя уверенность"
	case confidence >= 0.4:
		return "Низкая уверенность"
	default:
		return "Данные неполные"
	}
}

// DisplayTitle shows the run banner.
func DisplayTitle(text string) {
	fmt.Println(titleStyle.Render(text))
}

// DisplayError shows an error message.
func DisplayError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("Ошибка: %s", err.Error())))
}

// DisplayInfo shows an info message.
func DisplayInfo(message string) {
	fmt.Println(infoStyle.Render(message))
}

// DisplaySuccess shows a success message.
func DisplaySuccess(message string) {
	fmt.Println(successStyle.Render(message))
}

func styleFor(rec models.Recommendation) lipgloss.Style {
	switch rec {
	case models.RecommendationBuy:
		return buyStyle
	case models.RecommendationSell:
		return sellStyle
	default:
		return holdStyle
	}
}

func styleForAction(action string) lipgloss.Style {
	switch {
	case strings.HasPrefix(action, "Купить"):
		return buyStyle
	case strings.HasPrefix(action, "Продать"):
		return sellStyle
	default:
		return holdStyle
	}
}

func sortedKeys(results map[string]*models.AnalysisResult) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
