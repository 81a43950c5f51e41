package agents

import (
	"context"

	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/models"
)

// TextGenerator is the single AI operation the pipeline depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// MarketNewsSource feeds market-wide headlines; an empty slice means
// nothing fresh, which is a valid outcome.
type MarketNewsSource interface {
	GetMarketNews(ctx context.Context) ([]string, error)
}

// TickerNewsSource feeds per-ticker discussion posts.
type TickerNewsSource interface {
	GetTickerNews(ctx context.Context, ticker string) ([]string, error)
}

// HistorySource feeds MOEX trading history.
type HistorySource interface {
	GetTickerHistory(ctx context.Context, ticker string, lookbackDays int) ([]dataflows.Candle, error)
}

// ReportSource feeds IFRS report text (possibly the "not found" outcome).
type ReportSource interface {
	GetReport(ctx context.Context, ticker string) (string, error)
}

// Deps bundles the collaborators and tuning every stage closure captures.
type Deps struct {
	AI         TextGenerator
	MarketNews MarketNewsSource
	TickerNews TickerNewsSource
	History    HistorySource
	Reports    ReportSource

	Risk             models.RiskProfile
	MoexDaysLookback int
	RecentDataDays   int
}

// StageFunc computes one pipeline stage from the current state.
type StageFunc func(ctx context.Context, state *models.AnalysisState) StageResult

// StageResult carries a stage's partial state update. Degraded marks a
// substituted placeholder; Cause is logged by the graph driver and never
// propagated, so the pipeline always advances.
type StageResult struct {
	Update   *models.StageUpdate
	Degraded bool
	Cause    error
}

func str(s string) *string {
	return &s
}
