package analyzer

import (
	"context"
	"log"
	"sync"

	"github.com/dyike/MoexGo/internal/models"
)

// DefaultMaxConcurrent bounds parallel pipeline runs when the caller
// passes no limit.
const DefaultMaxConcurrent = 5

// baseConfidence is reported for every run that produced a verdict.
// Degraded stages substitute placeholder text but do not lower it; only a
// run with no verdict at all reports zero.
const baseConfidence = 0.8

// PipelineRunner executes the seven-stage analysis for one position.
// *graph.AnalysisGraph satisfies it.
type PipelineRunner interface {
	Run(ctx context.Context, ticker string, quantity int) (*models.AnalysisState, error)
}

// PortfolioAnalyzer fans the analysis pipeline out over the portfolio's
// positions with a bounded number of concurrent runs.
type PortfolioAnalyzer struct {
	runner        PipelineRunner
	maxConcurrent int
}

func New(runner PipelineRunner, maxConcurrent int) *PortfolioAnalyzer {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &PortfolioAnalyzer{runner: runner, maxConcurrent: maxConcurrent}
}

// AnalyzePortfolio analyzes every position concurrently and returns exactly
// one result per ticker. A failed run yields a zero-confidence ДЕРЖАТЬ
// result carrying the error, never a missing entry. The cash balance is
// not a position and is never analyzed.
func (a *PortfolioAnalyzer) AnalyzePortfolio(ctx context.Context, portfolio *models.Portfolio) map[string]*models.AnalysisResult {
	results := make(map[string]*models.AnalysisResult, len(portfolio.Positions))

	// Semaphore to limit concurrent pipeline runs.
	semaphore := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, pos := range portfolio.Positions {
		wg.Add(1)
		go func(pos models.Position) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			res := a.analyzePosition(ctx, pos)

			mu.Lock()
			results[pos.Ticker] = res
			mu.Unlock()
		}(pos)
	}
	wg.Wait()

	return results
}

// AnalyzeSequential runs the same analysis one position at a time, for
// API quotas that cannot take parallel load.
func (a *PortfolioAnalyzer) AnalyzeSequential(ctx context.Context, portfolio *models.Portfolio) map[string]*models.AnalysisResult {
	results := make(map[string]*models.AnalysisResult, len(portfolio.Positions))
	for _, pos := range portfolio.Positions {
		results[pos.Ticker] = a.analyzePosition(ctx, pos)
	}
	return results
}

func (a *PortfolioAnalyzer) analyzePosition(ctx context.Context, pos models.Position) *models.AnalysisResult {
	log.Printf("[Analyzer] Processing %s with quantity %d", pos.Ticker, pos.Quantity)

	state, err := a.runner.Run(ctx, pos.Ticker, pos.Quantity)
	if err != nil {
		log.Printf("[Analyzer] Failed to analyze %s: %v", pos.Ticker, err)
		return &models.AnalysisResult{
			Ticker:         pos.Ticker,
			Recommendation: models.RecommendationHold,
			Confidence:     0,
			AnalysisData:   map[string]string{"error": err.Error()},
		}
	}

	return &models.AnalysisResult{
		Ticker:         pos.Ticker,
		Recommendation: models.ExtractRecommendation(state.FinalData),
		Confidence:     baseConfidence,
		AnalysisData: map[string]string{
			"market_news":    state.MarketNews,
			"semantic":       state.Semantic,
			"moex_analysis":  state.MoexDataAnalysis,
			"ifrs_data":      state.IfrsData,
			"final_decision": state.FinalData,
		},
	}
}
