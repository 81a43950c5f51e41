package agents

import (
	"context"

	"github.com/dyike/MoexGo/internal/models"
)

// TickerNewsStage pulls discussion posts for the ticker. A fetch failure
// degrades to an empty list, which lets the grading stage short-circuit
// instead of analyzing nothing.
func TickerNewsStage(d Deps) StageFunc {
	return func(ctx context.Context, state *models.AnalysisState) StageResult {
		news, err := d.TickerNews.GetTickerNews(ctx, state.Ticker)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{News: []string{}},
				Degraded: true,
				Cause:    err,
			}
		}
		if news == nil {
			news = []string{}
		}
		return StageResult{Update: &models.StageUpdate{News: news}}
	}
}
