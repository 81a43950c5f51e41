package agents

import (
	"context"
	"strings"

	"github.com/dyike/MoexGo/internal/models"
)

const marketMoodSystemPrompt = "Анализ новостей рынка. Формат: Настрой, Факторы, Влияние"

// Fixed stage outputs. Reports and downstream checks rely on the exact
// text, so these are contractual.
const (
	MsgNoFreshNews     = "Недостаточно свежих новостей для анализа"
	MsgMarketNewsError = "Ошибка при анализе новостей"
)

// MarketMoodStage summarizes the market-wide news mood. Without fresh
// headlines it returns the fixed text and spends no AI call.
func MarketMoodStage(d Deps) StageFunc {
	return func(ctx context.Context, state *models.AnalysisState) StageResult {
		news, err := d.MarketNews.GetMarketNews(ctx)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{MarketNews: str(MsgMarketNewsError)},
				Degraded: true,
				Cause:    err,
			}
		}
		if len(news) == 0 {
			return StageResult{Update: &models.StageUpdate{MarketNews: str(MsgNoFreshNews)}}
		}

		analysis, err := d.AI.GenerateText(ctx, marketMoodSystemPrompt, "Новости:\n"+strings.Join(news, "\n"))
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{MarketNews: str(MsgMarketNewsError)},
				Degraded: true,
				Cause:    err,
			}
		}
		return StageResult{Update: &models.StageUpdate{MarketNews: str(analysis)}}
	}
}
