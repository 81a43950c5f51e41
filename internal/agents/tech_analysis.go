package agents

import (
	"context"
	"fmt"

	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/models"
)

const techAnalysisSystemPrompt = "Теханализ. Формат: Тренд, Объемы, Волатильность"

const (
	MsgTechImpossible = "Невозможно провести технический анализ"
	MsgTechError      = "Ошибка технического анализа"
)

// TechAnalysisStage summarizes the recent trading window. When the
// market-data stage already failed it degrades immediately, without an
// AI call. The history fetch repeats here but is served by the client's
// cache within one run.
func TechAnalysisStage(d Deps) StageFunc {
	return func(ctx context.Context, state *models.AnalysisState) StageResult {
		if state.MoexData == MsgMoexDataError {
			return StageResult{Update: &models.StageUpdate{MoexDataAnalysis: str(MsgTechImpossible)}}
		}

		candles, err := d.History.GetTickerHistory(ctx, state.Ticker, d.MoexDaysLookback)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{MoexDataAnalysis: str(MsgTechError)},
				Degraded: true,
				Cause:    err,
			}
		}

		recent := dataflows.FormatCandles(dataflows.RecentCandles(candles, d.RecentDataDays))
		userPrompt := fmt.Sprintf("Данные %s:\n%s", state.Ticker, recent)

		analysis, err := d.AI.GenerateText(ctx, techAnalysisSystemPrompt, userPrompt)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{MoexDataAnalysis: str(MsgTechError)},
				Degraded: true,
				Cause:    err,
			}
		}
		return StageResult{Update: &models.StageUpdate{MoexDataAnalysis: str(analysis)}}
	}
}
