package agents

import (
	"context"

	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/models"
)

// MsgMoexDataError marks a failed history fetch. The technical-analysis
// stage checks this exact value before spending an AI call.
const MsgMoexDataError = "Ошибка получения данных MOEX"

// MarketDataStage loads the trading history table for the ticker.
func MarketDataStage(d Deps) StageFunc {
	return func(ctx context.Context, state *models.AnalysisState) StageResult {
		candles, err := d.History.GetTickerHistory(ctx, state.Ticker, d.MoexDaysLookback)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{MoexData: str(MsgMoexDataError)},
				Degraded: true,
				Cause:    err,
			}
		}
		return StageResult{Update: &models.StageUpdate{MoexData: str(dataflows.FormatCandles(candles))}}
	}
}
