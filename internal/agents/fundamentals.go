package agents

import (
	"context"
	"fmt"

	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/models"
)

const fundamentalsSystemPrompt = "Анализ МСФО. Формат: Финансы, Рентабельность, Долги"

const MsgIfrsError = "Ошибка анализа МСФО"

// FundamentalsStage evaluates the ticker's IFRS report. A missing report
// flows through as the stage output untouched, without an AI call.
func FundamentalsStage(d Deps) StageFunc {
	return func(ctx context.Context, state *models.AnalysisState) StageResult {
		report, err := d.Reports.GetReport(ctx, state.Ticker)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{IfrsData: str(MsgIfrsError)},
				Degraded: true,
				Cause:    err,
			}
		}
		if dataflows.IsReportMissing(report) {
			return StageResult{Update: &models.StageUpdate{IfrsData: str(report)}}
		}

		userPrompt := fmt.Sprintf("Отчетность %s:\n%s", state.Ticker, report)
		analysis, err := d.AI.GenerateText(ctx, fundamentalsSystemPrompt, userPrompt)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{IfrsData: str(MsgIfrsError)},
				Degraded: true,
				Cause:    err,
			}
		}
		return StageResult{Update: &models.StageUpdate{IfrsData: str(analysis)}}
	}
}
