package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/models"
)

const finalSystemPrompt = "Рекомендация: КУПИТЬ/ДЕРЖАТЬ/ПРОДАВАТЬ с пояснением"

const MsgFinalError = "Ошибка финального анализа"

// summaryBlockLimit caps each per-stage block inside the final prompt.
const summaryBlockLimit = 300

// FinalAnalysisStage combines the previous stage outputs into one verdict
// prompt and asks for the recommendation.
func FinalAnalysisStage(d Deps) StageFunc {
	return func(ctx context.Context, state *models.AnalysisState) StageResult {
		var b strings.Builder
		fmt.Fprintf(&b, "Сводка по %s:\n", state.Ticker)
		fmt.Fprintf(&b, "- Рынок: %s\n", dataflows.TruncateText(state.MarketNews, summaryBlockLimit))
		fmt.Fprintf(&b, "- Компания: %s\n", dataflows.TruncateText(state.Semantic, summaryBlockLimit))
		fmt.Fprintf(&b, "- График: %s\n", dataflows.TruncateText(state.MoexDataAnalysis, summaryBlockLimit))
		fmt.Fprintf(&b, "- Финансы: %s\n", dataflows.TruncateText(state.IfrsData, summaryBlockLimit))
		b.WriteString("Цель: доход > депозитов, минимум риска")
		if hint := d.Risk.PromptHint(); hint != "" {
			b.WriteString("\n" + hint)
		}

		analysis, err := d.AI.GenerateText(ctx, finalSystemPrompt, b.String())
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{FinalData: str(MsgFinalError)},
				Degraded: true,
				Cause:    err,
			}
		}
		return StageResult{Update: &models.StageUpdate{FinalData: str(analysis)}}
	}
}
