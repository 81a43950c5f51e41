package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyike/MoexGo/internal/models"
)

const newsGradeSystemPrompt = "Анализ новостей компании. Формат: Настрой, Ключевое, Риски"

const (
	MsgNoTickerNews   = "Нет новостей для анализа"
	MsgNewsGradeError = "Ошибка анализа новостей"
)

// gradeNewsItems is how many of the freshest posts the grading prompt sees.
const gradeNewsItems = 2

// NewsGradeStage grades the ticker's news. With nothing fetched it
// short-circuits on the fixed text and spends no AI call.
func NewsGradeStage(d Deps) StageFunc {
	return func(ctx context.Context, state *models.AnalysisState) StageResult {
		if len(state.News) == 0 {
			return StageResult{Update: &models.StageUpdate{Semantic: str(MsgNoTickerNews)}}
		}

		items := state.News
		if len(items) > gradeNewsItems {
			items = items[:gradeNewsItems]
		}
		userPrompt := fmt.Sprintf("Новости %s:\n%s", state.Ticker, strings.Join(items, "\n"))

		analysis, err := d.AI.GenerateText(ctx, newsGradeSystemPrompt, userPrompt)
		if err != nil {
			return StageResult{
				Update:   &models.StageUpdate{Semantic: str(MsgNewsGradeError)},
				Degraded: true,
				Cause:    err,
			}
		}
		return StageResult{Update: &models.StageUpdate{Semantic: str(analysis)}}
	}
}
