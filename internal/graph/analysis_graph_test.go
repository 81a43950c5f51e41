package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/MoexGo/internal/agents"
	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/models"
)

// fakeAI answers each stage by prompt shape, so one fake serves the whole
// pipeline.
type fakeAI struct {
	calls   int
	prompts []string
}

func (f *fakeAI) GenerateText(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, user)
	switch {
	case strings.HasPrefix(user, "Новости:"):
		return "Настрой: нейтральный", nil
	case strings.HasPrefix(user, "Новости "):
		return "Настрой: позитив", nil
	case strings.HasPrefix(user, "Данные "):
		return "Тренд: вверх", nil
	case strings.HasPrefix(user, "Отчетность "):
		return "Финансы: устойчивые", nil
	default:
		return "Рекомендация: КУПИТЬ. Рост продолжается.", nil
	}
}

type fakeSources struct {
	marketNews []string
	marketErr  error
	tickerNews []string
	tickerErr  error
	candles    []dataflows.Candle
	historyErr error
	report     string
	reportErr  error
}

func (f *fakeSources) GetMarketNews(context.Context) ([]string, error) {
	return f.marketNews, f.marketErr
}

func (f *fakeSources) GetTickerNews(context.Context, string) ([]string, error) {
	return f.tickerNews, f.tickerErr
}

func (f *fakeSources) GetTickerHistory(context.Context, string, int) ([]dataflows.Candle, error) {
	return f.candles, f.historyErr
}

func (f *fakeSources) GetReport(context.Context, string) (string, error) {
	return f.report, f.reportErr
}

func fakeDeps(ai agents.TextGenerator, src *fakeSources) agents.Deps {
	return agents.Deps{
		AI:               ai,
		MarketNews:       src,
		TickerNews:       src,
		History:          src,
		Reports:          src,
		Risk:             models.RiskBalanced,
		MoexDaysLookback: 180,
		RecentDataDays:   20,
	}
}

func fakeCandles(n int) []dataflows.Candle {
	candles := make([]dataflows.Candle, n)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = dataflows.Candle{
			Date:   base.AddDate(0, 0, i),
			Close:  decimal.NewFromInt(int64(250 + i)),
			Volume: int64(5000 + i),
			Value:  decimal.NewFromInt(int64(1250000 + i)),
		}
	}
	return candles
}

func TestGraphRunsAllStagesInOrder(t *testing.T) {
	ai := &fakeAI{}
	src := &fakeSources{
		marketNews: []string{"ЦБ сохранил ставку: подробности"},
		tickerNews: []string{"SBER отчитался лучше ожиданий"},
		candles:    fakeCandles(30),
		report:     "Показатель\t2023\nЧистая прибыль\t412",
	}

	g, err := NewAnalysisGraph(context.Background(), fakeDeps(ai, src))
	if err != nil {
		t.Fatalf("NewAnalysisGraph: %v", err)
	}

	state, err := g.Run(context.Background(), "SBER", 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if state.MarketNews != "Настрой: нейтральный" {
		t.Errorf("market news = %q", state.MarketNews)
	}
	if len(state.News) != 1 || state.News[0] != "SBER отчитался лучше ожиданий" {
		t.Errorf("news = %v", state.News)
	}
	// Semantic and MoexDataAnalysis prove the 2->3 and 4->5 orderings:
	// each is computed from the preceding stage's output.
	if state.Semantic != "Настрой: позитив" {
		t.Errorf("semantic = %q", state.Semantic)
	}
	if !strings.HasPrefix(state.MoexData, "TRADEDATE CLOSE VOLUME VALUE") {
		t.Errorf("moex data = %q", state.MoexData)
	}
	if state.MoexDataAnalysis != "Тренд: вверх" {
		t.Errorf("tech analysis = %q", state.MoexDataAnalysis)
	}
	if state.IfrsData != "Финансы: устойчивые" {
		t.Errorf("ifrs data = %q", state.IfrsData)
	}
	if state.FinalData != "Рекомендация: КУПИТЬ. Рост продолжается." {
		t.Errorf("final data = %q", state.FinalData)
	}
	if ai.calls != 5 {
		t.Errorf("AI calls = %d, want 5", ai.calls)
	}

	final := ai.prompts[len(ai.prompts)-1]
	if !strings.Contains(final, "- Рынок: Настрой: нейтральный") {
		t.Errorf("final prompt must carry the market mood: %q", final)
	}
}

func TestGraphSurvivesDataFailures(t *testing.T) {
	ai := &fakeAI{}
	src := &fakeSources{
		marketErr:  errors.New("feed down"),
		tickerErr:  errors.New("api down"),
		historyErr: errors.New("iss down"),
		reportErr:  errors.New("parser broke"),
	}

	g, err := NewAnalysisGraph(context.Background(), fakeDeps(ai, src))
	if err != nil {
		t.Fatalf("NewAnalysisGraph: %v", err)
	}

	state, err := g.Run(context.Background(), "GAZP", 5)
	if err != nil {
		t.Fatalf("run must survive data failures, got %v", err)
	}

	if state.MarketNews != agents.MsgMarketNewsError {
		t.Errorf("market news = %q, want %q", state.MarketNews, agents.MsgMarketNewsError)
	}
	if state.Semantic != agents.MsgNoTickerNews {
		t.Errorf("semantic = %q, want %q", state.Semantic, agents.MsgNoTickerNews)
	}
	if state.MoexData != agents.MsgMoexDataError {
		t.Errorf("moex data = %q, want %q", state.MoexData, agents.MsgMoexDataError)
	}
	if state.MoexDataAnalysis != agents.MsgTechImpossible {
		t.Errorf("tech analysis = %q, want %q", state.MoexDataAnalysis, agents.MsgTechImpossible)
	}
	if state.IfrsData != agents.MsgIfrsError {
		t.Errorf("ifrs data = %q, want %q", state.IfrsData, agents.MsgIfrsError)
	}
	if state.FinalData != "Рекомендация: КУПИТЬ. Рост продолжается." {
		t.Errorf("final data = %q", state.FinalData)
	}
	// Every upstream stage degraded without spending AI calls; only the
	// final verdict reaches the model.
	if ai.calls != 1 {
		t.Errorf("AI calls = %d, want 1", ai.calls)
	}
}

func TestGraphTracedRunCompletes(t *testing.T) {
	ai := &fakeAI{}
	src := &fakeSources{
		marketNews: []string{"ЦБ сохранил ставку: подробности"},
		tickerNews: []string{"LKOH наращивает добычу"},
		candles:    fakeCandles(30),
		report:     "Показатель\t2023\nЧистая прибыль\t412",
	}

	g, err := NewAnalysisGraph(context.Background(), fakeDeps(ai, src))
	if err != nil {
		t.Fatalf("NewAnalysisGraph: %v", err)
	}
	g.Trace = true

	state, err := g.Run(context.Background(), "LKOH", 7)
	if err != nil {
		t.Fatalf("traced run: %v", err)
	}
	if state.FinalData == "" {
		t.Error("traced run produced no final verdict")
	}
}
