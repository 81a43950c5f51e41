package cli

import (
	"context"
	"log"

	"github.com/dyike/MoexGo/internal/agents"
	"github.com/dyike/MoexGo/internal/analyzer"
	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/debug"
	"github.com/dyike/MoexGo/internal/graph"
	"github.com/dyike/MoexGo/internal/llm"
	"github.com/dyike/MoexGo/internal/models"
	"github.com/dyike/MoexGo/internal/monitor"
	"github.com/dyike/MoexGo/internal/rebalance"
	"github.com/dyike/MoexGo/internal/report"
)

// app is the composition root for a full analysis run: one shared
// monitor, the AI client, data clients wired into the pipeline graph,
// the concurrency controller, the allocator and the report writer.
type app struct {
	monitor   *monitor.Monitor
	analyzer  *analyzer.PortfolioAnalyzer
	allocator *rebalance.Allocator
	prices    dataflows.PriceSource
	writer    *report.Writer
}

func newApp(ctx context.Context, cfg *config.Config, risk models.RiskProfile, concurrency int) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := debug.Init(ctx, cfg); err != nil {
		return nil, err
	}

	mon := monitor.New(monitor.DefaultHistoryLimit)

	chatModel, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ai := llm.NewClient(chatModel, mon, cfg)

	moex := dataflows.NewMoexClient(cfg, mon)
	deps := agents.Deps{
		AI:         ai,
		MarketNews: dataflows.NewRSSClient(cfg, mon),
		TickerNews: dataflows.NewPulseClient(cfg, mon),
		History:    moex,
		Reports:    dataflows.NewIfrsClient(cfg, mon),

		Risk:             risk,
		MoexDaysLookback: cfg.MoexDaysLookback,
		RecentDataDays:   cfg.RecentDataDays,
	}

	pipeline, err := graph.NewAnalysisGraph(ctx, deps)
	if err != nil {
		return nil, err
	}
	pipeline.Trace = cfg.Debug

	if concurrency <= 0 {
		concurrency = cfg.MaxConcurrentTasks
	}
	prices := buildPriceChain(cfg, moex)

	return &app{
		monitor:   mon,
		analyzer:  analyzer.New(pipeline, concurrency),
		allocator: rebalance.NewAllocator(prices),
		prices:    prices,
		writer:    report.NewWriter(cfg.ResultsDir),
	}, nil
}

// buildPriceChain orders the quote sources: MOEX ISS first, Longport when
// credentials are configured, Yahoo Finance last.
func buildPriceChain(cfg *config.Config, moex *dataflows.MoexClient) dataflows.PriceSource {
	chain := dataflows.ChainSource{moex}
	if cfg.LongportEnabled() {
		lp, err := dataflows.NewLongportSource(cfg)
		if err != nil {
			log.Printf("[CLI] Longport source unavailable: %v", err)
		} else {
			chain = append(chain, lp)
		}
	}
	chain = append(chain, dataflows.YahooSource{})
	return chain
}
