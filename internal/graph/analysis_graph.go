package graph

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/compose"

	"github.com/dyike/MoexGo/consts"
	"github.com/dyike/MoexGo/internal/agents"
	"github.com/dyike/MoexGo/internal/models"
)

// AnalysisGraph is the compiled seven-stage pipeline for one ticker. It is
// built once and shared across tickers; each Run threads its own state.
// Trace turns on per-node timing logs for debug runs.
type AnalysisGraph struct {
	runnable compose.Runnable[*models.AnalysisState, *models.AnalysisState]
	Trace    bool
}

// stageNode adapts a stage into a graph lambda. The node merges the stage's
// partial update and logs a degradation cause instead of returning it, so a
// failed stage never stops the nodes behind it.
func stageNode(name string, stage agents.StageFunc) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *models.AnalysisState) (*models.AnalysisState, error) {
		res := stage(ctx, state)
		if res.Cause != nil {
			log.Printf("[Pipeline] %s: stage %s degraded: %v", state.Ticker, name, res.Cause)
		}
		state.Merge(res.Update)
		return state, nil
	})
}

// NewAnalysisGraph wires the seven stages into a linear eino graph and
// compiles it.
func NewAnalysisGraph(ctx context.Context, deps agents.Deps) (*AnalysisGraph, error) {
	g := compose.NewGraph[*models.AnalysisState, *models.AnalysisState]()

	nodes := []struct {
		name  string
		stage agents.StageFunc
	}{
		{consts.NodeMarketMood, agents.MarketMoodStage(deps)},
		{consts.NodeTickerNews, agents.TickerNewsStage(deps)},
		{consts.NodeNewsGrade, agents.NewsGradeStage(deps)},
		{consts.NodeMarketData, agents.MarketDataStage(deps)},
		{consts.NodeTechAnalysis, agents.TechAnalysisStage(deps)},
		{consts.NodeFundamentals, agents.FundamentalsStage(deps)},
		{consts.NodeFinalAnalysis, agents.FinalAnalysisStage(deps)},
	}

	for _, n := range nodes {
		if err := g.AddLambdaNode(n.name, stageNode(n.name, n.stage), compose.WithNodeName(n.name)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.name, err)
		}
	}

	prev := compose.START
	for _, n := range nodes {
		if err := g.AddEdge(prev, n.name); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", prev, n.name, err)
		}
		prev = n.name
	}
	if err := g.AddEdge(prev, compose.END); err != nil {
		return nil, fmt.Errorf("add edge %s -> end: %w", prev, err)
	}

	r, err := g.Compile(ctx,
		compose.WithGraphName(consts.GraphName),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
	)
	if err != nil {
		return nil, fmt.Errorf("compile graph %s: %w", consts.GraphName, err)
	}
	return &AnalysisGraph{runnable: r}, nil
}

// Run executes the full pipeline for one ticker position.
func (g *AnalysisGraph) Run(ctx context.Context, ticker string, quantity int) (*models.AnalysisState, error) {
	var opts []compose.Option
	if g.Trace {
		opts = append(opts, compose.WithCallbacks(&TraceCallback{}))
	}
	state, err := g.runnable.Invoke(ctx, models.NewAnalysisState(ticker, quantity), opts...)
	if err != nil {
		return nil, fmt.Errorf("pipeline for %s: %w", ticker, err)
	}
	return state, nil
}
