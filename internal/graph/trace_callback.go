package graph

import (
	"context"
	"log"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
)

type traceStartKey struct{}

// TraceCallback logs per-node timings of a pipeline run. Attached only on
// debug runs via compose.WithCallbacks, so normal runs skip it entirely.
type TraceCallback struct {
	callbacks.HandlerBuilder
}

func (cb *TraceCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil || info.Name == "" {
		return ctx
	}
	log.Printf("[Trace] %s started", info.Name)
	return context.WithValue(ctx, traceStartKey{}, time.Now())
}

func (cb *TraceCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info == nil || info.Name == "" {
		return ctx
	}
	if started, ok := ctx.Value(traceStartKey{}).(time.Time); ok {
		log.Printf("[Trace] %s finished in %s", info.Name, time.Since(started).Round(time.Millisecond))
	} else {
		log.Printf("[Trace] %s finished", info.Name)
	}
	return ctx
}

func (cb *TraceCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	name := "graph"
	if info != nil && info.Name != "" {
		name = info.Name
	}
	log.Printf("[Trace] %s failed: %v", name, err)
	return ctx
}

func (cb *TraceCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

func (cb *TraceCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	return ctx
}
