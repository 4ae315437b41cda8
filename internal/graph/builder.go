package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/dyike/MoneyScope/consts"
	"github.com/dyike/MoneyScope/internal/models"
)

type stageFunc func(ctx context.Context, state models.AnalysisState) (models.Delta, error)

type stageNode struct {
	stage models.Stage
	run   stageFunc
}

// buildGraph wires the stages as lambda nodes joined by straight edges, in the
// order given.
func buildGraph(ctx context.Context, nodes []stageNode) (compose.Runnable[models.AnalysisState, models.AnalysisState], error) {
	g := compose.NewGraph[models.AnalysisState, models.AnalysisState]()

	prev := compose.START
	for _, n := range nodes {
		key := n.stage.String()
		if err := g.AddLambdaNode(key, compose.InvokableLambda(wrapStage(n)), compose.WithNodeName(key)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", key, err)
		}
		if err := g.AddEdge(prev, key); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", prev, key, err)
		}
		prev = key
	}
	if err := g.AddEdge(prev, compose.END); err != nil {
		return nil, fmt.Errorf("add edge %s -> end: %w", prev, err)
	}

	return g.Compile(ctx, compose.WithGraphName(consts.GraphName))
}

// wrapStage applies the stage's delta to a copy of the state and reports
// progress to the run's observers.
func wrapStage(n stageNode) func(context.Context, models.AnalysisState) (models.AnalysisState, error) {
	return func(ctx context.Context, state models.AnalysisState) (models.AnalysisState, error) {
		rc := runFrom(ctx)
		rc.notify(n.stage, consts.State_Running, nil)

		delta, err := n.run(ctx, state)
		next := state
		if err == nil {
			next, err = state.Apply(delta)
		}
		if err != nil {
			err = fmt.Errorf("%s: %w", n.stage, err)
			rc.fail(err)
			rc.notify(n.stage, consts.State_Failed, err)
			return state, err
		}

		rc.notify(n.stage, consts.State_Finished, nil)
		return next, nil
	}
}
