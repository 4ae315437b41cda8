package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/MoneyScope/consts"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/internal/utils"
)

const (
	analystPersona     = "You are an expert Forex Data Analyst."
	analystTemperature = 0.3
)

// Analyzer turns the collected rate, news and trend records into a written
// analysis.
type Analyzer struct {
	agent *promptAgent
}

func NewAnalyzer(ctx context.Context, cm model.BaseChatModel, opts ...Option) (*Analyzer, error) {
	tpl := prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(analystPersona),
		schema.UserMessage(utils.MustLoadPrompt("analyst")),
	)
	agent, err := newPromptAgent(ctx, consts.AnalyzeData, cm, tpl, dataVariables, buildOptions(analystTemperature, opts))
	if err != nil {
		return nil, err
	}
	return &Analyzer{agent: agent}, nil
}

// Analyze requires the trend stage to have run. Any model failure is returned.
func (a *Analyzer) Analyze(ctx context.Context, state models.AnalysisState) (models.Delta, error) {
	if !state.HasTrend() {
		return models.Delta{}, fmt.Errorf("%w: analysis needs collected data", models.ErrStageOrder)
	}
	text, err := a.agent.run(ctx, state)
	if err != nil {
		return models.Delta{}, fmt.Errorf("generate analysis: %w", err)
	}
	return models.AnalysisDelta(text), nil
}
