package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/MoneyScope/consts"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/internal/utils"
)

const (
	reporterPersona     = "You are an expert Forex Report Generator."
	reporterTemperature = 0.2
)

// Reporter writes the final markdown report from the analysis and the
// collected records.
type Reporter struct {
	agent *promptAgent
}

func NewReporter(ctx context.Context, cm model.BaseChatModel, opts ...Option) (*Reporter, error) {
	tpl := prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(reporterPersona),
		schema.UserMessage(utils.MustLoadPrompt("reporter")),
	)
	agent, err := newPromptAgent(ctx, consts.GenerateReport, cm, tpl, reportVariables, buildOptions(reporterTemperature, opts))
	if err != nil {
		return nil, err
	}
	return &Reporter{agent: agent}, nil
}

func reportVariables(state models.AnalysisState, now time.Time) (map[string]any, error) {
	vars, err := dataVariables(state, now)
	if err != nil {
		return nil, err
	}
	vars["data_analysis"] = state.Analysis
	return vars, nil
}

func (r *Reporter) Report(ctx context.Context, state models.AnalysisState) (models.Delta, error) {
	if !state.HasAnalysis() {
		return models.Delta{}, fmt.Errorf("%w: report needs an analysis", models.ErrStageOrder)
	}
	text, err := r.agent.run(ctx, state)
	if err != nil {
		return models.Delta{}, fmt.Errorf("generate report: %w", err)
	}
	return models.ReportDelta(text), nil
}
