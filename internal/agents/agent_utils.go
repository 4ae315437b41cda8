package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/MoneyScope/internal/models"
)

var ErrEmptyCompletion = errors.New("model returned an empty completion")

const promptDateLayout = "January 02, 2006"

type Option func(*agentOptions)

type agentOptions struct {
	now         func() time.Time
	temperature *float32
}

// WithClock sets the clock used for the date quoted in prompts.
func WithClock(now func() time.Time) Option {
	return func(o *agentOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func WithTemperature(t float32) Option {
	return func(o *agentOptions) {
		o.temperature = &t
	}
}

func buildOptions(defaultTemperature float32, opts []Option) agentOptions {
	o := agentOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.temperature == nil {
		o.temperature = &defaultTemperature
	}
	return o
}

// promptAgent is a load -> agent -> router graph: load renders the prompt from
// the state, agent calls the chat model and router extracts the text.
type promptAgent struct {
	name        string
	runnable    compose.Runnable[models.AnalysisState, string]
	temperature float32
}

type variablesFunc func(state models.AnalysisState, now time.Time) (map[string]any, error)

func newPromptAgent(ctx context.Context, name string, cm model.BaseChatModel, tpl prompt.ChatTemplate, vars variablesFunc, o agentOptions) (*promptAgent, error) {
	if cm == nil {
		return nil, fmt.Errorf("%s: chat model is required", name)
	}

	load := func(ctx context.Context, state models.AnalysisState) ([]*schema.Message, error) {
		values, err := vars(state, o.now())
		if err != nil {
			return nil, err
		}
		return tpl.Format(ctx, values)
	}
	router := func(ctx context.Context, msg *schema.Message) (string, error) {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return "", ErrEmptyCompletion
		}
		return msg.Content, nil
	}

	g := compose.NewGraph[models.AnalysisState, string]()
	_ = g.AddLambdaNode("load", compose.InvokableLambda(load), compose.WithNodeName(name+"_load"))
	_ = g.AddChatModelNode("agent", cm, compose.WithNodeName(name+"_model"))
	_ = g.AddLambdaNode("router", compose.InvokableLambda(router), compose.WithNodeName(name+"_router"))

	_ = g.AddEdge(compose.START, "load")
	_ = g.AddEdge("load", "agent")
	_ = g.AddEdge("agent", "router")
	_ = g.AddEdge("router", compose.END)

	r, err := g.Compile(ctx, compose.WithGraphName(name))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &promptAgent{name: name, runnable: r, temperature: *o.temperature}, nil
}

func (a *promptAgent) run(ctx context.Context, state models.AnalysisState) (string, error) {
	return a.runnable.Invoke(ctx, state,
		compose.WithChatModelOption(model.WithTemperature(a.temperature)),
	)
}

// dataVariables renders the three collected records the way both prompts
// embed them.
func dataVariables(state models.AnalysisState, now time.Time) (map[string]any, error) {
	rate, err := models.PrettyJSON(state.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("encode exchange rate: %w", err)
	}
	news, err := models.PrettyJSON(state.News)
	if err != nil {
		return nil, fmt.Errorf("encode news: %w", err)
	}
	trend, err := models.PrettyJSON(state.Trend)
	if err != nil {
		return nil, fmt.Errorf("encode trend: %w", err)
	}
	return map[string]any{
		"pair":               state.Pair.String(),
		"current_date":       now.Format(promptDateLayout),
		"exchange_rate_data": rate,
		"news_data":          news,
		"trend_data":         trend,
	}, nil
}
