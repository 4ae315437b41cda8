package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/dyike/MoneyScope/config"
)

// NewChatModel builds the chat model for cfg.LLMProvider. Groq and OpenAI both
// speak the OpenAI protocol; DeepSeek has its own client and always uses the
// vendor endpoint.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	var (
		cm  model.BaseChatModel
		err error
	)
	switch cfg.LLMProvider {
	case config.ProviderGroq, config.ProviderOpenAI:
		maxTokens := cfg.LLMMaxTokens
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.LLMBaseURL,
			APIKey:    cfg.LLMAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: &maxTokens,
			Timeout:   cfg.HTTPTimeout,
		})
	case config.ProviderDeepSeek:
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.LLMAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: cfg.LLMMaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.LLMProvider, err)
	}
	return WithRateLimit(cm, cfg.LLMRequestsPerMinute), nil
}

// rateLimitedModel paces calls to the wrapped model. It only delays; a call
// that fails is not repeated.
type rateLimitedModel struct {
	inner   model.BaseChatModel
	limiter *rate.Limiter
}

// WithRateLimit allows perMinute calls per minute with a burst of one.
// perMinute <= 0 disables pacing.
func WithRateLimit(cm model.BaseChatModel, perMinute int) model.BaseChatModel {
	if perMinute <= 0 {
		return cm
	}
	return &rateLimitedModel{
		inner:   cm,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (m *rateLimitedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.Generate(ctx, input, opts...)
}

func (m *rateLimitedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.Stream(ctx, input, opts...)
}
