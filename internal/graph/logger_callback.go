package graph

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	ecmodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/dyike/MoneyScope/internal/logger"
)

// LoggerCallback logs node and model lifecycle events.
type LoggerCallback struct {
	Log *logrus.Logger
}

func NewLoggerCallback() *LoggerCallback {
	return &LoggerCallback{Log: logger.Log}
}

type startKey struct{}

func (cb *LoggerCallback) entry(info *callbacks.RunInfo) *logrus.Entry {
	l := cb.Log
	if l == nil {
		l = logger.Log
	}
	if info == nil {
		return logrus.NewEntry(l)
	}
	return l.WithFields(logrus.Fields{
		"node":      info.Name,
		"component": string(info.Component),
	})
}

func (cb *LoggerCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	cb.entry(info).Debug("node started")
	return context.WithValue(ctx, startKey{}, time.Now())
}

func (cb *LoggerCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	e := cb.entry(info)
	if started, ok := ctx.Value(startKey{}).(time.Time); ok {
		e = e.WithField("elapsed", time.Since(started).Round(time.Millisecond))
	}
	if out := ecmodel.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
		e = e.WithFields(logrus.Fields{
			"prompt_tokens":     out.TokenUsage.PromptTokens,
			"completion_tokens": out.TokenUsage.CompletionTokens,
		})
	}
	e.Debug("node finished")
	return ctx
}

func (cb *LoggerCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	cb.entry(info).Warnf("node failed: %v", err)
	return ctx
}

func (cb *LoggerCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

func (cb *LoggerCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	cb.entry(info).Debug("node streamed output")
	return ctx
}
