// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Call is one recorded Generate invocation.
type Call struct {
	Messages    []*schema.Message
	Temperature *float32
}

// FakeChatModel answers with canned replies in order and records every call.
// When Replies runs out the last reply is repeated.
type FakeChatModel struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	// FailOnCall makes the n-th call (1-based) return Err; 0 fails every call
	// when Err is set.
	FailOnCall int
	calls      []Call
}

func NewFakeChatModel(replies ...string) *FakeChatModel {
	return &FakeChatModel{Replies: replies}
}

func (f *FakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	common := model.GetCommonOptions(nil, opts...)
	f.calls = append(f.calls, Call{Messages: input, Temperature: common.Temperature})
	n := len(f.calls)

	if f.Err != nil && (f.FailOnCall == 0 || f.FailOnCall == n) {
		return nil, f.Err
	}
	reply := ""
	if len(f.Replies) > 0 {
		reply = f.Replies[min(n, len(f.Replies))-1]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (f *FakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *FakeChatModel) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
