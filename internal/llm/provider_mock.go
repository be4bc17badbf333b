package llm

import (
	"context"
	"sync"
	"time"
)

// MockCall records one Chat invocation.
type MockCall struct {
	System  string
	History []Message
	Options Options
}

// MockProvider implements Provider for testing. It returns a fixed response
// or a fixed error and records every call.
type MockProvider struct {
	FixedContent string
	ChatErr      error

	mu    sync.Mutex
	calls []MockCall
}

// NewMockProvider creates a mock provider with a canned reply.
func NewMockProvider(content string) *MockProvider {
	return &MockProvider{FixedContent: content}
}

func (p *MockProvider) Name() string { return "Mock" }

func (p *MockProvider) Chat(_ context.Context, system string, history []Message, opts Options) (*Response, error) {
	p.mu.Lock()
	p.calls = append(p.calls, MockCall{
		System:  system,
		History: append([]Message(nil), history...),
		Options: opts,
	})
	p.mu.Unlock()

	if p.ChatErr != nil {
		return nil, p.ChatErr
	}
	return &Response{
		Content:    p.FixedContent,
		Model:      "mock",
		TokensUsed: 100,
		Duration:   time.Millisecond,
		StopReason: "stop",
	}, nil
}

// Calls returns a copy of the recorded calls.
func (p *MockProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]MockCall(nil), p.calls...)
}
