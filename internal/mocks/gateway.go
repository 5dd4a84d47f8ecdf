package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/phrazzld/microlesson-api/internal/generation"
)

// GatewayReply is one scripted response of a MockGateway.
type GatewayReply struct {
	Envelope generation.Envelope
	Err      error
}

// MockGateway implements generation.Gateway by replaying scripted replies in
// order. The last reply repeats once the script is exhausted.
type MockGateway struct {
	// SendFn overrides the script when set
	SendFn func(ctx context.Context, prompt string) (generation.Envelope, error)

	// Replies are returned in call order
	Replies []GatewayReply

	// Call tracking for verification
	SendCalls struct {
		mu      sync.Mutex
		Count   int
		Prompts []string
	}
}

// Send implements the generation.Gateway interface
func (m *MockGateway) Send(ctx context.Context, prompt string) (generation.Envelope, error) {
	m.SendCalls.mu.Lock()
	idx := m.SendCalls.Count
	m.SendCalls.Count++
	m.SendCalls.Prompts = append(m.SendCalls.Prompts, prompt)
	m.SendCalls.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, prompt)
	}
	if len(m.Replies) == 0 {
		return ContentEnvelope(`{"lesson":"default lesson","quiz":[]}`), nil
	}
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	r := m.Replies[idx]
	return r.Envelope, r.Err
}

// Calls returns how many times Send was called.
func (m *MockGateway) Calls() int {
	m.SendCalls.mu.Lock()
	defer m.SendCalls.mu.Unlock()
	return m.SendCalls.Count
}

// LastPrompt returns the most recent prompt, or "" when Send was never called.
func (m *MockGateway) LastPrompt() string {
	m.SendCalls.mu.Lock()
	defer m.SendCalls.mu.Unlock()
	if len(m.SendCalls.Prompts) == 0 {
		return ""
	}
	return m.SendCalls.Prompts[len(m.SendCalls.Prompts)-1]
}

// NewMockGateway creates a MockGateway that replays the given replies.
func NewMockGateway(replies ...GatewayReply) *MockGateway {
	return &MockGateway{Replies: replies}
}

// ContentEnvelope wraps text as the message content of a chat completion
// envelope.
func ContentEnvelope(text string) generation.Envelope {
	body, _ := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"role": "assistant", "content": text},
			},
		},
	})
	return body
}

// Reply is shorthand for a successful envelope reply.
func Reply(env generation.Envelope) GatewayReply {
	return GatewayReply{Envelope: env}
}

// ContentReply is shorthand for a reply whose message content is text.
func ContentReply(text string) GatewayReply {
	return GatewayReply{Envelope: ContentEnvelope(text)}
}

// ErrorReply is shorthand for a reply that fails with err.
func ErrorReply(err error) GatewayReply {
	return GatewayReply{Err: err}
}
