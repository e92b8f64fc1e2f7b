// Package model defines the reasoning-step contract used by all interview
// agents and a mock implementation for tests. Provider adapters live in the
// openai, anthropic and gemini subpackages.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Roles for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn handed to a model.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// UserMessage is a convenience constructor for a user-role message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions string    `json:"instructions"`
	Messages     []Message `json:"messages"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "gemini", "mock"
}

// Model is the minimal interface required to drive generation. The returned
// text carries no structural guarantee; callers parse it tolerantly (see the
// schema package). Invoke is a potentially slow network call and must honor
// ctx cancellation. Failed invocations are not retried by callers; each
// agent degrades to its documented fallback instead.
type Model interface {
	Invoke(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Responses can
// be keyed by substring of the last message, queued in order, or replaced by
// a forced error.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	queue     []string
	err       error
	calls     []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion returned when the last message
// contains the given substring.
func (m *MockModel) AddResponse(substr, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[substr] = response
}

// QueueResponse appends a completion returned in FIFO order regardless of input.
func (m *MockModel) QueueResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, response)
}

// FailWith forces every subsequent Invoke to return err. Pass nil to clear.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of every request seen so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Invoke implements Model.
func (m *MockModel) Invoke(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	if m.err != nil {
		return "", m.err
	}
	if len(m.queue) > 0 {
		resp := m.queue[0]
		m.queue = m.queue[1:]
		return resp, nil
	}

	var last string
	if len(req.Messages) > 0 {
		last = req.Messages[len(req.Messages)-1].Text
	}
	for substr, resp := range m.responses {
		if substr != "" && strings.Contains(last, substr) {
			return resp, nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", last), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
