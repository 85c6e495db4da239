package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickjm/yapl/core"
)

// MockProvider is a lightweight in-memory Provider useful for tests and
// examples. Canned responses are matched against the content of the last
// message in the request; a scriptable handler can take over entirely for
// multi-turn tool call scenarios.
type MockProvider struct {
	mu        sync.Mutex
	responses map[string]string
	handler   func(req Request) (*Response, error)
	calls     int
}

// NewMockProvider constructs a MockProvider with no canned responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for an input
// prompt.
func (m *MockProvider) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetHandler installs a handler invoked for every Execute call, replacing
// the canned response lookup. Useful for scripting tool call rounds.
func (m *MockProvider) SetHandler(h func(req Request) (*Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Calls returns the number of Execute invocations observed so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Execute implements Provider.
func (m *MockProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls++
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		return handler(req)
	}

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	input := req.Messages[len(req.Messages)-1].Content

	m.mu.Lock()
	full, ok := m.responses[input]
	m.mu.Unlock()
	if !ok {
		full = fmt.Sprintf("Mock response to: %s", input)
	}

	return &Response{
		Messages: []core.Message{{Role: core.RoleAssistant, Content: full}},
		Cost:     core.Cost{Tokens: len(full), MS: 1},
	}, nil
}
