// Package provider defines the provider-agnostic abstraction for invoking
// language models inside YAPL.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize tool / function declarations (ToolDefinition)
//   - Facilitate lightweight mocking for tests (MockProvider)
//
// Concrete providers (e.g. OpenAI, Anthropic) implement the Provider
// interface from this package so the engine remains decoupled from vendor
// SDKs.
package provider

import (
	"context"

	"github.com/patrickjm/yapl/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to
// the model. Parameters is a JSON Schema object (draft agnostic, minimal
// subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized provider input produced by the engine.
// Messages is the full conversation history at call time.
type Request struct {
	Model    core.Model       `json:"model"`
	Messages []core.Message   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
	Format   core.Format      `json:"format,omitempty"`
}

// Response carries the messages a provider call produced, in append order,
// and the incremental cost of the call.
type Response struct {
	Messages []core.Message `json:"messages"`
	Cost     core.Cost      `json:"cost"`
}

// Provider is the minimal interface required by the engine to drive
// generation. Returned messages are appended, in order, to the chain's
// conversation history.
type Provider interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}
