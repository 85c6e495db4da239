package openai

import (
	"encoding/json"
	"testing"

	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParams(t *testing.T) {
	p := &Provider{opts: Options{Temperature: 0.7, MaxCompletionTokens: 4096}}

	req := provider.Request{
		Model: core.Model{
			Name:   "gpt-4o-mini",
			Params: map[string]any{"temperature": 0.2, "max_tokens": 512},
		},
		Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}},
		Format:   core.Format{JSON: true},
		Tools: []provider.ToolDefinition{{
			Type: "function",
			Function: provider.FunctionDefinition{
				Name:        "search",
				Description: "Search things",
				Parameters:  map[string]any{"type": "object"},
			},
		}},
	}

	params := p.buildParams(req)
	assert.EqualValues(t, "gpt-4o-mini", params.Model)
	assert.Equal(t, 0.2, params.Temperature.Value)
	assert.Equal(t, int64(512), params.MaxCompletionTokens.Value)
	assert.NotNil(t, params.ResponseFormat.OfJSONObject)
	require.Len(t, params.Tools, 1)
	assert.EqualValues(t, "search", params.Tools[0].Function.Name)
}

func TestBuildParamsDefaults(t *testing.T) {
	p := &Provider{opts: Options{Temperature: 0.7, MaxCompletionTokens: 4096}}
	params := p.buildParams(provider.Request{Model: core.Model{Name: "gpt-4o"}})
	assert.Equal(t, 0.7, params.Temperature.Value)
	assert.Equal(t, int64(4096), params.MaxCompletionTokens.Value)
	assert.Nil(t, params.ResponseFormat.OfJSONObject)
	assert.Empty(t, params.Tools)
}

func TestBuildMessages(t *testing.T) {
	msgs := []core.Message{
		{Role: core.RoleSystem, Content: "rules"},
		{Role: core.RoleUser, Content: "q"},
		{Role: core.RoleAssistant, Content: "a"},
		{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{{
				ID:       "c1",
				Type:     "function",
				Function: core.ToolCallFunction{Name: "search", Arguments: json.RawMessage(`{"q":"x"}`)},
			}},
		},
		{Role: core.RoleTool, Content: "result", ToolCallID: "c1"},
	}

	built := buildMessages(msgs)
	require.Len(t, built, 5)

	withCalls := built[3].OfAssistant
	require.NotNil(t, withCalls)
	require.Len(t, withCalls.ToolCalls, 1)
	assert.Equal(t, "c1", withCalls.ToolCalls[0].ID)
	assert.Equal(t, `{"q":"x"}`, withCalls.ToolCalls[0].Function.Arguments)
}

func TestParamHelpers(t *testing.T) {
	assert.Equal(t, 0.3, floatParam(map[string]any{"temperature": 0.3}, "temperature", 0.7))
	assert.Equal(t, 1.0, floatParam(map[string]any{"temperature": 1}, "temperature", 0.7))
	assert.Equal(t, 0.7, floatParam(nil, "temperature", 0.7))
	assert.Equal(t, 0.7, floatParam(map[string]any{"temperature": "hot"}, "temperature", 0.7))

	assert.Equal(t, int64(256), intParam(map[string]any{"max_tokens": 256}, "max_tokens", 4096))
	assert.Equal(t, int64(128), intParam(map[string]any{"max_tokens": float64(128)}, "max_tokens", 4096))
	assert.Equal(t, int64(4096), intParam(nil, "max_tokens", 4096))
}
