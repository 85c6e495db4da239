// Package anthropic provides a provider.Provider wrapper for the Anthropic
// Claude Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/provider"
)

// Options configures the Anthropic provider adapter (temperature, max
// tokens, API key). Per-call values from the resolved model's params take
// precedence over Temperature and MaxTokens.
type Options struct {
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Provider wraps the Anthropic Messages API behind the generic
// provider.Provider interface.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic provider using the official client
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{
		client: &client,
		opts:   opts,
	}
}

// NewFromClient creates a new Anthropic provider from an existing client
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Provider{
		client: client,
		opts:   opts,
	}
}

// Execute implements provider.Provider using a non-streaming Messages API
// call.
func (p *Provider) Execute(ctx context.Context, req provider.Request) (*provider.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model.Name),
		Messages:    buildMessages(req.Messages),
		MaxTokens:   intParam(req.Model.Params, "max_tokens", p.opts.MaxTokens),
		Temperature: anthropic.Float(floatParam(req.Model.Params, "temperature", p.opts.Temperature)),
	}

	if systemBlocks := extractSystemBlocks(req.Messages); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	start := time.Now()
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}
	elapsed := time.Since(start)

	msg := core.Message{Role: core.RoleAssistant}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			msg.Content += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := json.RawMessage(`{}`)
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = argsBytes
				}
			}
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
				ID:   toolBlock.ID,
				Type: "function",
				Function: core.ToolCallFunction{
					Name:      toolBlock.Name,
					Arguments: args,
				},
			})
		}
	}

	return &provider.Response{
		Messages: []core.Message{msg},
		Cost: core.Cost{
			Tokens: int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			MS:     elapsed.Milliseconds(),
		},
	}, nil
}

// buildMessages converts YAPL messages to the Anthropic message format.
// System messages are handled separately; tool results become user-role
// tool_result blocks as the API requires.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, m := range msgs {
		switch m.Role {
		case core.RoleSystem:
			continue
		case core.RoleUser:
			if m.Content != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			}
		case core.RoleAssistant:
			var content []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				content = append(content, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input any
				if len(tc.Function.Arguments) > 0 {
					if err := json.Unmarshal(tc.Function.Arguments, &input); err != nil {
						input = string(tc.Function.Arguments) // fallback to string
					}
				}
				content = append(content, anthropic.NewToolUseBlock(tc.ID, input, tc.Function.Name))
			}
			if len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		case core.RoleTool:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		default:
			if m.Content != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			}
		}
	}

	return messages
}

// extractSystemBlocks collects system message text blocks.
func extractSystemBlocks(msgs []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, m := range msgs {
		if m.Role == core.RoleSystem && m.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: m.Content})
		}
	}
	return blocks
}

// buildTools converts YAPL tool definitions to the Anthropic tool format.
func buildTools(tools []provider.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if params := tdef.Function.Parameters; params != nil {
			if properties, exists := params["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := params["required"]; exists {
				switch req := required.(type) {
				case []string:
					inputSchema.Required = req
				case []any:
					var reqStrings []string
					for _, r := range req {
						if s, ok := r.(string); ok {
							reqStrings = append(reqStrings, s)
						}
					}
					inputSchema.Required = reqStrings
				}
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tdef.Function.Name,
				Description: anthropic.String(tdef.Function.Description),
				InputSchema: inputSchema,
			},
		}
	}

	return anthropicTools
}

func floatParam(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

func intParam(params map[string]any, key string, fallback int64) int64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return int64(n)
		case int64:
			return n
		case float64:
			return int64(n)
		}
	}
	return fallback
}
