package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/patrickjm/yapl/cache"
	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/internal/util"
	"github.com/patrickjm/yapl/provider"
	"github.com/patrickjm/yapl/tool"
)

// executeOutput is the unit of "one output instruction executed": it wraps
// the tool-call loop with response caching. The cache is keyed on the full
// pre-call context, so a hit replays exactly the messages the call
// appended the first time it ran, at zero incremental cost.
func (e *Engine) executeOutput(
	ctx context.Context,
	cfg *callConfig,
	history []core.Message,
	format core.Format,
) ([]core.Message, core.Cost, error) {
	defs := toolDefinitions(cfg.tools)
	key := cacheKey(cfg.providerName, cfg.model, defs, format, history)

	if cached, ok := e.cacheGet(ctx, key); ok {
		e.logger.Debug("cache hit, skipping provider call", "provider", cfg.providerName, "key", key)
		return append(history, cached...), core.Cost{}, nil
	}

	preCallLen := len(history)
	history, cost, err := e.toolCallLoop(ctx, cfg, history, defs, format)
	if err != nil {
		return nil, core.Cost{}, err
	}

	e.cacheSet(ctx, key, history[preCallLen:], cache.Metadata{
		Provider: cfg.providerName,
		Model:    cfg.model,
		Tools:    toolNames(cfg.tools),
		Format:   format,
	})

	return history, cost, nil
}

// toolCallLoop drives one call point to completion: invoke the provider,
// execute any requested tool calls, and re-invoke with the extended
// history until a response carries no tool calls. Tool argument and
// execution failures become tool-role messages so the model can
// self-correct; an unknown tool name aborts the call.
func (e *Engine) toolCallLoop(
	ctx context.Context,
	cfg *callConfig,
	history []core.Message,
	defs []provider.ToolDefinition,
	format core.Format,
) ([]core.Message, core.Cost, error) {
	var cost core.Cost
	rounds := 0

	for {
		resp, err := cfg.provider.Execute(ctx, provider.Request{
			Model:    cfg.model,
			Messages: history,
			Tools:    defs,
			Format:   format,
		})
		if err != nil {
			return nil, core.Cost{}, fmt.Errorf("provider %q call failed: %w", cfg.providerName, err)
		}
		history = append(history, resp.Messages...)
		cost = cost.Add(resp.Cost)

		if len(resp.Messages) == 0 {
			return history, cost, nil
		}
		last := resp.Messages[len(resp.Messages)-1]
		if !last.HasToolCalls() {
			return history, cost, nil
		}

		rounds++
		if e.maxToolRounds > 0 && rounds > e.maxToolRounds {
			return nil, core.Cost{}, &ToolRoundLimitError{Limit: e.maxToolRounds}
		}

		for _, tc := range last.ToolCalls {
			msg, err := e.executeToolCall(ctx, cfg.tools, tc)
			if err != nil {
				return nil, core.Cost{}, err
			}
			history = append(history, msg)
		}
	}
}

// executeToolCall runs a single model-requested tool call. The returned
// message reports either the tool's result or the failure that the model
// should recover from. Only an unknown tool name is returned as an error.
func (e *Engine) executeToolCall(ctx context.Context, tools []tool.Tool, tc core.ToolCall) (core.Message, error) {
	var target tool.Tool
	for _, t := range tools {
		if t.Name() == tc.Function.Name {
			target = t
			break
		}
	}
	if target == nil {
		return core.Message{}, &UnknownToolError{Name: tc.Function.Name}
	}

	msg := core.Message{Role: core.RoleTool, ToolCallID: tc.ID}

	args := map[string]any{}
	if len(tc.Function.Arguments) > 0 {
		if err := json.Unmarshal(tc.Function.Arguments, &args); err != nil {
			e.logger.Warn("tool call arguments are not valid JSON", "tool", tc.Function.Name, "error", err)
			msg.Content = fmt.Sprintf("error: invalid arguments for tool %s: %v", tc.Function.Name, err)
			return msg, nil
		}
	}

	if err := util.ValidateParameters(args, target.Parameters()); err != nil {
		e.logger.Warn("tool call arguments failed validation", "tool", tc.Function.Name, "error", err)
		msg.Content = fmt.Sprintf("error: invalid arguments for tool %s: %v", tc.Function.Name, err)
		return msg, nil
	}

	result, err := target.Execute(ctx, args)
	if err != nil {
		e.logger.Warn("tool execution failed", "tool", tc.Function.Name, "error", err)
		msg.Content = fmt.Sprintf("error: tool %s failed: %v", tc.Function.Name, err)
		return msg, nil
	}

	msg.Content = result
	return msg, nil
}

// cacheGet treats cache transport errors as misses; a degraded cache must
// never fail an invocation.
func (e *Engine) cacheGet(ctx context.Context, key string) ([]core.Message, bool) {
	if e.cache == nil {
		return nil, false
	}
	msgs, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return msgs, ok
}

func (e *Engine) cacheSet(ctx context.Context, key string, msgs []core.Message, meta cache.Metadata) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, key, msgs, meta); err != nil {
		e.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// cacheKey derives the deterministic content address for one call:
// provider name, model, tool declarations (names, descriptions and
// schemas), output format and the full message history at call time.
// Canonical JSON keeps map ordering stable.
func cacheKey(
	providerName string,
	model core.Model,
	defs []provider.ToolDefinition,
	format core.Format,
	history []core.Message,
) string {
	payload := struct {
		Provider string                    `json:"provider"`
		Model    core.Model                `json:"model"`
		Tools    []provider.ToolDefinition `json:"tools"`
		Format   core.Format               `json:"format"`
		Messages []core.Message            `json:"messages"`
	}{providerName, model, defs, format, history}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshal of plain data shapes cannot fail; fall back to an
		// unreachable key instead of panicking.
		return fmt.Sprintf("unkeyed:%p", &payload)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// toolDefinitions converts the effective tool set into the wire
// declarations sent to providers.
func toolDefinitions(tools []tool.Tool) []provider.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]provider.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = provider.ToolDefinition{
			Type: "function",
			Function: provider.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return defs
}

func toolNames(tools []tool.Tool) []string {
	if len(tools) == 0 {
		return nil
	}
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}
