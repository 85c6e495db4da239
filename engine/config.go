package engine

import (
	"strings"

	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/provider"
	"github.com/patrickjm/yapl/tool"
)

// callDefaults is one level of the provider/model/tools configuration
// hierarchy: an output instruction's own values, a chain's defaults, or
// the engine-wide defaults.
type callDefaults struct {
	Provider string
	Model    core.Model
	Tools    []string
}

// callConfig is the effective configuration for a single provider call.
type callConfig struct {
	providerName string
	provider     provider.Provider
	model        core.Model
	tools        []tool.Tool
}

// resolveCallConfig merges the three configuration levels into the
// effective config for one call. Precedence is per field, independently:
// the output-level value wins when present and non-empty, then the chain
// default, then the engine default. The function is pure and deterministic
// for identical inputs.
func resolveCallConfig(
	out callDefaults,
	chain callDefaults,
	eng callDefaults,
	providers map[string]provider.Provider,
	registry map[string]tool.Tool,
) (*callConfig, error) {
	providerName := firstNonEmpty(out.Provider, chain.Provider, eng.Provider)
	if providerName == "" {
		return nil, &NoProviderConfiguredError{}
	}
	p, ok := providers[providerName]
	if !ok {
		return nil, &ProviderNotFoundError{Name: providerName}
	}

	model := firstModel(out.Model, chain.Model, eng.Model)
	if model.IsZero() {
		return nil, &NoModelConfiguredError{}
	}

	names := out.Tools
	if len(names) == 0 {
		names = chain.Tools
	}
	if len(names) == 0 {
		names = eng.Tools
	}

	tools, err := resolveTools(names, registry)
	if err != nil {
		return nil, err
	}

	return &callConfig{
		providerName: providerName,
		provider:     p,
		model:        model,
		tools:        tools,
	}, nil
}

// resolveTools deduplicates tool names (set semantics, first-seen order)
// and looks each up in the registered tool set.
func resolveTools(names []string, registry map[string]tool.Tool) ([]tool.Tool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(names))
	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		t, ok := registry[name]
		if !ok {
			return nil, &ToolNotFoundError{Name: name}
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// firstNonEmpty returns the first value with non-whitespace content,
// trimmed, so configured names match registry keys exactly.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstModel(models ...core.Model) core.Model {
	for _, m := range models {
		if !m.IsZero() {
			return m
		}
	}
	return core.Model{}
}
