package engine

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/schema"
)

// chainRun holds the mutable state of one executing chain: the live
// conversation window and the outputs captured so far. Chains are
// all-or-nothing units; any resolver or tool-loop error aborts the whole
// invocation.
type chainRun struct {
	engine  *Engine
	name    string
	chain   *schema.Chain
	inputs  map[string]any
	chains  map[string]any // completed chains' results, immutable snapshot
	outputs map[string]core.OutputRecord
	history []core.Message
}

// executeChain walks one chain's instruction tape in order, rendering each
// instruction's template fields just before use. completed is the builtins
// snapshot of already-finished chains; it is read, never written.
func (e *Engine) executeChain(
	ctx context.Context,
	name string,
	chain *schema.Chain,
	callerInputs map[string]any,
	completed map[string]core.ChainResult,
) (core.ChainResult, core.Cost, error) {
	run := &chainRun{
		engine:  e,
		name:    name,
		chain:   chain,
		inputs:  mergeInputs(chain.Inputs, callerInputs),
		chains:  chainsContext(completed),
		outputs: make(map[string]core.OutputRecord),
	}

	var cost core.Cost
	for _, instr := range buildTape(chain) {
		delta, err := run.step(ctx, instr)
		if err != nil {
			return core.ChainResult{}, core.Cost{}, err
		}
		cost = cost.Add(delta)
	}

	return core.ChainResult{Messages: run.history, Outputs: run.outputs}, cost, nil
}

func (r *chainRun) step(ctx context.Context, instr instruction) (core.Cost, error) {
	switch in := instr.(type) {
	case pushInstruction:
		return core.Cost{}, r.push(ctx, in)
	case outputInstruction:
		return r.output(ctx, in)
	case clearInstruction:
		r.clear(in)
		return core.Cost{}, nil
	default:
		panic("engine: unhandled instruction kind")
	}
}

// push renders the message content and appends it to history. Exactly one
// trailing newline, if present, is removed from the rendered content so
// YAML block scalars do not leak their terminator into the conversation.
func (r *chainRun) push(ctx context.Context, in pushInstruction) error {
	content, err := r.engine.renderer.Render(ctx, in.Content, r.templateData())
	if err != nil {
		return err
	}
	content = strings.TrimSuffix(content, "\n")
	r.history = append(r.history, core.Message{Role: in.Role, Content: content})
	return nil
}

// output resolves the call configuration, runs the output executor, and
// records the trailing message under the instruction's id. The chain-level
// tool list is merged with the instruction's own (union, chain-level
// first) before resolution.
func (r *chainRun) output(ctx context.Context, in outputInstruction) (core.Cost, error) {
	format := in.Format
	if format.Schema != "" {
		rendered, err := r.engine.renderer.Render(ctx, format.Schema, r.templateData())
		if err != nil {
			return core.Cost{}, err
		}
		format.Schema = rendered
	}

	outLevel := callDefaults{
		Provider: in.Provider,
		Model:    in.Model,
		Tools:    mergeToolNames(r.chain.Tools, in.Tools),
	}
	chainLevel := callDefaults{
		Provider: r.chain.Provider,
		Model:    r.chain.Model,
		Tools:    r.chain.Tools,
	}

	cfg, err := resolveCallConfig(outLevel, chainLevel, r.engine.defaults, r.engine.providers, r.engine.tools)
	if err != nil {
		return core.Cost{}, err
	}

	history, cost, err := r.engine.executeOutput(ctx, cfg, r.history, format)
	if err != nil {
		return core.Cost{}, err
	}
	r.history = history

	if len(history) == 0 {
		return cost, nil
	}
	trailing := history[len(history)-1]

	var value any
	if format.JSON {
		if err := json.Unmarshal([]byte(trailing.Content), &value); err != nil {
			r.engine.logger.Warn("output is not valid JSON",
				"chain", r.name, "output", in.ID, "error", err)
			value = nil
		}
	}

	if in.ID != "" {
		r.outputs[in.ID] = core.OutputRecord{
			Role:    trailing.Role,
			Content: trailing.Content,
			Value:   value,
		}
	}
	return cost, nil
}

// clear resets the live conversation window. A leading system message
// survives unless the system flag is set. Outputs captured before the
// clear remain retrievable via their ids.
func (r *chainRun) clear(in clearInstruction) {
	if in.System || len(r.history) == 0 || r.history[0].Role != core.RoleSystem {
		r.history = nil
		return
	}
	r.history = []core.Message{r.history[0]}
}

// templateData assembles the rendering context: caller inputs overlaid
// with the reserved builtin keys. Rebuilt per render so outputs captured
// earlier in the same chain are visible to later instructions.
func (r *chainRun) templateData() map[string]any {
	data := make(map[string]any, len(r.inputs)+2)
	for k, v := range r.inputs {
		data[k] = v
	}
	outputs := make(map[string]any, len(r.outputs))
	for id, rec := range r.outputs {
		outputs[id] = rec.AsMap()
	}
	data[core.BuiltinOutputsKey] = outputs
	data[core.BuiltinChainsKey] = r.chains
	return data
}

// mergeInputs overlays caller-supplied values on the chain's declared
// input defaults. Unknown caller inputs are tolerated and passed through
// for templating.
func mergeInputs(declared, caller map[string]any) map[string]any {
	merged := make(map[string]any, len(declared)+len(caller))
	for k, v := range declared {
		merged[k] = v
	}
	for k, v := range caller {
		merged[k] = v
	}
	return merged
}

// mergeToolNames unions two tool name lists preserving first-seen order.
func mergeToolNames(chainTools, outputTools []string) []string {
	if len(outputTools) == 0 {
		return nil // let chain/engine defaults apply
	}
	merged := make([]string, 0, len(chainTools)+len(outputTools))
	seen := make(map[string]struct{}, cap(merged))
	for _, lists := range [][]string{chainTools, outputTools} {
		for _, name := range lists {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}

// chainsContext converts completed chain results into the templating
// shape exposed under the reserved "chains" key.
func chainsContext(completed map[string]core.ChainResult) map[string]any {
	ctx := make(map[string]any, len(completed))
	for name, res := range completed {
		ctx[name] = res.AsMap()
	}
	return ctx
}
