package core

// Reserved identifiers used by the engine. The default output id is
// assigned to a chain's final output when it carries no explicit id; the
// default chain id hosts single-chain documents.
const (
	DefaultOutputID = "default"
	DefaultChainID  = "default"
)

// Reserved builtin context keys. Chain-level inputs must not collide with
// these names.
const (
	BuiltinOutputsKey = "outputs"
	BuiltinChainsKey  = "chains"
)

// OutputRecord captures the trailing message of an executed output
// instruction. Value holds the parsed JSON payload when the output's
// format requested JSON and parsing succeeded; it is nil otherwise.
type OutputRecord struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Value   any    `json:"value,omitempty"`
}

// AsMap exposes the record to templating with lowercase keys, matching the
// document syntax (e.g. {{ .outputs.summary.content }}).
func (r OutputRecord) AsMap() map[string]any {
	return map[string]any{
		"role":    r.Role,
		"content": r.Content,
		"value":   r.Value,
	}
}

// ChainResult is the immutable outcome of one chain execution: the final
// conversation history and every named output captured along the way.
type ChainResult struct {
	Messages []Message               `json:"messages"`
	Outputs  map[string]OutputRecord `json:"outputs"`
}

// AsMap exposes the result to downstream chains' templating context.
func (r ChainResult) AsMap() map[string]any {
	outputs := make(map[string]any, len(r.Outputs))
	for id, rec := range r.Outputs {
		outputs[id] = rec.AsMap()
	}
	return map[string]any{BuiltinOutputsKey: outputs}
}
