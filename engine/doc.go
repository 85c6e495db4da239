// Package engine implements the chain/output execution core of YAPL.
//
// The Engine turns a parsed document into an ordered sequence of provider
// calls. Responsibilities:
//
//   - Dependency validation: cycle detection, undeclared references,
//     output id uniqueness and reserved-name checks, run once before any
//     provider call.
//   - Configuration resolution: per-call provider/model/tool precedence
//     (output level, then chain level, then engine defaults).
//   - Output execution: a content-addressed response cache wrapping the
//     tool-call loop, which re-invokes the provider after executing
//     model-requested tools until a response carries no tool calls.
//   - Chain execution: walking a chain's instruction tape (push message /
//     call output / clear history), rendering templates just in time and
//     accumulating named outputs.
//   - Program scheduling: topological waves of chains executed
//     concurrently, with completed chains' outputs exposed to later
//     chains' templating context.
//
// Failure semantics follow a strict taxonomy: structural and configuration
// errors abort the invocation; tool argument and execution failures are
// surfaced to the model as tool-role messages so it can self-correct; an
// unknown tool name is fatal because it indicates a misconfigured
// registry, not a model mistake.
package engine
