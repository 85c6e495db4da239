// Package core defines the shared data model for YAPL: conversation
// messages, tool call requests, model and format descriptors, cost
// accounting and the per-chain result shapes exposed to templating.
//
// Types in this package are provider-agnostic. Providers and the engine
// exchange []Message slices; vendor SDK shapes never leak above the
// provider adapters.
package core
