// Package schema defines the YAML document format for YAPL programs and
// parses it into typed structures consumed by the engine.
//
// A document is either a single chain:
//
//	provider: openai
//	model: gpt-4o-mini
//	messages:
//	  - system: You are a helpful assistant.
//	  - user: "Summarize: {{ .text }}"
//	  - output
//
// or a map of named chains with dependencies:
//
//	provider: openai
//	model: gpt-4o-mini
//	chains:
//	  research:
//	    chain:
//	      messages:
//	        - user: Find facts about {{ .topic }}
//	        - output
//	  report:
//	    dependsOn: [research]
//	    chain:
//	      messages:
//	        - user: "Write a report from: {{ .chains.research.outputs.default.content }}"
//	        - output
//
// Message entries accept the shorthand forms "output", "clear",
// {user: ...}, {assistant: ...}, {system: ...}, the explicit
// {role: ..., content: ...} form, and the parameterized
// {output: {...}} / {clear: {...}} forms.
package schema

import (
	"fmt"

	"github.com/patrickjm/yapl/core"
	"gopkg.in/yaml.v3"
)

// Chain is a named, ordered template of conversation turns and call
// points. It is a template, not yet executed: message content is rendered
// just in time during execution.
type Chain struct {
	Provider string         `yaml:"provider"`
	Model    core.Model     `yaml:"model"`
	Inputs   map[string]any `yaml:"inputs"`
	Tools    []string       `yaml:"tools"`
	Messages []RawMessage   `yaml:"messages"`
}

// ChainDefinition pairs a chain with its declared dependencies inside a
// multi-chain document.
type ChainDefinition struct {
	DependsOn []string `yaml:"dependsOn"`
	Chain     *Chain   `yaml:"chain"`
}

// UnmarshalYAML accepts both the explicit {dependsOn, chain} form and an
// inline chain mapping (messages at the definition's top level).
func (d *ChainDefinition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: chain definition must be a mapping", value.Line)
	}
	if hasMappingKey(value, "chain") {
		type plain ChainDefinition
		return value.Decode((*plain)(d))
	}
	var c Chain
	if err := value.Decode(&c); err != nil {
		return err
	}
	d.Chain = &c
	return nil
}

// Document is a parsed YAPL program: either a single chain or a map of
// named chain definitions, plus document-level defaults inherited by
// chains that omit them.
type Document struct {
	Provider string
	Model    core.Model
	Inputs   map[string]any
	Chain    *Chain
	Chains   map[string]*ChainDefinition
}

// Multi reports whether the document declares named chains.
func (d *Document) Multi() bool { return d.Chain == nil }

// UnmarshalYAML dispatches on the document shape: a mapping with a
// "messages" key is a single chain; otherwise a "chains" mapping is
// expected.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: document must be a mapping", value.Line)
	}

	if hasMappingKey(value, "messages") {
		var c Chain
		if err := value.Decode(&c); err != nil {
			return err
		}
		d.Chain = &c
		d.Provider = c.Provider
		d.Model = c.Model
		d.Inputs = c.Inputs
		return nil
	}

	var multi struct {
		Provider string                      `yaml:"provider"`
		Model    core.Model                  `yaml:"model"`
		Inputs   map[string]any              `yaml:"inputs"`
		Chains   map[string]*ChainDefinition `yaml:"chains"`
	}
	if err := value.Decode(&multi); err != nil {
		return err
	}
	if len(multi.Chains) == 0 {
		return fmt.Errorf("line %d: document declares neither messages nor chains", value.Line)
	}
	d.Provider = multi.Provider
	d.Model = multi.Model
	d.Inputs = multi.Inputs
	d.Chains = multi.Chains
	for name, def := range d.Chains {
		if def == nil || def.Chain == nil {
			return fmt.Errorf("chain %q has no chain body", name)
		}
	}
	return nil
}

// Parse decodes a YAML document into its typed form. It performs only
// structural shape checking; semantic validation (dependency graph, output
// ids, reserved names) is the engine's job.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &doc, nil
}

// hasMappingKey reports whether a mapping node contains the given key.
func hasMappingKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
