package schema

import (
	"fmt"

	"github.com/patrickjm/yapl/core"
	"gopkg.in/yaml.v3"
)

// RawMessageKind discriminates the parsed form of a chain message entry.
type RawMessageKind int

const (
	// KindMessage is a literal conversation turn pending template rendering.
	KindMessage RawMessageKind = iota
	// KindOutput is a call point at which the provider is invoked.
	KindOutput
	// KindClear truncates the in-flight history.
	KindClear
)

// MessageTemplate is a literal conversation turn before rendering.
type MessageTemplate struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// OutputSpec parameterizes a call point. All fields are optional;
// unset fields fall back to chain then engine defaults.
type OutputSpec struct {
	ID       string      `yaml:"id"`
	Provider string      `yaml:"provider"`
	Model    core.Model  `yaml:"model"`
	Tools    []string    `yaml:"tools"`
	Format   core.Format `yaml:"format"`
}

// ClearSpec parameterizes a history clear. With System set the leading
// system message is discarded along with the rest of the history.
type ClearSpec struct {
	System bool `yaml:"system"`
}

// RawMessage is one entry of a chain's message list, parsed from any of
// the accepted shorthand forms into a tagged variant.
type RawMessage struct {
	Kind    RawMessageKind
	Message *MessageTemplate
	Output  *OutputSpec
	Clear   *ClearSpec
}

// UnmarshalYAML accepts:
//
//	- output                      (bare call point)
//	- clear                       (bare history clear)
//	- user: "..."                 (single-key role shorthand)
//	- assistant: "..."
//	- system: "..."
//	- role: user                  (explicit form)
//	  content: "..."
//	- output: {id: ..., ...}      (parameterized call point)
//	- clear: {system: true}       (parameterized clear)
func (m *RawMessage) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		switch s {
		case "output":
			m.Kind = KindOutput
			m.Output = &OutputSpec{}
			return nil
		case "clear":
			m.Kind = KindClear
			m.Clear = &ClearSpec{}
			return nil
		default:
			return fmt.Errorf("line %d: unknown message shorthand %q", value.Line, s)
		}
	case yaml.MappingNode:
		return m.unmarshalMapping(value)
	default:
		return fmt.Errorf("line %d: message must be a string or a mapping", value.Line)
	}
}

func (m *RawMessage) unmarshalMapping(value *yaml.Node) error {
	if hasMappingKey(value, "role") {
		var mt MessageTemplate
		if err := value.Decode(&mt); err != nil {
			return err
		}
		if !validRole(mt.Role) {
			return fmt.Errorf("line %d: unknown role %q", value.Line, mt.Role)
		}
		m.Kind = KindMessage
		m.Message = &mt
		return nil
	}

	if len(value.Content) != 2 {
		return fmt.Errorf("line %d: message mapping must have exactly one key", value.Line)
	}
	key := value.Content[0].Value
	val := value.Content[1]

	switch key {
	case core.RoleUser, core.RoleAssistant, core.RoleSystem:
		var content string
		if err := val.Decode(&content); err != nil {
			return err
		}
		m.Kind = KindMessage
		m.Message = &MessageTemplate{Role: key, Content: content}
		return nil
	case "output":
		var spec OutputSpec
		if err := val.Decode(&spec); err != nil {
			return err
		}
		m.Kind = KindOutput
		m.Output = &spec
		return nil
	case "clear":
		var spec ClearSpec
		if err := val.Decode(&spec); err != nil {
			return err
		}
		m.Kind = KindClear
		m.Clear = &spec
		return nil
	default:
		return fmt.Errorf("line %d: unknown message key %q", value.Line, key)
	}
}

func validRole(role string) bool {
	switch role {
	case core.RoleUser, core.RoleAssistant, core.RoleSystem, core.RoleTool:
		return true
	}
	return false
}
