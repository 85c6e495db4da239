package core

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Model identifies the model requested for a provider call, optionally
// with provider specific parameters (temperature, max tokens, ...).
//
// In YAML a model is either a bare name or an object:
//
//	model: gpt-4o-mini
//	model:
//	  name: gpt-4o-mini
//	  params:
//	    temperature: 0.2
type Model struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// IsZero reports whether no usable model is configured. A name that
// normalizes to the empty string counts as unset.
func (m Model) IsZero() bool { return strings.TrimSpace(m.Name) == "" }

// UnmarshalYAML accepts both the bare-string and the object form.
func (m *Model) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		m.Name = name
		m.Params = nil
		return nil
	case yaml.MappingNode:
		var obj struct {
			Name   string         `yaml:"name"`
			Params map[string]any `yaml:"params"`
		}
		if err := value.Decode(&obj); err != nil {
			return err
		}
		m.Name = obj.Name
		m.Params = obj.Params
		return nil
	default:
		return fmt.Errorf("line %d: model must be a string or an object", value.Line)
	}
}

// Format describes the response format requested from the provider for a
// single output. Schema, when set, is a template string rendered just
// before the call and passed through to the provider.
type Format struct {
	JSON   bool   `json:"json,omitempty" yaml:"json,omitempty"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// IsZero reports whether no format was requested.
func (f Format) IsZero() bool { return !f.JSON && f.Schema == "" }

// UnmarshalYAML accepts the shorthand scalar "json" as well as the object
// forms {json: true} and {json: true, schema: "..."}.
func (f *Format) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s != "json" {
			return fmt.Errorf("line %d: unsupported format %q", value.Line, s)
		}
		f.JSON = true
		return nil
	case yaml.MappingNode:
		var obj struct {
			JSON   yaml.Node `yaml:"json"`
			Schema string    `yaml:"schema"`
		}
		if err := value.Decode(&obj); err != nil {
			return err
		}
		f.Schema = obj.Schema
		if obj.JSON.Kind == yaml.MappingNode {
			// format: {json: {schema: "..."}}
			var nested struct {
				Schema string `yaml:"schema"`
			}
			if err := obj.JSON.Decode(&nested); err != nil {
				return err
			}
			f.JSON = true
			if nested.Schema != "" {
				f.Schema = nested.Schema
			}
			return nil
		}
		if obj.JSON.Kind == yaml.ScalarNode {
			var b bool
			if err := obj.JSON.Decode(&b); err != nil {
				return err
			}
			f.JSON = b
		}
		return nil
	default:
		return fmt.Errorf("line %d: format must be a string or an object", value.Line)
	}
}
