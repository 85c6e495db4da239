// Package render defines the templating contract consumed by the engine
// and a default implementation backed by text/template.
//
// Every message content string and every output format schema is rendered
// just before use against the merged caller-input and builtin context, so
// templates can reference previously captured outputs:
//
//	{{ .outputs.summary.content }}
//	{{ .chains.research.outputs.default.value }}
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Renderer resolves a template string against a context. Render is treated
// as a suspension point by the engine; implementations may perform I/O.
type Renderer interface {
	Render(ctx context.Context, tmpl string, data map[string]any) (string, error)
}

// TemplateRenderer is the default Renderer built on text/template with a
// small set of helper functions.
type TemplateRenderer struct {
	funcs template.FuncMap
}

// NewTemplateRenderer constructs a TemplateRenderer with the default
// helper functions (default, upper, lower, title, join).
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{
		funcs: template.FuncMap{
			"default": func(defaultVal any, val any) any {
				if val == nil || val == "" {
					return defaultVal
				}
				return val
			},
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
			"title": func(s string) string {
				if len(s) == 0 {
					return s
				}
				return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
			},
			"join": func(sep string, items []any) string {
				strItems := make([]string, len(items))
				for i, item := range items {
					strItems[i] = fmt.Sprintf("%v", item)
				}
				return strings.Join(strItems, sep)
			},
		},
	}
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(_ context.Context, tmpl string, data map[string]any) (string, error) {
	if !strings.Contains(tmpl, "{{") { // fast path: no template markers
		return tmpl, nil
	}

	t, err := template.New("yapl").Funcs(r.funcs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}

	return buf.String(), nil
}
