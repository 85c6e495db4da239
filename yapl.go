// Package yapl provides a high-level façade over the core Engine for
// executing YAPL documents: YAML programs that chain calls to LLM
// providers with embedded templating, tool calling and response caching.
// Most applications interact with this package by:
//  1. Creating a YAPL instance via New() (registering providers and tools)
//  2. Running documents from bytes (Run) or files (RunFile)
//  3. Reading the structured Result (final messages, named outputs, cost)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// durable cache implementation and a structured logger.
package yapl

import (
	"context"
	"fmt"
	"os"

	"github.com/patrickjm/yapl/cache"
	"github.com/patrickjm/yapl/cache/memory"
	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/engine"
	"github.com/patrickjm/yapl/logging"
	"github.com/patrickjm/yapl/provider"
	"github.com/patrickjm/yapl/render"
	"github.com/patrickjm/yapl/schema"
	"github.com/patrickjm/yapl/tool"
)

// Options configures the YAPL instance.
type Options struct {
	// Providers maps provider names to implementations.
	Providers map[string]provider.Provider
	// Tools registered for documents to reference by name.
	Tools []tool.Tool
	// Cache for provider responses (defaults to in-memory).
	Cache cache.Cache
	// Renderer for template resolution (defaults to text/template).
	Renderer render.Renderer
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
	// DefaultProvider names the provider used when a document does not
	// choose one.
	DefaultProvider string
	// DefaultModel is the model used when a document does not choose one.
	DefaultModel core.Model
	// MaxToolRounds bounds tool-call rounds per output (0 = unbounded).
	MaxToolRounds int
}

// YAPL is the high-level façade aggregating the underlying engine.
type YAPL struct {
	engine *engine.Engine
}

// New creates a new YAPL instance with optional overrides.
func New(optFns ...func(o *Options)) *YAPL {
	opts := Options{
		Providers: make(map[string]provider.Provider),
		Cache:     memory.New(),
		Renderer:  render.NewTemplateRenderer(),
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	eng := engine.New(func(o *engine.Options) {
		o.Providers = opts.Providers
		o.Tools = opts.Tools
		o.Cache = opts.Cache
		o.Renderer = opts.Renderer
		o.Logger = opts.Logger
		o.DefaultProvider = opts.DefaultProvider
		o.DefaultModel = opts.DefaultModel
		o.MaxToolRounds = opts.MaxToolRounds
	})

	return &YAPL{engine: eng}
}

// Engine exposes the underlying engine for advanced use.
func (y *YAPL) Engine() *engine.Engine { return y.engine }

// RegisterProvider adds a provider under the given name.
func (y *YAPL) RegisterProvider(name string, p provider.Provider) {
	y.engine.RegisterProvider(name, p)
}

// RegisterTool adds a tool to the registry.
func (y *YAPL) RegisterTool(t tool.Tool) {
	y.engine.RegisterTool(t)
}

// Validate parses source and runs the static document checks without
// executing anything.
func (y *YAPL) Validate(source []byte) error {
	doc, err := schema.Parse(source)
	if err != nil {
		return err
	}
	return y.engine.Validate(doc)
}

// Run parses and executes a YAPL document with the given caller inputs.
func (y *YAPL) Run(ctx context.Context, source []byte, inputs map[string]any) (*engine.Result, error) {
	doc, err := schema.Parse(source)
	if err != nil {
		return nil, err
	}
	return y.engine.Run(ctx, doc, inputs)
}

// RunFile reads and executes the document at path.
func (y *YAPL) RunFile(ctx context.Context, path string, inputs map[string]any) (*engine.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return y.Run(ctx, data, inputs)
}
