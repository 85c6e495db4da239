package engine

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/patrickjm/yapl/cache"
	"github.com/patrickjm/yapl/cache/memory"
	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/internal/util"
	"github.com/patrickjm/yapl/logging"
	"github.com/patrickjm/yapl/provider"
	"github.com/patrickjm/yapl/render"
	"github.com/patrickjm/yapl/schema"
	"github.com/patrickjm/yapl/tool"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Providers maps provider names to implementations.
	Providers map[string]provider.Provider
	// Tools is the full registered tool set, referenced by name from
	// documents.
	Tools []tool.Tool
	// Cache stores provider responses; defaults to an in-memory store.
	// Set to nil explicitly to disable caching.
	Cache cache.Cache
	// Renderer resolves template strings; defaults to text/template.
	Renderer render.Renderer
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
	// DefaultProvider, DefaultModel and DefaultTools are the engine-level
	// fallbacks used when neither an output nor its chain configures the
	// field.
	DefaultProvider string
	DefaultModel    core.Model
	DefaultTools    []string
	// MaxToolRounds bounds the number of tool-call rounds per output.
	// Zero means unbounded, matching the historical behavior.
	MaxToolRounds int
}

// Engine executes YAPL documents: it validates the dependency graph,
// schedules chains in dependency waves and drives each chain's provider
// calls. Public methods are safe for concurrent use once construction is
// complete.
type Engine struct {
	providers     map[string]provider.Provider
	tools         map[string]tool.Tool
	cache         cache.Cache
	renderer      render.Renderer
	logger        logging.Logger
	defaults      callDefaults
	maxToolRounds int
}

// New constructs an Engine with optional overrides.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Providers: make(map[string]provider.Provider),
		Cache:     memory.New(),
		Renderer:  render.NewTemplateRenderer(),
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make(map[string]tool.Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		tools[t.Name()] = t
	}

	return &Engine{
		providers: opts.Providers,
		tools:     tools,
		cache:     opts.Cache,
		renderer:  opts.Renderer,
		logger:    opts.Logger,
		defaults: callDefaults{
			Provider: opts.DefaultProvider,
			Model:    opts.DefaultModel,
			Tools:    opts.DefaultTools,
		},
		maxToolRounds: opts.MaxToolRounds,
	}
}

// RegisterProvider adds a provider to the engine's registry, replacing any
// provider previously registered under the same name.
func (e *Engine) RegisterProvider(name string, p provider.Provider) {
	e.providers[name] = p
}

// RegisterTool adds a tool to the engine's registry.
func (e *Engine) RegisterTool(t tool.Tool) {
	e.tools[t.Name()] = t
}

// Validate runs the document's static checks without executing anything.
func (e *Engine) Validate(doc *schema.Document) error {
	return validateDocument(doc)
}

// Result is the outcome of one top-level invocation. Output, Content and
// Value are convenience projections onto the default chain's default
// output; they are zero-valued when that output does not exist.
type Result struct {
	Messages []core.Message              `json:"messages"`
	Output   *core.OutputRecord          `json:"output,omitempty"`
	Content  string                      `json:"content,omitempty"`
	Value    any                         `json:"value,omitempty"`
	Chains   map[string]core.ChainResult `json:"chains"`
	Cost     core.Cost                   `json:"cost"`
}

// Run validates doc and executes it to completion. Chains whose declared
// dependencies are all satisfied run concurrently within a dependency
// wave; each completed wave's results become visible to later chains'
// templating context. Callers receive either a complete result or an
// error; there is no partial success.
func (e *Engine) Run(ctx context.Context, doc *schema.Document, inputs map[string]any) (*Result, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	invocationID := util.NewID()
	e.logger.Debug("starting invocation", "invocation_id", invocationID, "multi", doc.Multi())

	chains := make(map[string]*schema.Chain)
	deps := make(map[string][]string)
	for name, def := range documentChains(doc) {
		chains[name] = inheritDefaults(def.Chain, doc)
		deps[name] = def.DependsOn
	}

	callerInputs := mergeInputs(doc.Inputs, inputs)

	completed := make(map[string]core.ChainResult, len(chains))
	var total core.Cost

	for len(completed) < len(chains) {
		frontier := nextWave(chains, deps, completed)
		if len(frontier) == 0 {
			// Unreachable after validation; assert rather than spin.
			return nil, fmt.Errorf("no runnable chains among %d remaining (validation skipped?)", len(chains)-len(completed))
		}

		// Each wave reads an immutable snapshot of completed results;
		// merges happen only after the whole wave finishes.
		snapshot := snapshotResults(completed)

		results := make([]core.ChainResult, len(frontier))
		costs := make([]core.Cost, len(frontier))

		g, gctx := errgroup.WithContext(ctx)
		for i, name := range frontier {
			i, name := i, name
			g.Go(func() error {
				res, cost, err := e.executeChain(gctx, name, chains[name], callerInputs, snapshot)
				if err != nil {
					return fmt.Errorf("chain %q failed: %w", name, err)
				}
				results[i] = res
				costs[i] = cost
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, name := range frontier {
			completed[name] = results[i]
			total = total.Add(costs[i])
		}
	}

	e.logger.Debug("invocation complete",
		"invocation_id", invocationID, "chains", len(completed), "tokens", total.Tokens)

	return buildResult(completed, total), nil
}

// inheritDefaults fills a chain's unset provider/model from the document
// level without mutating the parsed document.
func inheritDefaults(chain *schema.Chain, doc *schema.Document) *schema.Chain {
	c := *chain
	if c.Provider == "" {
		c.Provider = doc.Provider
	}
	if c.Model.IsZero() {
		c.Model = doc.Model
	}
	return &c
}

// nextWave returns the sorted frontier of chains whose dependencies are
// all completed and which have not yet run.
func nextWave(chains map[string]*schema.Chain, deps map[string][]string, completed map[string]core.ChainResult) []string {
	var frontier []string
	for name := range chains {
		if _, done := completed[name]; done {
			continue
		}
		ready := true
		for _, dep := range deps[name] {
			if _, done := completed[dep]; !done {
				ready = false
				break
			}
		}
		if ready {
			frontier = append(frontier, name)
		}
	}
	sort.Strings(frontier)
	return frontier
}

func snapshotResults(completed map[string]core.ChainResult) map[string]core.ChainResult {
	snapshot := make(map[string]core.ChainResult, len(completed))
	for name, res := range completed {
		snapshot[name] = res
	}
	return snapshot
}

// buildResult assembles the top-level result, projecting the default
// chain's default output onto the convenience fields.
func buildResult(completed map[string]core.ChainResult, total core.Cost) *Result {
	result := &Result{Chains: completed, Cost: total}

	def, ok := completed[core.DefaultChainID]
	if !ok {
		return result
	}
	result.Messages = def.Messages
	if rec, ok := def.Outputs[core.DefaultOutputID]; ok {
		result.Output = &rec
		result.Content = rec.Content
		result.Value = rec.Value
	}
	return result
}
