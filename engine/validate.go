package engine

import (
	"sort"

	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/schema"
)

// validateDocument runs every static check once, synchronously, before any
// provider call: dependency cycles, undeclared references, output id
// uniqueness and placement, and reserved input names. A failing validation
// aborts the load entirely.
func validateDocument(doc *schema.Document) error {
	chains := documentChains(doc)

	names := make([]string, 0, len(chains))
	for name := range chains {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := validateDependencies(names, chains); err != nil {
		return err
	}

	for _, name := range names {
		if err := validateChain(name, chains[name].Chain); err != nil {
			return err
		}
	}
	return nil
}

// documentChains normalizes a document into its named-chain form. Single
// chain documents run under the reserved default chain id.
func documentChains(doc *schema.Document) map[string]*schema.ChainDefinition {
	if !doc.Multi() {
		return map[string]*schema.ChainDefinition{
			core.DefaultChainID: {Chain: doc.Chain},
		}
	}
	return doc.Chains
}

// validateDependencies detects cycles via depth-first traversal with an
// explicit current-path stack, and references to chains absent from the
// document.
func validateDependencies(names []string, chains map[string]*schema.ChainDefinition) error {
	visited := make(map[string]bool, len(chains))
	onPath := make(map[string]bool, len(chains))

	var visit func(name string) error
	visit = func(name string) error {
		if onPath[name] {
			return &CircularDependencyError{Chain: name}
		}
		if visited[name] {
			return nil
		}
		onPath[name] = true
		for _, dep := range chains[name].DependsOn {
			if _, ok := chains[dep]; !ok {
				return &UndeclaredDependencyError{Chain: name, Dependency: dep}
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		onPath[name] = false
		visited[name] = true
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// validateChain checks invariants local to one chain: output ids are
// unique, the reserved default output id only appears on the final output,
// and declared inputs avoid reserved builtin names. The checks run against
// the normalized tape so the implicitly assigned default id participates.
func validateChain(name string, chain *schema.Chain) error {
	tape := buildTape(chain)

	lastOutput := -1
	for i, instr := range tape {
		if _, ok := instr.(outputInstruction); ok {
			lastOutput = i
		}
	}

	seen := make(map[string]struct{})
	for i, instr := range tape {
		out, ok := instr.(outputInstruction)
		if !ok || out.ID == "" {
			continue
		}
		if _, dup := seen[out.ID]; dup {
			return &DuplicateOutputError{Chain: name, ID: out.ID}
		}
		seen[out.ID] = struct{}{}
		if out.ID == core.DefaultOutputID && i != lastOutput {
			return &MisplacedDefaultOutputError{Chain: name}
		}
	}

	for input := range chain.Inputs {
		if input == core.BuiltinOutputsKey || input == core.BuiltinChainsKey {
			return &ReservedInputNameError{Chain: name, Name: input}
		}
	}
	return nil
}
