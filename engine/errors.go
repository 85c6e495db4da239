package engine

import "fmt"

// CircularDependencyError reports a dependency cycle between chains. Chain
// names the chain at which the cycle was entered.
type CircularDependencyError struct {
	Chain string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected at chain %q", e.Chain)
}

// UndeclaredDependencyError reports a dependency on a chain that is not
// declared in the document.
type UndeclaredDependencyError struct {
	Chain      string // chain that declared the dependency
	Dependency string // missing chain
}

func (e *UndeclaredDependencyError) Error() string {
	return fmt.Sprintf("chain %q depends on undeclared chain %q", e.Chain, e.Dependency)
}

// DuplicateOutputError reports two outputs in the same chain sharing an id.
type DuplicateOutputError struct {
	Chain string
	ID    string
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("chain %q declares duplicate output id %q", e.Chain, e.ID)
}

// MisplacedDefaultOutputError reports use of the reserved default output
// id on an output that is not the chain's last.
type MisplacedDefaultOutputError struct {
	Chain string
}

func (e *MisplacedDefaultOutputError) Error() string {
	return fmt.Sprintf("chain %q uses the default output id on a non-final output", e.Chain)
}

// ReservedInputNameError reports a declared chain input colliding with a
// reserved builtin context key.
type ReservedInputNameError struct {
	Chain string
	Name  string
}

func (e *ReservedInputNameError) Error() string {
	return fmt.Sprintf("chain %q declares input %q, which is a reserved builtin name", e.Chain, e.Name)
}

// ProviderNotFoundError reports a provider name with no registered
// provider.
type ProviderNotFoundError struct {
	Name string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider %q is not registered", e.Name)
}

// NoProviderConfiguredError reports that no provider name was resolvable
// at any configuration level.
type NoProviderConfiguredError struct{}

func (e *NoProviderConfiguredError) Error() string {
	return "no provider configured for output"
}

// NoModelConfiguredError reports that no model was resolvable at any
// configuration level.
type NoModelConfiguredError struct{}

func (e *NoModelConfiguredError) Error() string {
	return "no model configured for output"
}

// ToolNotFoundError reports a configured tool name with no registered
// tool.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q is not registered", e.Name)
}

// UnknownToolError reports a model-requested tool absent from the
// effective tool set. Unlike argument or execution failures this is fatal:
// it indicates the tool registry itself is misconfigured.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("model requested unknown tool %q", e.Name)
}

// ToolRoundLimitError reports that the tool-call loop exceeded the
// configured maximum number of rounds.
type ToolRoundLimitError struct {
	Limit int
}

func (e *ToolRoundLimitError) Error() string {
	return fmt.Sprintf("tool-call loop exceeded %d rounds", e.Limit)
}
