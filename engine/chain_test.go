package engine

import (
	"context"
	"testing"

	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/provider"
	"github.com/patrickjm/yapl/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSingleChain(t *testing.T, mock *provider.MockProvider, src string, inputs map[string]any) (*Result, error) {
	t.Helper()
	e := New(func(o *Options) {
		o.Providers = map[string]provider.Provider{"mock": mock}
		o.DefaultProvider = "mock"
		o.DefaultModel = core.Model{Name: "mock-model"}
	})
	doc, err := schema.Parse([]byte(src))
	require.NoError(t, err)
	return e.Run(context.Background(), doc, inputs)
}

func TestChainBasicExecution(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("U", "R")

	result, err := runSingleChain(t, mock, `
messages:
  - system: S
  - user: U
  - output
`, nil)
	require.NoError(t, err)

	require.Len(t, result.Messages, 3)
	assert.Equal(t, core.RoleSystem, result.Messages[0].Role)
	assert.Equal(t, core.RoleUser, result.Messages[1].Role)
	assert.Equal(t, core.RoleAssistant, result.Messages[2].Role)
	assert.Equal(t, "R", result.Messages[2].Content)

	require.NotNil(t, result.Output)
	assert.Equal(t, core.RoleAssistant, result.Output.Role)
	assert.Equal(t, "R", result.Content)
}

func TestChainRendersInputs(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("Hello, Ada!", "Hi!")

	result, err := runSingleChain(t, mock, `
inputs:
  name: World
messages:
  - user: "Hello, {{ .name }}!"
  - output
`, map[string]any{"name": "Ada"})
	require.NoError(t, err)
	// Caller inputs override declared defaults.
	assert.Equal(t, "Hello, Ada!", result.Messages[0].Content)
	assert.Equal(t, "Hi!", result.Content)
}

func TestChainDeclaredInputDefaultApplies(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("Hello, World!", "Hi!")

	result, err := runSingleChain(t, mock, `
inputs:
  name: World
messages:
  - user: "Hello, {{ .name }}!"
  - output
`, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", result.Messages[0].Content)
}

func TestChainStripsOneTrailingNewline(t *testing.T) {
	mock := provider.NewMockProvider()

	result, err := runSingleChain(t, mock, `
messages:
  - user: |
      block scalar line
  - output
`, nil)
	require.NoError(t, err)
	assert.Equal(t, "block scalar line", result.Messages[0].Content)
}

func TestChainForwardOutputReference(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("draft please", "DRAFT")
	mock.AddResponse("refine: DRAFT", "FINAL")

	result, err := runSingleChain(t, mock, `
messages:
  - user: draft please
  - output:
      id: draft
  - user: "refine: {{ .outputs.draft.content }}"
  - output
`, nil)
	require.NoError(t, err)
	assert.Equal(t, "FINAL", result.Content)

	def := result.Chains[core.DefaultChainID]
	assert.Equal(t, "DRAFT", def.Outputs["draft"].Content)
	assert.Equal(t, "FINAL", def.Outputs[core.DefaultOutputID].Content)
}

func TestChainClearKeepsLeadingSystem(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("first", "one")
	mock.AddResponse("second", "two")

	result, err := runSingleChain(t, mock, `
messages:
  - system: persistent
  - user: first
  - output:
      id: a
  - clear
  - user: second
  - output
`, nil)
	require.NoError(t, err)

	// After the clear only the system message survives; the final window is
	// system, second user turn, final assistant turn.
	require.Len(t, result.Messages, 3)
	assert.Equal(t, core.RoleSystem, result.Messages[0].Role)
	assert.Equal(t, "persistent", result.Messages[0].Content)
	assert.Equal(t, "second", result.Messages[1].Content)
	assert.Equal(t, "two", result.Content)

	// Outputs captured before the clear remain addressable.
	def := result.Chains[core.DefaultChainID]
	assert.Equal(t, "one", def.Outputs["a"].Content)
}

func TestChainClearSystemDropsEverything(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("first", "one")
	mock.AddResponse("second", "two")

	result, err := runSingleChain(t, mock, `
messages:
  - system: persistent
  - user: first
  - output:
      id: a
  - clear:
      system: true
  - user: second
  - output
`, nil)
	require.NoError(t, err)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, core.RoleUser, result.Messages[0].Role)
	assert.Equal(t, "second", result.Messages[0].Content)
}

func TestChainClearWithoutSystemMessage(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("first", "one")
	mock.AddResponse("second", "two")

	result, err := runSingleChain(t, mock, `
messages:
  - user: first
  - output:
      id: a
  - clear
  - user: second
  - output
`, nil)
	require.NoError(t, err)
	// No leading system message to preserve: the whole window resets.
	require.Len(t, result.Messages, 2)
	assert.Equal(t, "second", result.Messages[0].Content)
}

func TestChainJSONOutputValue(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("give me json", `{"answer": 42}`)

	result, err := runSingleChain(t, mock, `
messages:
  - user: give me json
  - output:
      format: json
`, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Value)
	parsed, ok := result.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), parsed["answer"])
}

func TestChainInvalidJSONIsNotFatal(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddResponse("give me json", "not json at all")

	result, err := runSingleChain(t, mock, `
messages:
  - user: give me json
  - output:
      format: json
`, nil)
	require.NoError(t, err)
	assert.Equal(t, "not json at all", result.Content)
	assert.Nil(t, result.Value)
}

func TestChainRendersFormatSchema(t *testing.T) {
	mock := provider.NewMockProvider()
	var seenSchema string
	mock.SetHandler(func(req provider.Request) (*provider.Response, error) {
		seenSchema = req.Format.Schema
		return &provider.Response{
			Messages: []core.Message{{Role: core.RoleAssistant, Content: "{}"}},
		}, nil
	})

	_, err := runSingleChain(t, mock, `
inputs:
  field: answer
messages:
  - user: q
  - output:
      format:
        json: true
        schema: '{"required": ["{{ .field }}"]}'
`, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"required": ["answer"]}`, seenSchema)
}

func TestMergeToolNames(t *testing.T) {
	assert.Nil(t, mergeToolNames([]string{"a"}, nil))
	assert.Equal(t, []string{"a", "b"}, mergeToolNames([]string{"a"}, []string{"b"}))
	assert.Equal(t, []string{"a", "b"}, mergeToolNames([]string{"a", "b"}, []string{"b", "a"}))
}

func TestMergeInputs(t *testing.T) {
	merged := mergeInputs(
		map[string]any{"a": 1, "b": 2},
		map[string]any{"b": 3, "c": 4},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, merged)
}
