package schema

import (
	"testing"

	"github.com/patrickjm/yapl/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleChainDocument(t *testing.T) {
	src := `
provider: openai
model: gpt-4o-mini
inputs:
  name: World
messages:
  - system: You are helpful.
  - user: "Hello {{ .name }}"
  - output
`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.False(t, doc.Multi())
	assert.Equal(t, "openai", doc.Provider)
	assert.Equal(t, "gpt-4o-mini", doc.Model.Name)
	assert.Equal(t, "World", doc.Inputs["name"])

	require.NotNil(t, doc.Chain)
	require.Len(t, doc.Chain.Messages, 3)
	assert.Equal(t, KindMessage, doc.Chain.Messages[0].Kind)
	assert.Equal(t, core.RoleSystem, doc.Chain.Messages[0].Message.Role)
	assert.Equal(t, KindOutput, doc.Chain.Messages[2].Kind)
}

func TestParseMultiChainDocument(t *testing.T) {
	src := `
provider: anthropic
model: claude-sonnet-4-5
chains:
  research:
    chain:
      messages:
        - user: Find facts
        - output
  report:
    dependsOn: [research]
    chain:
      messages:
        - user: Write it up
        - output
`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.True(t, doc.Multi())
	require.Len(t, doc.Chains, 2)
	assert.Empty(t, doc.Chains["research"].DependsOn)
	assert.Equal(t, []string{"research"}, doc.Chains["report"].DependsOn)
	require.NotNil(t, doc.Chains["report"].Chain)
	assert.Len(t, doc.Chains["report"].Chain.Messages, 2)
}

func TestParseInlineChainDefinition(t *testing.T) {
	// A chain definition without the explicit "chain" wrapper is accepted.
	src := `
chains:
  only:
    messages:
      - user: hi
      - output
`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, doc.Chains["only"].Chain)
	assert.Len(t, doc.Chains["only"].Chain.Messages, 2)
}

func TestParseMessageForms(t *testing.T) {
	src := `
messages:
  - output
  - clear
  - user: question
  - assistant: answer
  - system: rules
  - role: tool
    content: result
  - output:
      id: named
      provider: openai
      model: gpt-4o
      tools: [search]
      format: json
  - clear:
      system: true
`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	msgs := doc.Chain.Messages
	require.Len(t, msgs, 8)

	assert.Equal(t, KindOutput, msgs[0].Kind)
	assert.Empty(t, msgs[0].Output.ID)

	assert.Equal(t, KindClear, msgs[1].Kind)
	assert.False(t, msgs[1].Clear.System)

	assert.Equal(t, KindMessage, msgs[2].Kind)
	assert.Equal(t, core.RoleUser, msgs[2].Message.Role)
	assert.Equal(t, "question", msgs[2].Message.Content)

	assert.Equal(t, core.RoleAssistant, msgs[3].Message.Role)
	assert.Equal(t, core.RoleSystem, msgs[4].Message.Role)

	assert.Equal(t, core.RoleTool, msgs[5].Message.Role)
	assert.Equal(t, "result", msgs[5].Message.Content)

	out := msgs[6].Output
	assert.Equal(t, "named", out.ID)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, "gpt-4o", out.Model.Name)
	assert.Equal(t, []string{"search"}, out.Tools)
	assert.True(t, out.Format.JSON)

	assert.Equal(t, KindClear, msgs[7].Kind)
	assert.True(t, msgs[7].Clear.System)
}

func TestParseRejectsUnknownForms(t *testing.T) {
	cases := map[string]string{
		"unknown scalar shorthand": `
messages:
  - flush
`,
		"unknown message key": `
messages:
  - bogus: content
`,
		"unknown role": `
messages:
  - role: narrator
    content: hi
`,
		"multi-key mapping": `
messages:
  - user: hi
    assistant: hello
`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := Parse([]byte(`provider: openai`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "neither messages nor chains")
}

func TestParseRejectsChainWithoutBody(t *testing.T) {
	src := `
chains:
  broken:
`
	_, err := Parse([]byte(src))
	assert.Error(t, err)
}
