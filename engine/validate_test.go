package engine

import (
	"testing"

	"github.com/patrickjm/yapl/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *schema.Document {
	t.Helper()
	doc, err := schema.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	doc := mustParse(t, `
chains:
  a:
    chain:
      messages:
        - user: hi
        - output
  b:
    dependsOn: [a]
    chain:
      messages:
        - user: bye
        - output
`)
	assert.NoError(t, validateDocument(doc))
}

func TestValidateDetectsCycle(t *testing.T) {
	doc := mustParse(t, `
chains:
  a:
    dependsOn: [b]
    chain:
      messages:
        - output
  b:
    dependsOn: [a]
    chain:
      messages:
        - output
`)
	err := validateDocument(doc)
	var cycleErr *CircularDependencyError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestValidateDetectsSelfCycle(t *testing.T) {
	doc := mustParse(t, `
chains:
  a:
    dependsOn: [a]
    chain:
      messages:
        - output
`)
	err := validateDocument(doc)
	var cycleErr *CircularDependencyError
	if assert.ErrorAs(t, err, &cycleErr) {
		assert.Equal(t, "a", cycleErr.Chain)
	}
}

func TestValidateDetectsUndeclaredDependency(t *testing.T) {
	doc := mustParse(t, `
chains:
  a:
    dependsOn: [ghost]
    chain:
      messages:
        - output
`)
	err := validateDocument(doc)
	var depErr *UndeclaredDependencyError
	if assert.ErrorAs(t, err, &depErr) {
		assert.Equal(t, "a", depErr.Chain)
		assert.Equal(t, "ghost", depErr.Dependency)
	}
}

func TestValidateDetectsDuplicateOutputID(t *testing.T) {
	doc := mustParse(t, `
messages:
  - user: one
  - output:
      id: same
  - user: two
  - output:
      id: same
`)
	err := validateDocument(doc)
	var dupErr *DuplicateOutputError
	if assert.ErrorAs(t, err, &dupErr) {
		assert.Equal(t, "same", dupErr.ID)
	}
}

func TestValidateDetectsMisplacedDefaultID(t *testing.T) {
	doc := mustParse(t, `
messages:
  - user: one
  - output:
      id: default
  - user: two
  - output:
      id: final
`)
	err := validateDocument(doc)
	var misplacedErr *MisplacedDefaultOutputError
	assert.ErrorAs(t, err, &misplacedErr)
}

func TestValidateDetectsImplicitDefaultCollision(t *testing.T) {
	// The trailing instruction is not an output, so an implicit output is
	// appended and receives the reserved default id. That collides with the
	// explicit default id used earlier.
	doc := mustParse(t, `
messages:
  - user: one
  - output:
      id: default
  - user: trailing
`)
	err := validateDocument(doc)
	assert.Error(t, err)
}

func TestValidateDetectsReservedInputNames(t *testing.T) {
	for _, reserved := range []string{"outputs", "chains"} {
		doc := mustParse(t, `
inputs:
  `+reserved+`: collision
messages:
  - output
`)
		err := validateDocument(doc)
		var reservedErr *ReservedInputNameError
		if assert.ErrorAs(t, err, &reservedErr) {
			assert.Equal(t, reserved, reservedErr.Name)
		}
	}
}

func TestValidateAllowsDefaultIDOnFinalOutput(t *testing.T) {
	doc := mustParse(t, `
messages:
  - user: one
  - output:
      id: draft
  - user: two
  - output:
      id: default
`)
	assert.NoError(t, validateDocument(doc))
}
