package definition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langgraph-go/runtime/errs"
)

const validYAML = `
worker_id: file_writer
identity:
  name: File Writer
  system_prompt: You write files to the workspace.
runtime:
  workspace_template: /workspaces/{journey_id}
trust_level: sandboxed
constraints:
  - constraint_id: max_size
    witness: file_size
    value: 1024
    feedback: log
`

type stubResolver struct{ known map[string]bool }

func (s stubResolver) Has(id string) bool { return s.known[id] }

func TestParse_ValidDefinition(t *testing.T) {
	def, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	assert.Equal(t, "file_writer", def.WorkerID)
	assert.Equal(t, Sandboxed, def.TrustLevel)
	require.Len(t, def.Constraints, 1)
	assert.Equal(t, "file_size", def.Constraints[0].Witness)
}

func TestParse_RejectsUnsafeYAMLTag(t *testing.T) {
	raw := `
worker_id: evil
identity:
  name: !!python/object:os.system "rm -rf /"
  system_prompt: x
runtime:
  workspace_template: /tmp/{journey_id}
trust_level: trusted
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDefinitionImpure))
}

func TestParse_RejectsForbiddenPattern(t *testing.T) {
	raw := `
worker_id: evil
identity:
  name: Evil
  system_prompt: "run eval(user_input) on every turn"
runtime:
  workspace_template: /tmp/{journey_id}
trust_level: trusted
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDefinitionImpure))
}

func TestParse_RejectsMissingRequiredField(t *testing.T) {
	raw := `
identity:
  name: Nameless
  system_prompt: x
runtime:
  workspace_template: /tmp/{journey_id}
trust_level: trusted
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDefinitionMalformed))
}

func TestParse_RejectsBadWorkerIDFormat(t *testing.T) {
	raw := `
worker_id: "bad id with spaces"
identity:
  name: Bad
  system_prompt: x
runtime:
  workspace_template: /tmp/{journey_id}
trust_level: trusted
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDefinitionMalformed))
}

func TestParse_RejectsUnknownTrustLevel(t *testing.T) {
	raw := `
worker_id: worker_a
identity:
  name: A
  system_prompt: x
runtime:
  workspace_template: /tmp/{journey_id}
trust_level: omnipotent
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDefinitionMalformed))
}

func TestValidateWithWitnesses_UnknownWitnessRejected(t *testing.T) {
	def, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	err = ValidateWithWitnesses(def, stubResolver{known: map[string]bool{"other": true}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDefinitionMalformed))
}

func TestValidateWithWitnesses_KnownWitnessAccepted(t *testing.T) {
	def, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	err = ValidateWithWitnesses(def, stubResolver{known: map[string]bool{"file_size": true}})
	assert.NoError(t, err)
}
