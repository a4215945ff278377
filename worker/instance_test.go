package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/observability"
	"github.com/langgraph-go/runtime/worker/definition"
	"github.com/langgraph-go/runtime/worker/isolation"
	"github.com/langgraph-go/runtime/worker/witness"
)

// fakeBody is a test double for Body, letting each test control exactly
// what Predict/Act return without spinning up real domain logic.
type fakeBody struct {
	predictResult VoidResult
	predictErr    error
	actResult     ExecuteResult
	actErr        error
	actCalls      int
	predictCalls  int
}

func (b *fakeBody) State(ctx context.Context, workspacePath string) (map[string]any, error) {
	return map[string]any{"workspace": workspacePath}, nil
}
func (b *fakeBody) Pressure(ctx context.Context) (float64, error) { return 0, nil }
func (b *fakeBody) Flow(ctx context.Context, flowCtx map[string]any) ([]FlowOption, error) {
	return nil, nil
}
func (b *fakeBody) Predict(ctx context.Context, action Action, h isolation.Handle) (VoidResult, error) {
	b.predictCalls++
	return b.predictResult, b.predictErr
}
func (b *fakeBody) Act(ctx context.Context, action Action, h isolation.Handle) (ExecuteResult, error) {
	b.actCalls++
	return b.actResult, b.actErr
}
func (b *fakeBody) Evolve(ctx context.Context, feedback map[string]any) error { return nil }

func testDefinition(t *testing.T) *definition.Definition {
	t.Helper()
	return &definition.Definition{
		WorkerID: "file_writer",
		Identity: definition.Identity{Name: "File Writer", SystemPrompt: "writes files"},
		Runtime:  definition.Runtime{WorkspaceTemplate: "/tmp/{journey_id}"},
		TrustLevel: definition.Sandboxed,
		Constraints: []definition.ConstraintSpec{
			{ConstraintID: "max_size", Witness: "file_size", Value: 5, Feedback: "log"},
		},
	}
}

func newTestInstance(t *testing.T, def *definition.Definition, body Body) (*Instance, *isolation.Process) {
	t.Helper()
	backend := isolation.NewProcess()
	reg := witness.NewRegistry()
	sinks := witness.DefaultSinks(observability.NoopLogger{})
	inst := newInstance(def.WorkerID, "journey-1", t.TempDir(), def, backend, body, reg, sinks)
	return inst, backend
}

func TestInstance_VoidReturnsWarningsFromWitnesses(t *testing.T) {
	body := &fakeBody{predictResult: VoidResult{Prediction: "would write file"}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	result, err := inst.Void(context.Background(), Action{"content": "0123456789"})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "max_size", result.Warnings[0].ConstraintID)
	assert.Equal(t, 1, body.predictCalls)
}

func TestInstance_VoidIsSilentWhenWithinConstraints(t *testing.T) {
	body := &fakeBody{predictResult: VoidResult{Prediction: "would write file"}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	result, err := inst.Void(context.Background(), Action{"content": "ab"})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
}

func TestInstance_VoidEnforcesPurityContract(t *testing.T) {
	body := &fakeBody{predictResult: VoidResult{SideEffectOccurred: true}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	_, err := inst.Void(context.Background(), Action{"content": "ab"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrWitnessContract))
}

func TestInstance_VoidContinuesAfterWitnessLookupError(t *testing.T) {
	def := testDefinition(t)
	def.Constraints = []definition.ConstraintSpec{
		{ConstraintID: "broken", Witness: "no_such_witness", Value: nil, Feedback: "log"},
	}
	body := &fakeBody{predictResult: VoidResult{Prediction: "ok"}}
	inst, _ := newTestInstance(t, def, body)

	result, err := inst.Void(context.Background(), Action{"content": "ab"})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "witness execution error")
	assert.Equal(t, 1, body.predictCalls, "predict still runs after a witness lookup failure")
}

func TestInstance_ExecuteEnforcesHonestyContract(t *testing.T) {
	body := &fakeBody{actResult: ExecuteResult{Success: true, SideEffectOccurred: false}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	_, err := inst.Execute(context.Background(), Action{"content": "ab"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrExecuteContract))
}

func TestInstance_ExecuteAllowsFailureWithoutSideEffect(t *testing.T) {
	body := &fakeBody{actResult: ExecuteResult{Success: false, SideEffectOccurred: false, Err: errors.New("disk full")}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	result, err := inst.Execute(context.Background(), Action{"content": "ab"})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestInstance_ExecuteMaterializesIsolationLazily(t *testing.T) {
	body := &fakeBody{actResult: ExecuteResult{Success: true, SideEffectOccurred: true}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	assert.Nil(t, inst.handle)
	_, err := inst.Execute(context.Background(), Action{"content": "ab"})
	require.NoError(t, err)
	assert.NotNil(t, inst.handle)
}

func TestInstance_VoidDoesNotMaterializeIsolation(t *testing.T) {
	body := &fakeBody{predictResult: VoidResult{Prediction: "ok"}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	_, err := inst.Void(context.Background(), Action{"content": "ab"})
	require.NoError(t, err)
	assert.Nil(t, inst.handle, "void must never materialize the isolation boundary")
}

func TestInstance_CleanupIsIdempotent(t *testing.T) {
	body := &fakeBody{actResult: ExecuteResult{Success: true, SideEffectOccurred: true}}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	_, err := inst.Execute(context.Background(), Action{"content": "ab"})
	require.NoError(t, err)

	require.NoError(t, inst.cleanup(context.Background()))
	require.NoError(t, inst.cleanup(context.Background()))
	assert.Nil(t, inst.handle)
}

func TestInstance_VoidInvokesEachWitnessExactlyOnce(t *testing.T) {
	def := testDefinition(t)
	def.Constraints = []definition.ConstraintSpec{
		{ConstraintID: "c1", Witness: "counted", Value: nil, Feedback: "log"},
		{ConstraintID: "c2", Witness: "counted", Value: nil, Feedback: "log"},
	}
	backend := isolation.NewProcess()
	reg := witness.NewRegistry()
	var calls int
	reg.Register("counted", func(ctx context.Context, action map[string]any, value any) ([]witness.Warning, error) {
		calls++
		return nil, nil
	})
	sinks := witness.DefaultSinks(observability.NoopLogger{})
	body := &fakeBody{predictResult: VoidResult{Prediction: "ok"}}
	inst := newInstance(def.WorkerID, "journey-1", t.TempDir(), def, backend, body, reg, sinks)

	_, err := inst.Void(context.Background(), Action{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "each constraint's witness must run exactly once per void call")
}

func TestInstance_ConstraintsReflectsDefinition(t *testing.T) {
	body := &fakeBody{}
	inst, _ := newTestInstance(t, testDefinition(t), body)

	constraints, err := inst.Constraints(context.Background())
	require.NoError(t, err)
	require.Len(t, constraints, 1)
	assert.Equal(t, "max_size", constraints[0].ConstraintID)
	assert.Equal(t, FeedbackLog, constraints[0].FeedbackChannel)
}
