package flow

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seekwell/seekwell/errors"
)

func newTestEngine(t *testing.T, g *Graph[testState], saver Saver) *Engine[testState] {
	t.Helper()
	require.NoError(t, g.Compile())
	engine, err := NewEngine(g, saver, zap.NewNop().Sugar())
	require.NoError(t, err)
	return engine
}

func TestLinearRunCompletes(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("a", recordStep("a"))
	g.AddStep("b", recordStep("b"))
	g.AddEdge("a", "b").AddEdge("b", End)
	g.SetEntry("a")

	saver := NewMemorySaver()
	engine := newTestEngine(t, g, saver)

	outcome, err := engine.Start(context.Background(), "t1", testState{})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, outcome.Status)
	assert.Equal(t, []string{"a", "b"}, outcome.State.Steps)

	cp, err := saver.Load(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, cp.Status)
	assert.Equal(t, End, cp.Cursor)
}

func TestConditionalRouting(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("decide", recordStep("decide"))
	g.AddStep("left", recordStep("left"))
	g.AddStep("right", recordStep("right"))
	g.AddConditionalEdge("decide", func(s testState) string {
		if s.Answer == "left" {
			return "left"
		}
		return "right"
	})
	g.AddEdge("left", End).AddEdge("right", End)
	g.SetEntry("decide")

	engine := newTestEngine(t, g, NewMemorySaver())

	outcome, err := engine.Start(context.Background(), "go-left", testState{Answer: "left"})
	require.NoError(t, err)
	assert.Equal(t, []string{"decide", "left"}, outcome.State.Steps)

	outcome, err = engine.Start(context.Background(), "go-right", testState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"decide", "right"}, outcome.State.Steps)
}

func TestFanOutMergesAllBatches(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("split", recordStep("split"))
	g.AddStep("joined", recordStep("joined"))
	g.AddBatch("double", func(ctx context.Context, substate any) (any, error) {
		return substate.(int) * 2, nil
	})
	g.AddFanOutEdge("split",
		func(s testState) []Activation {
			acts := make([]Activation, len(s.Values))
			for i, v := range s.Values {
				acts[i] = Activation{Step: "double", Substate: v}
			}
			return acts
		},
		"joined",
		func(s testState, result any) testState {
			s.Values = append(s.Values, result.(int))
			return s
		},
	)
	g.AddEdge("joined", End)
	g.SetEntry("split")

	engine := newTestEngine(t, g, NewMemorySaver())

	outcome, err := engine.Start(context.Background(), "fan", testState{Values: []int{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, outcome.Status)
	// Original values plus one doubled result per batch
	assert.Equal(t, []int{1, 2, 3, 2, 4, 6}, outcome.State.Values)
	assert.Equal(t, []string{"split", "joined"}, outcome.State.Steps)
}

func TestFanOutZeroActivationsSkipsToJoin(t *testing.T) {
	batchCalled := false
	g := NewGraph[testState]()
	g.AddStep("split", recordStep("split"))
	g.AddStep("joined", recordStep("joined"))
	g.AddBatch("work", func(ctx context.Context, substate any) (any, error) {
		batchCalled = true
		return nil, nil
	})
	g.AddFanOutEdge("split",
		func(s testState) []Activation { return nil },
		"joined",
		func(s testState, result any) testState { return s },
	)
	g.AddEdge("joined", End)
	g.SetEntry("split")

	engine := newTestEngine(t, g, NewMemorySaver())

	outcome, err := engine.Start(context.Background(), "empty-fan", testState{})
	require.NoError(t, err)
	assert.False(t, batchCalled)
	assert.Equal(t, []string{"split", "joined"}, outcome.State.Steps)
}

func TestFanOutBarrierWaitsForAllBatches(t *testing.T) {
	var mu sync.Mutex
	completed := 0

	g := NewGraph[testState]()
	g.AddStep("split", recordStep("split"))
	g.AddStep("joined", func(ctx context.Context, s testState) (testState, error) {
		mu.Lock()
		defer mu.Unlock()
		if completed != 5 {
			return s, fmt.Errorf("join ran before barrier: %d of 5 batches done", completed)
		}
		return s, nil
	})
	g.AddBatch("work", func(ctx context.Context, substate any) (any, error) {
		mu.Lock()
		completed++
		mu.Unlock()
		return substate, nil
	})
	g.AddFanOutEdge("split",
		func(s testState) []Activation {
			acts := make([]Activation, 5)
			for i := range acts {
				acts[i] = Activation{Step: "work", Substate: i}
			}
			return acts
		},
		"joined",
		func(s testState, result any) testState { return s },
	)
	g.AddEdge("joined", End)
	g.SetEntry("split")

	engine := newTestEngine(t, g, NewMemorySaver())

	_, err := engine.Start(context.Background(), "barrier", testState{})
	require.NoError(t, err)
}

func TestFailingBatchAbortsWholeRun(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("split", recordStep("split"))
	g.AddStep("joined", recordStep("joined"))
	g.AddBatch("flaky", func(ctx context.Context, substate any) (any, error) {
		if substate.(int) == 2 {
			return nil, errors.New("batch exploded")
		}
		return substate, nil
	})
	g.AddFanOutEdge("split",
		func(s testState) []Activation {
			return []Activation{
				{Step: "flaky", Substate: 1},
				{Step: "flaky", Substate: 2},
				{Step: "flaky", Substate: 3},
			}
		},
		"joined",
		func(s testState, result any) testState {
			s.Values = append(s.Values, result.(int))
			return s
		},
	)
	g.AddEdge("joined", End)
	g.SetEntry("split")

	saver := NewMemorySaver()
	engine := newTestEngine(t, g, saver)

	_, err := engine.Start(context.Background(), "abort", testState{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch exploded")

	// No partial merge: the checkpoint still points at the failed step
	cp, err := saver.Load(context.Background(), "abort")
	require.NoError(t, err)
	assert.Equal(t, "split", cp.Cursor)
	assert.Equal(t, RunStatusRunning, cp.Status)
}

func TestSuspendResumeRoundTrip(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("check", recordStep("check"))
	g.AddSuspend("ask", "what do you want?", func(ctx context.Context, s testState, input string) (testState, error) {
		s.Answer = input
		s.Steps = append(s.Steps, "ask")
		return s, nil
	})
	g.AddStep("finish", recordStep("finish"))
	g.AddConditionalEdge("check", func(s testState) string {
		if s.Answer == "" {
			return "ask"
		}
		return "finish"
	})
	g.AddEdge("ask", "finish").AddEdge("finish", End)
	g.SetEntry("check")

	saver := NewMemorySaver()
	engine := newTestEngine(t, g, saver)

	outcome, err := engine.Start(context.Background(), "hitl", testState{})
	require.NoError(t, err)
	require.True(t, outcome.Suspended())
	assert.Equal(t, "what do you want?", outcome.Prompt)

	cp, err := saver.Load(context.Background(), "hitl")
	require.NoError(t, err)
	assert.Equal(t, RunStatusSuspended, cp.Status)
	assert.Equal(t, "ask", cp.Cursor)
	assert.Equal(t, "what do you want?", cp.Prompt)

	outcome, err = engine.Resume(context.Background(), "hitl", "a remote role")
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, outcome.Status)
	assert.Equal(t, "a remote role", outcome.State.Answer)
	assert.Equal(t, []string{"check", "ask", "finish"}, outcome.State.Steps)
}

func TestStartOnSuspendedThreadReturnsPendingPrompt(t *testing.T) {
	g := suspendingGraph()
	engine := newTestEngine(t, g, NewMemorySaver())

	first, err := engine.Start(context.Background(), "again", testState{})
	require.NoError(t, err)
	require.True(t, first.Suspended())

	second, err := engine.Start(context.Background(), "again", testState{})
	require.NoError(t, err)
	assert.True(t, second.Suspended())
	assert.Equal(t, first.Prompt, second.Prompt)
}

func TestResumeUnknownThread(t *testing.T) {
	engine := newTestEngine(t, suspendingGraph(), NewMemorySaver())

	_, err := engine.Resume(context.Background(), "missing", "hello")
	require.Error(t, err)
	assert.True(t, errors.IsNoSuchThread(err))
}

func TestResumeNotSuspendedThread(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("only", recordStep("only"))
	g.AddEdge("only", End)
	g.SetEntry("only")

	engine := newTestEngine(t, g, NewMemorySaver())

	_, err := engine.Start(context.Background(), "done", testState{})
	require.NoError(t, err)

	_, err = engine.Resume(context.Background(), "done", "too late")
	require.Error(t, err)
	assert.True(t, errors.IsNotSuspended(err))
}

func TestStartContinuesFromInterruptedCheckpoint(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("a", recordStep("a"))
	g.AddStep("b", recordStep("b"))
	g.AddEdge("a", "b").AddEdge("b", End)
	g.SetEntry("a")

	saver := NewMemorySaver()
	// Simulate a crash after step "a": checkpoint sits at cursor "b"
	require.NoError(t, saver.Save(context.Background(), &Checkpoint{
		ThreadID: "crashed",
		Cursor:   "b",
		Status:   RunStatusRunning,
		State:    []byte(`{"steps":["a"]}`),
	}))

	engine := newTestEngine(t, g, saver)

	outcome, err := engine.Start(context.Background(), "crashed", testState{})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, outcome.Status)
	// Step "a" is not re-executed; the run continues from the checkpoint
	assert.Equal(t, []string{"a", "b"}, outcome.State.Steps)
}

func TestStepFailureLeavesLastGoodCheckpoint(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("ok", recordStep("ok"))
	g.AddStep("boom", func(ctx context.Context, s testState) (testState, error) {
		return s, errors.New("kaboom")
	})
	g.AddEdge("ok", "boom").AddEdge("boom", End)
	g.SetEntry("ok")

	saver := NewMemorySaver()
	engine := newTestEngine(t, g, saver)

	_, err := engine.Start(context.Background(), "fail", testState{})
	require.Error(t, err)

	cp, err := saver.Load(context.Background(), "fail")
	require.NoError(t, err)
	// Resume retries from the failed step, not from scratch
	assert.Equal(t, "boom", cp.Cursor)
}

func TestEngineRequiresCompiledGraph(t *testing.T) {
	g := NewGraph[testState]()
	g.AddStep("a", recordStep("a")).AddEdge("a", End)
	g.SetEntry("a")

	_, err := NewEngine(g, NewMemorySaver(), zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiled")
}

func suspendingGraph() *Graph[testState] {
	g := NewGraph[testState]()
	g.AddSuspend("ask", "tell me more", func(ctx context.Context, s testState, input string) (testState, error) {
		s.Answer = input
		return s, nil
	})
	g.AddEdge("ask", End)
	g.SetEntry("ask")
	return g
}
