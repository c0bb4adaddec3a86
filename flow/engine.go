package flow

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seekwell/seekwell/errors"
)

// Outcome is the result of driving a run: either the thread suspended awaiting
// external input (Prompt is set) or it reached the terminal step (State holds
// the final state).
type Outcome[S any] struct {
	ThreadID string
	Status   RunStatus
	Prompt   string
	State    S
}

// Suspended reports whether the run is paused awaiting input
func (o *Outcome[S]) Suspended() bool {
	return o.Status == RunStatusSuspended
}

// Engine drives runs of a compiled graph, persisting a checkpoint after every
// completed step. The engine owns its checkpoint saver; there is no ambient
// global state. Access to each thread id is serialized so concurrent Start and
// Resume calls on the same thread cannot interleave writes.
type Engine[S any] struct {
	graph  *Graph[S]
	saver  Saver
	logger *zap.SugaredLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-thread-id serialization
}

// NewEngine creates an engine for a compiled graph.
// The graph must have been compiled; NewEngine returns an error otherwise.
func NewEngine[S any](graph *Graph[S], saver Saver, logger *zap.SugaredLogger) (*Engine[S], error) {
	if !graph.compiled {
		return nil, errors.New("graph must be compiled before constructing an engine")
	}
	if saver == nil {
		return nil, errors.New("engine requires a checkpoint saver")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine[S]{
		graph:  graph,
		saver:  saver,
		logger: logger.Named("flow"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Start begins (or continues) a run for the given thread id. A fresh thread
// starts at the entry step with the supplied initial state. A thread with an
// existing non-terminal checkpoint continues from its last position; a
// suspended thread is returned as-is (use Resume to supply the answer).
func (e *Engine[S]) Start(ctx context.Context, threadID string, initial S) (*Outcome[S], error) {
	unlock := e.lockThread(threadID)
	defer unlock()

	cp, err := e.saver.Load(ctx, threadID)
	switch {
	case errors.IsNoSuchThread(err):
		return e.run(ctx, threadID, initial, e.graph.entry, nil)
	case err != nil:
		return nil, errors.Wrapf(err, "failed to load checkpoint for thread %s", threadID)
	}

	switch cp.Status {
	case RunStatusSuspended:
		// Still waiting on input; surface the pending prompt again
		state, derr := decodeState[S](cp.State)
		if derr != nil {
			return nil, derr
		}
		return &Outcome[S]{ThreadID: threadID, Status: RunStatusSuspended, Prompt: cp.Prompt, State: state}, nil
	case RunStatusCompleted:
		state, derr := decodeState[S](cp.State)
		if derr != nil {
			return nil, derr
		}
		return &Outcome[S]{ThreadID: threadID, Status: RunStatusCompleted, State: state}, nil
	default:
		// Interrupted mid-run: continue from the last completed step
		state, derr := decodeState[S](cp.State)
		if derr != nil {
			return nil, derr
		}
		return e.run(ctx, threadID, state, cp.Cursor, nil)
	}
}

// Resume supplies the answer to a suspended thread and continues the run.
// Returns errors.ErrNoSuchThread for unknown threads and
// errors.ErrNotSuspended when the thread is not awaiting input.
func (e *Engine[S]) Resume(ctx context.Context, threadID string, value string) (*Outcome[S], error) {
	unlock := e.lockThread(threadID)
	defer unlock()

	cp, err := e.saver.Load(ctx, threadID)
	if err != nil {
		if errors.IsNoSuchThread(err) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to load checkpoint for thread %s", threadID)
	}
	if cp.Status != RunStatusSuspended {
		return nil, errors.Wrapf(errors.ErrNotSuspended, "thread %s is %s", threadID, cp.Status)
	}

	state, err := decodeState[S](cp.State)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, threadID, state, cp.Cursor, &value)
}

// run walks the graph from cursor until End or suspension.
// resumeValue is consumed by the first suspend step encountered.
func (e *Engine[S]) run(ctx context.Context, threadID string, state S, cursor string, resumeValue *string) (*Outcome[S], error) {
	// Durable marker before the first step executes: a fault mid-step leaves
	// a checkpoint pointing at the step to retry.
	if err := e.checkpoint(ctx, threadID, cursor, statusForCursor(cursor), "", state); err != nil {
		return nil, err
	}

	for cursor != End {
		n, ok := e.graph.nodes[cursor]
		if !ok {
			return nil, errors.Newf("checkpoint for thread %s points at unknown step %q", threadID, cursor)
		}

		e.logger.Debugw("executing step", "thread_id", threadID, "step", cursor)

		var err error
		switch n.kind {
		case kindSuspend:
			if resumeValue == nil {
				if err := e.checkpoint(ctx, threadID, cursor, RunStatusSuspended, n.prompt, state); err != nil {
					return nil, err
				}
				e.logger.Infow("run suspended awaiting input", "thread_id", threadID, "step", cursor)
				return &Outcome[S]{ThreadID: threadID, Status: RunStatusSuspended, Prompt: n.prompt, State: state}, nil
			}
			state, err = n.resume(ctx, state, *resumeValue)
			resumeValue = nil
		case kindStep:
			state, err = n.run(ctx, state)
		default:
			return nil, errors.Newf("step %q is a batch step and cannot be scheduled directly", cursor)
		}
		if err != nil {
			// The previous checkpoint already reflects the last successfully
			// completed step, so a later Start retries from there.
			e.logger.Errorw("step failed", "thread_id", threadID, "step", cursor, "error", err)
			return nil, errors.Wrapf(err, "step %q failed", cursor)
		}

		next, err := e.advance(ctx, threadID, n, &state)
		if err != nil {
			return nil, err
		}

		if err := e.checkpoint(ctx, threadID, next, statusForCursor(next), "", state); err != nil {
			return nil, err
		}
		cursor = next
	}

	e.logger.Infow("run completed", "thread_id", threadID)
	return &Outcome[S]{ThreadID: threadID, Status: RunStatusCompleted, State: state}, nil
}

// advance resolves the outgoing edge of a completed step, executing fan-out
// batches when the edge demands it.
func (e *Engine[S]) advance(ctx context.Context, threadID string, n *node[S], state *S) (string, error) {
	switch n.edge {
	case edgeStatic:
		return n.next, nil
	case edgeConditional:
		next := n.route(*state)
		if next == End {
			return End, nil
		}
		target, ok := e.graph.nodes[next]
		if !ok {
			return "", errors.Newf("step %q routed to unknown step %q", n.name, next)
		}
		if target.kind == kindBatch {
			return "", errors.Newf("step %q routed directly to batch step %q", n.name, next)
		}
		return next, nil
	case edgeFanOut:
		if err := e.runBatches(ctx, threadID, n, state); err != nil {
			return "", err
		}
		return n.join, nil
	default:
		return "", errors.Newf("step %q has no outgoing edge", n.name)
	}
}

// runBatches dispatches every activation concurrently and blocks until all
// complete (barrier). Results merge into state via the declared reducer in
// activation order; any batch failure aborts the whole fan-out with no
// partial merge.
func (e *Engine[S]) runBatches(ctx context.Context, threadID string, n *node[S], state *S) error {
	activations := n.fan(*state)
	if len(activations) == 0 {
		return nil
	}

	for _, act := range activations {
		target, ok := e.graph.nodes[act.Step]
		if !ok || target.kind != kindBatch {
			return errors.Newf("fan-out from %q targets invalid batch step %q", n.name, act.Step)
		}
	}

	e.logger.Infow("dispatching batches", "thread_id", threadID, "from", n.name, "count", len(activations))

	results := make([]any, len(activations))
	errs := make([]error, len(activations))

	var wg sync.WaitGroup
	for i, act := range activations {
		wg.Add(1)
		go func(i int, act Activation) {
			defer wg.Done()
			batch := e.graph.nodes[act.Step].batch
			results[i], errs[i] = batch(ctx, act.Substate)
		}(i, act)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "batch %d of %d (%s) failed", i+1, len(activations), activations[i].Step)
		}
	}

	for _, result := range results {
		*state = n.reduce(*state, result)
	}
	return nil
}

func (e *Engine[S]) checkpoint(ctx context.Context, threadID, cursor string, status RunStatus, prompt string, state S) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal state for checkpoint")
	}
	now := time.Now()
	cp := &Checkpoint{
		ThreadID:  threadID,
		Cursor:    cursor,
		Status:    status,
		Prompt:    prompt,
		State:     raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.saver.Save(ctx, cp); err != nil {
		err = errors.Wrap(err, "failed to save checkpoint")
		err = errors.WithDetailf(err, "Thread ID: %s", threadID)
		err = errors.WithDetailf(err, "Cursor: %s", cursor)
		return err
	}
	return nil
}

// lockThread acquires the per-thread-id mutex, creating it on first use
func (e *Engine[S]) lockThread(threadID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[threadID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func statusForCursor(cursor string) RunStatus {
	if cursor == End {
		return RunStatusCompleted
	}
	return RunStatusRunning
}

func decodeState[S any](raw json.RawMessage) (S, error) {
	var state S
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, errors.Wrap(err, "failed to decode checkpointed state")
	}
	return state, nil
}
