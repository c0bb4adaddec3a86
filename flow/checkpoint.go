package flow

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/seekwell/seekwell/errors"
)

// RunStatus represents the lifecycle state of a workflow run.
// Transitions: running → suspended → running → completed, or running → failed.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSuspended RunStatus = "suspended"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// IsValidStatus returns true if the status string is a valid RunStatus
func IsValidStatus(s string) bool {
	switch RunStatus(s) {
	case RunStatusRunning, RunStatusSuspended, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// Checkpoint is a durable snapshot of one run: its state, its position in the
// graph, and (while suspended) the prompt awaiting an answer.
// Checkpoints are upserted after every completed step and are never deleted
// by the engine; retention is an external policy.
type Checkpoint struct {
	ThreadID  string          `json:"thread_id"`
	Cursor    string          `json:"cursor"` // next step to execute (or End)
	Status    RunStatus       `json:"status"`
	Prompt    string          `json:"prompt,omitempty"` // set while suspended
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Saver persists checkpoints keyed by thread id.
// Load returns errors.ErrNoSuchThread when the thread id is unknown.
type Saver interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Load(ctx context.Context, threadID string) (*Checkpoint, error)
}

// MemorySaver is an in-memory Saver for tests and ephemeral runs
type MemorySaver struct {
	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
}

// NewMemorySaver creates an empty in-memory checkpoint saver
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{checkpoints: make(map[string]*Checkpoint)}
}

// Save upserts the checkpoint for its thread id
func (m *MemorySaver) Save(ctx context.Context, cp *Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *cp
	stored.State = append(json.RawMessage(nil), cp.State...)
	if existing, ok := m.checkpoints[cp.ThreadID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	m.checkpoints[cp.ThreadID] = &stored
	return nil
}

// Load returns the checkpoint for a thread id
func (m *MemorySaver) Load(ctx context.Context, threadID string) (*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[threadID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoSuchThread, "thread %s", threadID)
	}
	loaded := *cp
	loaded.State = append(json.RawMessage(nil), cp.State...)
	return &loaded, nil
}

// List returns all stored checkpoints, newest first
func (m *MemorySaver) List(ctx context.Context, limit int) ([]*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Checkpoint, 0, len(m.checkpoints))
	for _, cp := range m.checkpoints {
		loaded := *cp
		out = append(out, &loaded)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
