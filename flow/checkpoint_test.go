package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySaverCopiesState(t *testing.T) {
	saver := NewMemorySaver()
	ctx := context.Background()

	state := []byte(`{"a":1}`)
	require.NoError(t, saver.Save(ctx, &Checkpoint{
		ThreadID: "t",
		Cursor:   "x",
		Status:   RunStatusRunning,
		State:    state,
	}))

	// Mutating the caller's buffer must not corrupt the stored snapshot
	state[2] = 'b'

	loaded, err := saver.Load(ctx, "t")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(loaded.State))
}

func TestMemorySaverPreservesCreatedAt(t *testing.T) {
	saver := NewMemorySaver()
	ctx := context.Background()

	created := time.Now().Add(-time.Hour)
	require.NoError(t, saver.Save(ctx, &Checkpoint{
		ThreadID:  "t",
		Cursor:    "a",
		Status:    RunStatusRunning,
		State:     []byte(`{}`),
		CreatedAt: created,
		UpdatedAt: created,
	}))
	require.NoError(t, saver.Save(ctx, &Checkpoint{
		ThreadID:  "t",
		Cursor:    "b",
		Status:    RunStatusCompleted,
		State:     []byte(`{}`),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))

	loaded, err := saver.Load(ctx, "t")
	require.NoError(t, err)
	assert.True(t, loaded.CreatedAt.Equal(created))
	assert.Equal(t, "b", loaded.Cursor)
}

func TestMemorySaverList(t *testing.T) {
	saver := NewMemorySaver()
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, saver.Save(ctx, &Checkpoint{
			ThreadID:  id,
			Cursor:    End,
			Status:    RunStatusCompleted,
			State:     []byte(`{}`),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	cps, err := saver.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cps, 2)
	assert.Equal(t, "c", cps[0].ThreadID)
	assert.Equal(t, "b", cps[1].ThreadID)
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus("running"))
	assert.True(t, IsValidStatus("suspended"))
	assert.True(t, IsValidStatus("completed"))
	assert.True(t, IsValidStatus("failed"))
	assert.False(t, IsValidStatus("paused"))
	assert.False(t, IsValidStatus(""))
}
