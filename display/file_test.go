package display

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWritesResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "index.html")
	sink := NewFileSink(path)

	err := sink.Deliver(context.Background(), &Report{Result: "<html>hi</html>"})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>hi</html>", string(content))
}

func TestFileSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	sink := NewFileSink(path)

	require.NoError(t, sink.Deliver(context.Background(), &Report{Result: "first"}))
	require.NoError(t, sink.Deliver(context.Background(), &Report{Result: "second"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}
