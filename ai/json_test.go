package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekwell/seekwell/errors"
)

func TestUnmarshalObjectBare(t *testing.T) {
	var out struct {
		Query string `json:"query"`
	}
	err := UnmarshalObject(`{"query": "Python Developer"}`, &out)
	require.NoError(t, err)
	assert.Equal(t, "Python Developer", out.Query)
}

func TestUnmarshalObjectFenced(t *testing.T) {
	content := "Here is the result:\n```json\n{\"score\": 7}\n```\nLet me know if you need more."
	var out struct {
		Score int `json:"score"`
	}
	require.NoError(t, UnmarshalObject(content, &out))
	assert.Equal(t, 7, out.Score)
}

func TestUnmarshalObjectSurroundedByProse(t *testing.T) {
	content := `Sure! The answer is {"location": "Bangalore"} as requested.`
	var out struct {
		Location string `json:"location"`
	}
	require.NoError(t, UnmarshalObject(content, &out))
	assert.Equal(t, "Bangalore", out.Location)
}

func TestUnmarshalObjectNoJSON(t *testing.T) {
	var out map[string]any
	err := UnmarshalObject("I could not produce an answer, sorry.", &out)
	require.Error(t, err)
	assert.True(t, errors.IsInferenceMalformed(err))
}

func TestUnmarshalObjectInvalidJSON(t *testing.T) {
	var out map[string]any
	err := UnmarshalObject(`{"broken": `, &out)
	require.Error(t, err)
	assert.True(t, errors.IsInferenceMalformed(err))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[1,2,3]`, ExtractJSON("the list: [1,2,3] done"))
}

func TestExtractFencedBlockHTML(t *testing.T) {
	content := "Some intro\n```html\n<!DOCTYPE html><html></html>\n```\ntrailer"
	assert.Equal(t, "<!DOCTYPE html><html></html>", ExtractFencedBlock(content, "html"))
}

func TestExtractFencedBlockMissing(t *testing.T) {
	assert.Equal(t, "", ExtractFencedBlock("no fences here", "html"))
}
