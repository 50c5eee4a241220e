package output_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archgen/internal/output"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriter_WritesAllThreeArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	writer := output.NewWriter(dir)

	raw := json.RawMessage(`{"content":[{"type":"text","text":"hi"}]}`)
	paths, err := writer.Write("graph TD", "Explanation text", "full text", raw)

	require.NoError(t, err)
	assert.Equal(t, "graph TD", readFile(t, paths.Diagram))
	assert.Equal(t, "Explanation text", readFile(t, paths.Explanation))

	// Raw response is pretty-printed but equivalent JSON.
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, paths.RawResponse)), &got))
	assert.Contains(t, readFile(t, paths.RawResponse), "\n  ")
}

func TestWriter_EmptyDiagramWritesSentinel(t *testing.T) {
	writer := output.NewWriter(t.TempDir())

	paths, err := writer.Write("", "Explanation text", "full text", json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Equal(t, "// No mermaid block found\n", readFile(t, paths.Diagram))
	assert.Equal(t, "Explanation text", readFile(t, paths.Explanation))
}

func TestWriter_EmptyRemainderFallsBackToFullText(t *testing.T) {
	writer := output.NewWriter(t.TempDir())

	paths, err := writer.Write("graph TD", "", "the whole response", json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Equal(t, "the whole response", readFile(t, paths.Explanation))
}

func TestWriter_NonJSONRawPassedThrough(t *testing.T) {
	writer := output.NewWriter(t.TempDir())

	paths, err := writer.Write("d", "r", "f", json.RawMessage("not json"))

	require.NoError(t, err)
	assert.Equal(t, "not json", readFile(t, paths.RawResponse))
}

func TestWriter_OverwritesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writer := output.NewWriter(dir)

	_, err := writer.Write("first", "first", "first", json.RawMessage(`{}`))
	require.NoError(t, err)
	paths, err := writer.Write("second", "second", "second", json.RawMessage(`{}`))
	require.NoError(t, err)

	assert.Equal(t, "second", readFile(t, paths.Diagram))
	assert.Equal(t, "second", readFile(t, paths.Explanation))
}

func TestWriter_CreatesNestedOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "outputs")
	writer := output.NewWriter(dir)

	_, err := writer.Write("d", "r", "f", json.RawMessage(`{}`))

	require.NoError(t, err)
	_, statErr := os.Stat(dir)
	assert.NoError(t, statErr)
}
