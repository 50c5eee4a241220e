package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	diagramFile     = "diagram.mmd"
	explanationFile = "explanation.md"
	rawResponseFile = "full_response.json"

	// Sentinel written when the response carried no mermaid block.
	noDiagramSentinel = "// No mermaid block found\n"
)

// ArtifactPaths names the three files produced by a run.
type ArtifactPaths struct {
	Diagram     string
	Explanation string
	RawResponse string
}

// Writer persists run artifacts under a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer targeting dir. The directory is created on the
// first Write call.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write persists the diagram, the explanation and the raw response. Existing
// files are overwritten. Any write failure is returned with the path of the
// artifact that could not be written.
//
// An empty diagram is replaced by a sentinel comment; an empty remainder
// falls back to the full response text.
func (w *Writer) Write(diagram, remainder, fullText string, raw json.RawMessage) (*ArtifactPaths, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", w.dir, err)
	}

	paths := &ArtifactPaths{
		Diagram:     filepath.Join(w.dir, diagramFile),
		Explanation: filepath.Join(w.dir, explanationFile),
		RawResponse: filepath.Join(w.dir, rawResponseFile),
	}

	diagramOut := diagram
	if diagramOut == "" {
		diagramOut = noDiagramSentinel
	}
	if err := os.WriteFile(paths.Diagram, []byte(diagramOut), 0o644); err != nil {
		return nil, fmt.Errorf("writing diagram %s: %w", paths.Diagram, err)
	}

	explanation := remainder
	if explanation == "" {
		explanation = fullText
	}
	if err := os.WriteFile(paths.Explanation, []byte(explanation), 0o644); err != nil {
		return nil, fmt.Errorf("writing explanation %s: %w", paths.Explanation, err)
	}

	if err := os.WriteFile(paths.RawResponse, indentJSON(raw), 0o644); err != nil {
		return nil, fmt.Errorf("writing raw response %s: %w", paths.RawResponse, err)
	}

	return paths, nil
}

// indentJSON pretty-prints raw if it is valid JSON, and passes it through
// verbatim otherwise. The payload shape belongs to the provider.
func indentJSON(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return raw
	}
	return buf.Bytes()
}
