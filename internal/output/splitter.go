// Package output splits the model response and persists the run artifacts.
package output

import (
	"regexp"
	"strings"
)

// fenceRe matches the first fenced block labeled mermaid. The label match is
// case-insensitive and the interior is matched non-greedily across newlines.
var fenceRe = regexp.MustCompile("(?is)```\\s*mermaid\\s*\\n(.*?)\\n```")

// SplitDiagram extracts the first mermaid-labeled fenced block from text.
// It returns the trimmed block interior and the trimmed remainder with the
// block removed. If no block is found, the diagram is empty and the text is
// returned unchanged. Blocks beyond the first remain embedded in the
// remainder; the upstream output format is a convention, not a guarantee.
func SplitDiagram(text string) (diagram, remainder string) {
	loc := fenceRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text
	}
	diagram = strings.TrimSpace(text[loc[2]:loc[3]])
	remainder = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return diagram, remainder
}
