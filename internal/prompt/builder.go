// Package prompt renders discovery documents into the generation prompt.
package prompt

import (
	"fmt"
	"strings"

	"archgen/internal/domain"
)

const header = `You are an expert solution architect.
You will be provided with discovery materials (e.g., SOWs, Q&A transcripts, PoCs, architecture notes).
Infer the client's objectives, constraints, platforms, and preferences strictly from the documents provided.
Your task is to:
1. Generate a validated reference architecture tailored to the environment and goals implied by the discovery docs.
2. Provide BOTH a Mermaid diagram (in a fenced ` + "```mermaid" + ` code block) and a written explanation.
3. Highlight assumptions and constraints you needed to make when designing the architecture, citing the missing info.
4. Ensure the output is practical and buildable, and align with best practices appropriate to the identified stack (e.g., AWS/Azure/GCP/on-prem; Kubernetes/OpenShift/AKS/GKE; data/ML/app).

Output format:
- Start with a single fenced ` + "```mermaid" + ` block for the diagram, nothing else interleaved.
- Follow with sections: Explanation, Assumptions, Constraints.
`

// Build renders the fixed instructional header followed by every document in
// order. It is deterministic: the same documents in the same order produce a
// byte-identical prompt. Document contents are included verbatim.
func Build(documents []domain.Document) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n---\n")
	b.WriteString("Discovery Documents (verbatim excerpts):\n")
	for _, doc := range documents {
		fmt.Fprintf(&b, "\n### %s\n\n%s\n", doc.RelPath, doc.Text)
	}
	return b.String()
}
