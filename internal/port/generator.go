package port

import (
	"context"
	"encoding/json"
)

// GenerateInput carries the data needed for a single generation call.
type GenerateInput struct {
	Prompt    string
	Model     string
	MaxTokens int
}

// GenerateOutput contains the result of a generation call.
type GenerateOutput struct {
	// Raw is the provider's response body, passed through unexamined.
	Raw json.RawMessage

	// Text is the concatenation of all text segments in the response.
	// Non-text segments are skipped, not errors.
	Text string

	ModelUsed  string
	StopReason string
}

// Generator abstracts an LLM text-generation provider.
type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
