package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"archgen/internal/config"
	"archgen/internal/generator"
	"archgen/internal/port"
)

const (
	apiURL    = "https://api.openai.com/v1/chat/completions"
	envAPIKey = "OPENAI_API_KEY"

	defaultModel = "gpt-4o"
)

func init() {
	generator.RegisterProvider("openai", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return New(cfg)
	})
}

// Generator implements port.Generator using the OpenAI Chat Completions API.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates an OpenAI-based generator from a provider config.
func New(cfg *config.GeneratorProviderConfig) (*Generator, error) {
	return newGenerator(cfg, apiURL)
}

// NewWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) (*Generator, error) {
	return newGenerator(cfg, endpoint)
}

func newGenerator(cfg *config.GeneratorProviderConfig, endpoint string) (*Generator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: missing API key: set ARCHGEN_GENERATOR_API_KEY or %s", envAPIKey)
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	model := input.Model
	if model == "" {
		model = g.model
	}
	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	reqBody := map[string]interface{}{
		"model":                 model,
		"max_completion_tokens": maxTokens,
		"temperature":           0.2,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": input.Prompt,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, model)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	return &port.GenerateOutput{
		Raw:        json.RawMessage(body),
		Text:       resp.Choices[0].Message.Content,
		ModelUsed:  model,
		StopReason: resp.Choices[0].FinishReason,
	}, nil
}
