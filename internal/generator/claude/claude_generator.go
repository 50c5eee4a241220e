package claude

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
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	envAPIKey  = "ANTHROPIC_API_KEY"

	defaultModel = "claude-3-5-sonnet-20240620"
)

const systemPrompt = "Be precise, practical, and production-oriented. Infer platforms, services, and patterns strictly from the provided discovery materials. " +
	"Apply industry best practices appropriate to whatever stack the documents imply (cloud/on-prem, any provider, any workload). " +
	"When information is missing, state reasonable assumptions explicitly. " +
	"Return a single Mermaid diagram first (in a fenced triple-backtick block), then concise sections: Explanation, Assumptions, Constraints."

func init() {
	generator.RegisterProvider("claude", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return New(cfg)
	})
}

// Generator implements port.Generator using the Anthropic Messages API.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a Claude-based generator from a provider config. The API key
// comes from the config or the ANTHROPIC_API_KEY environment variable; a
// missing key is a configuration error raised before any network call.
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
		return nil, fmt.Errorf("claude: missing API key: set ARCHGEN_GENERATOR_API_KEY or %s", envAPIKey)
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
		"model":       model,
		"max_tokens":  maxTokens,
		"temperature": 0.2,
		"system":      systemPrompt,
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
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	// Concatenate text segments; non-text segments are skipped.
	var text bytes.Buffer
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &port.GenerateOutput{
		Raw:        json.RawMessage(body),
		Text:       text.String(),
		ModelUsed:  model,
		StopReason: resp.StopReason,
	}, nil
}
