package gemini

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
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	envAPIKey  = "GEMINI_API_KEY"

	defaultModel = "gemini-2.0-flash"
)

func init() {
	generator.RegisterProvider("gemini", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return New(cfg)
	})
}

// Generator implements port.Generator using Google's Gemini API.
type Generator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a Gemini-based generator from a provider config.
func New(cfg *config.GeneratorProviderConfig) (*Generator, error) {
	return newGenerator(cfg, "")
}

// NewWithEndpoint creates a generator pointing at a custom API base URL (for
// testing). The model segment is appended per call.
func NewWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) (*Generator, error) {
	return newGenerator(cfg, endpoint)
}

func newGenerator(cfg *config.GeneratorProviderConfig, endpoint string) (*Generator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key: set ARCHGEN_GENERATOR_API_KEY or %s", envAPIKey)
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = apiBaseURL
	}
	return &Generator{
		apiKey:  apiKey,
		model:   model,
		baseURL: endpoint,
		client:  &http.Client{Timeout: timeout},
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
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"text": input.Prompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": maxTokens,
			"temperature":     0.2,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	// The model is part of the URL, so resolve it per call.
	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.GenerateOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	var text bytes.Buffer
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return &port.GenerateOutput{
		Raw:        json.RawMessage(body),
		Text:       text.String(),
		ModelUsed:  model,
		StopReason: resp.Candidates[0].FinishReason,
	}, nil
}
