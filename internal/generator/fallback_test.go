package generator_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archgen/internal/config"
	"archgen/internal/generator"
	"archgen/internal/generator/openai"
	"archgen/internal/port"
	"archgen/mocks"
)

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := new(mocks.MockGenerator)
	secondary := new(mocks.MockGenerator)
	want := &port.GenerateOutput{Text: "ok"}
	primary.On("Generate", mock.Anything, mock.Anything).Return(want, nil)

	fb := generator.NewFallback(
		[]port.Generator{primary, secondary},
		[]string{"claude", "gemini"}, nil)

	got, err := fb.Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	require.NoError(t, err)
	assert.Same(t, want, got)
	secondary.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallback_FallsThroughOnFailure(t *testing.T) {
	primary := new(mocks.MockGenerator)
	secondary := new(mocks.MockGenerator)
	want := &port.GenerateOutput{Text: "from secondary"}
	primary.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	secondary.On("Generate", mock.Anything, mock.Anything).Return(want, nil)

	fb := generator.NewFallback(
		[]port.Generator{primary, secondary},
		[]string{"claude", "gemini"}, nil)

	got, err := fb.Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestFallback_AllFail(t *testing.T) {
	primary := new(mocks.MockGenerator)
	primary.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	fb := generator.NewFallback([]port.Generator{primary}, []string{"claude"}, nil)

	_, err := fb.Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestFallback_RateLimitOpensCircuit(t *testing.T) {
	primary := new(mocks.MockGenerator)
	secondary := new(mocks.MockGenerator)
	want := &port.GenerateOutput{Text: "from secondary"}
	rlErr := generator.NewRateLimitError("claude", errors.New("429"), 60)
	primary.On("Generate", mock.Anything, mock.Anything).Return(nil, rlErr).Once()
	secondary.On("Generate", mock.Anything, mock.Anything).Return(want, nil).Twice()

	fb := generator.NewFallback(
		[]port.Generator{primary, secondary},
		[]string{"claude", "gemini"}, nil)

	// First call trips the primary's circuit.
	_, err := fb.Generate(context.Background(), port.GenerateInput{Prompt: "p"})
	require.NoError(t, err)

	// Second call must skip the primary entirely.
	_, err = fb.Generate(context.Background(), port.GenerateInput{Prompt: "p"})
	require.NoError(t, err)
	primary.AssertNumberOfCalls(t, "Generate", 1)
}

func TestFallback_ModelOverrideNotForwardedToSecondary(t *testing.T) {
	primary := new(mocks.MockGenerator)
	secondary := new(mocks.MockGenerator)
	primary.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		return in.Model == "claude-3-5-sonnet-20240620"
	})).Return(nil, generator.NewRateLimitError("claude", errors.New("429"), 30))
	secondary.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		return in.Model == ""
	})).Return(&port.GenerateOutput{Text: "ok"}, nil)

	fb := generator.NewFallback(
		[]port.Generator{primary, secondary},
		[]string{"claude", "gemini"}, nil)

	got, err := fb.Generate(context.Background(), port.GenerateInput{
		Prompt: "p",
		Model:  "claude-3-5-sonnet-20240620",
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got.Text)
	primary.AssertExpectations(t)
	secondary.AssertExpectations(t)
}

func TestFallback_SecondaryUsesOwnModel(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		gotModel, _ = reqBody["model"].(string)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	primary := new(mocks.MockGenerator)
	primary.On("Generate", mock.Anything, mock.Anything).
		Return(nil, generator.NewRateLimitError("claude", errors.New("429"), 30))

	secondary, err := openai.NewWithEndpoint(&config.GeneratorProviderConfig{
		Provider: "openai",
		APIKey:   "test-api-key",
	}, server.URL)
	require.NoError(t, err)

	fb := generator.NewFallback(
		[]port.Generator{primary, secondary},
		[]string{"claude", "openai"}, nil)

	got, err := fb.Generate(context.Background(), port.GenerateInput{
		Prompt: "p",
		Model:  "claude-3-5-sonnet-20240620",
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got.Text)
	assert.Equal(t, "gpt-4o", gotModel)
	assert.Equal(t, "gpt-4o", got.ModelUsed)
}

func TestFallback_AllRateLimited(t *testing.T) {
	primary := new(mocks.MockGenerator)
	rlErr := generator.NewRateLimitError("claude", errors.New("429"), 30)
	primary.On("Generate", mock.Anything, mock.Anything).Return(nil, rlErr)

	fb := generator.NewFallback([]port.Generator{primary}, []string{"claude"}, nil)

	_, err := fb.Generate(context.Background(), port.GenerateInput{Prompt: "p"})

	require.Error(t, err)
	var gotRL *generator.RateLimitError
	require.True(t, errors.As(err, &gotRL))
	assert.Equal(t, "all", gotRL.Provider)
}
