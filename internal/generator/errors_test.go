package generator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"archgen/internal/generator"
)

func TestNewRateLimitError_DefaultsTo60s(t *testing.T) {
	err := generator.NewRateLimitError("claude", errors.New("boom"), 0)

	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Equal(t, "claude", err.Provider)
}

func TestRateLimitError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := generator.NewRateLimitError("claude", inner, 10)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "retry after 10s")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, generator.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, generator.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 42, generator.ParseRetryAfterHeader("42"))
}
