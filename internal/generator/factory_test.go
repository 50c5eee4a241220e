package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archgen/internal/config"
	"archgen/internal/generator"
	"archgen/internal/port"
	"archgen/mocks"
)

func TestNew_UnknownProvider(t *testing.T) {
	_, err := generator.New(&config.GeneratorProviderConfig{Provider: "nonexistent"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator provider: nonexistent")
}

func TestNew_UsesRegisteredFactory(t *testing.T) {
	want := new(mocks.MockGenerator)
	generator.RegisterProvider("test-provider", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return want, nil
	})

	got, err := generator.New(&config.GeneratorProviderConfig{Provider: "test-provider"})

	require.NoError(t, err)
	assert.Same(t, want, got)
}
