package generator

import (
	"fmt"

	"archgen/internal/config"
	"archgen/internal/port"
)

// ProviderFactory is a function that creates a Generator from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.Generator, error)

// registry of generator provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a generator provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// New creates a Generator from a provider config using the registered
// factory. An unknown provider is a configuration error.
func New(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
