package ai

import (
	"fmt"

	"onecore/internal/config"
	"onecore/internal/port"
)

// ProviderFactory creates a Completer from the AI config.
type ProviderFactory func(cfg *config.AIConfig) port.Completer

var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewCompleter returns the configured provider wrapped in a circuit breaker.
// It returns nil, nil when no API key is set, which leaves analysis disabled.
func NewCompleter(cfg *config.AIConfig) (port.Completer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
	return NewBreaker(cfg.Provider, factory(cfg), cfg.BreakerFailures, cfg.BreakerOpenTimeout), nil
}
