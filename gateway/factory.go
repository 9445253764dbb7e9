package gateway

import (
	"context"
	"fmt"
	"os"

	"github.com/healthinsight/disease-insight-api/config"
)

// NewProvider creates the configured provider adapter. The returned
// Provider is the only component that knows the external service's wire
// shape.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.ProviderGemini:
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
}

// getEnvEndpoint allows pointing the OpenAI adapter at a compatible
// endpoint (proxy, mock) without touching the rest of the configuration.
func getEnvEndpoint() string {
	return os.Getenv("OPENAI_ENDPOINT")
}
