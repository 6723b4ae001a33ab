package embedding

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/paperscout/internal/cache"
	"github.com/ppiankov/paperscout/internal/model"
)

// NewProvider creates a single provider from its configuration
func NewProvider(ctx context.Context, cfg model.ProviderConfig, httpCfg model.HTTPConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return NewOllamaProvider(cfg, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy), nil

	case "openai":
		return NewOpenAIProvider(cfg, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)

	case "gemini":
		return NewGeminiProvider(ctx, cfg)

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: ollama, openai, gemini)", cfg.Provider)
	}
}

// NewFromConfig builds the run's encoder: primary, optional fallback, and
// memoization when c is non-nil.
func NewFromConfig(ctx context.Context, cfg *model.Config, c cache.Cache, log io.Writer) (Provider, error) {
	if log == nil {
		log = io.Discard
	}
	primary, err := NewProvider(ctx, cfg.Embedding.Primary, cfg.HTTP)
	if err != nil {
		return nil, fmt.Errorf("create primary embedding provider: %w", err)
	}

	var provider Provider = primary
	if fb := cfg.Embedding.Fallback; fb.Provider != "" {
		fallback, err := NewProvider(ctx, fb, cfg.HTTP)
		if err != nil {
			_, _ = fmt.Fprintf(log, "warning: fallback embedding provider disabled: %v\n", err)
		} else {
			provider = NewFallbackProvider(primary, fallback, log)
		}
	}

	if c != nil {
		provider = NewCachedProvider(provider, c)
	}
	return provider, nil
}

// APIKeyFromEnv returns the conventional environment key for a provider
func APIKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}
