package embedding

import (
	"context"
	"fmt"

	"github.com/ppiankov/paperscout/internal/model"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "text-embedding-004"

// GeminiProvider generates embeddings with the Gemini API
type GeminiProvider struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, cfg model.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	return &GeminiProvider{
		client:     client,
		model:      modelName,
		dimensions: cfg.Dimensions,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Embed generates an embedding for the given text
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	contents := []*genai.Content{{Parts: []*genai.Part{{Text: text}}}}

	var embedConfig *genai.EmbedContentConfig
	if p.dimensions > 0 {
		dims := int32(p.dimensions)
		embedConfig = &genai.EmbedContentConfig{OutputDimensionality: &dims}
	}

	result, err := p.client.Models.EmbedContent(ctx, p.model, contents, embedConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini embeddings: empty response")
	}

	vec := result.Embeddings[0].Values
	if err := checkDimensions(vec, p.dimensions); err != nil {
		return nil, err
	}
	return vec, nil
}

// Close releases resources
func (p *GeminiProvider) Close() error {
	return nil
}
