package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates embeddings with the OpenAI embeddings API
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg model.ProviderConfig, httpProxy, httpsProxy, noProxy string) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &http.Transport{Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy)},
	}

	embModel := openai.SmallEmbedding3
	if cfg.Model != "" {
		embModel = openai.EmbeddingModel(cfg.Model)
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      embModel,
		dimensions: cfg.Dimensions,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Embed generates an embedding for the given text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      p.model,
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}

	vec := resp.Data[0].Embedding
	if err := checkDimensions(vec, p.dimensions); err != nil {
		return nil, err
	}
	return vec, nil
}

// Close releases resources
func (p *OpenAIProvider) Close() error {
	return nil
}
