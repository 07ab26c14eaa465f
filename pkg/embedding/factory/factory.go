package factory

import (
	"fmt"
	"strings"

	"mindcare-be/pkg/embedding"
	"mindcare-be/pkg/embedding/jina"
)

// Options carries what each backend may need. Unused fields are ignored.
type Options struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// NewEmbeddingProvider creates an embedding provider based on the provider name
func NewEmbeddingProvider(opts Options) (embedding.Provider, error) {
	switch strings.ToLower(opts.Provider) {
	case "", "ollama":
		return embedding.NewOllamaProvider(opts.BaseURL, opts.Model), nil
	case "openai":
		return embedding.NewOpenAIProvider(opts.APIKey, opts.BaseURL, opts.Model), nil
	case "gemini":
		return embedding.NewGeminiProvider(opts.APIKey), nil
	case "jina":
		return jina.NewJinaProvider(opts.APIKey, opts.BaseURL, opts.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", opts.Provider)
	}
}
