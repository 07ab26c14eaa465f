package factory

import (
	"fmt"
	"strings"

	"mindcare-be/pkg/llm"
	"mindcare-be/pkg/llm/huggingface"
	"mindcare-be/pkg/llm/ollama"
	"mindcare-be/pkg/llm/openai"
)

type Config struct {
	Provider       string
	Model          string
	BaseURL        string
	APIKey         string
	Temperature    float64
	MaxTokens      int
	RequestsPerSec float64
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "groq":
		return openai.NewProvider(openai.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        orDefault(cfg.BaseURL, openai.GroqBaseURL),
			Model:          cfg.Model,
			Temperature:    cfg.Temperature,
			MaxTokens:      cfg.MaxTokens,
			RequestsPerSec: cfg.RequestsPerSec,
		}), nil
	case "openai":
		return openai.NewProvider(openai.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        orDefault(cfg.BaseURL, "https://api.openai.com/v1"),
			Model:          orDefault(cfg.Model, "gpt-4o-mini"),
			Temperature:    cfg.Temperature,
			MaxTokens:      cfg.MaxTokens,
			RequestsPerSec: cfg.RequestsPerSec,
		}), nil
	case "ollama":
		return ollama.NewOllamaProvider(ollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
