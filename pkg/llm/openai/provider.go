// Package openai talks to any OpenAI-compatible chat completions API, Groq included.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"mindcare-be/pkg/llm"
	"mindcare-be/pkg/retry"
)

const (
	GroqBaseURL  = "https://api.groq.com/openai/v1"
	DefaultModel = "llama-3.3-70b-versatile"
)

type Provider struct {
	client   openai.Client
	apiKey   string
	model    string
	defaults llm.Options
	limiter  *rate.Limiter
	retry    retry.Config
}

var _ llm.LLMProvider = (*Provider)(nil)

type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	MaxTokens      int
	RequestsPerSec float64
}

func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	return &Provider{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithMaxRetries(0),
		),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		defaults: llm.Options{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Model:       cfg.Model,
		},
		limiter: rate.NewLimiter(limit, 1),
		retry:   retry.DefaultConfig(),
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if p.apiKey == "" {
		return "", llm.ErrMissingAPIKey
	}
	opts := llm.Apply(p.defaults, options...)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(opts.Model),
		Messages:    toMessages(history),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	var content string
	err := retry.Do(ctx, p.retry, func(int) (int, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return statusClientClosed, err
		}
		completion, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return statusOf(err), fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return http.StatusOK, errors.New("chat completion returned no choices")
		}
		content = completion.Choices[0].Message.Content
		return http.StatusOK, nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// statusClientClosed marks a cancelled request so retry gives up.
const statusClientClosed = 499

func statusOf(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return statusClientClosed
	}
	return 0
}

func toMessages(history []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case llm.RoleAssistant, "model":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
