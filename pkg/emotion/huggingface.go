package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mindcare-be/pkg/retry"
)

const DefaultModel = "j-hartmann/emotion-english-distilroberta-base"

// HuggingFaceClassifier calls the hosted text-classification inference API.
type HuggingFaceClassifier struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	retry   retry.Config
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewHuggingFaceClassifier(apiKey, baseURL, model string) *HuggingFaceClassifier {
	if baseURL == "" {
		baseURL = "https://router.huggingface.co/hf-inference/models"
	}
	if model == "" {
		model = DefaultModel
	}
	return &HuggingFaceClassifier{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   retry.DefaultConfig(),
	}
}

func (c *HuggingFaceClassifier) Classify(ctx context.Context, text string) (Label, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("huggingface api key not configured")
	}

	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.model)

	var body []byte
	err = retry.Do(ctx, c.retry, func(int) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("huggingface inference error (status %d): %s", resp.StatusCode, string(body))
		}
		return resp.StatusCode, nil
	})
	if err != nil {
		return "", err
	}

	scores, err := parseScores(body)
	if err != nil {
		return "", err
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return Normalize(best.Label), nil
}

// parseScores accepts both [[{label,score}]] and [{label,score}].
func parseScores(body []byte) ([]scoredLabel, error) {
	var nested [][]scoredLabel
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []scoredLabel
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	return nil, fmt.Errorf("unexpected inference response: %s", string(body))
}
