package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrGenerationUnavailable reports that the language model backend failed
// to produce a reply.
var ErrGenerationUnavailable = errors.New("reply generation unavailable")

// ChatMessage is one role-tagged message in a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerationClient calls an OpenAI compatible chat completions API.
type GenerationClient struct {
	base        *BaseClient
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewGenerationClient returns client.
func NewGenerationClient(baseURL, apiKey, model string, maxTokens int, temperature float64, httpClient HTTPDoer, logger *zap.Logger) *GenerationClient {
	return &GenerationClient{
		base:        NewBaseClient(baseURL, httpClient),
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Complete sends the conversation and returns the generated assistant text.
// Transport failures, non-200 statuses, undecodable bodies and empty choice
// lists all map to ErrGenerationUnavailable.
func (c *GenerationClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	status, body, err := c.base.Do(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		c.logger.Warn("generation request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if status != http.StatusOK {
		c.logger.Warn("generation returned unexpected status", zap.Int("status", status))
		return "", fmt.Errorf("%w: status %d", ErrGenerationUnavailable, status)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGenerationUnavailable, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}
