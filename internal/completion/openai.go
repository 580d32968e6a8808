package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

var errEmptyCompletion = errors.New("completion service returned no choices")

// OpenAIClient implements Gateway against an OpenAI-compatible chat
// completions endpoint.
type OpenAIClient struct {
	client  *resty.Client
	model   string
	circuit *gobreaker.CircuitBreaker
}

// NewOpenAIClient creates a client for the given endpoint. baseURL defaults
// to the public OpenAI API when empty.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "completion",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenAIClient{
		client:  client,
		model:   model,
		circuit: cb,
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the messages and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		var decoded chatCompletionResponse

		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(chatCompletionRequest{
				Model:       c.model,
				Messages:    messages,
				Temperature: 0.2,
			}).
			SetResult(&decoded).
			Post("/chat/completions")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("completion service returned status %d", resp.StatusCode())
		}
		if len(decoded.Choices) == 0 {
			return nil, errEmptyCompletion
		}
		return decoded.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", err
	}

	content, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result type from circuit breaker")
	}
	return content, nil
}
