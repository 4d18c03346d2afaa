package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

const (
	apiURL = "https://api.x.ai/v1/chat/completions"

	providerName = "grok"
)

// Client is the text-completion collaborator. The assistant treats it as
// opaque: prompts in, text out, failures never crash a turn.
type Client struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	baseURL     string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
}

// NewClient creates a Grok chat-completion client
func NewClient(apiKey, model string, maxTokens int, temperature float64) *Client {
	return &Client{
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		baseURL:     apiURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		breaker:     gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: providerName}),
	}
}

// NewClientWithBase creates a client against a custom endpoint (tests).
func NewClientWithBase(apiKey, model string, baseURL string) *Client {
	c := NewClient(apiKey, model, 1000, 0.7)
	c.baseURL = baseURL
	return c
}

// Enabled reports whether the provider is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Complete sends a system+user prompt pair and returns the completion text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", models.NewProviderError(providerName, models.ErrConfig, "API key is missing", nil)
	}

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", models.NewProviderError(providerName, models.ErrInvalidInput, "failed to marshal request", err)
	}

	startTime := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonData))
		if err != nil {
			return nil, models.NewProviderError(providerName, models.ErrInvalidInput, "failed to create request", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, transportError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, statusError(resp.StatusCode, string(body))
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", models.NewProviderError(providerName, models.ErrConnection, "circuit breaker open", err)
		}
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(result.([]byte), &parsed); err != nil {
		return "", models.NewProviderError(providerName, models.ErrMalformed, "failed to decode completion", err)
	}
	if len(parsed.Choices) == 0 {
		return "", models.NewProviderError(providerName, models.ErrMalformed, "no choices in response", nil)
	}

	logger.Debug("grok completion",
		zap.Duration("latency", time.Since(startTime)),
		zap.Int("chars", len(parsed.Choices[0].Message.Content)),
	)

	return parsed.Choices[0].Message.Content, nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	return models.NewProviderError(providerName, models.ErrConnection, "cannot connect to Grok", err)
}

func statusError(code int, body string) error {
	switch {
	case code == http.StatusTooManyRequests:
		return models.NewProviderError(providerName, models.ErrRateLimited, "rate limit exceeded", nil)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return models.NewProviderError(providerName, models.ErrUnauthorized, "unauthorized, check your API key", nil)
	case code >= 500:
		return models.NewProviderError(providerName, models.ErrServer, "server error", nil)
	default:
		return models.NewProviderError(providerName, models.ErrMalformed, fmt.Sprintf("API error %d: %s", code, body), nil)
	}
}
