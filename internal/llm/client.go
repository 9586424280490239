// Package llm talks to the external completion boundary and coerces its
// free-form responses into structured values.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/courseforge/course-engine/internal/domain"
	"github.com/courseforge/course-engine/internal/observability"
)

const (
	defaultTimeout    = 5 * time.Minute
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
)

// Completer issues a single structured completion request. It is the seam
// the rest of the pipeline mocks in tests.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// Config holds the completion boundary settings. Everything the client needs
// is passed here at construction; nothing is read from ambient state.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// Client implements Completer over an OpenAI-style chat-completions endpoint
// with bearer-token auth and bounded exponential-backoff retry on rate limits.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *observability.Logger

	// sleep is swapped out in tests to observe retry delays.
	sleep func(ctx context.Context, d time.Duration) error
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new completion client.
func NewClient(cfg Config, logger *observability.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.WithComponent("llm"),
		sleep:      sleepContext,
	}
}

// Complete sends one prompt to the completion boundary and returns the
// response text. Rate-limit responses are retried up to MaxRetries attempts
// with delay = BaseDelay * 2^attempt between calls; any other failure fails
// immediately. The returned error always reports attempt count and upstream
// status.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", domain.ModelError("failed to marshal completion request", err, 0, 0)
	}

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		status, respBody, err := c.send(ctx, body)
		if err != nil {
			return "", domain.ModelError("completion request failed", err, attempt+1, 0)
		}

		if status == http.StatusOK {
			return parseContent(respBody, attempt+1)
		}

		if status != http.StatusTooManyRequests {
			return "", domain.ModelError("completion endpoint rejected request", nil, attempt+1, status)
		}

		if attempt == c.cfg.MaxRetries-1 {
			break
		}

		delay := c.cfg.BaseDelay * (1 << attempt)
		c.logger.Warn().
			Int("attempt", attempt+1).
			Int("max_retries", c.cfg.MaxRetries).
			Dur("delay", delay).
			Msg("rate limited by completion endpoint, backing off")

		if err := c.sleep(ctx, delay); err != nil {
			return "", domain.ModelError("completion canceled during backoff", err, attempt+1, status)
		}
	}

	return "", domain.ModelError("rate limit retries exhausted", nil, c.cfg.MaxRetries, http.StatusTooManyRequests)
}

func (c *Client) send(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}

func parseContent(body []byte, attempts int) (string, error) {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", domain.ModelError("failed to decode completion response", err, attempts, http.StatusOK)
	}
	if len(parsed.Choices) == 0 {
		return "", domain.ModelError("completion response contained no choices", nil, attempts, http.StatusOK)
	}
	return parsed.Choices[0].Message.Content, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Completer = (*Client)(nil)

// String summarizes the client config for startup logs without the key.
func (c *Client) String() string {
	return fmt.Sprintf("llm.Client{model=%s, timeout=%s, retries=%d}", c.cfg.Model, c.cfg.Timeout, c.cfg.MaxRetries)
}
