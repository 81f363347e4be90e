// Package llm wraps an OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/hal9000y/mail-triage/internal/metrics"
)

const (
	defaultModel            = openai.GPT3Dot5Turbo
	defaultCallTimeout      = 30 * time.Second
	defaultBreakerFailures  = 5
	defaultBreakerCooldown  = 30 * time.Second
	defaultBreakerHalfOpen  = 1
	breakerName             = "completion-api"
	breakerOpenOutcomeLabel = "breaker_open"
)

// ErrNoChoices indicates the API answered without any completion choice.
var ErrNoChoices = errors.New("completion returned no choices")

// Config configures the completion client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	CallTimeout time.Duration
	// BreakerFailures consecutive failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Request is a single system + user message completion.
type Request struct {
	// Kind labels the call in metrics and logs, e.g. "classify".
	Kind        string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Client sends completion requests with a per-call timeout behind a
// circuit breaker. It is safe for concurrent use.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// New creates a Client, filling unset Config fields with defaults.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = defaultBreakerCooldown
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: defaultBreakerHalfOpen,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a caller going away says nothing about the API's health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		timeout: cfg.CallTimeout,
		breaker: breaker,
	}
}

// Model returns the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Complete returns the content of the first completion choice. An empty
// string with a nil error means the model answered with no content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, req)
	})

	outcome := metrics.Outcome(err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		outcome = breakerOpenOutcomeLabel
	}
	metrics.RecordLLMCall(req.Kind, outcome, time.Since(start))

	if err != nil {
		return "", err
	}

	return out.(string), nil
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	temperature := req.Temperature
	if temperature == 0 {
		// zero is dropped by omitempty and the API would use its default
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("api.CreateChatCompletion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
