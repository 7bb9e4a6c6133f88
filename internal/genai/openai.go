// Package genai wraps the OpenAI chat-completions API behind a small
// generation interface. Transient transport failures are retried here with
// exponential backoff; empty responses surface as ErrNoChoices.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"opentrainer/plan-service/internal/config"
	"opentrainer/plan-service/internal/domain"

	"github.com/google/uuid"
)

// ErrNoChoices marks a response that carried zero candidate outputs. It is
// distinguishable from transport failures (which are retried) and parse
// failures (which are not).
var ErrNoChoices = errors.New("no choices returned from generation service")

const maxRetries = 3

// Client defines the generation operation the orchestrator depends on.
// Generate blocks for the duration of the call including retries; the caller
// decides where to detach it from its own control flow.
type Client interface {
	Generate(ctx context.Context, prompt, userID string) (*domain.GeneratedPlan, error)
}

// --- Wire DTOs ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// OpenAIClient implements Client against the chat-completions endpoint.
type OpenAIClient struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	model          string
	maxTokens      int
	temperature    float64
	initialBackoff time.Duration
	logger         *log.Logger
}

// Option configures optional behaviour for the OpenAIClient.
type Option func(*OpenAIClient)

// WithLogger overrides the logger used to report retries and failures.
func WithLogger(logger *log.Logger) Option {
	return func(c *OpenAIClient) {
		c.logger = logger
	}
}

// WithInitialBackoff overrides the first retry delay (doubles per attempt).
func WithInitialBackoff(d time.Duration) Option {
	return func(c *OpenAIClient) {
		c.initialBackoff = d
	}
}

// NewOpenAIClient creates a generation client from config.
func NewOpenAIClient(cfg config.OpenAIConfig, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		initialBackoff: time.Second,
		logger:         log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate calls the chat-completions endpoint and parses the returned plan
// document. Network errors, 429 and 5xx responses are retried up to three
// times with exponential backoff starting at the initial backoff.
func (c *OpenAIClient) Generate(ctx context.Context, prompt, userID string) (*domain.GeneratedPlan, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	raw, err := c.post(ctx, reqBody, userID)
	if err != nil {
		return nil, err
	}

	var response chatResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, ErrNoChoices
	}

	return parsePlan(response.Choices[0].Message.Content, userID)
}

// post performs the HTTP exchange with the retry policy applied.
func (c *OpenAIClient) post(ctx context.Context, body []byte, userID string) ([]byte, error) {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Printf("WARN: Retrying generation request for user %s (attempt %d/%d): %v",
				userID, attempt, maxRetries, lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build generation request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("generation request failed: %w", err)
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK && readErr == nil:
			return raw, nil
		case readErr != nil:
			lastErr = fmt.Errorf("read generation response: %w", readErr)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("generation service returned status %d", resp.StatusCode)
		default:
			// Client-side errors will not improve with retrying.
			return nil, fmt.Errorf("generation service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
		}
	}

	return nil, fmt.Errorf("generation failed after %d retries: %w", maxRetries, lastErr)
}

// parsePlan decodes the model's JSON document and normalizes identity fields:
// the user id always comes from the triggering event, and a missing plan id
// is replaced with a fresh UUID.
func parsePlan(content, userID string) (*domain.GeneratedPlan, error) {
	var plan domain.GeneratedPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("parse training plan from generation response: %w", err)
	}
	if plan.PlanID == "" {
		plan.PlanID = uuid.NewString()
	}
	plan.UserID = userID
	return &plan, nil
}
