package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mealsnap/backend/internal/domain"
	"golang.org/x/time/rate"
)

// systemPrompt instructs the model to answer with a bare JSON array of
// food items. Responses still arrive wrapped in prose often enough that
// parsing goes through ExtractItems rather than a plain Unmarshal.
const systemPrompt = `You are a nutritionist AI that analyzes meals.

Your job is to return ONLY a valid JSON array - NO explanations, markdown, or text.

Each item must follow this format:
[
  {
    "id": "item-1",
    "name": "Pasta",
    "nutrition": { "calories": 400, "protein": 10, "carbs": 50, "fat": 15 },
    "healthy_swap": "Use whole wheat pasta",
    "rating": 6
  }
]

Strict rule: Respond with nothing else except the valid JSON array.`

// Config holds the settings for a Client. API keys are supplied per
// call: which key applies depends on the caller (explicit, brokered or
// environment-configured), so the client holds none of its own.
type Config struct {
	BaseURL     string
	Model       string
	ProModel    string
	RatePerHour int
}

// Client handles communication with the OpenRouter chat-completions API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	proModel    string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new OpenRouter API client.
func NewClient(cfg Config) *Client {
	perHour := cfg.RatePerHour
	if perHour <= 0 {
		perHour = 1000
	}
	// rate.Limit is requests per second; allow short bursts
	limiter := rate.NewLimiter(rate.Limit(float64(perHour)/3600), 10)

	model := cfg.Model
	if model == "" {
		model = "openrouter/optimus-alpha"
	}
	proModel := cfg.ProModel
	if proModel == "" {
		proModel = "openai/gpt-4-vision-preview"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:     cfg.BaseURL,
		model:       model,
		proModel:    proModel,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose logging of raw model responses.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// chat-completions wire types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeText sends free-form meal text for analysis using the given
// API key and returns the detected food items. An empty slice is a
// valid "nothing detected" result.
func (c *Client) AnalyzeText(ctx context.Context, text, apiKey string, pro bool) ([]domain.FoodItem, error) {
	userMsg := chatMessage{
		Role:    "user",
		Content: fmt.Sprintf("Analyze these food items and return JSON as instructed: %s", text),
	}
	return c.analyze(ctx, userMsg, apiKey, pro)
}

// AnalyzeImage sends a base64 data-URL encoded meal photo for analysis
// using the given API key.
func (c *Client) AnalyzeImage(ctx context.Context, imageDataURL, apiKey string, pro bool) ([]domain.FoodItem, error) {
	userMsg := chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: "Analyze this meal image and return JSON as instructed."},
			{Type: "image_url", ImageURL: &imageURL{URL: imageDataURL}},
		},
	}
	return c.analyze(ctx, userMsg, apiKey, pro)
}

func (c *Client) analyze(ctx context.Context, userMsg chatMessage, apiKey string, pro bool) ([]domain.FoodItem, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", domain.ErrAnalysisFailed)
	}

	model := c.model
	if pro {
		model = c.proModel
	}

	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			userMsg,
		},
		Temperature: 0.2,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL, apiKey, payload)
		if err != nil {
			slog.Warn("openrouter request error", "attempt", attempt, "error", err)
			lastErr = err
			if !sleepCtx(ctx, exponentialBackoff(attempt)) {
				return nil, ctx.Err()
			}
			continue
		}

		if status != http.StatusOK {
			slog.Warn("openrouter API error", "attempt", attempt, "status", status)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrAnalysisFailed, status)
			// Client errors (bad key, bad request) will not heal on retry
			if status >= 400 && status < 500 {
				return nil, lastErr
			}
			if !sleepCtx(ctx, exponentialBackoff(attempt)) {
				return nil, ctx.Err()
			}
			continue
		}

		return c.parseBody(body)
	}

	return nil, lastErr
}

// parseBody unwraps the chat-completions envelope and extracts the food
// item array from the assistant's (possibly prose-wrapped) content.
func (c *Client) parseBody(body []byte) ([]domain.FoodItem, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponseFormat, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", domain.ErrInvalidResponseFormat)
	}

	content := resp.Choices[0].Message.Content
	if c.debug {
		slog.Debug("openrouter raw content", "content", content)
	}

	return ExtractItems(content)
}

// doRequest executes an HTTP POST and returns the response body and status.
func (c *Client) doRequest(ctx context.Context, reqURL, apiKey string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("User-Agent", "MealSnap/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	return body, resp.StatusCode, nil
}

// exponentialBackoff returns the retry delay for the given attempt number.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

// sleepCtx sleeps for d or until ctx is done; reports false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
