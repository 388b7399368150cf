package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/linkscribe/backend/internal/domain"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.7
	maxAttempts        = 3
)

// Client talks to a chat-completions style text-generation API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	retryDelay  time.Duration
}

// NewClient creates a new generator API client
func NewClient(apiKey, baseURL, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // long-form generation is slow
		},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: defaultTemperature,
		retryDelay:  time.Second,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateTitle produces an article headline for the keyword
func (c *Client) GenerateTitle(ctx context.Context, keyword string) (string, error) {
	out, err := c.complete(ctx,
		"You write engaging product-roundup headlines. Respond with the headline only, no quotes.",
		fmt.Sprintf("Write a headline for a buying guide about: %s", keyword))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(out), `"`), nil
}

// GenerateOutline produces section headings for the article, one per line
func (c *Client) GenerateOutline(ctx context.Context, keyword string, count int) ([]string, error) {
	out, err := c.complete(ctx,
		"You outline product buying guides. Respond with one section heading per line, no numbering, no extra text.",
		fmt.Sprintf("Write %d section headings for a buying guide about: %s", count, keyword))
	if err != nil {
		return nil, err
	}

	var headings []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "0123456789.-) "))
		if line != "" {
			headings = append(headings, line)
		}
	}

	if len(headings) == 0 {
		return nil, fmt.Errorf("%w: outline came back empty", domain.ErrGeneratorFailure)
	}
	return headings, nil
}

// GenerateSection produces the HTML body for one article section
func (c *Client) GenerateSection(ctx context.Context, keyword, heading string) (string, error) {
	return c.complete(ctx,
		"You write buying-guide sections in clean HTML using only <p>, <ul> and <li> tags. No markdown, no headings.",
		fmt.Sprintf("Write 2-3 paragraphs for the section %q of a buying guide about: %s", heading, keyword))
}

// complete sends one chat request, retrying transient failures with a
// linear backoff
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(reqBody))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[GENERATOR] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrGeneratorFailure, err)
			if ctx.Err() != nil {
				return "", lastErr
			}
			time.Sleep(time.Duration(attempt) * c.retryDelay)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Retry throttling and server errors, give up on anything else
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			log.Printf("[GENERATOR] API error (attempt %d) - status: %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrGeneratorFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt) * c.retryDelay)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: status %d, body: %s", domain.ErrGeneratorFailure, resp.StatusCode, body)
		}

		var chat chatResponse
		if err := json.Unmarshal(body, &chat); err != nil {
			return "", fmt.Errorf("%w: decoding response: %v", domain.ErrGeneratorFailure, err)
		}
		if len(chat.Choices) == 0 {
			return "", fmt.Errorf("%w: response had no choices", domain.ErrGeneratorFailure)
		}

		return chat.Choices[0].Message.Content, nil
	}

	return "", lastErr
}
