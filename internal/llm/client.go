// Package llm talks to the hosted model service over its chat-completions
// API. One Client serves all three pipeline calls: page classification,
// drawing analysis, and markdown optimization.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/drawmark/drawmark/internal/domain"
	"github.com/drawmark/drawmark/internal/observability"
)

// Client handles communication with the chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	baseWait   time.Duration
	httpClient *http.Client
	log        *observability.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	BaseWait   time.Duration
	Timeout    time.Duration
	Logger     *observability.Logger
}

// NewClient creates a new service client.
func NewClient(opts ClientOptions) *Client {
	log := opts.Logger
	if log == nil {
		log = observability.Nop()
	}
	if opts.BaseWait <= 0 {
		opts.BaseWait = 10 * time.Second
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		maxRetries: opts.MaxRetries,
		baseWait:   opts.BaseWait,
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        log,
	}
}

// Message represents a chat message.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content (text or image).
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents an image data URL in the message.
type ImageURL struct {
	URL string `json:"url"`
}

// Request represents the API request structure.
type Request struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	Stream    bool      `json:"stream"`
}

// Response represents the API response structure.
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// Choice represents a single completion choice.
type Choice struct {
	Delta        Delta  `json:"delta"`
	Message      Delta  `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// Delta represents message content in regular and streaming responses.
type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// TextMessage builds a single-part user message.
func TextMessage(text string) Message {
	return Message{
		Role:    "user",
		Content: []ContentPart{{Type: "text", Text: text}},
	}
}

// VisionMessage builds a user message carrying a prompt and an image file
// encoded as a base64 data URL.
func VisionMessage(prompt, imagePath string) (Message, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return Message{}, fmt.Errorf("failed to read image: %w", err)
	}

	mime := "image/jpeg"
	if strings.EqualFold(filepath.Ext(imagePath), ".png") {
		mime = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(imageData))

	return Message{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
		},
	}, nil
}

// Complete sends a non-streaming request and returns the response text.
func (c *Client) Complete(ctx context.Context, model string, msgs []Message, maxTokens int) (string, error) {
	body, err := json.Marshal(&Request{
		Model:     model,
		Messages:  msgs,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", domain.APIError("failed to marshal request", err)
	}

	resp, err := c.send(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.APIError("failed to read response body", err)
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", domain.APIError("failed to parse API response", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", domain.APIError("no choices in API response", nil)
	}

	content := apiResp.Choices[0].Message.Content
	if content == "" {
		content = apiResp.Choices[0].Delta.Content
	}
	return content, nil
}

// CompleteStream sends a streaming request and returns the accumulated
// response text once the stream finishes.
func (c *Client) CompleteStream(ctx context.Context, model string, msgs []Message, maxTokens int) (string, error) {
	body, err := json.Marshal(&Request{
		Model:     model,
		Messages:  msgs,
		MaxTokens: maxTokens,
		Stream:    true,
	})
	if err != nil {
		return "", domain.APIError("failed to marshal request", err)
	}

	resp, err := c.send(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	text, err := NewStreamParser(resp.Body).Collect()
	if err != nil {
		return "", domain.APIError("failed to parse stream", err)
	}
	return text, nil
}

// send posts the request body with retry and exponential backoff. Throttled
// and transient server responses are retried; everything else surfaces
// immediately.
func (c *Client) send(ctx context.Context, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.baseWait * (1 << (attempt - 1))
			c.log.Warn().Int("attempt", attempt).Dur("wait", wait).Msg("retrying model call")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, domain.APIError("failed to build request", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("X-Title", "drawmark")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = domain.APIError(fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(respBody)), nil)

		if !retryableStatus(resp.StatusCode) {
			return nil, lastErr
		}
	}

	return nil, domain.APIError("request failed after retries", lastErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
