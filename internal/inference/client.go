package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ctleads/harvester/pkg/logger"
)

// jsonFenceRe strips markdown code fencing some models wrap JSON in.
var jsonFenceRe = regexp.MustCompile("(?m)^```(?:json)?\\s*|\\s*```$")

const maxSnippetLen = 200

// Client is a throttled client for a vision-capable chat-completion
// endpoint. Calls block until the minimum inter-call interval has elapsed;
// there is no queueing or retry.
type Client struct {
	httpClient *resty.Client
	apiURL     string
	model      string

	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration

	logger *logger.Logger
}

// NewClient builds a client enforcing ratePerMin as a hard floor on the
// interval between calls.
func NewClient(apiURL, apiKey, model string, ratePerMin int, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("inference API key is not set")
	}
	if ratePerMin < 1 {
		ratePerMin = 1
	}
	return &Client{
		httpClient: resty.New().
			SetTimeout(90 * time.Second).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Title", "CT Summons Parties Extractor"),
		apiURL:   apiURL,
		model:    model,
		interval: time.Minute / time.Duration(ratePerMin),
		logger:   log,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
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

// Chat sends a system prompt plus a user prompt with one inline PNG and
// returns the raw completion text.
func (c *Client) Chat(ctx context.Context, system, user, imageB64 string, maxTokens int) (string, error) {
	c.throttle()

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: user},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/png;base64," + imageB64}},
			}},
		},
		Temperature: 0,
		MaxTokens:   maxTokens,
	}

	var parsed chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&parsed).
		Post(c.apiURL)

	c.mu.Lock()
	c.lastCall = time.Now()
	c.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("inference HTTP %d: %s", resp.StatusCode(), truncate(resp.String(), 400))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("unexpected inference response: %s", truncate(resp.String(), 600))
	}
	return parsed.Choices[0].Message.Content, nil
}

// throttle blocks until the minimum interval since the previous call has
// elapsed.
func (c *Client) throttle() {
	c.mu.Lock()
	wait := c.interval - time.Since(c.lastCall)
	c.mu.Unlock()
	if wait > 0 {
		time.Sleep(wait)
	}
}

// ParseJSONObject strips any code fencing and unmarshals the payload into a
// generic map. Empty or malformed payloads yield an empty map, never an
// error: callers treat them as negative results.
func (c *Client) ParseJSONObject(content, scope string) map[string]interface{} {
	out := make(map[string]interface{})
	if content == "" {
		c.logger.Warn("Inference returned empty response", "context", scope)
		return out
	}
	cleaned := strings.TrimSpace(jsonFenceRe.ReplaceAllString(strings.TrimSpace(content), ""))
	if cleaned == "" {
		c.logger.Warn("Inference returned no JSON content", "context", scope)
		return out
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		c.logger.Warn("Failed to parse inference JSON",
			"context", scope,
			"snippet", truncate(cleaned, maxSnippetLen),
		)
		return make(map[string]interface{})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
