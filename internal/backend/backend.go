// Package backend calls the generative text service used by enrichment.
// One prompt produces one request; failures are returned, never retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
	Model     string    `json:"model,omitempty"`
}

type client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a Generator posting to cfg.URL.
func New(cfg Config, logger *slog.Logger) Generator {
	return &client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "backend"),
	}
}

func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	body, err := json.Marshal(request{
		Messages:  []message{{Role: "user", Content: prompt}},
		MaxTokens: c.cfg.MaxTokens,
		Model:     c.cfg.Model,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend rejected request", "status", resp.StatusCode)
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	return ResponseText(raw)
}

// ResponseText recovers the generated text from a backend response body.
// It accepts a bare JSON string, or an object carrying the text under
// "response", "result", or "result.response", in that order.
func ResponseText(raw []byte) (string, error) {
	var text *string
	if err := json.Unmarshal(raw, &text); err == nil && text != nil {
		return *text, nil
	}

	var obj struct {
		Response *string        `json:"response"`
		Result   json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidResponse, truncate(raw))
	}

	if obj.Response != nil {
		return *obj.Response, nil
	}

	if len(obj.Result) > 0 {
		if err := json.Unmarshal(obj.Result, &text); err == nil && text != nil {
			return *text, nil
		}
		var nested struct {
			Response *string `json:"response"`
		}
		if err := json.Unmarshal(obj.Result, &nested); err == nil && nested.Response != nil {
			return *nested.Response, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidResponse, truncate(raw))
}

func truncate(raw []byte) string {
	const limit = 512
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
