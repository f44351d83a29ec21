package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yourorg/internship-platform/internal/config"

	"go.uber.org/zap"
)

// Summarizer turns free-text report content into a short prose summary
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// Noop never produces a summary
type Noop struct{}

// Summarize returns an empty summary
func (Noop) Summarize(context.Context, string) (string, error) {
	return "", nil
}

// Client calls the summarization endpoint over HTTP
type Client struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type summarizeRequest struct {
	Model   string `json:"model,omitempty"`
	Content string `json:"content"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// NewClient creates a new summarization client
func NewClient(cfg config.SummarizerConfig, logger *zap.Logger) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// New returns the HTTP client when summarization is enabled, otherwise Noop
func New(cfg config.SummarizerConfig, logger *zap.Logger) Summarizer {
	if !cfg.Enabled || cfg.URL == "" {
		return Noop{}
	}
	return NewClient(cfg, logger)
}

// Summarize posts content to the endpoint and returns the summary it produced
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	body, err := json.Marshal(summarizeRequest{Model: c.model, Content: content})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Summarizer returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(respBody)))
		return "", fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	var out summarizeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return strings.TrimSpace(out.Summary), nil
}
