// Package local provides inference against an Ollama-compatible local server.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seekwell/seekwell/ai/openrouter"
	"github.com/seekwell/seekwell/errors"
)

// Client talks to an Ollama-compatible /api/generate endpoint.
// It implements the same Chat shape as the OpenRouter client so the two are
// interchangeable behind the provider factory.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// Config holds local inference configuration
type Config struct {
	BaseURL        string
	Model          string
	TimeoutSeconds int
	Logger         *zap.SugaredLogger
}

// NewClient creates a local inference client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Model == "" {
		config.Model = "llama3.2:3b"
	}
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		baseURL:    config.BaseURL,
		model:      config.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("local-inference"),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Chat sends the prompt to the local server and returns the generated text
func (c *Client) Chat(ctx context.Context, req openrouter.ChatRequest) (*openrouter.ChatResponse, error) {
	body := generateRequest{
		Model:  c.model,
		Prompt: req.UserPrompt,
		System: req.SystemPrompt,
		Stream: false,
	}
	if req.JSONMode {
		body.Format = "json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal generate request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create generate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "local inference request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		err := errors.Newf("local inference returned status %d", resp.StatusCode)
		err = errors.WithDetailf(err, "Model: %s", c.model)
		err = errors.WithDetailf(err, "Body: %s", string(raw))
		return nil, err
	}

	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return nil, errors.Wrap(err, "failed to decode generate response")
	}

	c.logger.Debugw("local generation finished",
		"model", c.model,
		"duration", time.Since(start))

	return &openrouter.ChatResponse{Content: generated.Response}, nil
}
