// Package clip scores prompt/image similarity via an HTTP scoring sidecar.
// The sidecar loads model weights on demand; Init and Close make that
// lifecycle explicit so the first Score call carries no hidden latency.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/longregen/lexigen/internal/adapters/circuitbreaker"
	"github.com/longregen/lexigen/internal/adapters/retry"
)

const (
	// ScoreTimeout is the maximum time to wait for one similarity score
	ScoreTimeout = 30 * time.Second
	// LoadTimeout covers model weight loading on the sidecar
	LoadTimeout = 2 * time.Minute
)

// Client scores (prompt, image) pairs against a CLIP-style model.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	retryConfig retry.BackoffConfig
	breaker     *circuitbreaker.CircuitBreaker
}

// NewClient creates a new scoring client
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		httpClient:  &http.Client{Timeout: ScoreTimeout},
		retryConfig: retry.HTTPConfig(),
		breaker:     circuitbreaker.New(5, 30*time.Second), // 5 failures, 30s timeout
	}
}

type loadRequest struct {
	Model string `json:"model"`
}

type scoreRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Image  string `json:"image"` // base64-encoded bytes
}

type scoreResponse struct {
	Score float64 `json:"score"`
	Model string  `json:"model"`
}

// Init asks the sidecar to load the model weights.
func (c *Client) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()

	_, err := c.post(ctx, "/v1/load", loadRequest{Model: c.model})
	if err != nil {
		return fmt.Errorf("load scoring model %q: %w", c.model, err)
	}
	return nil
}

// Score returns the raw similarity for one prompt/image pair.
func (c *Client) Score(ctx context.Context, prompt string, image []byte) (float64, error) {
	var result float64
	err := c.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(ctx, ScoreTimeout)
		defer cancel()

		respBody, err := c.post(ctx, "/v1/score", scoreRequest{
			Model:  c.model,
			Prompt: prompt,
			Image:  base64.StdEncoding.EncodeToString(image),
		})
		if err != nil {
			return err
		}

		var resp scoreResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		result = resp.Score
		return nil
	})
	return result, err
}

// Close releases the loaded model on the sidecar. Errors here are advisory;
// the dataset is already on disk.
func (c *Client) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ScoreTimeout)
	defer cancel()

	if _, err := c.post(ctx, "/v1/unload", loadRequest{Model: c.model}); err != nil {
		return fmt.Errorf("unload scoring model %q: %w", c.model, err)
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var respBody []byte
	var statusCode int

	err = retry.WithBackoffHTTP(ctx, c.retryConfig, func() (int, error) {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return 0, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return 0, fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return statusCode, fmt.Errorf("failed to read body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return statusCode, fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
		}

		return statusCode, nil
	})

	if err != nil {
		return nil, err
	}
	return respBody, nil
}
