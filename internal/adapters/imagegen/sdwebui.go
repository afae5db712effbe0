package imagegen

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

	"github.com/longregen/lexigen/internal/adapters/retry"
	"github.com/longregen/lexigen/internal/config"
)

const (
	// GenerationTimeout bounds a single txt2img call. Diffusion is slow;
	// without this a stalled backend stalls the whole stage.
	GenerationTimeout = 5 * time.Minute
)

// SDWebUIClient talks to an AUTOMATIC1111-compatible Stable Diffusion web UI.
type SDWebUIClient struct {
	baseURL     string
	apiKey      string
	images      int
	width       int
	height      int
	steps       int
	httpClient  *http.Client
	retryConfig retry.BackoffConfig
}

// NewSDWebUIClient creates a txt2img client. Image count, dimensions and
// step count are fixed per run.
func NewSDWebUIClient(cfg config.GenerationConfig) *SDWebUIClient {
	return &SDWebUIClient{
		baseURL:     strings.TrimSuffix(cfg.URL, "/"),
		apiKey:      cfg.APIKey,
		images:      cfg.Images,
		width:       cfg.Width,
		height:      cfg.Height,
		steps:       cfg.Steps,
		httpClient:  &http.Client{Timeout: GenerationTimeout},
		retryConfig: retry.HTTPConfig(),
	}
}

type txt2imgRequest struct {
	Prompt    string `json:"prompt"`
	BatchSize int    `json:"batch_size"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Steps     int    `json:"steps"`
}

type txt2imgResponse struct {
	Images []string `json:"images"` // base64-encoded PNGs, generation order
}

// Generate synthesizes the configured number of images for one prompt and
// returns the decoded byte buffers in generation order.
func (c *SDWebUIClient) Generate(ctx context.Context, prompt string) ([][]byte, error) {
	req := txt2imgRequest{
		Prompt:    prompt,
		BatchSize: c.images,
		Width:     c.width,
		Height:    c.height,
		Steps:     c.steps,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var respBody []byte
	var statusCode int

	err = retry.WithBackoffHTTP(ctx, c.retryConfig, func() (int, error) {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(body))
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

	var response txt2imgResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Images) != c.images {
		return nil, fmt.Errorf("expected %d images but got %d", c.images, len(response.Images))
	}

	images := make([][]byte, len(response.Images))
	for i, encoded := range response.Images {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode image %d: %w", i, err)
		}
		images[i] = data
	}

	return images, nil
}
