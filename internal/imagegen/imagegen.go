// Package imagegen talks to an OpenAI compatible image generation endpoint.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "dall-e-2"

	generationsPath = "/images/generations"
)

// ErrNoImage is returned when the API answered without image data.
var ErrNoImage = errors.New("no image in response")

// GenerationRequest represents the request body for the image generations endpoint
type GenerationRequest struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

// GenerationResponse represents the response from the image generations endpoint
type GenerationResponse struct {
	Data []GenerationData `json:"data"`
}

// GenerationData holds one generated image
type GenerationData struct {
	B64JSON       string `json:"b64_json"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Config defines the configuration interface for the image client
type Config interface {
	GetImageBaseURL() string
	GetImageToken() string
	GetImageModel() string
}

// Client generates images over HTTP.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new image client
func NewClient(config Config, opts ...Option) *Client {
	c := &Client{
		config:     config,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate requests one image for prompt at the given pixel size
// (for example "512x512") and returns it base64 encoded.
func (c *Client) Generate(ctx context.Context, prompt, size string) (string, error) {
	baseURL := c.config.GetImageBaseURL()
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	reqBody := GenerationRequest{
		Model:          c.config.GetImageModel(),
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: "b64_json",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+generationsPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.config.GetImageToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("requesting image",
		zap.String("url", req.URL.String()),
		zap.String("model", reqBody.Model),
		zap.String("size", size))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("image API error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	var result GenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return "", ErrNoImage
	}

	return result.Data[0].B64JSON, nil
}
