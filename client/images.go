package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ImageClient talks to an OpenAI-compatible image-generation endpoint.
// The API returns a hosted URL, so every generation is a two-step call:
// generate, then download.
type ImageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	size       string
}

type imageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// NewImageClient creates a client for the given endpoint.
func NewImageClient(baseURL, apiKey string) *ImageClient {
	return &ImageClient{
		// Image generation routinely takes tens of seconds.
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      "dall-e-3",
		size:       "1024x1024",
	}
}

// IsConfigured reports whether an API key is present.
func (c *ImageClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Generate renders the prompt and writes the downloaded image to outputPath.
func (c *ImageClient) Generate(ctx context.Context, prompt, outputPath string) error {
	reqBody := imageGenerationRequest{
		Model:  c.model,
		Prompt: prompt,
		N:      1,
		Size:   c.size,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("image", resp)
	}

	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("read image response: %w", err)
	}

	var parsed imageGenerationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("decode image response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return fmt.Errorf("image response contained no url")
	}
	return c.download(ctx, parsed.Data[0].URL, outputPath)
}

func (c *ImageClient) download(ctx context.Context, imageURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("image download", resp)
	}
	return saveBody(resp, outputPath)
}
