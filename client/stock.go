package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StockClient talks to a Pexels-style stock-footage search API.
type StockClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// StockVideo is one search hit with the download link already chosen.
type StockVideo struct {
	ID       int
	Duration float64
	Width    int
	Height   int
	URL      string
}

type stockFile struct {
	Quality string `json:"quality"`
	Link    string `json:"link"`
}

type stockSearchResponse struct {
	Videos []struct {
		ID       int         `json:"id"`
		Duration float64     `json:"duration"`
		Width    int         `json:"width"`
		Height   int         `json:"height"`
		Files    []stockFile `json:"video_files"`
	} `json:"videos"`
}

// NewStockClient creates a client for the given endpoint.
func NewStockClient(baseURL, apiKey string) *StockClient {
	return &StockClient{
		// Downloads of HD clips dominate; give them room.
		httpClient: &http.Client{Timeout: 180 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// IsConfigured reports whether an API key is present.
func (c *StockClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Search queries for footage and returns hits with an HD file link when
// one exists, otherwise the first file offered.
func (c *StockClient) Search(ctx context.Context, query string, perPage int) ([]StockVideo, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stock search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("stock", resp)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var parsed stockSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	videos := make([]StockVideo, 0, len(parsed.Videos))
	for _, v := range parsed.Videos {
		link := pickFileLink(v.Files)
		if link == "" {
			continue
		}
		videos = append(videos, StockVideo{
			ID:       v.ID,
			Duration: v.Duration,
			Width:    v.Width,
			Height:   v.Height,
			URL:      link,
		})
	}
	return videos, nil
}

// Download fetches a previously selected file link to outputPath.
func (c *StockClient) Download(ctx context.Context, fileURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("stock download", resp)
	}
	return saveBody(resp, outputPath)
}

func pickFileLink(files []stockFile) string {
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Quality), "hd") {
			return f.Link
		}
	}
	if len(files) > 0 {
		return files[0].Link
	}
	return ""
}
