package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-ai-planner/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ImageSearchAdapter = (*HTTPImageAdapter)(nil)

// HTTPImageAdapter resolves destination photos from an image-search API
// speaking a simple JSON protocol: GET {base}/search?query=... ->
// {"url": "https://..."}. Failures are reported to the caller, which
// treats them as non-fatal.
type HTTPImageAdapter struct {
	base   string
	apiKey string
	client *http.Client
}

func NewHTTPImageAdapter(baseURL, apiKey string) *HTTPImageAdapter {
	return &HTTPImageAdapter{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *HTTPImageAdapter) GetDestinationImage(ctx context.Context, destination string) (string, error) {
	if a.base == "" {
		return "", errors.New("image search not configured")
	}
	u := a.base + "/search?query=" + url.QueryEscape(destination)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("image search http %d", resp.StatusCode)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.URL == "" {
		return "", errors.New("image search returned no url")
	}
	return payload.URL, nil
}
