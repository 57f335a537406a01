// Package search is an HTTP client for the unified search backend.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tendant/content-api/pkg/contentapi"
)

// Config for the search client
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Breaker trips after MinRequests calls with at least FailureRatio
	// failures and stays open for OpenTimeout.
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

// Client queries /unified_search.json. Every failure, including an open
// circuit, is reported wrapped in contentapi.ErrUnavailable.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
}

// New creates a search client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("search base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRatio == 0 {
		cfg.FailureRatio = 0.6
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "search",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}, nil
}

type unifiedResponse struct {
	Results []map[string]interface{} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string) ([]contentapi.SearchHit, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doSearch(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %v: %w", query, err, contentapi.ErrUnavailable)
	}
	return result.([]contentapi.SearchHit), nil
}

func (c *Client) doSearch(ctx context.Context, query string) ([]contentapi.SearchHit, error) {
	endpoint := c.baseURL + "/unified_search.json?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded unifiedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	hits := make([]contentapi.SearchHit, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		hits = append(hits, toHit(r))
	}
	return hits, nil
}

func toHit(r map[string]interface{}) contentapi.SearchHit {
	str := func(key string) string {
		s, _ := r[key].(string)
		return s
	}
	hit := contentapi.SearchHit{
		ID:          str("_id"),
		Title:       str("title"),
		Link:        str("link"),
		Description: str("description"),
		Format:      str("format"),
	}
	for k, v := range r {
		switch k {
		case "_id", "title", "link", "description", "format":
			continue
		}
		if hit.Extra == nil {
			hit.Extra = make(map[string]interface{})
		}
		hit.Extra[k] = v
	}
	return hit
}
