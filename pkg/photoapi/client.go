// Package photoapi implements the paged asset-fetch collaborator
// against a photo server's HTTP API.
package photoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/markrai/seen-engine/pkg/asset"
)

// Source is what the engine consumes: a paged fetch plus a by-id lookup
// for deep links to assets not in any loaded working set.
type Source interface {
	FetchPage(ctx context.Context, offset, limit int, spec asset.SortSpec, filter asset.FilterCriteria) (asset.Page, error)
	FetchByID(ctx context.Context, id int64) (asset.Asset, error)
}

// Client talks to the photo server.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a client authenticating with an API key header.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				MaxConnsPerHost:    10,
				IdleConnTimeout:    90 * time.Second,
				DisableCompression: false,
			},
		},
		rateLimiter: rate.NewLimiter(rate.Every(10*time.Millisecond), 100), // 100 req/sec
	}
}

// NewOAuthClient creates a client that obtains bearer tokens via the
// OAuth2 client-credentials flow instead of a static API key.
func NewOAuthClient(baseURL string, cc clientcredentials.Config, timeout time.Duration) *Client {
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = timeout
	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Every(10*time.Millisecond), 100),
	}
}

// Ping checks if the photo server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/api/ping", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping failed with status: %d", resp.StatusCode)
	}
	return nil
}

// FetchPage requests one offset window of the matching asset set. The
// server owns the raw ordering; the response carries items in sort
// order and the full matching count at the time of the call.
func (c *Client) FetchPage(ctx context.Context, offset, limit int, spec asset.SortSpec, filter asset.FilterCriteria) (asset.Page, error) {
	endpoint := fmt.Sprintf("%s/api/assets", c.baseURL)

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sortField", string(spec.Field))
	query.Set("sortOrder", string(spec.Order))
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.PersonID != "" {
		query.Set("personId", filter.PersonID)
	}
	if filter.FolderPath != "" {
		query.Set("folder", filter.FolderPath)
	}
	if filter.Favorite {
		query.Set("favorite", "true")
	}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}

	fullURL := fmt.Sprintf("%s?%s", endpoint, query.Encode())

	var page asset.Page
	if err := c.get(ctx, fullURL, &page); err != nil {
		return asset.Page{}, err
	}
	return page, nil
}

// FetchByID retrieves a single asset record.
func (c *Client) FetchByID(ctx context.Context, id int64) (asset.Asset, error) {
	endpoint := fmt.Sprintf("%s/api/assets/%d", c.baseURL, id)

	var a asset.Asset
	if err := c.get(ctx, endpoint, &a); err != nil {
		return asset.Asset{}, fmt.Errorf("failed to get asset %d: %w", id, err)
	}
	return a, nil
}

// Stats reports the server-side asset count, used by the change poller
// to detect background scans adding or removing files.
func (c *Client) Stats(ctx context.Context) (int, error) {
	endpoint := fmt.Sprintf("%s/api/stats", c.baseURL)

	var stats struct {
		Total int `json:"total"`
	}
	if err := c.get(ctx, endpoint, &stats); err != nil {
		return 0, err
	}
	return stats.Total, nil
}

// DeleteAsset asks the server to remove an asset. The engine treats the
// local removal as optimistic until a refetch confirms it.
func (c *Client) DeleteAsset(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("%s/api/assets/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// get performs a GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, fullURL string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	if err := c.rateLimiter.Wait(req.Context()); err != nil {
		return err
	}
	c.setAuth(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("photo server request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request failed: status=%d body=%s", resp.StatusCode, string(data))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
