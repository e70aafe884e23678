// Package imdb is the HTTP adapter over the external title metadata
// provider. It exposes the search and fetch operations the alert engine
// consumes and maps transport-level faults to ErrUnavailable so callers
// can tell a provider outage apart from genuinely missing data.
package imdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound means the provider has no record for the requested id.
	ErrNotFound = errors.New("title not found")
	// ErrUnavailable means the provider could not be reached or failed;
	// the condition is transient and callers should retry on the next
	// cycle rather than treat it as missing data.
	ErrUnavailable = errors.New("metadata provider unavailable")
)

// Client provides access to the metadata provider's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a metadata client. timeout bounds every request; a timeout
// surfaces as ErrUnavailable.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("metadata base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchTitles searches the provider for titles matching the query.
func (c *Client) SearchTitles(ctx context.Context, query string, limit int) ([]TitleSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var payload struct {
		Titles []TitleSummary `json:"titles"`
	}
	if err := c.get(ctx, "/search/titles?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return payload.Titles, nil
}

// FetchTitle fetches main-level detail for a movie or series by id.
func (c *Client) FetchTitle(ctx context.Context, titleID string) (*Title, error) {
	var payload Title
	if err := c.get(ctx, "/titles/"+url.PathEscape(titleID), &payload); err != nil {
		return nil, fmt.Errorf("fetch title %s: %w", titleID, err)
	}
	return &payload, nil
}

// FetchEpisodeList fetches the full season/episode map for a series.
func (c *Client) FetchEpisodeList(ctx context.Context, titleID string) (*EpisodeList, error) {
	var payload EpisodeList
	if err := c.get(ctx, "/titles/"+url.PathEscape(titleID)+"/episodes", &payload); err != nil {
		return nil, fmt.Errorf("fetch episodes for %s: %w", titleID, err)
	}
	return &payload, nil
}

// FetchEpisode fetches a single episode's detail, including its air date
// and next-episode link.
func (c *Client) FetchEpisode(ctx context.Context, episodeID string) (*Episode, error) {
	var payload Episode
	if err := c.get(ctx, "/episodes/"+url.PathEscape(episodeID), &payload); err != nil {
		return nil, fmt.Errorf("fetch episode %s: %w", episodeID, err)
	}
	return &payload, nil
}

// FetchReleaseDates fetches a movie's regional release-date list.
func (c *Client) FetchReleaseDates(ctx context.Context, titleID string) ([]ReleaseDate, error) {
	var payload struct {
		Releases []ReleaseDate `json:"releases"`
	}
	if err := c.get(ctx, "/titles/"+url.PathEscape(titleID)+"/releases", &payload); err != nil {
		return nil, fmt.Errorf("fetch release dates for %s: %w", titleID, err)
	}
	return payload.Releases, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("%w: %v (latency=%v)", ErrUnavailable, err, latency)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d (latency=%v)", ErrUnavailable, resp.StatusCode, latency)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("provider returned status %d (latency=%v)", resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
