// Package omdb is a small client for the OMDb metadata API.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public OMDb endpoint.
const DefaultBaseURL = "https://www.omdbapi.com/"

// notAvailable is OMDb's placeholder for empty fields.
const notAvailable = "N/A"

// ErrNotFound is returned when OMDb answers with Response "False".
var ErrNotFound = errors.New("omdb: title not found")

// Title is the subset of an OMDb title record the catalog uses.
type Title struct {
	IMDbID   string `json:"imdbID"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Poster   string `json:"Poster"`
	Plot     string `json:"Plot"`
	Runtime  string `json:"Runtime"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// PosterURL returns the poster, or "" when OMDb has none.
func (t *Title) PosterURL() string { return available(t.Poster) }

// Summary returns the plot, or "" when OMDb has none.
func (t *Title) Summary() string { return available(t.Plot) }

func available(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

//go:generate mockgen -destination=mock/lookup.go -package=mock . Lookup

// Lookup defines the OMDb operations used by enrichment.
type Lookup interface {
	LookupID(ctx context.Context, title string) (string, error)
	Metadata(ctx context.Context, imdbID string) (*Title, error)
}

// Client provides access to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Lookup = (*Client)(nil)

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

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit paces outbound calls to rps requests per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// LookupID resolves a title to its IMDb identifier.
func (c *Client) LookupID(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("title must not be empty")
	}
	payload, err := c.get(ctx, "t", title)
	if err != nil {
		return "", err
	}
	id := available(payload.IMDbID)
	if id == "" {
		return "", fmt.Errorf("%w: %q has no imdb id", ErrNotFound, title)
	}
	return id, nil
}

// Metadata fetches the title record for an IMDb identifier.
func (c *Client) Metadata(ctx context.Context, imdbID string) (*Title, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id must not be empty")
	}
	return c.get(ctx, "i", imdbID)
}

func (c *Client) get(ctx context.Context, param, value string) (*Title, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for omdb rate limit: %w", err)
		}
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set(param, value)
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Title
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if strings.EqualFold(payload.Response, "False") {
		return nil, fmt.Errorf("%w: %s=%s: %s", ErrNotFound, param, value, payload.Error)
	}
	return &payload, nil
}
