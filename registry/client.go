// Package registry queries a Go module proxy for published versions.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/viant/gonx/metrics"
	"golang.org/x/mod/module"
	"golang.org/x/time/rate"
)

// DefaultURL is the public Go module proxy
const DefaultURL = "https://proxy.golang.org"

// MaxResponseSize bounds the bytes read from a single proxy response
const MaxResponseSize = 4 << 20

// ErrNotFound is returned when the registry knows no version of the module
var ErrNotFound = errors.New("module version not found")

// Info is the @latest response
type Info struct {
	Version string `json:"Version"`
	Time    string `json:"Time,omitempty"`
	Origin  *struct {
		VCS  string `json:"VCS"`
		URL  string `json:"URL"`
		Ref  string `json:"Ref"`
		Hash string `json:"Hash"`
	} `json:"Origin,omitempty"`
}

// Client is a module proxy client
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option customises the client
type Option func(c *Client)

// WithURL sets the proxy base URL; a bare host gets the https scheme
func WithURL(baseURL string) Option {
	return func(c *Client) {
		if !strings.Contains(baseURL, "://") {
			baseURL = "https://" + baseURL
		}
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the http client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithRateLimit paces requests, limit is requests per second
func WithRateLimit(limit float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// New creates a registry client
func New(opts ...Option) *Client {
	ret := &Client{
		baseURL: DefaultURL,
		http:    http.DefaultClient,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// List returns the versions listed by <module>/@v/list
func (c *Client) List(ctx context.Context, modulePath string) ([]string, error) {
	body, err := c.get(ctx, modulePath, "@v/list")
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, line := range strings.Split(string(body), "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			versions = append(versions, fields[0])
		}
	}
	return versions, nil
}

// Latest returns the version reported by <module>/@latest
func (c *Client) Latest(ctx context.Context, modulePath string) (string, error) {
	body, err := c.get(ctx, modulePath, "@latest")
	if err != nil {
		return "", err
	}
	info := &Info{}
	if err := json.Unmarshal(body, info); err != nil {
		return "", fmt.Errorf("failed to decode latest info of %s: %w", modulePath, err)
	}
	if info.Version == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, modulePath)
	}
	return info.Version, nil
}

// Current returns the highest listed version, falling back to @latest when the list is empty
func (c *Client) Current(ctx context.Context, modulePath string) (string, error) {
	versions, err := c.List(ctx, modulePath)
	if err != nil {
		return "", err
	}
	if latest := Max(versions); latest != "" {
		return latest, nil
	}
	return c.Latest(ctx, modulePath)
}

func (c *Client) get(ctx context.Context, modulePath, endpoint string) ([]byte, error) {
	escaped, err := module.EscapePath(modulePath)
	if err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", modulePath, err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	URL := c.baseURL + "/" + escaped + "/" + endpoint
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.http.Do(request)
	if err != nil {
		metrics.RegistryRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("failed to query %s: %w", URL, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(io.LimitReader(response.Body, MaxResponseSize+1))
	if err == nil && len(body) > MaxResponseSize {
		err = fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	if err != nil {
		metrics.RegistryRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	switch {
	case response.StatusCode == http.StatusNotFound || response.StatusCode == http.StatusGone:
		metrics.RegistryRequests.WithLabelValues(endpoint, "not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, modulePath)
	case response.StatusCode != http.StatusOK:
		metrics.RegistryRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("unexpected status %d from %s", response.StatusCode, URL)
	}
	metrics.RegistryRequests.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}
