// Package httpfetch provides the outbound HTTP client used to retrieve
// subscription bodies and rule-set files, with the three proxy modes
// preferences can select: SYSTEM, NONE, or an explicit proxy URL.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// ProxyModeSystem resolves the proxy from the environment
	// (HTTP_PROXY/HTTPS_PROXY/NO_PROXY), the idiomatic Go equivalent of an
	// OS-dependent system proxy.
	ProxyModeSystem = "SYSTEM"
	// ProxyModeNone disables proxying entirely, even if the environment
	// declares one.
	ProxyModeNone = "NONE"

	defaultTimeout = 30 * time.Second
)

// Client fetches subscription and rule-set bodies over HTTP, honoring a
// configured proxy mode per request.
type Client struct {
	timeout time.Duration
}

// New builds a Client. A zero Duration falls back to a 30s timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{timeout: timeout}
}

// Get fetches url using the given proxy mode. proxyMode is one of
// ProxyModeSystem, ProxyModeNone, or an explicit "http(s)://host:port" URL.
// An empty proxyMode is treated as ProxyModeSystem.
func (c *Client) Get(ctx context.Context, target, proxyMode string) ([]byte, error) {
	transport, err := c.transportFor(proxyMode)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: %w", err)
	}

	httpClient := &http.Client{Timeout: c.timeout, Transport: transport}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", "subconverter")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpfetch: get %s: status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("httpfetch: read %s: %w", target, err)
	}
	return body, nil
}

func (c *Client) transportFor(proxyMode string) (*http.Transport, error) {
	switch proxyMode {
	case "", ProxyModeSystem:
		return &http.Transport{Proxy: http.ProxyFromEnvironment}, nil
	case ProxyModeNone:
		return &http.Transport{Proxy: nil}, nil
	default:
		u, err := url.Parse(proxyMode)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", proxyMode, err)
		}
		return &http.Transport{Proxy: http.ProxyURL(u)}, nil
	}
}
