package strategy

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// maxBodySize caps every third-party response we read.
	maxBodySize = 5 * 1024 * 1024
	// maxRedirects is the maximum number of redirects to follow.
	maxRedirects = 5
)

// ErrTooManyRedirects is returned when a lookup endpoint redirects in a loop
var ErrTooManyRedirects = errors.New("too many redirects")

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Android 14; Mobile; rv:120.0) Gecko/120.0 Firefox/120.0",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// NewHTTPClient creates the client shared by all web strategies. Attempt
// timeouts come from the request context, not the client.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
		},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// request describes one outbound call to a lookup service
type request struct {
	method  string
	url     string
	form    url.Values // POST body, form-encoded
	referer string
	accept  string
	headers map[string]string
}

// getRequest builds a GET with rawURL passed under param
func getRequest(endpoint, param, rawURL string) (request, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return request{}, fmt.Errorf("bad endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set(param, rawURL)
	u.RawQuery = q.Encode()
	return request{method: http.MethodGet, url: u.String()}, nil
}

// fetch performs req and returns the body of a 2xx response
func fetch(ctx context.Context, client *http.Client, req request) ([]byte, error) {
	var body io.Reader = http.NoBody
	if req.form != nil {
		body = strings.NewReader(req.form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("User-Agent", randomUserAgent())
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	} else {
		httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	}
	if req.form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.referer != "" {
		httpReq.Header.Set("Referer", req.referer)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, httpReq.URL.Host)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("empty response body")
	}
	return data, nil
}

// isHTTPURL reports whether s is an absolute http(s) URL
func isHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
