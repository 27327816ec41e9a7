package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.hackfix.me/hello/web/metrics"
)

// DefaultTimeout bounds a whole upstream request, including reading the body.
const DefaultTimeout = 20 * time.Second

// Client fetches upstream resources.
type Client struct {
	*http.Client
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// New returns a new Client. A zero timeout uses DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:              http.ProxyFromEnvironment,
				DisableCompression: false,
			},
		},
	}
}

// Fetch issues a GET request to rawURL and reads the whole response body.
// Transport failures and non-2xx responses are returned as errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (resp *Response, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing URL: %w", err)
	}

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.UpstreamDuration.WithLabelValues(u.Host, outcome).
			Observe(time.Since(start).Seconds())
	}()

	reqCtx, cancelReqCtx := context.WithCancel(ctx)
	defer cancelReqCtx()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating request: %w", err)
	}

	httpResp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed sending request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, httpResp.Body)
		return nil, fmt.Errorf(
			"request 'GET %s' failed with status %s", u.String(), httpResp.Status)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response body: %w", err)
	}

	return &Response{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
