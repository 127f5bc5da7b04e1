// Package upstream is the outbound HTTP client used for image fetches and the game metadata API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// ErrStatus is wrapped by errors describing a non-2xx upstream response.
var ErrStatus = errors.New("upstream returned non-success status")

const maxRedirects = 5

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

type Client struct {
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
	userAgent      string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxBodySize(n int) Option {
	return func(c *Client) { c.http.MaxResponseBodySize = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &fasthttp.Client{
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxConnsPerHost:     64,
			MaxResponseBodySize: 10 << 20,
		},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
		userAgent:      "squadup/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is a fully buffered upstream response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	URL         string // final URL after redirects
}

// StatusError describes a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status=%d body=%s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Get fetches rawURL once, following up to five redirects, and returns the final response
// whatever its status. The deadline is the earlier of ctx's and the client timeout.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	deadline := c.computeDeadline(ctx)
	current := rawURL
	for hop := 0; ; hop++ {
		req.Reset()
		resp.Reset()
		req.Header.SetMethod(fasthttp.MethodGet)
		req.SetRequestURI(current)
		c.applyHeaders(req)

		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("request %s: %w", current, ctxErr)
			}
			return nil, fmt.Errorf("request %s: %w", current, err)
		}

		if !fasthttp.StatusCodeIsRedirect(resp.StatusCode()) {
			break
		}
		if hop >= maxRedirects {
			return nil, fmt.Errorf("request %s: too many redirects", rawURL)
		}
		next, err := resolveLocation(current, string(resp.Header.Peek(fasthttp.HeaderLocation)))
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", current, err)
		}
		current = next
	}

	return &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: string(resp.Header.ContentType()),
		Body:        append([]byte(nil), resp.Body()...),
		URL:         current,
	}, nil
}

// GetJSON fetches rawURL and decodes a 2xx JSON body into out. Transport errors and
// 5xx responses are retried with exponential backoff.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.Get(ctx, rawURL)
		if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
			err = &StatusError{StatusCode: resp.StatusCode, URL: rawURL, Body: truncate(string(resp.Body), 512)}
			if !shouldRetryStatus(resp.StatusCode) {
				return err
			}
		}
		if err == nil {
			if out != nil {
				if err := json.Unmarshal(resp.Body, out); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}
			return nil
		}

		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) applyHeaders(req *fasthttp.Request) {
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func resolveLocation(base, location string) (string, error) {
	if location == "" {
		return "", errors.New("redirect without Location header")
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("bad redirect location %q: %w", location, err)
	}
	next := b.ResolveReference(l)
	if next.Scheme != "http" && next.Scheme != "https" {
		return "", fmt.Errorf("redirect to unsupported scheme %q", next.Scheme)
	}
	return next.String(), nil
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
