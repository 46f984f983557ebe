package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodDelete = http.MethodDelete
)

// bodySnippetLimit bounds how much of an error body is kept on UpstreamError.
const bodySnippetLimit = 4096

// ClientOption configures Client.
type ClientOption func(*Client)

// Observer is notified after every request; status is 0 on transport failure.
type Observer func(name string, status int, took time.Duration, err error)

// RequestOptions holds HTTP request parameters.
type RequestOptions struct {
	// Name labels the request in errors and metrics (e.g. "changerate").
	Name        string
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string][]string
	Body        interface{}
	BearerToken string
}

// Client is an HTTP client with timeout, optional rate limit and typed upstream errors.
type Client struct {
	timeout   time.Duration
	limiter   *rate.Limiter
	userAgent string
	observer  Observer
	client    *http.Client
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:   30 * time.Second,
		userAgent: "stockdash/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// SendRequest sends an HTTP request and returns the raw response.
// Transport failures are returned as *UpstreamError of KindNetwork.
func (c *Client) SendRequest(ctx context.Context, opts *RequestOptions) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &UpstreamError{Kind: KindNetwork, Name: opts.Name, URL: opts.URL, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	req, err := c.buildRequest(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: KindNetwork, Name: opts.Name, URL: opts.URL, Err: err}
	}

	return resp, nil
}

// SendAndParse sends request and decodes a 2xx response into dest.
// dest may be *[]byte, io.Writer, or any JSON target; nil discards the body.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	start := time.Now()
	status, err := c.sendAndParse(ctx, opts, dest)
	if c.observer != nil {
		c.observer(opts.Name, status, time.Since(start), err)
	}
	return err
}

func (c *Client) sendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) (int, error) {
	resp, err := c.SendRequest(ctx, opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetLimit))
		return resp.StatusCode, &UpstreamError{
			Kind:       KindStatus,
			Name:       opts.Name,
			URL:        opts.URL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if dest == nil {
		return resp.StatusCode, nil
	}

	switch v := dest.(type) {
	case *[]byte:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, &UpstreamError{Kind: KindNetwork, Name: opts.Name, URL: opts.URL, Err: fmt.Errorf("read body: %w", err)}
		}
		*v = body
	case io.Writer:
		if _, err := io.Copy(v, resp.Body); err != nil {
			return resp.StatusCode, &UpstreamError{Kind: KindNetwork, Name: opts.Name, URL: opts.URL, Err: fmt.Errorf("copy body: %w", err)}
		}
	default:
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return resp.StatusCode, &UpstreamError{Kind: KindShape, Name: opts.Name, URL: opts.URL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode json: %w", err)}
		}
	}

	return resp.StatusCode, nil
}

// GetJSON is shorthand for a GET decoded into dest.
func (c *Client) GetJSON(ctx context.Context, name, rawURL, token string, dest interface{}) error {
	return c.SendAndParse(ctx, &RequestOptions{
		Name:        name,
		Method:      MethodGet,
		URL:         rawURL,
		BearerToken: token,
	}, dest)
}

// PostJSON is shorthand for a JSON POST decoded into dest.
func (c *Client) PostJSON(ctx context.Context, name, rawURL, token string, payload, dest interface{}) error {
	return c.SendAndParse(ctx, &RequestOptions{
		Name:        name,
		Method:      MethodPost,
		URL:         rawURL,
		BearerToken: token,
		Headers:     map[string]string{"Content-Type": "application/json"},
		Body:        payload,
	}, dest)
}

func (c *Client) buildRequest(ctx context.Context, opts *RequestOptions) (*http.Request, error) {
	if opts.Method == "" {
		opts.Method = MethodGet
	}
	body, err := c.createRequestBody(opts)
	if err != nil {
		return nil, fmt.Errorf("create body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	c.addQueryParams(req, opts.QueryParams)
	c.addHeaders(req, opts)

	return req, nil
}

func (c *Client) createRequestBody(opts *RequestOptions) (io.Reader, error) {
	if opts.Body == nil {
		return nil, nil
	}

	switch v := opts.Body.(type) {
	case []byte:
		return bytes.NewReader(v), nil
	case io.Reader:
		return v, nil
	case string:
		return strings.NewReader(v), nil
	case url.Values:
		return strings.NewReader(v.Encode()), nil
	default:
		jsonBody, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return bytes.NewReader(jsonBody), nil
	}
}

func (c *Client) addQueryParams(req *http.Request, params map[string][]string) {
	if len(params) == 0 {
		return
	}
	q := req.URL.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	req.URL.RawQuery = q.Encode()
}

func (c *Client) addHeaders(req *http.Request, opts *RequestOptions) {
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if opts.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.BearerToken)
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit caps outbound requests per second; rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithObserver installs a per-request callback.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// ErrNilClient is returned by helpers that receive no client.
var ErrNilClient = errors.New("http client not initialized")
