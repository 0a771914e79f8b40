// Package apiclient is the single request pipeline to the directory backend:
// base URL, credentialed cookie transport, request/response logging and
// uniform error unwrapping. Every service goes through it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"

	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/pkg/model"
)

// RequestIDHeader carries the client-generated request ID.
const RequestIDHeader = "X-Request-ID"

// Observer receives one callback per completed backend call.
type Observer interface {
	ObserveCall(op, method string, status int, d time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Jar        http.CookieJar // nil creates a fresh in-memory jar
	HTTPClient *http.Client   // optional; its Jar is replaced by the client's jar
}

// Option configures optional Client dependencies.
type Option func(*Client)

// WithObserver attaches a call observer (metrics).
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// Client is an HTTP client for the directory API. It keeps the session
// cookie in its jar; there is no bearer-token header.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	jar      http.CookieJar
	logger   *slog.Logger
	observer Observer
}

// Request describes one backend call. Op names the operation for logs and
// metrics; Path is relative to the base URL.
type Request struct {
	Op     string
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a successful (2xx) backend reply.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

// JSON returns the body parsed for path queries.
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// NewJar creates a cookie jar that understands public suffixes.
func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// New creates a Client for the backend at cfg.BaseURL.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", cfg.BaseURL)
	}

	jar := cfg.Jar
	if jar == nil {
		if jar, err = NewJar(); err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		hc = &copied
	}
	hc.Jar = jar
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}

	c := &Client{
		baseURL: base,
		http:    hc,
		jar:     jar,
		logger:  logging.Component(logger, "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Cookies returns the cookies the jar would send to the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// RestoreCookies loads previously saved backend cookies into the jar.
func (c *Client) RestoreCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

// Do performs the request. Transport failures are returned wrapped as-is;
// non-2xx replies become *model.APIError carrying the body's message (which
// may be empty; services substitute their fallback text).
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	reqID := requestID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, reqID)

	logger := c.logger.With("op", req.Op, "method", req.Method, "path", req.Path, "request_id", reqID)
	logger.Debug("api request", "query", req.Query.Encode(), "cookies", len(c.jar.Cookies(c.baseURL)))

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req, 0, start)
		logger.Warn("api request failed", "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(req, resp.StatusCode, start)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if set := resp.Header.Values("Set-Cookie"); len(set) > 0 {
		logger.Debug("api cookies set by server", "count", len(set))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := model.NewAPIError(req.Op, resp.StatusCode, messageFromBody(body))
		logger.Warn("api error", "status", resp.StatusCode, "message", apiErr.Message)
		if resp.StatusCode == http.StatusUnauthorized {
			logger.Warn("api unauthorized: session cookie missing or rejected by the backend")
		}
		return nil, apiErr
	}

	logger.Debug("api response", "status", resp.StatusCode, "duration", time.Since(start).String(), "bytes", len(body))
	return &Response{Status: resp.StatusCode, Body: body, RequestID: reqID}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Op: op, Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, op, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Op: op, Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, op, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Op: op, Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, op, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Op: op, Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, op, path string) (*Response, error) {
	return c.Do(ctx, Request{Op: op, Method: http.MethodDelete, Path: path})
}

func (c *Client) observe(req Request, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveCall(req.Op, req.Method, status, time.Since(start))
	}
}

// messageFromBody pulls a human message out of an error body. The backend
// usually sends {"message": "..."}; some handlers use {"error": "..."}.
func messageFromBody(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	parsed := gjson.ParseBytes(body)
	for _, key := range []string{"message", "error", "error.message"} {
		if v := parsed.Get(key); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func requestID() string {
	return "req_" + uuid.New().String()[:8]
}
