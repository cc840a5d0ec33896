package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/goadmin/pkg/core"
	metrics "github.com/rcrowley/go-metrics"
)

// DefaultTimeout bounds every call when Config.Timeout is zero.
const DefaultTimeout = 5000 * time.Millisecond

// RequestIDHeader carries a per-call identifier for log correlation.
const RequestIDHeader = "X-Request-Id"

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Request describes a single call. URL is relative to Config.BaseURL.
// Data, when non-nil, is JSON-encoded as the body for any method.
type Request struct {
	Method string
	URL    string
	Params url.Values
	Data   any
	Header http.Header
}

// Response is a completed 2xx call.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Envelope core.Envelope
}

// RequestInterceptor may inspect or modify a request before it is sent.
// Returning an error aborts the call.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor observes the outcome of a call.
// OnFulfilled receives 2xx responses; OnRejected receives every failure
// (an *Error unless an earlier interceptor replaced it). Either may be nil.
// Returning a non-nil error rejects; returning a response with a nil error
// recovers.
type ResponseInterceptor struct {
	OnFulfilled func(ctx context.Context, resp *Response) (*Response, error)
	OnRejected  func(ctx context.Context, err error) (*Response, error)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRegistry records request metrics into r instead of a private registry.
func WithRegistry(r metrics.Registry) Option {
	return func(c *Client) {
		if r != nil {
			c.registry = r
		}
	}
}

// Client performs admin API calls.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	logger   *slog.Logger
	registry metrics.Registry

	mu       sync.RWMutex
	requests []RequestInterceptor
	response []ResponseInterceptor
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		timeout:  cfg.Timeout,
		http:     &http.Client{},
		logger:   slog.New(slog.DiscardHandler),
		registry: metrics.NewRegistry(),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base every relative URL is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-call upper bound.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Registry returns the metrics registry the client records into.
func (c *Client) Registry() metrics.Registry {
	return c.registry
}

// Use appends a request interceptor.
func (c *Client) Use(fn RequestInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, fn)
}

// UseResponse appends a response interceptor.
func (c *Client) UseResponse(ri ResponseInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = append(c.response, ri)
}

// Do performs req and runs both interceptor chains.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("request: nil request")
	}

	c.mu.RLock()
	requests := append([]RequestInterceptor(nil), c.requests...)
	response := append([]ResponseInterceptor(nil), c.response...)
	c.mu.RUnlock()

	// Interceptors see a copy so callers can reuse descriptors.
	r := *req
	r.Method = strings.ToUpper(r.Method)
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.Header = req.Header.Clone()
	if r.Header == nil {
		r.Header = http.Header{}
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}

	for _, fn := range requests {
		if err := fn(ctx, &r); err != nil {
			return nil, fmt.Errorf("request interceptor: %w", err)
		}
	}

	resp, err := c.send(ctx, &r)

	for _, ri := range response {
		if err == nil {
			if ri.OnFulfilled != nil {
				resp, err = ri.OnFulfilled(ctx, resp)
			}
			continue
		}
		if ri.OnRejected != nil {
			resp, err = ri.OnRejected(ctx, err)
		}
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Decode performs req and unmarshals the envelope's data into out.
// A nil out discards the payload.
func (c *Client) Decode(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || resp == nil || !resp.Envelope.HasData() {
		return nil
	}
	if err := json.Unmarshal(resp.Envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", req.Method, req.URL, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, r *Request) (*Response, error) {
	target, err := c.resolve(r.URL, r.Params)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}

	var body io.Reader
	if r.Data != nil {
		payload, err := json.Marshal(r.Data)
		if err != nil {
			return nil, &Error{Message: err.Error(), Err: fmt.Errorf("failed to encode body: %w", err)}
		}
		body = bytes.NewReader(payload)
		if r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	httpReq.Header = r.Header
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	id := r.Header.Get(RequestIDHeader)
	c.logger.Debug("sending request", "id", id, "method", r.Method, "url", target)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	metrics.GetOrRegisterTimer("request."+strings.ToLower(r.Method), c.registry).UpdateSince(start)
	if err != nil {
		c.countError(0)
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("timeout of %dms exceeded", c.timeout.Milliseconds())
		}
		c.logger.Debug("request failed", "id", id, "error", err)
		return nil, &Error{Message: msg, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.countError(0)
		return nil, &Error{Status: httpResp.StatusCode, Message: err.Error(), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("received response",
		"id", id,
		"status", httpResp.StatusCode,
		"bytes", len(raw),
		"duration", time.Since(start))

	resp := &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   raw,
	}
	decodeErr := decodeEnvelope(raw, &resp.Envelope)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		c.countError(httpResp.StatusCode)
		msg := resp.Envelope.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status code %d", httpResp.StatusCode)
		}
		return nil, &Error{Status: httpResp.StatusCode, Message: msg, Response: resp}
	}

	if decodeErr != nil {
		c.countError(httpResp.StatusCode)
		return nil, &Error{
			Status:   httpResp.StatusCode,
			Message:  decodeErr.Error(),
			Response: resp,
			Err:      fmt.Errorf("failed to decode envelope: %w", decodeErr),
		}
	}
	return resp, nil
}

func (c *Client) countError(status int) {
	name := "request.errors.transport"
	if status > 0 {
		name = "request.errors." + strconv.Itoa(status)
	}
	metrics.GetOrRegisterCounter(name, c.registry).Inc(1)
}

// resolve joins a relative path onto the base URL and appends params.
func (c *Client) resolve(rel string, params url.Values) (string, error) {
	target := rel
	if !strings.HasPrefix(rel, "http://") && !strings.HasPrefix(rel, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(rel, "/")
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", target, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, vals := range params {
			for _, v := range vals {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// decodeEnvelope tolerates an empty body, which some endpoints send on 204.
func decodeEnvelope(raw []byte, env *core.Envelope) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, env)
}
