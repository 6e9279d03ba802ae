// Package transport provides the shared HTTP adapter for the EduList API.
// All domain services issue requests through a single Client. The
// Authorization header is injected per request from a TokenSource at
// dispatch time, so header state can never go stale relative to the
// session.
package transport

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

	"edulist_client/platform/apperr"
	"edulist_client/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the current bearer credential, or "" when anonymous.
// The session store implements this.
type TokenSource interface {
	Token() string
}

// AnonymousTokens is a TokenSource that never authenticates.
type AnonymousTokens struct{}

// Token implements TokenSource.
func (AnonymousTokens) Token() string { return "" }

// Client is the HTTP adapter shared by every domain service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	limiter    *rate.Limiter
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit throttles outbound requests.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient substitutes the underlying *http.Client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the given API base URL.
func New(baseURL string, tokens TokenSource, log *logger.Logger, opts ...Option) *Client {
	if tokens == nil {
		tokens = AnonymousTokens{}
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET request and decodes the response into out.
// Pass a *json.RawMessage to receive the body undecoded.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.dispatch(req, out)
}

// dispatch sends a prepared request: rate limit, auth header, correlation
// ID, then status and body handling. Multipart uploads reuse it.
func (c *Client) dispatch(req *http.Request, out any) error {
	ctx := req.Context()
	method := req.Method
	path := req.URL.Path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return classifyTransportError(err)
		}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		aerr := classifyTransportError(err)
		c.log.APIError(method, path, 0, aerr, requestID)
		return aerr
	}
	defer resp.Body.Close()

	latency := float64(time.Since(start).Milliseconds())
	c.log.APIRequest(method, path, resp.StatusCode, latency, requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		aerr := errorFromResponse(resp)
		c.log.APIError(method, path, resp.StatusCode, aerr, requestID)
		return aerr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.BadResponse("decode response body", err)
	}
	return nil
}

// classifyTransportError maps a request failure with no HTTP response onto
// the error taxonomy: deadline problems get the "try again" message, and
// everything else is a connectivity failure.
func classifyTransportError(err error) *apperr.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return apperr.Timeout(err)
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindNetwork, apperr.NetworkMessage, err)
	}
	return apperr.Network(err)
}

// apiError is the error envelope the backend sends on 4xx/5xx.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// errorFromResponse extracts the backend message from a non-2xx response
// and types it by status code.
func errorFromResponse(resp *http.Response) *apperr.Error {
	var env apiError
	// Cap error bodies; a misbehaving backend should not make us buffer
	// unbounded data just to report a failure.
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(data, &env)

	message := env.Message
	if message == "" {
		message = env.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if message == "" {
			message = "authentication required"
		}
		return apperr.Unauthorized(message)
	case http.StatusForbidden:
		if message == "" {
			message = "you do not have permission to perform this action"
		}
		return apperr.Forbidden(message)
	case http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
		return apperr.NotFound(message)
	default:
		if message == "" {
			message = fmt.Sprintf("the server returned an unexpected error (status %d)", resp.StatusCode)
		}
		return apperr.Server(message)
	}
}
