// Package transport is the HTTP wrapper every backend call goes through. It
// attaches the bearer token, renews it once on a 401, and turns every failure
// into an *apperr.Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"skillswap/internal/apperr"
	"skillswap/internal/config"
	"skillswap/internal/logging"
	"skillswap/internal/validation"
)

const maxResponseBytes = 4 << 20

// TokenSource supplies access tokens for authenticated requests.
type TokenSource interface {
	// Token returns the access token to send, or "" when there is no session.
	Token(ctx context.Context) (string, error)
	// Renew is called after rejected was refused with a 401 and returns the
	// token to retry with.
	Renew(ctx context.Context, rejected string) (string, error)
	// Revoke tears the session down after a renewed token was refused too.
	Revoke(ctx context.Context, cause error)
}

// Request describes one backend call. Body is JSON encoded unless Multipart
// is set. Auth marks calls that need the session's bearer token; Bearer sends
// a specific token instead and is never renewed.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Multipart *Multipart
	Auth      bool
	Bearer    string
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg config.APIConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger.With("component", "transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource installs the session that authenticated calls draw from.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and decodes a 2xx body into out, which may be nil. Decoded
// bodies are checked against the validate tags of out.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	payload, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	var (
		src   TokenSource
		token = req.Bearer
	)
	if req.Auth && token == "" {
		src = c.tokenSource()
		if src == nil {
			return apperr.Authentication("", nil)
		}
		token, err = src.Token(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return apperr.Authentication("", nil)
		}
	}

	status, body, err := c.send(ctx, req, payload, contentType, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && src != nil {
		token, err = src.Renew(ctx, token)
		if err != nil {
			return err
		}

		status, body, err = c.send(ctx, req, payload, contentType, token)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			authErr := apperr.FromResponse(status, body)
			src.Revoke(ctx, authErr)
			return authErr
		}
	}

	if status < 200 || status >= 300 {
		return apperr.FromResponse(status, body)
	}

	return decode(req.Method+" "+req.Path, body, out)
}

// Get is Do for an authenticated GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Auth: true}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Auth: true}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body, Auth: true}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Auth: true}, nil)
}

func (c *Client) send(ctx context.Context, req Request, payload []byte, contentType, token string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, apperr.Network(fmt.Errorf("waiting for rate limiter: %w", err), isTimeout(err))
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger := logging.FromContextOr(ctx, c.logger)
	start := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Debug("request failed",
			"method", req.Method, "path", req.Path, "request_id", requestID,
			"duration", time.Since(start), "error", err)
		return 0, nil, apperr.Network(err, isTimeout(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, apperr.Network(fmt.Errorf("reading response: %w", err), isTimeout(err))
	}

	logger.Debug("request completed",
		"method", req.Method, "path", req.Path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	return resp.StatusCode, respBody, nil
}

func encodeBody(req Request) ([]byte, string, error) {
	if req.Multipart != nil {
		return req.Multipart.encode()
	}
	if req.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request body: %w", err)
	}
	return payload, "application/json", nil
}

func decode(endpoint string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperr.Decode(endpoint, errors.New("empty response body"))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Decode(endpoint, err)
	}
	if err := validation.Response(out); err != nil {
		return apperr.Decode(endpoint, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
