// Package transport exchanges JSON with the chat service over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/observability"
	"golang.org/x/net/publicsuffix"
)

// Default content negotiation.
const (
	DefaultContentType = "application/json;charset=UTF-8"
	DefaultAccept      = "application/json"
	jsonType           = "application/json"
)

// Client implements ports.Transport over net/http.
// Every request carries the cookies of a shared jar: session credentials are ambient.
type Client struct {
	service string
	http    *http.Client
	timeout *time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sends requests through a copy of hc; hc itself is never modified.
// A cookie jar is attached to the copy if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each request (default: 30s, or the timeout of the client
// given to WithHTTPClient). Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = &timeout
	}
}

// WithLogger sets a custom structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request counts and durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client resolving relative endpoints against service.
func New(service string, opts ...Option) *Client {
	c := &Client{service: service}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	} else {
		hc := *c.http
		c.http = &hc
	}
	if c.timeout != nil {
		c.http.Timeout = *c.timeout
	}
	if c.http.Jar == nil {
		// cookiejar.New never fails with these options; a jar-less client would still work.
		if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
			c.http.Jar = jar
		}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Service returns the base URL relative endpoints resolve against.
func (c *Client) Service() string {
	return c.service
}

// Resolve turns endpoint into an absolute URL.
// Absolute http(s) URLs are used verbatim; anything else is appended to the service base.
func (c *Client) Resolve(endpoint string) (*url.URL, error) {
	if u, err := url.Parse(endpoint); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return u, nil
	}
	return url.Parse(c.service + endpoint)
}

// Get issues a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, opts domain.RequestOptions) domain.Result {
	return c.Do(ctx, domain.Request{Method: http.MethodGet, Endpoint: endpoint, Params: params, Options: opts})
}

// Post issues a POST request with payload encoded as JSON.
func (c *Client) Post(ctx context.Context, endpoint string, payload any, opts domain.RequestOptions) domain.Result {
	return c.Do(ctx, domain.Request{Method: http.MethodPost, Endpoint: endpoint, Payload: payload, Options: opts})
}

// Do performs req and classifies the response.
// It never returns an error: every failure is normalized into Result.Failure.
func (c *Client) Do(ctx context.Context, req domain.Request) domain.Result {
	start := time.Now()
	res := c.do(ctx, req)
	c.metrics.ObserveRequest(req.Method, res.OK(), time.Since(start))
	if !res.OK() {
		c.logger.Debug("request failed", "method", req.Method, "endpoint", req.Endpoint,
			"status", res.Failure.Status, "err", res.Failure.Message)
	}
	return res
}

func (c *Client) do(ctx context.Context, req domain.Request) domain.Result {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		c.logger.Error("failed to build request", "err", err, "endpoint", req.Endpoint)
		return failure(http.StatusInternalServerError, domain.MessageInternalError)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return failure(http.StatusInternalServerError, domain.MessageRequestTimeout)
		}
		c.logger.Warn("request error", "err", err, "endpoint", req.Endpoint)
		return failure(http.StatusInternalServerError, domain.MessageInternalError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return failure(http.StatusInternalServerError, domain.MessageRequestTimeout)
		}
		return failure(http.StatusInternalServerError, domain.MessageInternalError)
	}

	return c.classify(resp.StatusCode, resp.Header.Get("Content-Type"), body)
}

func (c *Client) build(ctx context.Context, req domain.Request) (*http.Request, error) {
	u, err := c.Resolve(req.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", req.Endpoint, err)
	}

	switch req.Method {
	case http.MethodGet:
		if len(req.Params) > 0 {
			q := u.Query()
			for k, vs := range req.Params {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			u.RawQuery = q.Encode()
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Accept", firstNonEmpty(req.Options.Accept, DefaultAccept))
		return httpReq, nil

	case http.MethodPost:
		data, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", firstNonEmpty(req.Options.Type, DefaultContentType))
		httpReq.Header.Set("Accept", firstNonEmpty(req.Options.Accept, DefaultAccept))
		if req.Options.Encoding != "" {
			httpReq.Header.Set("Content-Transfer-Encoding", req.Options.Encoding)
		}
		return httpReq, nil

	default:
		return nil, fmt.Errorf("unsupported method %q", req.Method)
	}
}

// classify maps a status and body onto the success or failure path.
func (c *Client) classify(status int, contentType string, body []byte) domain.Result {
	success := status == http.StatusOK || status == http.StatusNoContent

	mediaType := jsonType
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = mt
		} else {
			mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
		}
	}

	if mediaType != jsonType {
		// Only JSON is understood; anything else is passed through as text.
		c.logger.Error("unsupported content type", "content_type", contentType, "status", status)
		if success {
			return domain.Result{Status: status, Payload: string(body)}
		}
		return failure(status, string(body))
	}

	if success && status == http.StatusNoContent && len(bytes.TrimSpace(body)) == 0 {
		return domain.Result{Status: status}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("failed parsing JSON response", "err", err, "status", status, "body", string(body))
		if success {
			return failure(http.StatusInternalServerError, domain.MessageInternalError)
		}
		return failure(status, domain.MessageInternalServerError)
	}

	if success {
		return domain.Result{Status: status, Payload: payload}
	}
	return failure(status, errorMessage(payload))
}

// errorMessage extracts the "error" field of a failure body.
func errorMessage(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return domain.MessageInternalServerError
	}
	msg, ok := obj[domain.KeyError].(string)
	if !ok || msg == "" {
		return domain.MessageInternalServerError
	}
	return msg
}

func failure(status int, message string) domain.Result {
	return domain.Result{Status: status, Failure: &domain.Failure{Status: status, Message: message}}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
