package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/inskhq/insk-go/pkg/session"
	"github.com/inskhq/insk-go/pkg/telemetry"
)

// DefaultTimeout bounds every outbound call.
const DefaultTimeout = 30 * time.Second

// Client is the single chokepoint for every outbound call. It injects the
// bearer credential, enforces the call timeout and normalizes all failures
// into the Kind taxonomy. It never retries; callers decide what a failure
// means for them.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	store             session.Store
	logoutOnForbidden bool
	logger            zerolog.Logger
	telemetry         *telemetry.Manager
}

// Option customizes client construction.
type Option func(*Client)

// WithTimeout overrides the default 30s per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying transport. The configured timeout is
// preserved unless the supplied client carries its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		if hc.Timeout == 0 {
			hc.Timeout = c.httpClient.Timeout
		}
		c.httpClient = hc
	}
}

// WithLogoutOnForbidden controls whether a 403 purges the credential store
// the way a 401 always does. The backend serves 403 both for expired tokens
// and for genuine permission denials, so the two cases are indistinguishable
// on the wire; the default treats 403 like 401, and embedders that can tell
// them apart may keep their session instead.
func WithLogoutOnForbidden(v bool) Option {
	return func(c *Client) { c.logoutOnForbidden = v }
}

// WithLogger attaches a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTelemetry attaches a telemetry manager for spans and call metrics.
func WithTelemetry(m *telemetry.Manager) Option {
	return func(c *Client) { c.telemetry = m }
}

// New builds a gateway client for the given API root, e.g.
// "http://localhost:8080/api/v1".
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gateway: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("gateway: parse base URL: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("gateway: session store required")
	}
	c := &Client{
		baseURL:           baseURL,
		httpClient:        &http.Client{Timeout: DefaultTimeout},
		store:             store,
		logoutOnForbidden: true,
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, jsonSink(out))
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, jsonSink(out))
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, jsonSink(out))
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, jsonSink(nil))
}

// GetRaw streams the response body into w without decoding, used for binary
// payloads such as PDF downloads.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values, w io.Writer) error {
	return c.do(ctx, http.MethodGet, path, query, nil, func(r io.Reader) error {
		_, err := io.Copy(w, r)
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, sink func(io.Reader) error) (err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "gateway."+strings.ToLower(method),
		trace.WithAttributes(attribute.String("gateway.path", path)))
	defer func() {
		telemetry.EndSpan(span, err)
		c.record(ctx, method, path, time.Since(start), err)
	}()

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			err = fmt.Errorf("gateway: encode body: %w", merr)
			return err
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, rerr := http.NewRequestWithContext(ctx, method, target, reader)
	if rerr != nil {
		err = fmt.Errorf("gateway: build request: %w", rerr)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	// Credential injection is best-effort: calls are never blocked for lack
	// of a token, authorization is enforced server-side.
	if token, ok := c.store.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, derr := c.httpClient.Do(req)
	if derr != nil {
		// No HTTP response at all. This branch and the status branches
		// below are mutually exclusive: one classification per call.
		c.logger.Debug().Str("method", method).Str("path", path).Err(derr).
			Msg("transport failure")
		err = &Error{Kind: KindNetworkUnavailable, Message: networkMessage}
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		err = sink(resp.Body)
		return err
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	err = c.classify(resp.StatusCode, raw)
	c.logger.Debug().Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Msg("request rejected")
	return err
}

func (c *Client) classify(status int, body []byte) *Error {
	switch status {
	case http.StatusUnauthorized:
		// Forced logout: expired and never-valid tokens collapse to the
		// same client behavior.
		_ = c.store.Clear()
		return &Error{Kind: KindUnauthorized, Message: extractMessage(body), Status: status}
	case http.StatusForbidden:
		if c.logoutOnForbidden {
			_ = c.store.Clear()
		}
		return &Error{Kind: KindForbidden, Message: extractMessage(body), Status: status}
	default:
		return &Error{Kind: bucket(status), Message: extractMessage(body), Status: status}
	}
}

func (c *Client) record(ctx context.Context, method, path string, d time.Duration, err error) {
	data := telemetry.CallData{
		Method:   method,
		Path:     path,
		Duration: d,
		Error:    err,
	}
	if ge, ok := Classify(err); ok {
		data.Kind = ge.Kind.String()
		data.Status = ge.Status
		data.Message = ge.Message
	}
	if c.telemetry != nil {
		c.telemetry.RecordCall(ctx, data)
		return
	}
	telemetry.RecordCall(ctx, data)
}

// jsonSink decodes the response body into out when non-nil. Plain-text
// bodies targeting a *string land unchanged, matching endpoints that answer
// with a bare acknowledgment string.
func jsonSink(out any) func(io.Reader) error {
	return func(r io.Reader) error {
		if out == nil {
			_, err := io.Copy(io.Discard, r)
			return err
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("gateway: read body: %w", err)
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			if s, ok := out.(*string); ok {
				*s = strings.TrimSpace(string(raw))
				return nil
			}
			return fmt.Errorf("gateway: decode body: %w", err)
		}
		return nil
	}
}
