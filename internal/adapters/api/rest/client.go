// Package rest implements the remote board service over HTTP/JSON.
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/hylla/tavla/internal/app"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// tracerName identifies spans emitted by this client.
const tracerName = "tavla/rest"

// defaultTimeout bounds one request when no timeout is configured.
const defaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client talks to the board service.
type Client struct {
	base    *url.URL
	http    *http.Client
	authed  *http.Client
	timeout time.Duration
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource authenticates requests with bearer tokens from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		if ts == nil {
			return
		}
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.authed = &http.Client{
			Transport: &oauth2.Transport{Source: ts, Base: base},
			Jar:       c.http.Jar,
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// New constructs a client for baseURL. Options apply in order, so
// WithHTTPClient must precede WithTokenSource.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must use http or https", baseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	c := &Client{
		base:    base,
		http:    &http.Client{},
		timeout: defaultTimeout,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// endpoint joins escaped path segments onto the base url.
func (c *Client) endpoint(segments ...string) string {
	u := *c.base
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = c.base.Path + "/" + strings.Join(escaped, "/")
	u.RawPath = ""
	return u.String()
}

// call is one request description.
type call struct {
	method string
	path   []string
	body   any
	out    any
	anon   bool
}

// do runs one request under its own span and timeout and maps failures into
// app.APIError.
func (c *Client) do(ctx context.Context, rc call) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	route := "/" + strings.Join(routeTemplate(rc.path), "/")
	ctx, span := c.tracer.Start(ctx, rc.method+" "+route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("http.request.method", rc.method),
		attribute.String("http.route", route),
		attribute.String("tavla.request_id", requestID),
	)

	var payload io.Reader
	if rc.body != nil {
		encoded, err := sonic.ConfigStd.Marshal(rc.body)
		if err != nil {
			return c.fail(span, &app.APIError{Kind: app.KindUnknown, Err: fmt.Errorf("encode request: %w", err)})
		}
		payload = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, rc.method, c.endpoint(rc.path...), payload)
	if err != nil {
		return c.fail(span, &app.APIError{Kind: app.KindUnknown, Err: fmt.Errorf("build request: %w", err)})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.http
	if !rc.anon && c.authed != nil {
		hc = c.authed
	}
	resp, err := hc.Do(req)
	if err != nil {
		return c.fail(span, transportError(err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.fail(span, statusError(resp.StatusCode, raw))
	}
	if rc.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(span, transportError(err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(raw, rc.out); err != nil {
		return c.fail(span, &app.APIError{Kind: app.KindUnknown, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)})
	}
	return nil
}

// fail records err on span and returns it.
func (c *Client) fail(span trace.Span, err *app.APIError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Kind.String())
	span.SetAttributes(attribute.String("tavla.error_kind", err.Kind.String()))
	return err
}

// transportError classifies a failed round trip. A token source refusing to
// produce a token surfaces as unauthorized, everything else as network.
func transportError(err error) *app.APIError {
	if errors.Is(err, app.ErrUnauthorized) {
		return &app.APIError{Kind: app.KindUnauthorized, Err: err}
	}
	return &app.APIError{Kind: app.KindNetwork, Err: err}
}

// statusError maps a non-2xx response.
func statusError(status int, body []byte) *app.APIError {
	kind := app.KindUnknown
	switch status {
	case http.StatusNotFound:
		kind = app.KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = app.KindUnauthorized
	}
	return &app.APIError{
		Kind:    kind,
		Status:  status,
		Message: errorMessage(body),
		Err:     fmt.Errorf("status %d %s", status, strings.ToLower(http.StatusText(status))),
	}
}

// errorMessage extracts the server-provided message, if the body carries one.
func errorMessage(body []byte) string {
	var payload errorBody
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	if err := sonic.ConfigStd.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// routeTemplate replaces ids in a path with placeholders so spans group by
// route.
func routeTemplate(path []string) []string {
	out := make([]string, len(path))
	for idx, seg := range path {
		if idx%2 == 1 {
			out[idx] = "{id}"
			continue
		}
		out[idx] = seg
	}
	return out
}
