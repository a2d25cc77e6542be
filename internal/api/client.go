// Package api is the typed client of the residential-complex HTTP/JSON API.
//
// Every response is decoded into an explicit record type and checked with its
// validate tags before it leaves the package, so callers can tell transport
// failures (TransportError), non-2xx answers (StatusError) and malformed
// payloads (DecodeError) apart.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fracc/internal/cache"
	"fracc/internal/core"
	applog "fracc/internal/log"
	"fracc/internal/telemetry"
)

const (
	maxBodyBytes    = 4 << 20
	defaultTimeout  = 10 * time.Second
	catalogCapacity = 8
	keyPersons      = "personas"
	keyAreas        = "areas"
)

type Client struct {
	base    *url.URL
	http    *http.Client
	logger  *slog.Logger
	metrics *telemetry.Metrics

	persons cache.Cache[[]core.Person]
	areas   cache.Cache[[]core.Area]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCatalogCache memoizes the person directory and the area catalog for ttl.
// The caches are registered with mgr for periodic expiry when mgr is not nil.
func WithCatalogCache(ttl time.Duration, mgr *cache.Manager) Option {
	return func(c *Client) {
		if ttl <= 0 {
			return
		}
		persons := cache.NewLRUCache[[]core.Person](catalogCapacity, ttl)
		areas := cache.NewLRUCache[[]core.Area](catalogCapacity, ttl)
		c.persons, c.areas = persons, areas
		if mgr != nil {
			mgr.Register(persons)
			mgr.Register(areas)
		}
	}
}

type statser interface {
	Stats() cache.Stats
	Size() int
}

// New builds a client for baseURL, e.g. "http://localhost:3002".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if s, ok := c.persons.(statser); ok {
		c.metrics.WatchCache(keyPersons, s.Stats, s.Size)
	}
	if s, ok := c.areas.(statser); ok {
		c.metrics.WatchCache(keyAreas, s.Stats, s.Size)
	}
	return c, nil
}

// do sends one request. in is JSON-encoded when not nil; out is decoded when not nil.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, query, in, out)
	elapsed := time.Since(start)
	c.metrics.ObserveAPICall(endpoint, Kind(err), elapsed)
	if err != nil {
		c.logger.WarnContext(ctx, "API call failed",
			applog.FieldComponent, applog.ComponentAPI,
			applog.FieldEndpoint, endpoint,
			applog.FieldMethod, method,
			applog.FieldPath, path,
			applog.FieldErrorKind, Kind(err),
			applog.FieldDuration, elapsed.Milliseconds(),
			applog.FieldError, err)
		return err
	}
	c.logger.DebugContext(ctx, "API call completed",
		applog.FieldComponent, applog.ComponentAPI,
		applog.FieldEndpoint, endpoint,
		applog.FieldMethod, method,
		applog.FieldDuration, elapsed.Milliseconds())
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &DecodeError{Path: path, Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// getList fetches a JSON array and validates every element.
func getList[T any](ctx context.Context, c *Client, endpoint, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, endpoint, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := core.ValidateStruct(out[i]); err != nil {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// getOne fetches a JSON object and validates it.
func getOne[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values) (T, error) {
	var out T
	if err := c.do(ctx, endpoint, http.MethodGet, path, query, nil, &out); err != nil {
		return out, err
	}
	if err := core.ValidateStruct(out); err != nil {
		var zero T
		return zero, &DecodeError{Path: path, Err: err}
	}
	return out, nil
}
