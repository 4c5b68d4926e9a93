package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store caches query results. internal/cache.RedisCache implements it.
type Store interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Client talks to the booking backend. Reads go through Fetch, Load or Peek
// and are cached, deduplicated and retried; Do issues a single request.
type Client struct {
	baseURL    string
	http       *http.Client
	store      Store
	staleTime  time.Duration
	retries    uint64
	newBackOff func() backoff.BackOff
	log        *zap.Logger

	group    singleflight.Group
	inflight sync.Map // key -> struct{}
	failures sync.Map // key -> error of the last failed fetch
}

type Option func(*Client)

func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithStaleTime(d time.Duration) Option {
	return func(c *Client) { c.staleTime = d }
}

// WithRetries sets how many times a failed GET is repeated.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = uint64(n)
		}
	}
}

func WithBackOff(f func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 15 * time.Second},
		staleTime:  5 * time.Minute,
		retries:    2,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs exactly one request. body is encoded as JSON when non-nil and
// the response is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := IdentityFrom(ctx).Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s %s response", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// get repeats a GET on network errors and retryable statuses.
func (c *Client) get(ctx context.Context, path string, out any) error {
	op := func() error {
		err := c.Do(ctx, http.MethodGet, path, nil, out)
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.retries), ctx)
	return backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		c.log.Debug("retrying query", zap.String("path", path), zap.Duration("wait", wait), zap.Error(err))
	})
}

// Fetch returns the cached value of key or loads it from path. Concurrent
// callers for the same key share one upstream request. The shared request
// outlives any single caller: a caller whose ctx ends stops waiting, the
// others still get the result.
func Fetch[T any](ctx context.Context, c *Client, key Key, path string) (T, error) {
	var zero T
	k := key.String()

	if cached, ok := c.cached(ctx, k, new(T)); ok {
		return *cached.(*T), nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(k, func() (any, error) {
		c.inflight.Store(k, struct{}{})
		defer c.inflight.Delete(k)

		fetchCtx, cancel := context.WithTimeout(shared, c.fetchTimeout())
		defer cancel()

		var out T
		if err := c.get(fetchCtx, path, &out); err != nil {
			if !isCancellation(err) {
				c.failures.Store(k, err)
			}
			return nil, err
		}
		c.failures.Delete(k)
		if c.store != nil {
			if err := c.store.SetJSON(fetchCtx, k, out, c.staleTime); err != nil {
				c.log.Warn("query cache write failed", zap.String("key", k), zap.Error(err))
			}
		}
		return out, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Client) fetchTimeout() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return 30 * time.Second
}

// isCancellation reports errors that say nothing about the backend.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Load is Fetch reported as a Result.
func Load[T any](ctx context.Context, c *Client, key Key, path string) Result[T] {
	v, err := Fetch[T](ctx, c, key, path)
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// Peek never blocks on the backend. It reports Loading while key is being
// fetched, and on a cache miss starts a background fetch and reports Loading.
// The error of the last failed fetch is reported once by the next Peek.
func Peek[T any](ctx context.Context, c *Client, key Key, path string) Result[T] {
	k := key.String()
	if _, busy := c.inflight.Load(k); busy {
		return Loading[T]()
	}
	if failed, ok := c.failures.LoadAndDelete(k); ok {
		return Failure[T](failed.(error))
	}
	if cached, ok := c.cached(ctx, k, new(T)); ok {
		return Success(*cached.(*T))
	}

	c.inflight.Store(k, struct{}{})
	bg := context.WithoutCancel(ctx)
	go func() {
		defer c.inflight.Delete(k)
		if _, err := Fetch[T](bg, c, key, path); err != nil {
			c.log.Debug("background query failed", zap.String("key", k), zap.Error(err))
		}
	}()
	return Loading[T]()
}

func (c *Client) cached(ctx context.Context, key string, dst any) (any, bool) {
	if c.store == nil {
		return nil, false
	}
	ok, err := c.store.GetJSON(ctx, key, dst)
	if err != nil {
		c.log.Warn("query cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return dst, ok
}

// Invalidate drops the named private queries of the caller's session, or
// every private query of the session when no names are given.
func (c *Client) Invalidate(ctx context.Context, names ...string) error {
	return c.invalidate(ctx, IdentityFrom(ctx).scope(), names)
}

// InvalidateShared drops the named shared queries.
func (c *Client) InvalidateShared(ctx context.Context, names ...string) error {
	return c.invalidate(ctx, sharedScope, names)
}

func (c *Client) invalidate(ctx context.Context, scope string, names []string) error {
	if c.store == nil {
		return nil
	}
	prefixes := []string{scopePrefix(scope)}
	if len(names) > 0 {
		prefixes = prefixes[:0]
		for _, n := range names {
			prefixes = append(prefixes, namePrefix(scope, n))
		}
	}
	for _, p := range prefixes {
		n, err := c.store.DeletePrefix(ctx, p)
		if err != nil {
			c.log.Warn("query invalidation failed", zap.String("prefix", p), zap.Error(err))
			return errors.Wrapf(err, "invalidate %s", p)
		}
		c.log.Debug("queries invalidated", zap.String("prefix", p), zap.Int("count", n))
	}
	return nil
}
