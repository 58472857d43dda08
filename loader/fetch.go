package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxBodyBytes = 4 << 20
)

// Fetcher acquires the resource at src. Fetch must return without blocking on I/O;
// the returned future resolves exactly once.
type Fetcher interface {
	Fetch(ctx context.Context, src string) *Future
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, src string) *Future

func (f FetcherFunc) Fetch(ctx context.Context, src string) *Future {
	return f(ctx, src)
}

// Executor runs a fetched resource body. It may finish its own setup (populating the
// capability slot) after Execute has returned.
type Executor interface {
	Execute(ctx context.Context, src string, body []byte) error
}

// HTTPOptions tunes HTTPFetcher.
type HTTPOptions struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// HTTPFetcher fetches the resource over HTTP GET and hands the body to an Executor.
type HTTPFetcher struct {
	client *http.Client
	exec   Executor
	opts   HTTPOptions
}

// NewHTTPFetcher creates a fetcher. A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client, exec Executor, opts HTTPOptions) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &HTTPFetcher{client: client, exec: exec, opts: opts}
}

// Fetch starts the request on its own goroutine and returns immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, src string) *Future {
	fut := NewFuture()
	go func() {
		fut.Resolve(f.fetch(ctx, src))
	}()
	return fut
}

func (f *HTTPFetcher) fetch(ctx context.Context, src string) error {
	if f.exec == nil {
		return errors.New("no resource executor configured")
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return fmt.Errorf("resource exceeds %d bytes", f.opts.MaxBodyBytes)
	}

	// The executor may keep working after this returns, so it gets the caller's
	// context rather than the request timeout.
	return f.exec.Execute(ctx, src, body)
}
