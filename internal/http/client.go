package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/polarview-downloader/internal/model"
	"golang.org/x/time/rate"
)

// ErrTimeout is the cause of requests that saw no progress within the client timeout.
var ErrTimeout = errors.New("no response progress within timeout")

// DefaultChunkSize is the buffer size used to stream downloads to disk.
const DefaultChunkSize = 8 * 1024

// Options configures a Client.
type Options struct {
	// Timeout bounds connecting, waiting for headers, and every single
	// body read. It is not a limit on the whole transfer.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RequestsPerSecond throttles requests made by the client. Zero disables it.
	RequestsPerSecond float64

	// ChunkSize is the copy buffer size for DownloadFile.
	ChunkSize int

	// Transport overrides the default round tripper (used in tests).
	Transport http.RoundTripper
}

// Client wraps HTTP operations for the PolarView services.
//
// Client provides:
//   - Configured User-Agent header
//   - Inactivity timeout handling for long streamed downloads
//   - Optional request throttling
//   - File download with progress tracking and atomic placement
//   - Classified errors (see model.Error)
//
// Example usage:
//
//	client := NewClient(Options{Timeout: 60 * time.Second})
//
//	// Fetch a JSON document
//	body, err := client.Get(ctx, wfsURL)
//
//	// Download file with progress
//	n, err := client.DownloadFile(ctx, archiveURL, "/data/X.tif.tar.gz", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	chunkSize  int
	limiter    *rate.Limiter
}

// NewClient creates a new HTTP client.
//
// Zero values in opts fall back to a 60 second timeout, an 8 KiB chunk size
// and the "polarview-downloader" User-Agent.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "polarview-downloader"
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{Transport: opts.Transport},
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		chunkSize:  opts.ChunkSize,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header), 0 if unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)

	err error
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if err != nil {
		pw.err = err
	}
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns a *model.Error if:
//   - The request fails or times out (KindNetwork)
//   - The response status is not 2xx (KindStatus)
//   - Reading the body fails (KindNetwork)
//   - ctx is cancelled (KindCanceled)
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, resp.reqCtx, model.KindNetwork, url, err)
	}
	return data, nil
}

// DownloadFile streams url to destPath with an optional progress callback.
//
// The body is written in ChunkSize pieces to a hidden temporary file in the
// destination directory, which is renamed to destPath only after the whole
// body arrived. On failure the temporary file is removed and destPath is
// left untouched. It returns the number of bytes written.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to
//   - onProgress: Optional callback called with (bytesWritten, totalBytes);
//     totalBytes is 0 when the server sends no Content-Length
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	resp, err := c.open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.part")
	if err != nil {
		return 0, model.NewError(model.KindIO, "create", destPath, err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	pw := &ProgressWriter{Writer: tmp, Total: total, OnUpdate: onProgress}

	written, err := io.CopyBuffer(pw, resp.Body, make([]byte, c.chunkSize))
	if err != nil {
		if pw.err != nil {
			return written, model.NewError(model.KindIO, "write", tmp.Name(), pw.err)
		}
		return written, c.classify(ctx, resp.reqCtx, model.KindNetwork, url, err)
	}
	if total > 0 && written != total {
		return written, model.NewError(model.KindIO, "GET", url,
			fmt.Errorf("truncated body: got %d of %d bytes", written, total))
	}

	if err := tmp.Close(); err != nil {
		return written, model.NewError(model.KindIO, "close", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return written, model.NewError(model.KindIO, "rename", destPath, err)
	}
	committed = true

	return written, nil
}

type response struct {
	*http.Response
	reqCtx context.Context
}

// open sends a GET request and checks the status code. The returned body
// cancels the request when closed and whenever a read stalls past the timeout.
func (c *Client) open(ctx context.Context, url string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, model.NewError(model.KindCanceled, "GET", url, err)
	}

	reqCtx, cancel := context.WithCancelCause(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel(nil)
		return nil, model.NewError(model.KindNetwork, "GET", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	watchdog := time.AfterFunc(c.timeout, func() { cancel(ErrTimeout) })

	resp, err := c.httpClient.Do(req)
	if err != nil {
		watchdog.Stop()
		err = c.classify(ctx, reqCtx, model.KindNetwork, url, err)
		cancel(nil)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		watchdog.Stop()
		resp.Body.Close()
		cancel(nil)
		return nil, &model.Error{
			Kind:       model.KindStatus,
			Op:         "GET",
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	watchdog.Reset(c.timeout)
	resp.Body = &idleTimeoutBody{
		ReadCloser: resp.Body,
		timer:      watchdog,
		timeout:    c.timeout,
		cancel:     cancel,
	}

	return &response{Response: resp, reqCtx: reqCtx}, nil
}

// classify maps a transport error to a model.Error, telling caller
// cancellation apart from the client's own inactivity timeout.
func (c *Client) classify(ctx, reqCtx context.Context, kind model.ErrorKind, url string, err error) error {
	if ctx.Err() != nil {
		return model.NewError(model.KindCanceled, "GET", url, ctx.Err())
	}
	if errors.Is(context.Cause(reqCtx), ErrTimeout) {
		return model.NewError(model.KindNetwork, "GET", url, fmt.Errorf("%w (%s)", ErrTimeout, c.timeout))
	}
	return model.NewError(kind, "GET", url, err)
}

type idleTimeoutBody struct {
	io.ReadCloser
	timer   *time.Timer
	timeout time.Duration
	cancel  context.CancelCauseFunc
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err == nil {
		b.timer.Reset(b.timeout)
	}
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	b.timer.Stop()
	err := b.ReadCloser.Close()
	b.cancel(nil)
	return err
}
