// Package http provides an HTTP client for the PolarView WFS and image services.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Inactivity timeouts that tolerate long streamed transfers
//   - Optional request throttling
//   - File downloads with progress tracking and atomic placement
//   - Error classification into network, status, io and canceled failures
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{Timeout: 120 * time.Second})
//
//	// Fetch a JSON document
//	body, err := client.Get(ctx, wfsURL)
//
//	// Download file with progress callback
//	n, err := client.DownloadFile(ctx, archiveURL, "/path/to/X.tif.tar.gz", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
