// Package download provides the download orchestration logic for
// fetching one day of Sentinel-1 scenes from PolarView.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Resolve the target date (yesterday by default)
//  2. Query the WFS service for the day's features
//  3. Derive one download link per feature filename
//  4. Download scenes one after another, skipping files already on disk
//  5. Render quicklooks and write a manifest (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, download.WithLogger(logger))
//
//	if err := manager.Initialize(ctx); err != nil {
//	    log.Fatal(err) // the query failed, nothing was downloaded
//	}
//
//	report, err := manager.StartDownloads(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Count(model.StatusDownloaded), "downloaded")
//
// # Failure Policy
//
// A failed metadata query aborts the run before any download. A failed
// scene is reported and the loop continues with the next one; there are
// no retries. Cancelling the context stops the loop after removing the
// partial file of the current transfer. Partial files left by a killed
// run are removed when they have not been written for a download timeout.
//
// # Progress Tracking
//
// Messages are reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Byte progress of the current transfer is available through WithFileProgress.
package download
