// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Existence checks used to skip scenes already on disk
//   - Atomic file writing
//   - Cleanup of stale temporary download files
//   - Directory creation
//   - Quicklook rendering of scene archives
//
// # File Operations
//
//	// Ensure the batch folder exists
//	err := ioutils.EnsureDir("daily_sar_images/2024-01-01")
//
//	// Skip scenes that are already present
//	if ioutils.FileExists(scene.Path) { ... }
//
//	// Write a file so that it appears complete or not at all
//	err := ioutils.WriteFileAtomic("daily_sar_images/2024-01-01/manifest.txt", data)
//
// # Quicklooks
//
// The QuicklookService turns a downloaded .tif.tar.gz archive into a JPEG preview:
//
//	svc := ioutils.NewQuicklookService(1024)
//	jpgPath, err := svc.CreateFromArchive(ctx, scene.Path)
package ioutils
