package model

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

const (
	// SceneSuffix is stripped from WFS filenames before the archive suffix is appended.
	SceneSuffix = ".tif"

	// ArchiveSuffix is appended to every scene base name to build its download URL.
	ArchiveSuffix = ".tif.tar.gz"
)

// Scene represents a single Sentinel-1 scene to download.
//
// Scene contains:
//   - Filename as reported by the WFS feature (e.g. "S1A_..._HH.tif")
//   - DownloadURL derived from the filename
//   - FileName, the last path segment of DownloadURL
//   - Path, the local destination inside the batch folder
//
// Example:
//
//	scene := NewScene(batch, "S1A_EW_GRDM_1SDH_20240101.tif", "https://www.polarview.aq/images/104_S1geotiff")
//	// scene.DownloadURL = "https://www.polarview.aq/images/104_S1geotiff/S1A_EW_GRDM_1SDH_20240101.tif.tar.gz"
//	// scene.Path        = "daily_sar_images/2024-01-01/S1A_EW_GRDM_1SDH_20240101.tif.tar.gz"
type Scene struct {
	// Batch is a reference to the parent batch.
	Batch *Batch

	// Filename is the raw filename property of the WFS feature.
	Filename string

	// DownloadURL is the URL the scene archive is fetched from.
	DownloadURL string

	// FileName is the local file name, the basename of the URL path.
	FileName string

	// Path is the full local path where the archive will be saved.
	Path string
}

// NewScene creates a new Scene with computed download URL and path.
func NewScene(batch *Batch, filename, baseURL string) *Scene {
	scene := &Scene{
		Batch:       batch,
		Filename:    filename,
		DownloadURL: DownloadURL(baseURL, filename),
	}

	scene.FileName = FileNameFromURL(scene.DownloadURL)
	scene.Path = filepath.Join(batch.Folder, scene.FileName)

	return scene
}

// PartPrefix returns the prefix used for the scene's temporary download files.
func (s *Scene) PartPrefix() string {
	return "." + s.FileName + "."
}

// DownloadURL derives the archive URL for a WFS filename.
//
// A trailing ".tif" is removed before ".tif.tar.gz" is appended, so both
// "X.tif" and "X" map to "<base>/X.tif.tar.gz".
func DownloadURL(baseURL, filename string) string {
	base := strings.TrimSuffix(filename, SceneSuffix)
	return strings.TrimRight(baseURL, "/") + "/" + base + ArchiveSuffix
}

// FileNameFromURL returns the final path segment of a URL.
//
// If the URL cannot be parsed, the text after the last "/" is used.
func FileNameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		return rawURL[i+1:]
	}
	return rawURL
}
