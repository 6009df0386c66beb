package model

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the layout of target dates and batch folder names.
const DateLayout = "2006-01-02"

// Batch represents all scenes acquired on one target date.
//
// Batch holds the information needed to place files on disk:
//   - Date for the query window and folder naming
//   - Folder, the computed local directory for the date
//   - ManifestPath, where the optional manifest is written
//
// Paths are computed when creating a batch via NewBatch, using
// placeholders like {date}, {year}, {month} and {day}.
//
// Example:
//
//	cfg := &PathConfig{
//	    DownloadsPath:          "daily_sar_images/{date}",
//	    ManifestFileNameFormat: "manifest",
//	    ManifestFormat:         ManifestFormatText,
//	}
//	batch := NewBatch(date, cfg)
//	// batch.Folder = "daily_sar_images/2024-01-01"
type Batch struct {
	// Date is the target date, normalised to midnight UTC.
	Date time.Time

	// Scenes contains all scenes of the batch in query order.
	Scenes []*Scene

	// Folder is the computed local directory where scene archives are saved.
	Folder string

	// ManifestPath is the computed local file path for the manifest.
	ManifestPath string
}

// PathConfig holds path formatting settings for batches.
//
// DownloadsPath and ManifestFileNameFormat support these placeholders:
//   - {date} - Target date as YYYY-MM-DD
//   - {year}, {month}, {day} - Target date components
type PathConfig struct {
	// DownloadsPath is the folder template for a batch.
	// Example: "daily_sar_images/{date}"
	DownloadsPath string

	// ManifestFileNameFormat is the manifest file name template (without extension).
	ManifestFileNameFormat string

	// ManifestFormat determines the manifest file type and extension.
	ManifestFormat ManifestFormat
}

// ManifestFormat represents supported manifest file formats.
type ManifestFormat int

const (
	// ManifestFormatText writes one download URL per line.
	ManifestFormatText ManifestFormat = iota

	// ManifestFormatCSV writes one row per scene with its outcome.
	ManifestFormatCSV
)

// Extension returns the file extension for the manifest format, including the dot.
func (mf ManifestFormat) Extension() string {
	switch mf {
	case ManifestFormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// NewBatch creates a new Batch with computed paths based on settings.
func NewBatch(date time.Time, cfg *PathConfig) *Batch {
	batch := &Batch{
		Date: NormalizeDate(date),
	}

	batch.Folder = batch.parseFolderPath(cfg)
	batch.ManifestPath = batch.parseManifestPath(cfg)

	return batch
}

// DateString returns the batch date as YYYY-MM-DD.
func (b *Batch) DateString() string {
	return b.Date.Format(DateLayout)
}

// AddScene appends a scene for filename unless one with the same local
// file name is already part of the batch. It reports whether the scene was added.
func (b *Batch) AddScene(filename, baseURL string) (*Scene, bool) {
	scene := NewScene(b, filename, baseURL)
	for _, existing := range b.Scenes {
		if existing.FileName == scene.FileName {
			return existing, false
		}
	}
	b.Scenes = append(b.Scenes, scene)
	return scene, true
}

// parseFolderPath computes the batch folder path from the config template.
func (b *Batch) parseFolderPath(cfg *PathConfig) string {
	p := b.expand(cfg.DownloadsPath)
	if !strings.Contains(cfg.DownloadsPath, "{") {
		// A plain base folder still gets one subfolder per date.
		p = filepath.Join(p, b.DateString())
	}
	return filepath.Clean(p)
}

// parseManifestPath computes the full manifest file path.
func (b *Batch) parseManifestPath(cfg *PathConfig) string {
	name := sanitizeFileName(b.expand(cfg.ManifestFileNameFormat))
	if name == "" {
		name = "manifest"
	}
	return filepath.Join(b.Folder, name+cfg.ManifestFormat.Extension())
}

func (b *Batch) expand(template string) string {
	s := template
	s = strings.ReplaceAll(s, "{date}", b.Date.Format(DateLayout))
	s = strings.ReplaceAll(s, "{year}", b.Date.Format("2006"))
	s = strings.ReplaceAll(s, "{month}", b.Date.Format("01"))
	s = strings.ReplaceAll(s, "{day}", b.Date.Format("02"))
	return s
}

// sanitizeFileName replaces characters that are invalid in file names.
//
//	sanitizeFileName("manifest: 2024/01") // Returns "manifest_ 2024_01"
func sanitizeFileName(name string) string {
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
