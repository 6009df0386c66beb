package manifest

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/handiism/polarview-downloader/internal/model"
)

// CSVHeader is the first row of CSV manifests.
var CSVHeader = []string{"file", "url", "status", "bytes"}

// Creator generates manifest files describing one batch.
//
// Creator takes a run report and renders either a plain URL list or a CSV
// table of outcomes. The output is written next to the downloaded archives.
//
// Example:
//
//	// URL list, usable with `wget -i manifest.txt`
//	creator := NewCreator(model.ManifestFormatText)
//	content, err := creator.Create(report)
//	os.WriteFile(report.Batch.ManifestPath, content, 0644)
//
//	// Result:
//	// https://www.polarview.aq/images/104_S1geotiff/X.tif.tar.gz
//	// https://www.polarview.aq/images/104_S1geotiff/Y.tif.tar.gz
type Creator struct {
	format model.ManifestFormat
}

// NewCreator creates a new Creator for the given format.
func NewCreator(format model.ManifestFormat) *Creator {
	return &Creator{format: format}
}

// Create renders the manifest for a report.
//
// The text format lists the URL of every scene in the batch, including
// scenes the run did not reach. The CSV format has one row per result.
func (c *Creator) Create(report *model.Report) ([]byte, error) {
	switch c.format {
	case model.ManifestFormatCSV:
		return c.createCSV(report)
	default:
		return []byte(c.createText(report)), nil
	}
}

// createText generates a URL list:
//
//	https://host/images/X.tif.tar.gz
//	https://host/images/Y.tif.tar.gz
func (c *Creator) createText(report *model.Report) string {
	var sb strings.Builder
	if report.Batch == nil {
		return ""
	}
	for _, scene := range report.Batch.Scenes {
		sb.WriteString(scene.DownloadURL)
		sb.WriteString("\n")
	}
	return sb.String()
}

// createCSV generates a table of outcomes:
//
//	file,url,status,bytes
//	X.tif.tar.gz,https://host/images/X.tif.tar.gz,downloaded,1048576
//	Y.tif.tar.gz,https://host/images/Y.tif.tar.gz,skipped,0
func (c *Creator) createCSV(report *model.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, res := range report.Results {
		if res.Scene == nil {
			continue
		}
		row := []string{
			res.Scene.FileName,
			res.Scene.DownloadURL,
			res.Status.String(),
			strconv.FormatInt(res.Bytes, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
